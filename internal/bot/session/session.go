// Package session хранит диалоговое состояние пользователей между апдейтами.
package session

import "time"

type Step int

const (
	StepNone Step = iota

	// регистрация
	StepRegisterFullName
	StepRegisterPhone

	// создание класса и заявка на привязку
	StepCreateClassName
	StepRequestClassName

	// публикация
	StepNewsTitle
	StepNewsContent

	// модераторы: после выбора класса админ вводит Telegram ID
	StepModeratorAddID
	StepModeratorRemoveID
)

// State — состояние диалога одного чата. PromptMessageID указывает на последний
// вопрос бота: при смене шага или команде его нужно убрать, чтобы не висел.
type State struct {
	Step            Step
	FullName        string
	Phone           string
	ClassID         int64
	NewsTitle       string
	PromptMessageID int
	UpdatedAt       time.Time
}

// Store — хранилище диалоговых состояний по chatID.
// Delete возвращает прежнее состояние, чтобы вызывающий мог убрать висящий вопрос.
type Store interface {
	Get(chatID int64) (State, bool)
	Set(chatID int64, st State)
	Delete(chatID int64) (State, bool)
	SweepOlderThan(age time.Duration) int
}
