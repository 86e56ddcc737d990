package models

import (
	"time"
	"unicode"
)

// MaxClassesPerAdmin — потолок классов у одного администратора.
const MaxClassesPerAdmin = 10

// Class — школьный класс. Владелец один (admin_telegram_id).
type Class struct {
	ID              int64
	Name            string
	AdminTelegramID int64
	CreatedAt       time.Time
}

// ValidClassName — имя начинается с цифры, состоит из букв и цифр,
// допускается не больше одного дефиса. Примеры: "5А", "10Б", "5А-1".
func ValidClassName(name string) bool {
	runes := []rune(name)
	if len(runes) == 0 || !unicode.IsDigit(runes[0]) {
		return false
	}
	dashes := 0
	for _, r := range runes {
		switch {
		case r == '-':
			dashes++
			if dashes > 1 {
				return false
			}
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			return false
		}
	}
	return true
}
