package models

import (
	"database/sql"
	"time"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// Verification — заявка родителя на привязку к классу.
// ФИО и телефон снимаются с пользователя в момент подачи.
type Verification struct {
	ID          int64
	TelegramID  int64
	FullName    string
	Phone       string
	ClassID     sql.NullInt64 // NULL у старых заявок без выбранного класса
	Status      VerificationStatus
	CreatedAt   time.Time
	ProcessedAt sql.NullTime
	ProcessedBy sql.NullInt64
}
