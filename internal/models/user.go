package models

import (
	"database/sql"
	"time"
)

type Role string

const (
	Unverified Role = "unverified"
	Parent     Role = "parent"
	Moderator  Role = "moderator"
	Admin      Role = "admin"
)

type User struct {
	ID         int64
	TelegramID int64
	Username   sql.NullString
	FirstName  sql.NullString
	LastName   sql.NullString
	FullName   sql.NullString
	Phone      sql.NullString
	Role       Role
	ClassID    sql.NullInt64
	IsVerified bool
	CreatedAt  time.Time
	VerifiedAt sql.NullTime
}

// Registered — ФИО и телефон заполнены, пользователь прошёл /register.
func (u *User) Registered() bool {
	return u.FullName.Valid && u.FullName.String != "" &&
		u.Phone.Valid && u.Phone.String != ""
}

// DisplayName — ФИО, иначе имя из Telegram, иначе username.
func (u *User) DisplayName() string {
	if u.FullName.Valid && u.FullName.String != "" {
		return u.FullName.String
	}
	if u.FirstName.Valid && u.FirstName.String != "" {
		return u.FirstName.String
	}
	if u.Username.Valid {
		return u.Username.String
	}
	return ""
}
