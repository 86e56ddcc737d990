package models

import (
	"database/sql"
	"time"
)

type NewsType string

const (
	NewsTypeNews   NewsType = "news"   // рассылается подписчикам класса
	NewsTypeReport NewsType = "report" // скачивается по запросу, файл в объектном хранилище
)

type News struct {
	ID               int64
	ClassID          int64
	AuthorTelegramID int64
	Title            string
	Content          sql.NullString
	Type             NewsType
	FilePath         sql.NullString // ключ объекта в хранилище (для отчётов)
	FileName         sql.NullString // исходное имя файла
	CreatedAt        time.Time
}
