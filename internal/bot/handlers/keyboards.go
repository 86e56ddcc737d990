package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/models"
)

// classPickKeyboard — по кнопке на класс, одна в строке.
func classPickKeyboard(classes []models.Class, encode func(classID int64) string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(classes))
	for _, c := range classes {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, encode(c.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// pagingRow — кнопки листания для страницы page из totalPages.
func pagingRow(classID int64, page, totalPages int, encode func(classID int64, page int, next bool) string) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if page > 1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️", encode(classID, page-1, false)))
	}
	if page < totalPages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡️", encode(classID, page+1, true)))
	}
	return row
}
