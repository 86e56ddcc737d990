package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/intent"
	"classbot/internal/bot/shared/fsmutil"
	"classbot/internal/db"
	"classbot/internal/models"
)

// StartDeleteClass — удаление класса вместе с новостями, заявками и привязками.
func (h *Handler) StartDeleteClass(ctx context.Context, u *models.User, chatID int64) {
	classes, err := db.ListClassesByAdmin(ctx, h.DB, u.TelegramID)
	if err != nil {
		h.Log.Errorw("удаление класса: классы", "err", err)
		h.reply(chatID, textError)
		return
	}
	if len(classes) == 0 {
		h.reply(chatID, "У вас нет классов.")
		return
	}
	h.replyMarkup(chatID,
		"Выберите класс для удаления. Вместе с классом удалятся его новости, отчёты и привязки родителей. Действие необратимо.",
		classPickKeyboard(classes, intent.EncodeDeleteClass))
}

func (h *Handler) HandleDeleteClass(ctx context.Context, u *models.User, cb *tgbotapi.CallbackQuery, classID int64) {
	chatID := cb.Message.Chat.ID
	if !fsmutil.SetPending(chatID, "delete_class") {
		h.answer(cb, "Удаление уже выполняется.")
		return
	}
	defer fsmutil.ClearPending(chatID, "delete_class")

	fsmutil.DisableMarkup(h.Bot, chatID, cb.Message.MessageID)

	class, err := db.GetClassByID(ctx, h.DB, classID)
	if err != nil || class == nil {
		h.answer(cb, textStaleSession)
		return
	}

	ok, err := db.DeleteClass(ctx, h.DB, classID, u.TelegramID)
	if err != nil {
		h.Log.Errorw("удаление класса", "class_id", classID, "err", err)
		h.answer(cb, textError)
		return
	}
	if !ok {
		h.answer(cb, "Класс не найден или он не ваш.")
		return
	}

	h.answer(cb, "Удалено")
	h.reply(chatID, fmt.Sprintf("Класс %s удалён вместе с новостями и привязками.", class.Name))
}
