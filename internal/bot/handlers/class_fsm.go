package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/intent"
	"classbot/internal/bot/session"
	"classbot/internal/db"
	"classbot/internal/models"
)

// StartCreateClass — создание класса, создатель становится его админом.
func (h *Handler) StartCreateClass(_ context.Context, u *models.User, chatID int64) {
	if !u.Registered() {
		h.reply(chatID, "Сначала пройдите регистрацию: /register")
		return
	}
	h.prompt(chatID, session.State{Step: session.StepCreateClassName},
		"Введите название класса, например 5А или 5А-1:")
}

func (h *Handler) handleCreateClassName(ctx context.Context, st session.State, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	name := msg.Text
	if !models.ValidClassName(name) {
		h.prompt(chatID, st, "Некорректное название. Название начинается с цифры, только буквы и цифры, допустим один дефис. Попробуйте ещё раз:")
		return
	}

	count, err := db.CountClassesByAdmin(ctx, h.DB, msg.From.ID)
	if err != nil {
		h.Log.Errorw("создание класса: подсчёт", "err", err)
		h.reply(chatID, textError)
		return
	}
	if count >= models.MaxClassesPerAdmin {
		h.Sessions.Delete(chatID)
		h.deleteMessage(chatID, st.PromptMessageID)
		h.reply(chatID, fmt.Sprintf("Нельзя создать больше %d классов.", models.MaxClassesPerAdmin))
		return
	}

	class, err := db.CreateClass(ctx, h.DB, name, msg.From.ID)
	if errors.Is(err, db.ErrClassNameTaken) {
		h.prompt(chatID, st, "Класс с таким названием уже существует. Введите другое название:")
		return
	}
	if err != nil {
		h.Log.Errorw("создание класса", "err", err)
		h.reply(chatID, textError)
		return
	}
	if err := db.PromoteToAdmin(ctx, h.DB, msg.From.ID, class.ID); err != nil {
		h.Log.Errorw("создание класса: роль", "err", err)
		h.reply(chatID, textError)
		return
	}

	h.Sessions.Delete(chatID)
	h.deleteMessage(chatID, st.PromptMessageID)
	h.reply(chatID, fmt.Sprintf("Класс %s создан! Вы его администратор.\nРодители могут привязаться командой /requestclass.", class.Name))
}

// StartRequestClass — заявка родителя на привязку к классу.
func (h *Handler) StartRequestClass(_ context.Context, u *models.User, chatID int64) {
	if !u.Registered() {
		h.reply(chatID, "Сначала пройдите регистрацию: /register")
		return
	}
	h.prompt(chatID, session.State{Step: session.StepRequestClassName},
		"Введите название класса для привязки:")
}

func (h *Handler) handleRequestClassName(ctx context.Context, u *models.User, st session.State, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	class, err := db.GetClassByName(ctx, h.DB, msg.Text)
	if err != nil {
		h.Log.Errorw("заявка: поиск класса", "err", err)
		h.reply(chatID, textError)
		return
	}
	if class == nil {
		h.prompt(chatID, st, "Класс не найден. Проверьте название и введите ещё раз:")
		return
	}

	linked, err := db.HasLink(ctx, h.DB, u.ID, class.ID)
	if err != nil {
		h.Log.Errorw("заявка: проверка привязки", "err", err)
		h.reply(chatID, textError)
		return
	}
	if linked || (u.ClassID.Valid && u.ClassID.Int64 == class.ID && u.IsVerified) {
		h.Sessions.Delete(chatID)
		h.deleteMessage(chatID, st.PromptMessageID)
		h.reply(chatID, "Вы уже привязаны к этому классу.")
		return
	}

	v, err := db.CreatePendingVerification(ctx, h.DB, u.TelegramID, u.FullName.String, u.Phone.String, class.ID)
	if err != nil {
		h.Log.Errorw("заявка: создание", "err", err)
		h.reply(chatID, textError)
		return
	}
	h.Sessions.Delete(chatID)
	h.deleteMessage(chatID, st.PromptMessageID)
	if v == nil {
		h.reply(chatID, "Заявка уже на рассмотрении, дождитесь решения администратора.")
		return
	}

	h.reply(chatID, fmt.Sprintf("Заявка на привязку к классу %s отправлена администратору.", class.Name))
	h.notifyManagersAboutRequest(ctx, v, class)
}

// notifyManagersAboutRequest шлёт карточку заявки всем админам и модераторам.
// Ошибки отдельных чатов не прерывают рассылку.
func (h *Handler) notifyManagersAboutRequest(ctx context.Context, v *models.Verification, class *models.Class) {
	managers, err := db.ListManagerIDs(ctx, h.DB)
	if err != nil {
		h.Log.Errorw("заявка: уведомление", "err", err)
		return
	}

	text := fmt.Sprintf("Новая заявка на привязку к классу %s:\nФИО: %s\nТелефон: %s", class.Name, v.FullName, v.Phone)
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", intent.EncodeVerificationDecision(v.ID, true)),
		tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", intent.EncodeVerificationDecision(v.ID, false)),
	))
	for _, chatID := range managers {
		if chatID == v.TelegramID {
			continue
		}
		h.replyMarkup(chatID, text, markup)
	}
}
