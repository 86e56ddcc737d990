package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/authz"
	"classbot/internal/bot/intent"
	"classbot/internal/bot/shared/fsmutil"
	"classbot/internal/db"
	"classbot/internal/metrics"
	"classbot/internal/models"
)

// StartVerifications — заявки родителей: выбор класса, затем карточки.
func (h *Handler) StartVerifications(ctx context.Context, u *models.User, chatID int64) {
	classes, err := db.ListClassesByAdmin(ctx, h.DB, u.TelegramID)
	if err != nil {
		h.Log.Errorw("заявки: классы", "err", err)
		h.reply(chatID, textError)
		return
	}
	if len(classes) == 0 {
		h.reply(chatID, "У вас нет классов.")
		return
	}
	h.replyMarkup(chatID, "Выберите класс:", classPickKeyboard(classes, intent.EncodeVerificationsClass))
}

func (h *Handler) HandleVerificationsClassPick(ctx context.Context, u *models.User, cb *tgbotapi.CallbackQuery, classID int64) {
	chatID := cb.Message.Chat.ID
	fsmutil.DisableMarkup(h.Bot, chatID, cb.Message.MessageID)

	class, err := db.GetClassByID(ctx, h.DB, classID)
	if err != nil || class == nil {
		h.answer(cb, textStaleSession)
		return
	}
	if !authz.CanAppointModerator(u, class) { // заявки видит только владелец
		h.answer(cb, "Это не ваш класс.")
		return
	}
	h.answer(cb, "")

	pending, err := db.ListPendingForClass(ctx, h.DB, classID)
	if err != nil {
		h.Log.Errorw("заявки: список", "err", err)
		h.reply(chatID, textError)
		return
	}
	if len(pending) == 0 {
		h.reply(chatID, fmt.Sprintf("По классу %s заявок нет.", class.Name))
		return
	}

	for _, v := range pending {
		text := fmt.Sprintf("Заявка №%d\nФИО: %s\nТелефон: %s\nПодана: %s",
			v.ID, v.FullName, v.Phone, v.CreatedAt.In(h.location()).Format("02.01.2006 15:04"))
		markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", intent.EncodeVerificationDecision(v.ID, true)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", intent.EncodeVerificationDecision(v.ID, false)),
		))
		h.replyMarkup(chatID, text, markup)
	}
}

// HandleVerificationDecision — решение по заявке. Повторное нажатие безвредно:
// заявка переводится из pending ровно один раз.
func (h *Handler) HandleVerificationDecision(ctx context.Context, u *models.User, cb *tgbotapi.CallbackQuery, d intent.VerificationDecision) {
	chatID := cb.Message.Chat.ID
	if !fsmutil.SetPending(chatID, "verif_decision") {
		h.answer(cb, "Решение уже обрабатывается.")
		return
	}
	defer fsmutil.ClearPending(chatID, "verif_decision")

	v, err := db.GetVerification(ctx, h.DB, d.VerificationID)
	if err != nil || v == nil {
		h.answer(cb, textStaleSession)
		return
	}

	var class *models.Class
	if v.ClassID.Valid {
		class, err = db.GetClassByID(ctx, h.DB, v.ClassID.Int64)
		if err != nil || class == nil {
			h.answer(cb, textStaleSession)
			return
		}
		if !authz.CanAppointModerator(u, class) {
			h.answer(cb, "Это не ваш класс.")
			return
		}
	} else if u.Role != models.Admin {
		// заявки без класса разбирает любой админ
		h.answer(cb, "Недостаточно прав.")
		return
	}

	var ok bool
	if d.Approve {
		ok, err = db.ApproveVerification(ctx, h.DB, v.ID, u.TelegramID)
	} else {
		ok, err = db.RejectVerification(ctx, h.DB, v.ID, u.TelegramID)
	}
	if err != nil {
		h.Log.Errorw("заявки: решение", "verification_id", v.ID, "err", err)
		h.answer(cb, textError)
		return
	}
	if !ok {
		h.answer(cb, "Заявка уже обработана.")
		fsmutil.DisableMarkup(h.Bot, chatID, cb.Message.MessageID)
		return
	}

	className := ""
	if class != nil {
		className = " " + class.Name
	}
	if d.Approve {
		metrics.VerificationsProcessed.WithLabelValues("approved").Inc()
		h.answer(cb, "Одобрено")
		h.editHTML(chatID, cb.Message.MessageID, fmt.Sprintf("✅ Заявка №%d одобрена.", v.ID))
		h.reply(v.TelegramID, fmt.Sprintf("✅ Ваша заявка на привязку к классу%s одобрена!", className))
	} else {
		metrics.VerificationsProcessed.WithLabelValues("rejected").Inc()
		h.answer(cb, "Отклонено")
		h.editHTML(chatID, cb.Message.MessageID, fmt.Sprintf("❌ Заявка №%d отклонена.", v.ID))
		h.reply(v.TelegramID, fmt.Sprintf("❌ Ваша заявка на привязку к классу%s отклонена.", className))
	}
}
