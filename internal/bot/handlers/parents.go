package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/authz"
	"classbot/internal/bot/intent"
	"classbot/internal/bot/shared/fsmutil"
	"classbot/internal/db"
	"classbot/internal/models"
)

// StartParents — список родителей класса, только для владельца.
func (h *Handler) StartParents(ctx context.Context, u *models.User, chatID int64) {
	classes, err := db.ListClassesByAdmin(ctx, h.DB, u.TelegramID)
	if err != nil {
		h.Log.Errorw("родители: классы", "err", err)
		h.reply(chatID, textError)
		return
	}
	if len(classes) == 0 {
		h.reply(chatID, "У вас нет классов.")
		return
	}
	h.replyMarkup(chatID, "Выберите класс:", classPickKeyboard(classes, intent.EncodeParentsClass))
}

func (h *Handler) HandleParentsClassPick(ctx context.Context, u *models.User, cb *tgbotapi.CallbackQuery, classID int64) {
	chatID := cb.Message.Chat.ID
	fsmutil.DisableMarkup(h.Bot, chatID, cb.Message.MessageID)

	class, err := db.GetClassByID(ctx, h.DB, classID)
	if err != nil || class == nil {
		h.answer(cb, textStaleSession)
		return
	}
	if !authz.CanAppointModerator(u, class) {
		h.answer(cb, "Это не ваш класс.")
		return
	}
	h.answer(cb, "")

	members, err := db.ListClassMembers(ctx, h.DB, classID)
	if err != nil {
		h.Log.Errorw("родители: список", "err", err)
		h.reply(chatID, textError)
		return
	}
	if len(members) == 0 {
		h.reply(chatID, fmt.Sprintf("В классе %s пока никого нет.", class.Name))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Класс %s, участников: %d\n", class.Name, len(members))
	for _, m := range members {
		mark := ""
		switch {
		case m.Role == models.Moderator:
			mark = " — модератор"
		case !m.IsVerified:
			mark = " — не верифицирован"
		}
		phone := m.Phone.String
		if phone == "" {
			phone = "телефон не указан"
		}
		fmt.Fprintf(&b, "• %s, %s%s\n", m.DisplayName(), phone, mark)
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}
