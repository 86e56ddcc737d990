package handlers

import (
	"context"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/authz"
	"classbot/internal/bot/session"
	"classbot/internal/db"
	"classbot/internal/models"
)

// StartRegister — регистрация: ФИО, затем телефон.
func (h *Handler) StartRegister(_ context.Context, u *models.User, chatID int64) {
	if authz.IsManager(u) {
		h.reply(chatID, "Вам регистрация не нужна.")
		return
	}
	if u.Registered() {
		h.reply(chatID, "Вы уже зарегистрированы. Используйте /requestclass или /createclass.")
		return
	}
	h.prompt(chatID, session.State{Step: session.StepRegisterFullName}, "Введите ваше ФИО:")
}

func (h *Handler) handleRegisterFullName(_ context.Context, st session.State, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	fullName := strings.TrimSpace(msg.Text)
	if len(strings.Fields(fullName)) < 2 {
		h.prompt(chatID, st, "Введите ФИО полностью, например: Иванова Мария Петровна")
		return
	}
	st.FullName = fullName
	st.Step = session.StepRegisterPhone
	h.prompt(chatID, st, "Введите номер телефона:")
}

func (h *Handler) handleRegisterPhone(ctx context.Context, st session.State, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	phone := normalizePhone(msg.Text)
	if phone == "" {
		h.prompt(chatID, st, "Некорректный номер. Введите телефон, например: +79991234567")
		return
	}

	if err := db.CompleteRegistration(ctx, h.DB, msg.From.ID, st.FullName, phone); err != nil {
		h.Log.Errorw("регистрация", "chat_id", chatID, "err", err)
		h.reply(chatID, textError)
		return
	}
	h.Sessions.Delete(chatID)
	h.deleteMessage(chatID, st.PromptMessageID)
	h.reply(chatID, "Регистрация завершена!\nТеперь привяжитесь к классу: /requestclass, или создайте свой: /createclass.")
}

// normalizePhone — оставляем цифры и ведущий плюс; 10–15 цифр, иначе "".
func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == ' ' || r == '-' || r == '(' || r == ')' {
			continue
		}
		return ""
	}
	digits := strings.TrimPrefix(b.String(), "+")
	if len(digits) < 10 || len(digits) > 15 {
		return ""
	}
	return b.String()
}
