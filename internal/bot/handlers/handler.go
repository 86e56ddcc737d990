// Package handlers — диалоговые сценарии бота.
package handlers

import (
	"database/sql"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"classbot/internal/blob"
	"classbot/internal/bot/session"
	"classbot/internal/metrics"
	"classbot/internal/notify"
	"classbot/internal/tg"
)

const (
	textStaleSession = "Сессия устарела. Начните заново."
	textError        = "Произошла ошибка. Попробуйте позже."
	textCancelled    = "Действие отменено."
)

type Handler struct {
	Bot      *tgbotapi.BotAPI
	DB       *sql.DB
	Sessions session.Store
	News     *notify.Dispatcher
	Blobs    blob.Store // nil, если хранилище не настроено
	Log      *zap.SugaredLogger
	PanelURL string
	Loc      *time.Location
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := tg.Send(h.Bot, c); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (h *Handler) location() *time.Location {
	if h.Loc != nil {
		return h.Loc
	}
	return time.FixedZone("MSK", 3*60*60)
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := tg.Send(h.Bot, tgbotapi.NewMessage(chatID, text)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (h *Handler) replyHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := tg.Send(h.Bot, msg); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (h *Handler) replyMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := tg.Send(h.Bot, msg); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (h *Handler) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := tg.Request(h.Bot, tgbotapi.NewCallback(cb.ID, text)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (h *Handler) editHTML(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := tg.Send(h.Bot, edit); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := tg.Request(h.Bot, tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

// prompt убирает прошлый вопрос бота, задаёт новый и запоминает его ID в состоянии.
func (h *Handler) prompt(chatID int64, st session.State, text string) {
	h.deleteMessage(chatID, st.PromptMessageID)
	m, err := tg.Send(h.Bot, tgbotapi.NewMessage(chatID, text))
	if err != nil {
		metrics.HandlerErrors.Inc()
	} else {
		st.PromptMessageID = m.MessageID
	}
	h.Sessions.Set(chatID, st)
}

// AbortFlow сбрасывает диалог и убирает висящий вопрос. Команда всегда важнее
// текущего шага.
func (h *Handler) AbortFlow(chatID int64) bool {
	prev, ok := h.Sessions.Delete(chatID)
	if ok {
		h.deleteMessage(chatID, prev.PromptMessageID)
	}
	return ok
}
