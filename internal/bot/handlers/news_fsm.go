package handlers

import (
	"context"
	"database/sql"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/authz"
	"classbot/internal/bot/intent"
	"classbot/internal/bot/session"
	"classbot/internal/bot/shared/fsmutil"
	"classbot/internal/db"
	"classbot/internal/metrics"
	"classbot/internal/models"
	"classbot/internal/notify"
)

// StartCreateNews — публикация: выбор класса, заголовок, текст, рассылка.
func (h *Handler) StartCreateNews(ctx context.Context, u *models.User, chatID int64) {
	classes, err := db.ListManageableClasses(ctx, h.DB, u)
	if err != nil {
		h.Log.Errorw("публикация: классы", "err", err)
		h.reply(chatID, textError)
		return
	}
	if len(classes) == 0 {
		h.reply(chatID, "У вас нет классов для публикации.")
		return
	}
	h.replyMarkup(chatID, "Выберите класс для публикации:", classPickKeyboard(classes, intent.EncodePublishClass))
}

func (h *Handler) HandlePublishClassPick(ctx context.Context, u *models.User, cb *tgbotapi.CallbackQuery, classID int64) {
	chatID := cb.Message.Chat.ID
	fsmutil.DisableMarkup(h.Bot, chatID, cb.Message.MessageID)

	class, err := db.GetClassByID(ctx, h.DB, classID)
	if err != nil {
		h.answer(cb, textError)
		return
	}
	if !authz.CanPublish(u, class) {
		h.answer(cb, "Вы не можете публиковать в этот класс.")
		return
	}
	h.answer(cb, "")
	h.deleteMessage(chatID, cb.Message.MessageID)
	h.prompt(chatID, session.State{Step: session.StepNewsTitle, ClassID: classID}, "Введите заголовок новости:")
}

// validNewsTitle — непустой заголовок до 200 символов.
func validNewsTitle(s string) (string, bool) {
	t := strings.TrimSpace(s)
	return t, t != "" && len([]rune(t)) <= 200
}

// validNewsContent — текст обязателен: стикер или пустое сообщение шаг не завершают.
func validNewsContent(s string) (string, bool) {
	c := strings.TrimSpace(s)
	return c, c != ""
}

func (h *Handler) handleNewsTitle(_ context.Context, st session.State, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	title, ok := validNewsTitle(msg.Text)
	if !ok {
		h.prompt(chatID, st, "Заголовок от 1 до 200 символов. Введите ещё раз:")
		return
	}
	st.NewsTitle = title
	st.Step = session.StepNewsContent
	h.prompt(chatID, st, "Введите текст новости:")
}

func (h *Handler) handleNewsContent(ctx context.Context, u *models.User, st session.State, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	content, ok := validNewsContent(msg.Text)
	if !ok {
		h.prompt(chatID, st, "Пожалуйста, введите содержание.")
		return
	}
	if !fsmutil.SetPending(chatID, "publish") {
		return
	}
	defer fsmutil.ClearPending(chatID, "publish")

	news, err := db.CreateNews(ctx, h.DB, &models.News{
		ClassID:          st.ClassID,
		AuthorTelegramID: u.TelegramID,
		Title:            st.NewsTitle,
		Content:          sql.NullString{String: content, Valid: true},
		Type:             models.NewsTypeNews,
	})
	if err != nil {
		h.Log.Errorw("публикация: сохранение", "err", err)
		h.reply(chatID, textError)
		return
	}

	h.Sessions.Delete(chatID)
	h.deleteMessage(chatID, st.PromptMessageID)
	metrics.NewsPublished.WithLabelValues(string(models.NewsTypeNews)).Inc()

	err = h.News.Dispatch(ctx, notify.BroadcastMessage{
		ClassID:      news.ClassID,
		Title:        news.Title,
		Content:      news.Content.String,
		CreatedAtUTC: news.CreatedAt.In(time.UTC),
		Type:         string(news.Type),
	})
	if err != nil {
		h.Log.Errorw("публикация: рассылка", "news_id", news.ID, "err", err)
		h.reply(chatID, "Новость сохранена, но рассылка не удалась. Подписчики увидят её в /viewnews.")
		return
	}
	h.reply(chatID, "Новость опубликована и разослана подписчикам класса.")
}
