package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/authz"
	"classbot/internal/bot/intent"
	"classbot/internal/bot/paging"
	"classbot/internal/db"
	"classbot/internal/models"
)

// StartViewNews — просмотр новостей: выбор класса, затем страницы.
// Название класса можно передать аргументом команды и пропустить выбор.
func (h *Handler) StartViewNews(ctx context.Context, u *models.User, chatID int64, className string) {
	if className != "" {
		if classID, ok := h.classByName(ctx, chatID, className); ok {
			h.ShowNewsPage(ctx, u, chatID, 0, classID, 1)
		}
		return
	}

	classes, err := db.ListViewableClasses(ctx, h.DB, u)
	if err != nil {
		h.Log.Errorw("просмотр новостей: классы", "err", err)
		h.reply(chatID, textError)
		return
	}
	if len(classes) == 0 {
		h.reply(chatID, "Нет доступных классов. Привяжитесь к классу: /requestclass")
		return
	}
	h.replyMarkup(chatID, "Выберите класс:", classPickKeyboard(classes, intent.EncodeViewNewsClass))
}

// ShowNewsPage выводит страницу новостей. При messageID != 0 правит старое сообщение.
func (h *Handler) ShowNewsPage(ctx context.Context, u *models.User, chatID int64, messageID int, classID int64, page int) {
	class, allowed := h.viewableClass(ctx, u, classID)
	if class == nil {
		h.reply(chatID, textStaleSession)
		return
	}
	if !allowed {
		h.reply(chatID, "У вас нет доступа к этому классу.")
		return
	}

	count, err := db.CountNews(ctx, h.DB, classID, models.NewsTypeNews)
	if err != nil {
		h.Log.Errorw("просмотр новостей: подсчёт", "err", err)
		h.reply(chatID, textError)
		return
	}
	totalPages := paging.TotalPages(count)
	page = paging.Clamp(page, totalPages)

	items, err := db.ListNewsPage(ctx, h.DB, classID, models.NewsTypeNews, paging.PageSize, paging.Offset(page))
	if err != nil {
		h.Log.Errorw("просмотр новостей: страница", "err", err)
		h.reply(chatID, textError)
		return
	}

	text := h.newsPageText(class, items, page, totalPages)
	markup := tgbotapi.NewInlineKeyboardMarkup()
	if row := pagingRow(classID, page, totalPages, intent.EncodeNewsPage); len(row) > 0 {
		markup.InlineKeyboard = append(markup.InlineKeyboard, row)
	}

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		if len(markup.InlineKeyboard) > 0 {
			edit.ReplyMarkup = &markup
		}
		h.send(edit)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(markup.InlineKeyboard) > 0 {
		msg.ReplyMarkup = markup
	}
	h.send(msg)
}

func (h *Handler) newsPageText(class *models.Class, items []models.News, page, totalPages int) string {
	if len(items) == 0 {
		return fmt.Sprintf("В классе %s пока нет новостей.", class.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Новости класса %s (стр. %d/%d):\n\n", class.Name, page, totalPages)
	for i, n := range items {
		num := paging.Offset(page) + i + 1
		fmt.Fprintf(&b, "<b>%d. %s</b>\n", num, html.EscapeString(n.Title))
		if n.Content.Valid && n.Content.String != "" {
			b.WriteString(html.EscapeString(n.Content.String))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Дата: %s\n\n", n.CreatedAt.In(h.location()).Format("02.01.2006 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// classByName — класс по названию из аргумента команды. Право доступа
// проверит показ страницы.
func (h *Handler) classByName(ctx context.Context, chatID int64, name string) (int64, bool) {
	class, err := db.GetClassByName(ctx, h.DB, name)
	if err != nil {
		h.Log.Errorw("класс по названию", "name", name, "err", err)
		h.reply(chatID, textError)
		return 0, false
	}
	if class == nil {
		h.reply(chatID, fmt.Sprintf("Класс %s не найден. Проверьте название.", name))
		return 0, false
	}
	return class.ID, true
}

// viewableClass — класс и право пользователя смотреть его контент.
func (h *Handler) viewableClass(ctx context.Context, u *models.User, classID int64) (*models.Class, bool) {
	class, err := db.GetClassByID(ctx, h.DB, classID)
	if err != nil || class == nil {
		return nil, false
	}
	hasLink, err := db.HasLink(ctx, h.DB, u.ID, classID)
	if err != nil {
		return class, false
	}
	return class, authz.CanViewClassContent(u, class, hasLink)
}
