package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/intent"
	"classbot/internal/bot/paging"
	"classbot/internal/bot/shared/fsmutil"
	"classbot/internal/db"
	"classbot/internal/models"
)

// presignTTL — срок жизни ссылки на файл отчёта.
const presignTTL = 15 * time.Minute

// StartViewReports — просмотр отчётов: выбор класса, страницы со скачиванием.
// Название класса можно передать аргументом команды и пропустить выбор.
func (h *Handler) StartViewReports(ctx context.Context, u *models.User, chatID int64, className string) {
	if className != "" {
		if classID, ok := h.classByName(ctx, chatID, className); ok {
			h.ShowReportsPage(ctx, u, chatID, 0, classID, 1)
		}
		return
	}

	classes, err := db.ListViewableClasses(ctx, h.DB, u)
	if err != nil {
		h.Log.Errorw("отчёты: классы", "err", err)
		h.reply(chatID, textError)
		return
	}
	if len(classes) == 0 {
		h.reply(chatID, "Нет доступных классов. Привяжитесь к классу: /requestclass")
		return
	}
	h.replyMarkup(chatID, "Выберите класс:", classPickKeyboard(classes, intent.EncodeViewReportsClass))
}

// ShowReportsPage — страница отчётов: по кнопке скачивания на каждый отчёт.
func (h *Handler) ShowReportsPage(ctx context.Context, u *models.User, chatID int64, messageID int, classID int64, page int) {
	class, allowed := h.viewableClass(ctx, u, classID)
	if class == nil {
		h.reply(chatID, textStaleSession)
		return
	}
	if !allowed {
		h.reply(chatID, "У вас нет доступа к этому классу.")
		return
	}

	count, err := db.CountNews(ctx, h.DB, classID, models.NewsTypeReport)
	if err != nil {
		h.Log.Errorw("отчёты: подсчёт", "err", err)
		h.reply(chatID, textError)
		return
	}
	totalPages := paging.TotalPages(count)
	page = paging.Clamp(page, totalPages)

	items, err := db.ListNewsPage(ctx, h.DB, classID, models.NewsTypeReport, paging.PageSize, paging.Offset(page))
	if err != nil {
		h.Log.Errorw("отчёты: страница", "err", err)
		h.reply(chatID, textError)
		return
	}

	text := fmt.Sprintf("Отчёты класса %s (стр. %d/%d):", class.Name, page, totalPages)
	if len(items) == 0 {
		text = fmt.Sprintf("В классе %s пока нет отчётов.", class.Name)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range items {
		label := fmt.Sprintf("📎 %s (%s)", r.Title, r.CreatedAt.In(h.location()).Format("02.01.2006"))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, intent.EncodeReportDownload(r.ID)),
		))
	}
	if row := pagingRow(classID, page, totalPages, intent.EncodeReportsPage); len(row) > 0 {
		rows = append(rows, row)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		if len(rows) > 0 {
			edit.ReplyMarkup = &markup
		}
		h.send(edit)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(rows) > 0 {
		msg.ReplyMarkup = markup
	}
	h.send(msg)
}

// HandleReportDownload — файл по запросу: presigned-ссылка, при её отсутствии
// поток из хранилища, в крайнем случае текст с извинением. Пушей файлов нет.
func (h *Handler) HandleReportDownload(ctx context.Context, u *models.User, cb *tgbotapi.CallbackQuery, newsID int64) {
	chatID := cb.Message.Chat.ID
	if !fsmutil.SetPending(chatID, "report_dl") {
		h.answer(cb, "Файл уже готовится.")
		return
	}
	defer fsmutil.ClearPending(chatID, "report_dl")

	report, err := db.GetNews(ctx, h.DB, newsID)
	if err != nil || report == nil || report.Type != models.NewsTypeReport {
		h.answer(cb, textStaleSession)
		return
	}
	if _, allowed := h.viewableClass(ctx, u, report.ClassID); !allowed {
		h.answer(cb, "У вас нет доступа к этому отчёту.")
		return
	}
	if h.Blobs == nil || !report.FilePath.Valid {
		h.answer(cb, "")
		h.reply(chatID, "К отчёту не прикреплён файл.")
		return
	}
	h.answer(cb, "")

	if url, err := h.Blobs.PresignedURL(ctx, report.FilePath.String, presignTTL); err == nil && url != "" {
		h.replyHTML(chatID, fmt.Sprintf("📎 <b>%s</b>\nСкачать (ссылка действует 15 минут):\n%s", report.Title, url))
		return
	}

	obj, err := h.Blobs.Object(ctx, report.FilePath.String)
	if err != nil {
		h.Log.Errorw("отчёты: файл", "news_id", newsID, "err", err)
		h.reply(chatID, "Не удалось получить файл отчёта. Попробуйте позже.")
		return
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		h.Log.Errorw("отчёты: чтение файла", "news_id", newsID, "err", err)
		h.reply(chatID, "Не удалось получить файл отчёта. Попробуйте позже.")
		return
	}

	name := report.FileName.String
	if name == "" {
		name = report.Title
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = report.Title
	h.send(doc)
}
