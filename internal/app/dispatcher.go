// Package app — маршрутизация апдейтов Telegram к сценариям.
package app

import (
	"context"
	"database/sql"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"classbot/internal/bot/authz"
	"classbot/internal/bot/handlers"
	"classbot/internal/bot/intent"
	"classbot/internal/db"
	"classbot/internal/metrics"
	"classbot/internal/models"
	"classbot/internal/observability"
	"classbot/internal/tg"
)

type App struct {
	Bot      *tgbotapi.BotAPI
	DB       *sql.DB
	H        *handlers.Handler
	Log      *zap.SugaredLogger
	AdminIDs []int64

	limiter *ChatLimiter
}

func New(bot *tgbotapi.BotAPI, database *sql.DB, h *handlers.Handler, log *zap.SugaredLogger, adminIDs []int64) *App {
	return &App{Bot: bot, DB: database, H: h, Log: log, AdminIDs: adminIDs, limiter: NewChatLimiter()}
}

// HandleUpdate — вход для каждого апдейта. Паника сценария не роняет бота.
func (a *App) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	metrics.BotUpdates.Inc()

	var chatID int64
	switch {
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	default:
		return
	}

	unlock := a.limiter.lock(chatID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerErrors.Inc()
			a.Log.Errorw("паника в обработчике", "chat_id", chatID, "panic", r)
			observability.CaptureErr(panicErr{r})
			_, _ = tg.Send(a.Bot, tgbotapi.NewMessage(chatID, "Произошла ошибка. Попробуйте позже."))
		}
	}()

	if update.Message != nil {
		a.handleMessage(ctx, update.Message)
		return
	}
	a.handleCallback(ctx, update.CallbackQuery)
}

func (a *App) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	from := msg.From
	if from == nil {
		return
	}

	u, err := a.resolveUser(ctx, from)
	if err != nil {
		a.Log.Errorw("пользователь", "chat_id", chatID, "err", err)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "/") {
		// команда важнее активного диалога: бросаем шаг, убираем висящий вопрос
		a.H.AbortFlow(chatID)
		a.routeCommand(ctx, u, msg)
		return
	}

	if a.H.HandleStateText(ctx, u, msg) {
		return
	}
	a.H.Help(ctx, u, chatID)
}

// splitCommand разбирает текст команды: первый токен без регистра и без
// упоминания бота, остаток без изменения регистра — это аргумент,
// например название класса.
func splitCommand(text string) (cmd, arg string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	cmd = strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return cmd, strings.Join(fields[1:], " ")
}

func (a *App) routeCommand(ctx context.Context, u *models.User, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd, arg := splitCommand(msg.Text)

	switch cmd {
	case "/start":
		a.H.Start(ctx, u, chatID)
	case "/help":
		a.H.Help(ctx, u, chatID)
	case "/cancel":
		a.reply(chatID, "Действие отменено.")
	case "/register":
		a.H.StartRegister(ctx, u, chatID)
	case "/myclass":
		a.H.MyClass(ctx, u, chatID)
	case "/createclass":
		a.H.StartCreateClass(ctx, u, chatID)
	case "/requestclass":
		if authz.IsManager(u) {
			a.reply(chatID, "Администраторам и модераторам привязка не нужна.")
			return
		}
		a.H.StartRequestClass(ctx, u, chatID)
	case "/createnews":
		if !authz.IsManager(u) {
			a.reply(chatID, "Публиковать могут только администраторы и модераторы.")
			return
		}
		a.H.StartCreateNews(ctx, u, chatID)
	case "/viewnews":
		a.H.StartViewNews(ctx, u, chatID, arg)
	case "/viewreports":
		a.H.StartViewReports(ctx, u, chatID, arg)
	case "/verifications":
		if !a.requireAdmin(u, chatID) {
			return
		}
		a.H.StartVerifications(ctx, u, chatID)
	case "/parents":
		if !a.requireAdmin(u, chatID) {
			return
		}
		a.H.StartParents(ctx, u, chatID)
	case "/moderators":
		if !a.requireAdmin(u, chatID) {
			return
		}
		a.H.StartModerators(ctx, u, chatID, intent.ModeratorList)
	case "/addmoderator":
		if !a.requireAdmin(u, chatID) {
			return
		}
		a.H.StartModerators(ctx, u, chatID, intent.ModeratorAdd)
	case "/removemoderator":
		if !a.requireAdmin(u, chatID) {
			return
		}
		a.H.StartModerators(ctx, u, chatID, intent.ModeratorRemove)
	case "/deleteclass":
		if !a.requireAdmin(u, chatID) {
			return
		}
		a.H.StartDeleteClass(ctx, u, chatID)
	case "/adminpanel":
		a.H.AdminPanel(ctx, u, chatID)
	default:
		a.reply(chatID, "Неизвестная команда. Используйте /help")
	}
}

func (a *App) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	u, err := a.resolveUser(ctx, cb.From)
	if err != nil {
		a.Log.Errorw("пользователь", "chat_id", chatID, "err", err)
		return
	}

	in, ok := intent.Decode(cb.Data)
	if !ok {
		_, _ = tg.Request(a.Bot, tgbotapi.NewCallback(cb.ID, "Сессия устарела. Начните заново."))
		return
	}

	switch v := in.(type) {
	case intent.VerificationDecision:
		a.H.HandleVerificationDecision(ctx, u, cb, v)
	case intent.PublishClass:
		a.H.HandlePublishClassPick(ctx, u, cb, v.ClassID)
	case intent.ViewNewsClass:
		a.answer(cb)
		a.H.ShowNewsPage(ctx, u, chatID, 0, v.ClassID, 1)
	case intent.NewsPage:
		a.answer(cb)
		a.H.ShowNewsPage(ctx, u, chatID, cb.Message.MessageID, v.ClassID, v.Page)
	case intent.ViewReportsClass:
		a.answer(cb)
		a.H.ShowReportsPage(ctx, u, chatID, 0, v.ClassID, 1)
	case intent.ReportsPage:
		a.answer(cb)
		a.H.ShowReportsPage(ctx, u, chatID, cb.Message.MessageID, v.ClassID, v.Page)
	case intent.ReportDownload:
		a.H.HandleReportDownload(ctx, u, cb, v.NewsID)
	case intent.DeleteClass:
		a.H.HandleDeleteClass(ctx, u, cb, v.ClassID)
	case intent.ModeratorClass:
		a.H.HandleModeratorClassPick(ctx, u, cb, v)
	case intent.ParentsClass:
		a.H.HandleParentsClassPick(ctx, u, cb, v.ClassID)
	case intent.VerificationsClass:
		a.H.HandleVerificationsClassPick(ctx, u, cb, v.ClassID)
	}
}

// resolveUser заводит пользователя лениво и выдаёт права из ADMIN_IDS.
func (a *App) resolveUser(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	u, err := db.GetOrCreateUser(ctx, a.DB, from.ID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		return nil, err
	}
	if u.Role != models.Admin {
		for _, id := range a.AdminIDs {
			if id == from.ID {
				if err := db.EnsureAdmin(ctx, a.DB, from.ID); err != nil {
					return nil, err
				}
				return db.GetUserByTelegramID(ctx, a.DB, from.ID)
			}
		}
	}
	return u, nil
}

func (a *App) requireAdmin(u *models.User, chatID int64) bool {
	if u.Role != models.Admin {
		a.reply(chatID, "Команда доступна только администраторам.")
		return false
	}
	return true
}

func (a *App) reply(chatID int64, text string) {
	if _, err := tg.Send(a.Bot, tgbotapi.NewMessage(chatID, text)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (a *App) answer(cb *tgbotapi.CallbackQuery) {
	if _, err := tg.Request(a.Bot, tgbotapi.NewCallback(cb.ID, "")); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

type panicErr struct{ v any }

func (e panicErr) Error() string {
	if err, ok := e.v.(error); ok {
		return "panic: " + err.Error()
	}
	return "panic in handler"
}
