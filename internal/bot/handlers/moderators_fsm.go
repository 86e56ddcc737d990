package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/authz"
	"classbot/internal/bot/intent"
	"classbot/internal/bot/session"
	"classbot/internal/bot/shared/fsmutil"
	"classbot/internal/db"
	"classbot/internal/models"
)

// StartModerators — списки и назначение модераторов, только для владельца класса.
func (h *Handler) StartModerators(ctx context.Context, u *models.User, chatID int64, action intent.ModeratorAction) {
	classes, err := db.ListClassesByAdmin(ctx, h.DB, u.TelegramID)
	if err != nil {
		h.Log.Errorw("модераторы: классы", "err", err)
		h.reply(chatID, textError)
		return
	}
	if len(classes) == 0 {
		h.reply(chatID, "У вас нет классов.")
		return
	}

	title := map[intent.ModeratorAction]string{
		intent.ModeratorAdd:    "Выберите класс для назначения модератора:",
		intent.ModeratorRemove: "Выберите класс для снятия модератора:",
		intent.ModeratorList:   "Выберите класс:",
	}[action]
	h.replyMarkup(chatID, title, classPickKeyboard(classes, func(classID int64) string {
		return intent.EncodeModeratorClass(classID, action)
	}))
}

func (h *Handler) HandleModeratorClassPick(ctx context.Context, u *models.User, cb *tgbotapi.CallbackQuery, mc intent.ModeratorClass) {
	chatID := cb.Message.Chat.ID
	fsmutil.DisableMarkup(h.Bot, chatID, cb.Message.MessageID)

	class, err := db.GetClassByID(ctx, h.DB, mc.ClassID)
	if err != nil || class == nil {
		h.answer(cb, textStaleSession)
		return
	}
	if !authz.CanAppointModerator(u, class) {
		h.answer(cb, "Это не ваш класс.")
		return
	}
	h.answer(cb, "")

	mods, err := db.ListModerators(ctx, h.DB, mc.ClassID)
	if err != nil {
		h.Log.Errorw("модераторы: список", "err", err)
		h.reply(chatID, textError)
		return
	}

	switch mc.Action {
	case intent.ModeratorList:
		h.reply(chatID, moderatorsText(class, mods))
	case intent.ModeratorAdd:
		h.deleteMessage(chatID, cb.Message.MessageID)
		h.prompt(chatID, session.State{Step: session.StepModeratorAddID, ClassID: mc.ClassID},
			fmt.Sprintf("Введите Telegram ID родителя из класса %s:", class.Name))
	case intent.ModeratorRemove:
		if len(mods) == 0 {
			h.reply(chatID, fmt.Sprintf("В классе %s нет модераторов.", class.Name))
			return
		}
		h.deleteMessage(chatID, cb.Message.MessageID)
		h.prompt(chatID, session.State{Step: session.StepModeratorRemoveID, ClassID: mc.ClassID},
			moderatorsText(class, mods)+"\n\nВведите Telegram ID модератора для снятия:")
	}
}

func moderatorsText(class *models.Class, mods []models.User) string {
	if len(mods) == 0 {
		return fmt.Sprintf("В классе %s нет модераторов.", class.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Модераторы класса %s:\n", class.Name)
	for _, m := range mods {
		fmt.Fprintf(&b, "• %s (ID %d)\n", m.DisplayName(), m.TelegramID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handler) handleModeratorAddID(ctx context.Context, st session.State, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	target, ok := h.moderatorTarget(ctx, st, msg)
	if !ok {
		return
	}

	if !authz.CanChangeRole(target.Role, models.Moderator) {
		h.Sessions.Delete(chatID)
		h.deleteMessage(chatID, st.PromptMessageID)
		h.reply(chatID, "Этому пользователю нельзя выдать права модератора.")
		return
	}
	member, err := db.HasLink(ctx, h.DB, target.ID, st.ClassID)
	if err != nil {
		h.Log.Errorw("модераторы: проверка привязки", "err", err)
		h.reply(chatID, textError)
		return
	}
	if !member && !(target.ClassID.Valid && target.ClassID.Int64 == st.ClassID) {
		h.prompt(chatID, st, "Пользователь не привязан к этому классу. Введите другой ID:")
		return
	}

	if err := db.SetModerator(ctx, h.DB, target.TelegramID, st.ClassID); err != nil {
		h.Log.Errorw("модераторы: назначение", "err", err)
		h.reply(chatID, textError)
		return
	}
	h.Sessions.Delete(chatID)
	h.deleteMessage(chatID, st.PromptMessageID)
	h.reply(chatID, fmt.Sprintf("%s теперь модератор.", target.DisplayName()))
	h.reply(target.TelegramID, "Вам выданы права модератора класса. Доступна команда /createnews.")
}

func (h *Handler) handleModeratorRemoveID(ctx context.Context, st session.State, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	target, ok := h.moderatorTarget(ctx, st, msg)
	if !ok {
		return
	}

	if target.Role != models.Moderator || !target.ClassID.Valid || target.ClassID.Int64 != st.ClassID {
		h.prompt(chatID, st, "Этот пользователь не модератор данного класса. Введите другой ID:")
		return
	}

	if err := db.DemoteModerator(ctx, h.DB, target.TelegramID); err != nil {
		h.Log.Errorw("модераторы: снятие", "err", err)
		h.reply(chatID, textError)
		return
	}
	h.Sessions.Delete(chatID)
	h.deleteMessage(chatID, st.PromptMessageID)
	h.reply(chatID, fmt.Sprintf("%s больше не модератор.", target.DisplayName()))
	h.reply(target.TelegramID, "Ваши права модератора отозваны.")
}

// moderatorTarget разбирает введённый Telegram ID и находит пользователя.
func (h *Handler) moderatorTarget(ctx context.Context, st session.State, msg *tgbotapi.Message) (*models.User, bool) {
	chatID := msg.Chat.ID
	id, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil || id <= 0 {
		h.prompt(chatID, st, "Нужен числовой Telegram ID. Введите ещё раз:")
		return nil, false
	}

	target, err := db.GetUserByTelegramID(ctx, h.DB, id)
	if err != nil {
		h.Log.Errorw("модераторы: поиск", "err", err)
		h.reply(chatID, textError)
		return nil, false
	}
	if target == nil {
		h.prompt(chatID, st, "Пользователь не найден. Он должен хотя бы раз написать боту. Введите другой ID:")
		return nil, false
	}
	return target, true
}
