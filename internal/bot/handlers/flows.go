package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"classbot/internal/bot/session"
	"classbot/internal/bot/shared/fsmutil"
	"classbot/internal/models"
)

// HandleStateText ведёт активный диалог дальше. Возвращает false, если диалога нет.
func (h *Handler) HandleStateText(ctx context.Context, u *models.User, msg *tgbotapi.Message) bool {
	chatID := msg.Chat.ID
	st, ok := h.Sessions.Get(chatID)
	if !ok {
		return false
	}

	if fsmutil.IsCancelText(msg.Text) {
		h.Sessions.Delete(chatID)
		h.deleteMessage(chatID, st.PromptMessageID)
		h.reply(chatID, textCancelled)
		return true
	}

	switch st.Step {
	case session.StepRegisterFullName:
		h.handleRegisterFullName(ctx, st, msg)
	case session.StepRegisterPhone:
		h.handleRegisterPhone(ctx, st, msg)
	case session.StepCreateClassName:
		h.handleCreateClassName(ctx, st, msg)
	case session.StepRequestClassName:
		h.handleRequestClassName(ctx, u, st, msg)
	case session.StepNewsTitle:
		h.handleNewsTitle(ctx, st, msg)
	case session.StepNewsContent:
		h.handleNewsContent(ctx, u, st, msg)
	case session.StepModeratorAddID:
		h.handleModeratorAddID(ctx, st, msg)
	case session.StepModeratorRemoveID:
		h.handleModeratorRemoveID(ctx, st, msg)
	default:
		h.Sessions.Delete(chatID)
		return false
	}
	return true
}
