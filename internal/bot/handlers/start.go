package handlers

import (
	"context"
	"fmt"
	"strings"

	"classbot/internal/bot/authz"
	"classbot/internal/db"
	"classbot/internal/models"
)

// Start — приветствие по роли. Незарегистрированному сразу запускаем регистрацию.
func (h *Handler) Start(ctx context.Context, u *models.User, chatID int64) {
	if !u.Registered() && !authz.IsManager(u) {
		h.reply(chatID, "Добро пожаловать! Это бот класса: новости, отчёты и связь с администратором.\nДля начала пройдите короткую регистрацию.")
		h.StartRegister(ctx, u, chatID)
		return
	}
	h.reply(chatID, "С возвращением, "+u.DisplayName()+"!\n"+helpText(u))
}

func (h *Handler) Help(_ context.Context, u *models.User, chatID int64) {
	h.reply(chatID, helpText(u))
}

func helpText(u *models.User) string {
	var b strings.Builder
	b.WriteString("Доступные команды:\n")
	b.WriteString("/myclass — мои классы\n")

	switch {
	case u.Role == models.Admin:
		b.WriteString("/createclass — создать класс\n")
		b.WriteString("/createnews — опубликовать новость\n")
		b.WriteString("/viewnews — новости класса\n")
		b.WriteString("/viewreports — отчёты класса\n")
		b.WriteString("/verifications — заявки родителей\n")
		b.WriteString("/parents — родители класса\n")
		b.WriteString("/moderators — модераторы класса\n")
		b.WriteString("/addmoderator — назначить модератора\n")
		b.WriteString("/removemoderator — снять модератора\n")
		b.WriteString("/deleteclass — удалить класс\n")
		b.WriteString("/adminpanel — веб-панель\n")
	case u.Role == models.Moderator:
		b.WriteString("/createnews — опубликовать новость\n")
		b.WriteString("/viewnews — новости класса\n")
		b.WriteString("/viewreports — отчёты класса\n")
		b.WriteString("/adminpanel — веб-панель\n")
	case u.Registered():
		b.WriteString("/requestclass — привязаться к классу\n")
		b.WriteString("/createclass — создать свой класс\n")
		if u.IsVerified {
			b.WriteString("/viewnews — новости класса\n")
			b.WriteString("/viewreports — отчёты класса\n")
		}
	default:
		b.WriteString("/register — регистрация\n")
	}
	b.WriteString("/cancel — прервать текущее действие")
	return b.String()
}

// MyClass — основной класс и привязки пользователя.
func (h *Handler) MyClass(ctx context.Context, u *models.User, chatID int64) {
	var lines []string

	if u.ClassID.Valid {
		c, err := db.GetClassByID(ctx, h.DB, u.ClassID.Int64)
		if err != nil {
			h.Log.Errorw("myclass: основной класс", "err", err)
			h.reply(chatID, textError)
			return
		}
		if c != nil {
			lines = append(lines, "Основной класс: "+c.Name)
		}
	}

	ids, err := db.ListClassIDsForParent(ctx, h.DB, u.ID)
	if err != nil {
		h.Log.Errorw("myclass: привязки", "err", err)
		h.reply(chatID, textError)
		return
	}
	for _, id := range ids {
		if u.ClassID.Valid && u.ClassID.Int64 == id {
			continue
		}
		c, err := db.GetClassByID(ctx, h.DB, id)
		if err != nil || c == nil {
			continue
		}
		lines = append(lines, "Привязка: "+c.Name)
	}

	if u.Role == models.Admin {
		own, err := db.ListClassesByAdmin(ctx, h.DB, u.TelegramID)
		if err == nil {
			for _, c := range own {
				lines = append(lines, fmt.Sprintf("Мой класс (админ): %s", c.Name))
			}
		}
	}

	if len(lines) == 0 {
		h.reply(chatID, "Вы пока не привязаны ни к одному классу. Используйте /requestclass или /createclass.")
		return
	}
	h.reply(chatID, strings.Join(lines, "\n"))
}

// AdminPanel — ссылка на веб-панель для админов и модераторов.
func (h *Handler) AdminPanel(_ context.Context, u *models.User, chatID int64) {
	if !authz.IsManager(u) {
		h.reply(chatID, "Команда доступна только администраторам и модераторам.")
		return
	}
	if h.PanelURL == "" {
		h.reply(chatID, "Веб-панель не настроена.")
		return
	}
	h.reply(chatID, "Веб-панель: "+h.PanelURL)
}
