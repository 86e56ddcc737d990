package authz

import (
	"database/sql"
	"testing"

	"classbot/internal/models"
)

func user(role models.Role, tgID int64, classID int64, verified bool) *models.User {
	u := &models.User{TelegramID: tgID, Role: role, IsVerified: verified}
	if classID != 0 {
		u.ClassID = sql.NullInt64{Int64: classID, Valid: true}
	}
	return u
}

func TestCanChangeRole(t *testing.T) {
	tests := []struct {
		from, to models.Role
		want     bool
	}{
		{models.Unverified, models.Parent, true},
		{models.Unverified, models.Admin, true},
		{models.Parent, models.Moderator, true},
		{models.Parent, models.Admin, true},
		{models.Moderator, models.Parent, true},
		{models.Admin, models.Parent, false},
		{models.Admin, models.Moderator, false},
		{models.Moderator, models.Admin, false},
		{models.Unverified, models.Moderator, false},
		{models.Parent, models.Unverified, false},
	}
	for _, tt := range tests {
		if got := CanChangeRole(tt.from, tt.to); got != tt.want {
			t.Errorf("CanChangeRole(%s, %s) = %v, ожидали %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCanManageClass(t *testing.T) {
	cls := &models.Class{ID: 7, AdminTelegramID: 100}

	tests := []struct {
		name string
		u    *models.User
		want bool
	}{
		{"владелец", user(models.Admin, 100, 7, true), true},
		{"чужой админ", user(models.Admin, 200, 0, true), false},
		{"модератор своего класса", user(models.Moderator, 300, 7, true), true},
		{"модератор другого класса", user(models.Moderator, 300, 8, true), false},
		{"родитель", user(models.Parent, 400, 7, true), false},
		{"nil пользователь", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanManageClass(tt.u, cls); got != tt.want {
				t.Errorf("CanManageClass = %v, ожидали %v", got, tt.want)
			}
		})
	}
}

func TestCanViewClassContent(t *testing.T) {
	cls := &models.Class{ID: 7, AdminTelegramID: 100}

	tests := []struct {
		name    string
		u       *models.User
		hasLink bool
		want    bool
	}{
		{"владелец", user(models.Admin, 100, 0, true), false, true},
		{"модератор класса", user(models.Moderator, 300, 7, true), false, true},
		{"родитель по основной привязке", user(models.Parent, 400, 7, true), false, true},
		{"родитель по ссылке", user(models.Parent, 400, 0, true), true, true},
		{"неверифицированный родитель", user(models.Parent, 400, 7, false), true, false},
		{"родитель без привязок", user(models.Parent, 400, 0, true), false, false},
		{"unverified", user(models.Unverified, 500, 0, false), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewClassContent(tt.u, cls, tt.hasLink); got != tt.want {
				t.Errorf("CanViewClassContent = %v, ожидали %v", got, tt.want)
			}
		})
	}
}

func TestCanAppointModerator(t *testing.T) {
	cls := &models.Class{ID: 7, AdminTelegramID: 100}

	if !CanAppointModerator(user(models.Admin, 100, 0, true), cls) {
		t.Error("владелец должен назначать модераторов")
	}
	if CanAppointModerator(user(models.Moderator, 300, 7, true), cls) {
		t.Error("модератор не назначает модераторов")
	}
	if CanAppointModerator(user(models.Admin, 200, 0, true), cls) {
		t.Error("чужой админ не назначает модераторов")
	}
}
