// Package authz — проверки прав, общие для бота и админ-панели.
package authz

import "classbot/internal/models"

// roleTransitions — единственное место, где перечислены допустимые смены ролей.
var roleTransitions = map[models.Role][]models.Role{
	models.Unverified: {models.Parent, models.Admin},
	models.Parent:     {models.Moderator, models.Admin},
	models.Moderator:  {models.Parent},
}

// CanChangeRole — допустим ли перевод роли from в to.
// Роль admin не отзывается через бота.
func CanChangeRole(from, to models.Role) bool {
	for _, r := range roleTransitions[from] {
		if r == to {
			return true
		}
	}
	return false
}

// IsManager — админ или модератор.
func IsManager(u *models.User) bool {
	return u != nil && (u.Role == models.Admin || u.Role == models.Moderator)
}

// CanManageClass — админ управляет своими классами, модератор только основным.
func CanManageClass(u *models.User, c *models.Class) bool {
	if u == nil || c == nil {
		return false
	}
	switch u.Role {
	case models.Admin:
		return c.AdminTelegramID == u.TelegramID
	case models.Moderator:
		return u.ClassID.Valid && u.ClassID.Int64 == c.ID
	}
	return false
}

// CanPublish — публиковать в класс могут те же, кто им управляет.
func CanPublish(u *models.User, c *models.Class) bool {
	return CanManageClass(u, c)
}

// CanViewClassContent — смотреть контент могут управляющие и верифицированные
// родители класса: по основной привязке или по записи в parent_class_links.
func CanViewClassContent(u *models.User, c *models.Class, hasLink bool) bool {
	if CanManageClass(u, c) {
		return true
	}
	if u == nil || c == nil || u.Role != models.Parent || !u.IsVerified {
		return false
	}
	return hasLink || (u.ClassID.Valid && u.ClassID.Int64 == c.ID)
}

// CanAppointModerator — назначать модераторов может только владелец класса.
func CanAppointModerator(u *models.User, c *models.Class) bool {
	return u != nil && c != nil && u.Role == models.Admin && c.AdminTelegramID == u.TelegramID
}
