package db

import (
	"context"
	"database/sql"

	"classbot/internal/ctxutil"
)

// Recipients — адаптер для рассылки поверх NewsRecipients.
type Recipients struct {
	DB *sql.DB
}

func (r Recipients) Recipients(ctx context.Context, classID int64) ([]int64, error) {
	return NewsRecipients(ctx, r.DB, classID)
}

// NewsRecipients — получатели публикаций класса: верифицированные родители с основной
// привязкой, родители с записью в parent_class_links, владелец класса и его модераторы.
// Дубликаты схлопываются по telegram_id.
func NewsRecipients(ctx context.Context, database *sql.DB, classID int64) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT u.telegram_id FROM users u
		WHERE u.class_id = $1 AND u.role = 'parent' AND u.is_verified
		UNION
		SELECT u.telegram_id FROM users u
		JOIN parent_class_links l ON l.user_id = u.id
		WHERE l.class_id = $1 AND u.role = 'parent' AND u.is_verified
		UNION
		SELECT c.admin_telegram_id FROM classes c WHERE c.id = $1
		UNION
		SELECT u.telegram_id FROM users u
		WHERE u.class_id = $1 AND u.role = 'moderator'
	`, classID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
