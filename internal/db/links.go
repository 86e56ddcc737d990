package db

import (
	"context"
	"database/sql"

	"classbot/internal/ctxutil"
)

// EnsureLink — привязка родителя к классу, повторный вызов не ошибка.
func EnsureLink(ctx context.Context, database *sql.DB, userID, classID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		INSERT INTO parent_class_links (user_id, class_id) VALUES ($1, $2)
		ON CONFLICT (user_id, class_id) DO NOTHING
	`, userID, classID)
	return err
}

func DeleteLink(ctx context.Context, database *sql.DB, userID, classID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx,
		`DELETE FROM parent_class_links WHERE user_id = $1 AND class_id = $2`, userID, classID)
	return err
}

func HasLink(ctx context.Context, database *sql.DB, userID, classID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var ok bool
	err := database.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parent_class_links WHERE user_id = $1 AND class_id = $2)`,
		userID, classID).Scan(&ok)
	return ok, err
}

func ListClassIDsForParent(ctx context.Context, database *sql.DB, userID int64) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx,
		`SELECT class_id FROM parent_class_links WHERE user_id = $1 ORDER BY class_id`, userID)
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
