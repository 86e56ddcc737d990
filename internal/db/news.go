package db

import (
	"context"
	"database/sql"
	"errors"

	"classbot/internal/ctxutil"
	"classbot/internal/models"
)

const newsColumns = `id, class_id, author_telegram_id, title, content, type, file_path, file_name, created_at`

func scanNews(row interface{ Scan(...any) error }) (*models.News, error) {
	var n models.News
	err := row.Scan(&n.ID, &n.ClassID, &n.AuthorTelegramID, &n.Title, &n.Content,
		&n.Type, &n.FilePath, &n.FileName, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func CreateNews(ctx context.Context, database *sql.DB, n *models.News) (*models.News, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx, `
		INSERT INTO news (class_id, author_telegram_id, title, content, type, file_path, file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+newsColumns,
		n.ClassID, n.AuthorTelegramID, n.Title, n.Content, string(n.Type), n.FilePath, n.FileName)
	return scanNews(row)
}

func GetNews(ctx context.Context, database *sql.DB, id int64) (*models.News, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id)
	n, err := scanNews(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return n, err
}

// ListNewsPage — страница публикаций класса, свежие первыми. offset считает вызывающий.
func ListNewsPage(ctx context.Context, database *sql.DB, classID int64, newsType models.NewsType, limit, offset int) ([]models.News, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT `+newsColumns+` FROM news
		WHERE class_id = $1 AND type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, classID, string(newsType), limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func CountNews(ctx context.Context, database *sql.DB, classID int64, newsType models.NewsType) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM news WHERE class_id = $1 AND type = $2`,
		classID, string(newsType)).Scan(&n)
	return n, err
}

func UpdateNews(ctx context.Context, database *sql.DB, id int64, title, content string) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx,
		`UPDATE news SET title = $2, content = NULLIF($3, '') WHERE id = $1`, id, title, content)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func DeleteNews(ctx context.Context, database *sql.DB, id int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}
