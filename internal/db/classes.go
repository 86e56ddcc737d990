package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"classbot/internal/ctxutil"
	"classbot/internal/models"
)

// ErrClassNameTaken — имена классов уникальны, по ним работает поиск в /requestclass и /viewnews.
var ErrClassNameTaken = errors.New("class name already taken")

const classColumns = `id, name, admin_telegram_id, created_at`

func scanClass(row interface{ Scan(...any) error }) (*models.Class, error) {
	var c models.Class
	if err := row.Scan(&c.ID, &c.Name, &c.AdminTelegramID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func CreateClass(ctx context.Context, database *sql.DB, name string, adminTelegramID int64) (*models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx, `
		INSERT INTO classes (name, admin_telegram_id) VALUES ($1, $2)
		RETURNING `+classColumns, name, adminTelegramID)
	c, err := scanClass(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrClassNameTaken
		}
		return nil, err
	}
	return c, nil
}

func GetClassByID(ctx context.Context, database *sql.DB, id int64) (*models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id)
	c, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func GetClassByName(ctx context.Context, database *sql.DB, name string) (*models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE name = $1`, name)
	c, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func CountClassesByAdmin(ctx context.Context, database *sql.DB, adminTelegramID int64) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM classes WHERE admin_telegram_id = $1`, adminTelegramID).Scan(&n)
	return n, err
}

func ListClassesByAdmin(ctx context.Context, database *sql.DB, adminTelegramID int64) ([]models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE admin_telegram_id = $1 ORDER BY name`, adminTelegramID)
	if err != nil {
		return nil, err
	}
	return collectClasses(rows)
}

// ListManageableClasses — классы, где пользователь админ, плюс его класс, если он модератор.
func ListManageableClasses(ctx context.Context, database *sql.DB, u *models.User) ([]models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT `+classColumns+` FROM classes
		WHERE admin_telegram_id = $1
		   OR ($2 AND id = $3)
		ORDER BY name
	`, u.TelegramID, u.Role == models.Moderator && u.ClassID.Valid, u.ClassID.Int64)
	if err != nil {
		return nil, err
	}
	return collectClasses(rows)
}

// ListViewableClasses — классы, чей контент пользователь вправе смотреть:
// управляемые плюс, для верифицированного родителя, основной класс и привязки.
func ListViewableClasses(ctx context.Context, database *sql.DB, u *models.User) ([]models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	parentOK := u.Role == models.Parent && u.IsVerified
	rows, err := database.QueryContext(ctx, `
		SELECT DISTINCT c.id, c.name, c.admin_telegram_id, c.created_at
		FROM classes c
		LEFT JOIN parent_class_links l ON l.class_id = c.id AND l.user_id = $4
		WHERE c.admin_telegram_id = $1
		   OR ($2 AND c.id = $3)
		   OR ($5 AND (c.id = $3 OR l.id IS NOT NULL))
		ORDER BY c.name
	`, u.TelegramID, u.Role == models.Moderator && u.ClassID.Valid, u.ClassID.Int64, u.ID, parentOK)
	if err != nil {
		return nil, err
	}
	return collectClasses(rows)
}

// DeleteClass — удаление с каскадом: новости, заявки и привязки уходят по FK,
// основная привязка пользователей обнуляется. Только для владельца.
func DeleteClass(ctx context.Context, database *sql.DB, id, adminTelegramID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx,
		`DELETE FROM classes WHERE id = $1 AND admin_telegram_id = $2`, id, adminTelegramID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func collectClasses(rows *sql.Rows) ([]models.Class, error) {
	defer func() { _ = rows.Close() }()

	var out []models.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
