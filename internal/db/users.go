package db

import (
	"context"
	"database/sql"
	"errors"

	"classbot/internal/ctxutil"
	"classbot/internal/models"
)

const userColumns = `id, telegram_id, username, first_name, last_name, full_name, phone, role, class_id, is_verified, created_at, verified_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
		&u.FullName, &u.Phone, &u.Role, &u.ClassID, &u.IsVerified, &u.CreatedAt, &u.VerifiedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByTelegramID(ctx context.Context, database *sql.DB, telegramID int64) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetOrCreateUser — пользователь заводится лениво при первом контакте с ботом.
func GetOrCreateUser(ctx context.Context, database *sql.DB, telegramID int64, username, firstName, lastName string) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx, `
		INSERT INTO users (telegram_id, username, first_name, last_name, role)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5)
		ON CONFLICT (telegram_id) DO UPDATE SET username = COALESCE(NULLIF($2, ''), users.username)
		RETURNING `+userColumns,
		telegramID, username, firstName, lastName, string(models.Unverified))
	return scanUser(row)
}

// EnsureAdmin — пользователи из ADMIN_IDS получают права админа при первом контакте.
func EnsureAdmin(ctx context.Context, database *sql.DB, telegramID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		UPDATE users
		SET role = 'admin', is_verified = TRUE, verified_at = COALESCE(verified_at, now())
		WHERE telegram_id = $1 AND role <> 'admin'
	`, telegramID)
	return err
}

// CompleteRegistration — терминальный шаг регистрации: роль parent, ФИО, телефон.
// Роли admin/moderator не понижаются.
func CompleteRegistration(ctx context.Context, database *sql.DB, telegramID int64, fullName, phone string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		UPDATE users
		SET full_name = $2, phone = $3,
		    role = CASE WHEN role = 'unverified' THEN 'parent' ELSE role END
		WHERE telegram_id = $1
	`, telegramID, fullName, phone)
	return err
}

// PromoteToAdmin — создатель класса становится админом с этим классом как основным.
func PromoteToAdmin(ctx context.Context, database *sql.DB, telegramID, classID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		UPDATE users
		SET role = 'admin', is_verified = TRUE, verified_at = now(), class_id = $2
		WHERE telegram_id = $1
	`, telegramID, classID)
	return err
}

// SetModerator — выдать права модератора в классе.
func SetModerator(ctx context.Context, database *sql.DB, telegramID, classID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		UPDATE users
		SET role = 'moderator', is_verified = TRUE, class_id = $2
		WHERE telegram_id = $1
	`, telegramID, classID)
	return err
}

// DemoteModerator — отзыв прав: модератор снова родитель, привязка к классу остаётся.
func DemoteModerator(ctx context.Context, database *sql.DB, telegramID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		UPDATE users SET role = 'parent' WHERE telegram_id = $1 AND role = 'moderator'
	`, telegramID)
	return err
}

// ListManagerIDs — Telegram ID всех админов и модераторов: они получают
// уведомления о новых заявках.
func ListManagerIDs(ctx context.Context, database *sql.DB) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx,
		`SELECT telegram_id FROM users WHERE role IN ('admin', 'moderator') ORDER BY telegram_id`)
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

func ListModerators(ctx context.Context, database *sql.DB, classID int64) ([]models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE class_id = $1 AND role = 'moderator' ORDER BY full_name NULLS LAST`, classID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// ListClassMembers — пользователи класса: основная привязка или запись в parent_class_links.
func ListClassMembers(ctx context.Context, database *sql.DB, classID int64) ([]models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT DISTINCT `+prefixedUserColumns("u")+`
		FROM users u
		LEFT JOIN parent_class_links l ON l.user_id = u.id
		WHERE u.class_id = $1 OR l.class_id = $1
		ORDER BY u.full_name NULLS LAST
	`, classID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func prefixedUserColumns(alias string) string {
	return alias + ".id, " + alias + ".telegram_id, " + alias + ".username, " + alias + ".first_name, " +
		alias + ".last_name, " + alias + ".full_name, " + alias + ".phone, " + alias + ".role, " +
		alias + ".class_id, " + alias + ".is_verified, " + alias + ".created_at, " + alias + ".verified_at"
}
