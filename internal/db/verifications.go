package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"classbot/internal/ctxutil"
	"classbot/internal/models"
)

const verificationColumns = `id, telegram_id, full_name, phone, class_id, status, created_at, processed_at, processed_by`

func scanVerification(row interface{ Scan(...any) error }) (*models.Verification, error) {
	var v models.Verification
	err := row.Scan(&v.ID, &v.TelegramID, &v.FullName, &v.Phone, &v.ClassID,
		&v.Status, &v.CreatedAt, &v.ProcessedAt, &v.ProcessedBy)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreatePendingVerification — подача заявки. Частичный уникальный индекс гарантирует
// не больше одной ожидающей заявки на пару (пользователь, класс); повтор возвращает nil.
func CreatePendingVerification(ctx context.Context, database *sql.DB, telegramID int64, fullName, phone string, classID int64) (*models.Verification, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx, `
		INSERT INTO parent_verifications (telegram_id, full_name, phone, class_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id, class_id) WHERE status = 'pending' DO NOTHING
		RETURNING `+verificationColumns,
		telegramID, fullName, phone, classID)
	v, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func GetVerification(ctx context.Context, database *sql.DB, id int64) (*models.Verification, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx,
		`SELECT `+verificationColumns+` FROM parent_verifications WHERE id = $1`, id)
	v, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// ListPendingForClass — ожидающие заявки класса, включая старые без выбранного класса.
func ListPendingForClass(ctx context.Context, database *sql.DB, classID int64) ([]models.Verification, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT `+verificationColumns+` FROM parent_verifications
		WHERE status = 'pending' AND (class_id = $1 OR class_id IS NULL)
		ORDER BY created_at
	`, classID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// ApproveVerification — одобрение заявки одной транзакцией: заявка переводится из pending,
// пользователь становится верифицированным родителем класса, заводится привязка.
// Повторное одобрение возвращает false без побочных эффектов.
func ApproveVerification(ctx context.Context, database *sql.DB, verificationID, processedBy int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		UPDATE parent_verifications
		SET status = 'approved', processed_at = now(), processed_by = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING telegram_id, class_id
	`, verificationID, processedBy)
	var telegramID int64
	var classID sql.NullInt64
	if err := row.Scan(&telegramID, &classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	var userID int64
	err = tx.QueryRowContext(ctx, `
		UPDATE users
		SET role = CASE WHEN role = 'unverified' THEN 'parent' ELSE role END,
		    is_verified = TRUE,
		    verified_at = COALESCE(verified_at, now()),
		    class_id = COALESCE(class_id, $2)
		WHERE telegram_id = $1
		RETURNING id
	`, telegramID, classID).Scan(&userID)
	if err != nil {
		return false, fmt.Errorf("approve: update user: %w", err)
	}

	if classID.Valid {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO parent_class_links (user_id, class_id) VALUES ($1, $2)
			ON CONFLICT (user_id, class_id) DO NOTHING
		`, userID, classID.Int64)
		if err != nil {
			return false, fmt.Errorf("approve: ensure link: %w", err)
		}
	}

	return true, tx.Commit()
}

// RejectVerification — отклонение; уже обработанная заявка возвращает false.
func RejectVerification(ctx context.Context, database *sql.DB, verificationID, processedBy int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE parent_verifications
		SET status = 'rejected', processed_at = now(), processed_by = $2
		WHERE id = $1 AND status = 'pending'
	`, verificationID, processedBy)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func CountPendingVerifications(ctx context.Context, database *sql.DB) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parent_verifications WHERE status = 'pending'`).Scan(&n)
	return n, err
}
