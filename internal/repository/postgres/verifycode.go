package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/models"
)

type VerifyCodeRepo struct {
	DB DBTX
}

const verifyCodeColumns = `id, user_id, code, created_at, expires_at, is_confirmed`

// The check-then-insert below must be serialized per user, otherwise two
// concurrent issuers both pass the "no active code" check. A transaction
// scoped advisory lock keyed on the user id makes the second caller wait and
// observe the winner's row.
const lockUserCodes = `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`

const activeCodeExists = `-- name: activeCodeExists
SELECT EXISTS (
	SELECT 1 FROM verification_codes
	WHERE user_id = $1 AND NOT is_confirmed AND expires_at >= $2
)
`

const insertCode = `-- name: insertCode
INSERT INTO verification_codes (id, user_id, code, created_at, expires_at, is_confirmed)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + verifyCodeColumns

// Store a new code unless the user still has an active one
func (r *VerifyCodeRepo) CreateCode(ctx context.Context, code models.VerifyCode) (models.VerifyCode, error) {
	var saved models.VerifyCode

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return saved, fmt.Errorf("db tx error: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, lockUserCodes, code.UserID); err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, activeCodeExists, code.UserID, code.CreatedAt).Scan(&exists); err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	if exists {
		return saved, fmt.Errorf("repo error: %w", apperrors.ErrCodeStillValid)
	}

	rows, _ := tx.Query(ctx, insertCode,
		code.ID, code.UserID, code.Code, code.CreatedAt, code.ExpiresAt, code.IsConfirmed,
	)
	saved, err = pgx.CollectOneRow(rows, rowToVerifyCode)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return saved, fmt.Errorf("db tx error: %w", err)
	}

	return saved, nil
}

const confirmCode = `-- name: confirmCode
UPDATE verification_codes
SET is_confirmed = true
WHERE user_id = $1 AND code = $2 AND NOT is_confirmed AND expires_at >= $3
`

// Confirm every row matching the submitted code
// Updating all matching rows tolerates duplicate issuance, code values are
// still expected to be unique per active window
func (r *VerifyCodeRepo) ConfirmCode(ctx context.Context, userID uuid.UUID, code string, at time.Time) error {
	tag, err := r.DB.Exec(ctx, confirmCode, userID, code, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrCodeInvalidOrExpired)
	}

	return nil
}

const getActiveCode = `-- name: getActiveCode
SELECT ` + verifyCodeColumns + `
FROM verification_codes
WHERE user_id = $1 AND NOT is_confirmed AND expires_at >= $2
ORDER BY created_at DESC
LIMIT 1
`

func (r *VerifyCodeRepo) GetActiveCode(ctx context.Context, userID uuid.UUID, at time.Time) (models.VerifyCode, error) {
	rows, _ := r.DB.Query(ctx, getActiveCode, userID, at)
	code, err := pgx.CollectOneRow(rows, rowToVerifyCode)

	switch {
	case err == nil:
		return code, nil
	case errors.Is(err, pgx.ErrNoRows):
		return code, fmt.Errorf("repo error: %w", apperrors.ErrCodeInvalidOrExpired)
	default:
		return code, fmt.Errorf("db error: %w", err)
	}
}

const deleteExpired = `-- name: deleteExpiredCodes
DELETE FROM verification_codes
WHERE expires_at < $1
`

func (r *VerifyCodeRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpired, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToVerifyCode(row pgx.CollectableRow) (models.VerifyCode, error) {
	var c models.VerifyCode
	err := row.Scan(&c.ID, &c.UserID, &c.Code, &c.CreatedAt, &c.ExpiresAt, &c.IsConfirmed)
	return c, err
}
