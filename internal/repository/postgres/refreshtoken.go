package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveToken = `-- name: saveRefreshToken
INSERT INTO refresh_tokens (id, user_id, token, created_at, expires_at, used_at, revoked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, token, created_at, expires_at, used_at, revoked_at
`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, saveToken,
		token.ID, token.UserID, token.Token, token.CreatedAt, token.ExpiresAt, token.UsedAt, token.RevokedAt,
	)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

const getToken = `-- name: getRefreshToken
SELECT id, user_id, token, created_at, expires_at, used_at, revoked_at
FROM refresh_tokens
WHERE token = $1
`

// Get token
// It returns the row even if the token expired, used or revoked already
func (r *RefreshTokenRepo) Get(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, tokenString)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const markTokenUsed = `-- name: markTokenUsedIfNotUsed
UPDATE refresh_tokens
SET used_at = COALESCE(used_at, $2)
WHERE token = $1
RETURNING id, user_id, token, created_at, expires_at, used_at, revoked_at, used_at = $2 AS won
`

// Mark token as used (refresh rotation)
// COALESCE keeps the first used_at forever, so of two concurrent callers
// exactly one wins. The winner is decided in SQL: a timestamptz round trip
// truncates time.Now() to microseconds, so comparing the scanned value in Go
// would miss it.
func (r *RefreshTokenRepo) GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, markTokenUsed, tokenString, time.Now())
	claimed, err := pgx.CollectOneRow(rows, rowToClaimedToken)
	token := claimed.RefreshToken

	switch {
	case err == nil && token.RevokedAt != nil:
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenRevoked)
	case err == nil && claimed.Won:
		return token, nil
	case err == nil: // somebody else's timestamp in used_at, the token was spent earlier
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenIsUsed)
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const revokeToken = `-- name: revokeTokenIfNotRevoked
UPDATE refresh_tokens
SET revoked_at = COALESCE(revoked_at, $2)
WHERE token = $1
RETURNING id, user_id, token, created_at, expires_at, used_at, revoked_at, revoked_at = $2 AS won
`

// Blacklist token permanently
// A revoked token is never reactivated: revoked_at is written once and kept.
// Same SQL-side winner check as GetAndMarkUsed.
func (r *RefreshTokenRepo) GetAndRevoke(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, revokeToken, tokenString, time.Now())
	claimed, err := pgx.CollectOneRow(rows, rowToClaimedToken)
	token := claimed.RefreshToken

	switch {
	case err == nil && !claimed.Won:
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenRevoked)
	case err == nil && token.UsedAt != nil:
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenIsUsed)
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.UsedAt, &t.RevokedAt)
	return t, err
}

// Row of the claiming UPDATEs: the token plus whether this call's timestamp
// is the one that got stored
type claimedToken struct {
	models.RefreshToken
	Won bool
}

func rowToClaimedToken(row pgx.CollectableRow) (claimedToken, error) {
	var t claimedToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.UsedAt, &t.RevokedAt, &t.Won)
	return t, err
}
