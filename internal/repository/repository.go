package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aliyevdev/accountd/internal/models"
)

type CreateUserParams struct {
	// Exactly one of Email or Phone must be set, matching AuthType
	Email          string
	Phone          string
	AuthType       models.AuthType
	HashedPassword string
}

// UpdateUserParams describes a partial user update
// Nil fields are left untouched
type UpdateUserParams struct {
	Username       *string
	FirstName      *string
	LastName       *string
	PhotoURL       *string
	HashedPassword *string
	AuthStatus     *models.AuthStatus
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with same identity exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or by contact identity (email or phone)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByIdentity(ctx context.Context, identity string) (models.User, error)

	// Apply partial update and return the fresh user row
	// If user not found must return apperrors.ErrUserNotFound
	UpdateUser(ctx context.Context, userID uuid.UUID, arg UpdateUserParams) (models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository and return the stored row
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the token even if it is expired, used or revoked
	// If the token not found must return apperrors.ErrRefreshTokenNotFound
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Mark token as used (refresh rotation)
	// Must be atomic per token value: exactly one concurrent caller wins,
	// the rest must get apperrors.ErrRefreshTokenIsUsed
	// Revoked tokens must return apperrors.ErrRefreshTokenRevoked
	GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Blacklist token permanently (logout)
	// Already revoked tokens must return apperrors.ErrRefreshTokenRevoked,
	// already used ones apperrors.ErrRefreshTokenIsUsed
	GetAndRevoke(ctx context.Context, tokenString string) (models.RefreshToken, error)
}

// VerifyCode repository interface
type VerifyCodeRepo interface {
	// Store a new code
	// Must serialize against concurrent callers for the same user: if an
	// unconfirmed unexpired code exists at code.CreatedAt it has to return
	// apperrors.ErrCodeStillValid
	CreateCode(ctx context.Context, code models.VerifyCode) (models.VerifyCode, error)

	// Mark all unconfirmed unexpired codes matching the submitted value as
	// confirmed. If nothing matches must return apperrors.ErrCodeInvalidOrExpired
	ConfirmCode(ctx context.Context, userID uuid.UUID, code string, at time.Time) error

	// Return the unconfirmed unexpired code for the user if one exists
	// If none must return apperrors.ErrCodeInvalidOrExpired
	GetActiveCode(ctx context.Context, userID uuid.UUID, at time.Time) (models.VerifyCode, error)

	// Remove codes that expired before the given moment
	// Cleanup only: correctness never depends on it, expired codes are
	// excluded from queries anyway
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
