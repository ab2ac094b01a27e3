package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/models"
	"github.com/aliyevdev/accountd/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

// email, phone and username are nullable in the schema (partial unique
// indexes), the model carries them as plain strings
const userColumns = `id, created_at, COALESCE(username, ''), first_name, last_name,
COALESCE(email, ''), COALESCE(phone, ''), photo_url, auth_type, auth_status, password_hash`

const createUser = `-- name: CreateUser
INSERT INTO users (id, email, phone, auth_type, auth_status, password_hash)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		uuid.New(), arg.Email, arg.Phone, arg.AuthType, models.StatusNew, arg.HashedPassword,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: getUserByID
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByIdentity = `-- name: getUserByIdentity
SELECT ` + userColumns + `
FROM users
WHERE email = $1 OR phone = $1
`

func (r *UserRepo) GetUserByIdentity(ctx context.Context, identity string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByIdentity, identity)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const updateUser = `-- name: updateUser
UPDATE users
SET username      = COALESCE($2, username),
    first_name    = COALESCE($3, first_name),
    last_name     = COALESCE($4, last_name),
    photo_url     = COALESCE($5, photo_url),
    password_hash = COALESCE($6, password_hash),
    auth_status   = COALESCE($7, auth_status)
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateUser(ctx context.Context, userID uuid.UUID, arg repository.UpdateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateUser,
		userID,
		arg.Username,
		arg.FirstName,
		arg.LastName,
		arg.PhotoURL,
		arg.HashedPassword,
		(*string)(arg.AuthStatus),
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.Username, &u.FirstName, &u.LastName,
		&u.Email, &u.Phone, &u.PhotoURL, &u.AuthType, &u.AuthStatus, &u.HashedPassword,
	)
	return u, err
}
