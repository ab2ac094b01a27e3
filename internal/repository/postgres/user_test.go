package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/models"
	"github.com/aliyevdev/accountd/internal/repository"
	"github.com/aliyevdev/accountd/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	phoneUser := repository.CreateUserParams{
		Phone:          "+998901234567",
		AuthType:       models.ViaPhone,
		HashedPassword: "hashed-pwd",
	}
	emailUser := repository.CreateUserParams{
		Email:          "user@example.com",
		AuthType:       models.ViaEmail,
		HashedPassword: "hashed-pwd",
	}

	t.Run("create phone user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			got, err := repo.CreateUser(t.Context(), phoneUser)

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, got.ID)
			require.Equal(t, "+998901234567", got.Phone)
			require.Empty(t, got.Email)
			require.Equal(t, models.ViaPhone, got.AuthType)
			require.Equal(t, models.StatusNew, got.AuthStatus, "created users start in new status")
			require.Equal(t, "hashed-pwd", got.HashedPassword)
		})
	})

	t.Run("create duplicate identity fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			_, err := repo.CreateUser(t.Context(), emailUser)
			require.NoError(t, err)

			_, err = repo.CreateUser(t.Context(), emailUser)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get by identity", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), phoneUser)
			require.NoError(t, err)

			got, err := repo.GetUserByIdentity(t.Context(), "+998901234567")

			require.NoError(t, err)
			require.Equal(t, created.ID, got.ID)

			_, err = repo.GetUserByIdentity(t.Context(), "+998000000000")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("get by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, err := repo.GetUserByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("partial update touches only set fields", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), phoneUser)
			require.NoError(t, err)

			firstName := "Bobur"
			username := "bobur"
			got, err := repo.UpdateUser(t.Context(), created.ID, repository.UpdateUserParams{
				FirstName: &firstName,
				Username:  &username,
			})

			require.NoError(t, err)
			require.Equal(t, "Bobur", got.FirstName)
			require.Equal(t, "bobur", got.Username)
			require.Equal(t, created.Phone, got.Phone, "unset fields must stay untouched")
			require.Equal(t, created.AuthStatus, got.AuthStatus)
		})
	})

	t.Run("update advances auth status", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), phoneUser)
			require.NoError(t, err)

			status := models.StatusCodeVerified
			got, err := repo.UpdateUser(t.Context(), created.ID, repository.UpdateUserParams{AuthStatus: &status})

			require.NoError(t, err)
			require.Equal(t, models.StatusCodeVerified, got.AuthStatus)
		})
	})

	t.Run("update missing user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			name := "nobody"
			_, err := repo.UpdateUser(t.Context(), uuid.New(), repository.UpdateUserParams{FirstName: &name})

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
