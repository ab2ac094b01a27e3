package verification

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/models"
	"github.com/aliyevdev/accountd/internal/repository"
	"github.com/aliyevdev/accountd/internal/repository/postgres"
	"github.com/aliyevdev/accountd/internal/testutil"
)

// recordNotifier captures delivered codes for assertions
type recordNotifier struct {
	mu    sync.Mutex
	sent  []string
	dests []string
	done  chan struct{}
}

func newRecordNotifier() *recordNotifier {
	return &recordNotifier{done: make(chan struct{}, 16)}
}

func (n *recordNotifier) Send(ctx context.Context, destination string, code string) error {
	n.mu.Lock()
	n.sent = append(n.sent, code)
	n.dests = append(n.dests, destination)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

func (n *recordNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(time.Second):
		t.Fatal("notifier was not called")
	}
}

func Test_Generate(t *testing.T) {
	t.Parallel()

	for _, length := range []int{4, 6, 8} {
		code, err := generateCode(length)

		require.NoError(t, err)
		require.Len(t, code, length)
		_, err = strconv.Atoi(code)
		require.NoError(t, err, "code must be numeric, got %q", code)
	}
}

func Test_VerificationService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withTx := func(dbpool *pgxpool.Pool, t *testing.T, cfg Config, fn func(s *Service, sms *recordNotifier, email *recordNotifier, user models.User)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			userRepo := postgres.UserRepo{DB: tx}
			user, err := userRepo.CreateUser(t.Context(), repository.CreateUserParams{
				Phone:          "+998901234567",
				AuthType:       models.ViaPhone,
				HashedPassword: "hashed-pwd",
			})
			require.NoError(t, err)

			sms, email := newRecordNotifier(), newRecordNotifier()
			s, err := NewService(cfg, &postgres.VerifyCodeRepo{DB: tx}, sms, email, nil)
			require.NoError(t, err, "verification service should be created without errors")

			fn(s, sms, email, user)
		})
	}

	t.Run("new defaults", func(t *testing.T) {
		s, err := NewService(Config{}, &postgres.VerifyCodeRepo{}, nil, nil, nil)
		require.NoError(t, err)

		require.Equal(t, defaultCodeTTL, s.codeTTL)
		require.Equal(t, defaultCodeLength, s.codeLength)
	})

	t.Run("new requires repo", func(t *testing.T) {
		_, err := NewService(Config{}, nil, nil, nil, nil)
		require.Error(t, err)
	})

	t.Run("Issue", func(t *testing.T) {
		t.Run("issues and delivers to phone", func(t *testing.T) {
			withTx(pg.Pool, t, Config{}, func(s *Service, sms *recordNotifier, email *recordNotifier, user models.User) {
				code, err := s.Issue(t.Context(), user)

				require.NoError(t, err)
				require.Len(t, code.Code, defaultCodeLength)
				require.WithinDuration(t, time.Now().Add(defaultCodeTTL), code.ExpiresAt, 2*time.Second)

				sms.wait(t)
				assert.Equal(t, []string{code.Code}, sms.sent)
				assert.Equal(t, []string{"+998901234567"}, sms.dests)
				assert.Empty(t, email.sent, "phone users must not get email")
			})
		})

		t.Run("delivers to email for email users", func(t *testing.T) {
			withTx(pg.Pool, t, Config{}, func(s *Service, sms *recordNotifier, email *recordNotifier, user models.User) {
				emailUser := user
				emailUser.AuthType = models.ViaEmail
				emailUser.Email = "user@example.com"

				code, err := s.Issue(t.Context(), emailUser)

				require.NoError(t, err)
				email.wait(t)
				assert.Equal(t, []string{code.Code}, email.sent)
				assert.Equal(t, []string{"user@example.com"}, email.dests)
			})
		})

		t.Run("second issue hits throttle", func(t *testing.T) {
			withTx(pg.Pool, t, Config{}, func(s *Service, sms *recordNotifier, email *recordNotifier, user models.User) {
				_, err := s.Issue(t.Context(), user)
				require.NoError(t, err)

				_, err = s.Issue(t.Context(), user)

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrCodeStillValid)
			})
		})
	})

	t.Run("Confirm", func(t *testing.T) {
		t.Run("confirm ok", func(t *testing.T) {
			withTx(pg.Pool, t, Config{}, func(s *Service, sms *recordNotifier, email *recordNotifier, user models.User) {
				code, err := s.Issue(t.Context(), user)
				require.NoError(t, err)

				err = s.Confirm(t.Context(), user.ID, code.Code)

				require.NoError(t, err)

				_, err = s.ActiveCode(t.Context(), user.ID)
				assert.ErrorIs(t, err, apperrors.ErrCodeInvalidOrExpired, "confirmed code must not stay active")
			})
		})

		t.Run("confirm twice fails", func(t *testing.T) {
			withTx(pg.Pool, t, Config{}, func(s *Service, sms *recordNotifier, email *recordNotifier, user models.User) {
				code, err := s.Issue(t.Context(), user)
				require.NoError(t, err)

				err = s.Confirm(t.Context(), user.ID, code.Code)
				require.NoError(t, err)

				err = s.Confirm(t.Context(), user.ID, code.Code)
				require.ErrorIs(t, err, apperrors.ErrCodeInvalidOrExpired, "codes confirm exactly once")
			})
		})

		t.Run("wrong code fails", func(t *testing.T) {
			withTx(pg.Pool, t, Config{}, func(s *Service, sms *recordNotifier, email *recordNotifier, user models.User) {
				_, err := s.Issue(t.Context(), user)
				require.NoError(t, err)

				err = s.Confirm(t.Context(), user.ID, "bad-code")

				require.ErrorIs(t, err, apperrors.ErrCodeInvalidOrExpired)
			})
		})
	})

	t.Run("concurrent issue single winner", func(t *testing.T) {
		// Straight on the pool, no wrapping test transaction: the advisory
		// lock serializes issuers across connections and that is exactly
		// what's under test here
		userRepo := postgres.UserRepo{DB: pg.Pool}
		user, err := userRepo.CreateUser(t.Context(), repository.CreateUserParams{
			Phone:          "+998909999999",
			AuthType:       models.ViaPhone,
			HashedPassword: "hashed-pwd",
		})
		require.NoError(t, err)

		s, err := NewService(Config{}, &postgres.VerifyCodeRepo{DB: pg.Pool}, nil, nil, nil)
		require.NoError(t, err)

		const issuers = 8
		results := make(chan error, issuers)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < issuers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := s.Issue(t.Context(), user)
				results <- err
			}()
		}
		close(start)
		wg.Wait()
		close(results)

		won, throttled := 0, 0
		for err := range results {
			switch {
			case err == nil:
				won++
			case errors.Is(err, apperrors.ErrCodeStillValid):
				throttled++
			default:
				t.Fatalf("unexpected issue error: %v", err)
			}
		}
		require.Equal(t, 1, won, "exactly one concurrent issuer must win")
		require.Equal(t, issuers-1, throttled, "the rest must hit the active code")
	})
}
