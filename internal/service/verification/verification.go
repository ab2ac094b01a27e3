package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aliyevdev/accountd/internal/logger"
	"github.com/aliyevdev/accountd/internal/models"
	"github.com/aliyevdev/accountd/internal/notifier"
	"github.com/aliyevdev/accountd/internal/repository"
)

const (
	defaultCodeTTL      = 5 * time.Minute
	defaultCodeLength   = 4
	deliverySendTimeout = 15 * time.Second
)

type Config struct {
	// Verification code lifetime and length
	// If not set than default is used
	CodeTTL    time.Duration
	CodeLength int
}

// Service issues and confirms one-time verification codes and dispatches
// delivery to the channel notifiers
type Service struct {
	codeTTL    time.Duration
	codeLength int

	codeRepo repository.VerifyCodeRepo

	// Channel notifiers, delivery is best-effort
	sms    notifier.Notifier
	email  notifier.Notifier
	logger logger.Logger
}

func NewService(cfg Config, codeRepo repository.VerifyCodeRepo, sms notifier.Notifier, email notifier.Notifier, l logger.Logger) (*Service, error) {
	if codeRepo == nil {
		return nil, errors.New("code repo must not be nil")
	}

	if cfg.CodeTTL == 0 {
		cfg.CodeTTL = defaultCodeTTL
	}
	if cfg.CodeLength == 0 {
		cfg.CodeLength = defaultCodeLength
	}
	if sms == nil {
		sms = notifier.NoOp{}
	}
	if email == nil {
		email = notifier.NoOp{}
	}
	if l == nil {
		l = logger.NewNoOp()
	}

	return &Service{
		codeTTL:    cfg.CodeTTL,
		codeLength: cfg.CodeLength,
		codeRepo:   codeRepo,
		sms:        sms,
		email:      email,
		logger:     l,
	}, nil
}

// Issue generates a fresh code for the user and hands it to the channel
// notifier. Fails with apperrors.ErrCodeStillValid while an unconfirmed
// unexpired code exists (the resend throttle). The code row is committed
// before delivery starts: a lost SMS never rolls issuance back.
func (s *Service) Issue(ctx context.Context, user models.User) (models.VerifyCode, error) {
	var code models.VerifyCode

	value, err := generateCode(s.codeLength)
	if err != nil {
		return code, err
	}

	now := time.Now().Truncate(time.Second)
	code, err = s.codeRepo.CreateCode(ctx, models.VerifyCode{
		ID:        uuid.New(),
		UserID:    user.ID,
		Code:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTTL),
	})
	if err != nil {
		return code, fmt.Errorf("error while storing verification code. Err: %w", err)
	}

	s.deliver(user, code.Code)

	return code, nil
}

// Confirm marks the submitted code confirmed
// Fails with apperrors.ErrCodeInvalidOrExpired when nothing matches. What a
// confirmed code means for the user's auth status is the caller's business.
func (s *Service) Confirm(ctx context.Context, userID uuid.UUID, submitted string) error {
	return s.codeRepo.ConfirmCode(ctx, userID, submitted, time.Now())
}

// ActiveCode returns the user's current unconfirmed unexpired code
// Fails with apperrors.ErrCodeInvalidOrExpired when there is none
func (s *Service) ActiveCode(ctx context.Context, userID uuid.UUID) (models.VerifyCode, error) {
	return s.codeRepo.GetActiveCode(ctx, userID, time.Now())
}

// deliver dispatches the code on a detached goroutine
// Fire-and-forget: failures are logged and never surface to the caller
func (s *Service) deliver(user models.User, code string) {
	n := s.email
	if user.AuthType == models.ViaPhone {
		n = s.sms
	}

	destination := user.Identity()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliverySendTimeout)
		defer cancel()

		if err := n.Send(ctx, destination, code); err != nil {
			s.logger.Error("verification code delivery failed",
				"user_id", user.ID,
				"auth_type", user.AuthType,
				"error", err.Error(),
			)
		}
	}()
}
