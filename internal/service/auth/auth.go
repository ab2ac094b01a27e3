package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/logger"
	"github.com/aliyevdev/accountd/internal/models"
	"github.com/aliyevdev/accountd/internal/repository"
	"github.com/aliyevdev/accountd/internal/service/auth/tokenmanager"
	"github.com/aliyevdev/accountd/internal/service/verification"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during registration or login
	// If not set than default bcrypt hasher is used
	Hasher PasswordHasher

	// HTTP names for token transport
	// If not set than default is used
	AccessHeaderName  string
	AccessAuthScheme  string
	RefreshCookieName string
}

// AuthService orchestrates the account use cases: it drives the auth status
// machine, delegates codes to the verification service and token pairs to
// the token manager
type AuthService struct {
	hasher PasswordHasher
	token  *tokenmanager.TokenManager
	users  repository.UserRepo
	codes  *verification.Service
	logger logger.Logger

	accessHeaderName  string
	accessAuthScheme  string
	refreshCookieName string
}

func NewService(cfg Config, token *tokenmanager.TokenManager, users repository.UserRepo, codes *verification.Service, l logger.Logger) (*AuthService, error) {
	if cfg.Hasher == nil {
		cfg.Hasher = DefaultHasher
	}
	if cfg.AccessHeaderName == "" {
		cfg.AccessHeaderName = defaultAccessHeaderName
	}
	if cfg.AccessAuthScheme == "" {
		cfg.AccessAuthScheme = defaultAccessAuthScheme
	}
	if cfg.RefreshCookieName == "" {
		cfg.RefreshCookieName = defaultRefreshCookieName
	}
	if l == nil {
		l = logger.NewNoOp()
	}

	return &AuthService{
		hasher:            cfg.Hasher,
		token:             token,
		users:             users,
		codes:             codes,
		logger:            l,
		accessHeaderName:  cfg.AccessHeaderName,
		accessAuthScheme:  cfg.AccessAuthScheme,
		refreshCookieName: cfg.RefreshCookieName,
	}, nil
}

type SignUpParams struct {
	// Exactly one of Email or Phone must be set (validated upstream)
	Email    string
	Phone    string
	Password string
}

// SignUp creates a user in new status and logs them in
// Code issuance is a separate explicit step (resend or forgot password flow),
// signup itself never issues one
func (s *AuthService) SignUp(ctx context.Context, arg SignUpParams) (models.User, models.TokenPair, error) {
	var user models.User
	var pair models.TokenPair

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return user, pair, fmt.Errorf("can't use this as password, error=%w", err)
	}

	authType := models.ViaEmail
	if arg.Phone != "" {
		authType = models.ViaPhone
	}

	user, err = s.users.CreateUser(ctx, repository.CreateUserParams{
		Email:          arg.Email,
		Phone:          arg.Phone,
		AuthType:       authType,
		HashedPassword: hash,
	})
	if err != nil {
		return user, pair, err
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, pair, nil
}

// Login with contact identity (email or phone) and password
func (s *AuthService) Login(ctx context.Context, identity string, password string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	// Ignore lookup error here: the failed compare below masks whether the
	// identity exists, callers always get the same error
	user, _ := s.users.GetUserByIdentity(ctx, identity)

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return user, pair, apperrors.ErrUserNotFound
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, pair, nil
}

// RefreshPair rotates the refresh token: the old one is spent atomically and
// a brand new pair is returned
func (s *AuthService) RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	token, err := s.token.UseRefresh(ctx, refresh)
	if err != nil {
		return pair, err
	}

	user, err := s.users.GetUserByID(ctx, token.UserID)
	if err != nil {
		return pair, err
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, nil
}

// Logout blacklists the refresh token permanently
// Access tokens issued earlier stay valid until their natural expiry
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	_, err := s.token.Revoke(ctx, refresh)
	return err
}

// Verify confirms the submitted code and advances the auth status machine
// when the user is still new. Returns the (possibly advanced) user and a
// fresh pair reflecting the status change.
func (s *AuthService) Verify(ctx context.Context, user models.User, code string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	if err := s.codes.Confirm(ctx, user.ID, code); err != nil {
		return user, pair, err
	}

	// The status machine itself decides whether there is anything to persist
	if user.AdvanceOnVerify() {
		updated, err := s.users.UpdateUser(ctx, user.ID, repository.UpdateUserParams{AuthStatus: &user.AuthStatus})
		if err != nil {
			return user, pair, err
		}
		user = updated
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, pair, nil
}

// ResendCode issues a fresh code for the user
// Supported for phone users only: the email resend path is deliberately not
// implemented, matching the behavior this service was ported from
func (s *AuthService) ResendCode(ctx context.Context, user models.User) error {
	if user.AuthType != models.ViaPhone {
		return apperrors.ErrChannelUnsupported
	}

	_, err := s.codes.Issue(ctx, user)
	return err
}

// ForgotPassword resolves the identity and starts the password reset flow.
// A code is issued for phone identities only (email identities get nothing,
// the call still succeeds). The returned pair is gated solely on knowledge
// of the identity: a known security tradeoff of the ported flow, kept as-is.
func (s *AuthService) ForgotPassword(ctx context.Context, identity string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.users.GetUserByIdentity(ctx, identity)
	if err != nil {
		return user, pair, err
	}

	if user.AuthType == models.ViaPhone {
		if _, err := s.codes.Issue(ctx, user); err != nil {
			// The flow succeeds regardless of issuance outcome, an
			// already active code keeps its window
			if !errors.Is(err, apperrors.ErrCodeStillValid) {
				return user, pair, err
			}
			s.logger.Warn("forgot password requested while code still active", "user_id", user.ID)
		}
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, pair, nil
}

// ResetPassword stores the new password and returns fresh credentials
// The user is looked up again after the update to guard against concurrent
// deletion
func (s *AuthService) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) (models.User, models.TokenPair, error) {
	var user models.User
	var pair models.TokenPair

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return user, pair, fmt.Errorf("can't use this as password, error=%w", err)
	}

	if _, err := s.users.UpdateUser(ctx, userID, repository.UpdateUserParams{HashedPassword: &hash}); err != nil {
		return user, pair, err
	}

	user, err = s.users.GetUserByID(ctx, userID)
	if err != nil {
		return user, pair, err
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, pair, nil
}

type ProfileUpdateParams struct {
	Username  *string
	FirstName *string
	LastName  *string
	Password  *string
}

// UpdateProfile applies a partial profile update
// The auth status is echoed back unchanged: profile completion logic that
// moves users to done status lives outside this service
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, arg ProfileUpdateParams) (models.User, error) {
	update := repository.UpdateUserParams{
		Username:  arg.Username,
		FirstName: arg.FirstName,
		LastName:  arg.LastName,
	}

	if arg.Password != nil {
		hash, err := s.hasher.Hash(*arg.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
		}
		update.HashedPassword = &hash
	}

	return s.users.UpdateUser(ctx, userID, update)
}

// UpdatePhoto stores the new photo reference
func (s *AuthService) UpdatePhoto(ctx context.Context, userID uuid.UUID, photoURL string) (models.User, error) {
	return s.users.UpdateUser(ctx, userID, repository.UpdateUserParams{PhotoURL: &photoURL})
}
