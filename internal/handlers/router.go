package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/aliyevdev/accountd/internal/handlers/middleware"
	"github.com/aliyevdev/accountd/internal/logger"
	"github.com/aliyevdev/accountd/internal/models"
	"github.com/aliyevdev/accountd/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(authService authService, logger logger.Logger) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	apiauth := http.NewServeMux()

	apiauth.Handle("POST /signup", handleSignUp(authService, logger))
	apiauth.Handle("POST /login", handleLogin(authService, logger))
	apiauth.Handle("POST /refresh", handleTokenRefresh(authService, logger))
	apiauth.Handle("POST /logout", handleLogout(authService, logger))

	apiauth.Handle("POST /verify", withAuth(handleVerify(authService, logger)))
	apiauth.Handle("GET /verify/resend", withAuth(handleResendCode(authService, logger)))

	apiauth.Handle("POST /password/forgot", handleForgotPassword(authService, logger))
	apiauth.Handle("PATCH /password/reset", withAuth(handleResetPassword(authService, logger)))

	apiuser := http.NewServeMux()

	apiuser.Handle("GET /me", withAuth(handleUserMe()))
	apiuser.Handle("PATCH /profile", withAuth(handleUpdateProfile(authService, logger)))
	apiuser.Handle("PUT /photo", withAuth(handleUpdatePhoto(authService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))
	root.Handle("/api/user/", http.StripPrefix("/api/user", apiuser))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user with a contact identity (email or phone) and password
	// Has to return apperrors.ErrUserAlreadyExists if the identity is taken
	SignUp(ctx context.Context, arg auth.SignUpParams) (models.User, models.TokenPair, error)

	// Login user with contact identity and password
	// Has to return apperrors.ErrUserNotFound if credentials don't match
	Login(ctx context.Context, identity string, password string) (models.User, models.TokenPair, error)

	// Rotate the refresh token and return a fresh pair
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error)

	// Blacklist the refresh token permanently
	Logout(ctx context.Context, refresh string) error

	// Confirm the verification code and advance the user's auth status
	Verify(ctx context.Context, user models.User, code string) (models.User, models.TokenPair, error)

	// Issue a fresh verification code for the user
	ResendCode(ctx context.Context, user models.User) error

	// Start the password reset flow for the contact identity
	ForgotPassword(ctx context.Context, identity string) (models.User, models.TokenPair, error)

	// Store the new password and return fresh credentials
	ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) (models.User, models.TokenPair, error)

	// Partial profile update, nil fields are left untouched
	UpdateProfile(ctx context.Context, userID uuid.UUID, arg auth.ProfileUpdateParams) (models.User, error)

	// Store the new photo reference
	UpdatePhoto(ctx context.Context, userID uuid.UUID, photoURL string) (models.User, error)

	// Set auth tokens (access, refresh) to response
	SetTokens(w http.ResponseWriter, pair models.TokenPair)

	// Get refresh token from request
	GetRefresh(r *http.Request) (string, error)

	// Get request and return user if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}
