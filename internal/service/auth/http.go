package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/models"
)

const (
	defaultAccessHeaderName  = "Authorization"
	defaultAccessAuthScheme  = "Bearer"
	defaultRefreshCookieName = "refresh_token"
)

// SetTokens writes the refresh token as an http-only cookie
// The access token travels in the response body, clients send it back in the
// Authorization header
func (s *AuthService) SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    pair.Refresh.Value,
		Expires:  pair.Refresh.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetRefresh reads the refresh token from the request cookie
func (s *AuthService) GetRefresh(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil {
		return "", fmt.Errorf("refresh cookie not found. Err: %w", apperrors.ErrRefreshTokenNotFound)
	}
	return cookie.Value, nil
}

// Auth resolves the request to an authenticated user
// Any failure (missing header, bad scheme, invalid or expired token, deleted
// user) collapses to ErrUnauthorized for the caller
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	var user models.User

	header := r.Header.Get(s.accessHeaderName)
	if header == "" {
		return user, apperrors.ErrUnauthorized
	}

	scheme, access, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, s.accessAuthScheme) {
		return user, apperrors.ErrUnauthorized
	}

	claims, err := s.token.ParseAccess(ctx, access)
	if err != nil {
		return user, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	user, err = s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return user, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	return user, nil
}
