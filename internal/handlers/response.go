package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/aliyevdev/accountd/internal/models"
)

// Common response shapes shared between handlers

type userResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	AuthType   string    `json:"auth_type"`
	AuthStatus string    `json:"auth_status"`
	CreatedAt  time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// The refresh token itself travels in the http-only cookie only, never in
// the body
type authResponse struct {
	User  userResponse  `json:"user"`
	Token tokenResponse `json:"token"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Phone:      u.Phone,
		PhotoURL:   u.PhotoURL,
		AuthType:   string(u.AuthType),
		AuthStatus: string(u.AuthStatus),
		CreatedAt:  u.CreatedAt,
	}
}

func newAuthResponse(u models.User, pair models.TokenPair) authResponse {
	return authResponse{
		User: newUserResponse(u),
		Token: tokenResponse{
			AccessToken: pair.Access.Value,
			ExpiresAt:   pair.Access.ExpiresAt,
		},
	}
}
