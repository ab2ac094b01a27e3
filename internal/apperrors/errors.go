package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenRevoked  = errors.New("refresh token is revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrCodeInvalidOrExpired = errors.New("verification code is invalid or expired")
	ErrCodeStillValid       = errors.New("active verification code exists already")
	ErrChannelUnsupported   = errors.New("verification channel is not supported")

	ErrUnauthorized = errors.New("authentication required")
)
