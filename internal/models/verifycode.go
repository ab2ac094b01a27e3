package models

import (
	"time"

	"github.com/google/uuid"
)

// VerifyCode is a one-time code delivered out-of-band to prove ownership of
// the user's contact channel
type VerifyCode struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Code        string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	IsConfirmed bool
}

// Active reports whether the code may still be confirmed at the given moment.
// Expiry is strict: a code expiring at T is not active at T+1ns.
func (c *VerifyCode) Active(at time.Time) bool {
	return !c.IsConfirmed && !c.ExpiresAt.Before(at)
}
