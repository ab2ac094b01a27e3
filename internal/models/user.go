package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthType marks which contact channel the user registered with
type AuthType string

const (
	ViaEmail AuthType = "via_email"
	ViaPhone AuthType = "via_phone"
)

// AuthStatus is the user's progress through the verification lifecycle.
// It only ever moves forward: New -> CodeVerified -> Done.
type AuthStatus string

const (
	StatusNew          AuthStatus = "new"
	StatusCodeVerified AuthStatus = "code_verified"
	StatusDone         AuthStatus = "done"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	PhotoURL       string
	AuthType       AuthType
	AuthStatus     AuthStatus
	HashedPassword string
}

// Identity returns the contact identity the user registered with
func (u *User) Identity() string {
	if u.AuthType == ViaPhone {
		return u.Phone
	}
	return u.Email
}

// AdvanceOnVerify moves the status forward after a successful code
// confirmation. Reports whether the status actually changed: only users in
// New status advance, repeated calls are no-ops.
func (u *User) AdvanceOnVerify() bool {
	if u.AuthStatus != StatusNew {
		return false
	}
	u.AuthStatus = StatusCodeVerified
	return true
}
