package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_User_AdvanceOnVerify(t *testing.T) {
	t.Run("advances new user exactly once", func(t *testing.T) {
		u := User{AuthStatus: StatusNew}

		advanced := u.AdvanceOnVerify()

		require.True(t, advanced)
		require.Equal(t, StatusCodeVerified, u.AuthStatus)

		advanced = u.AdvanceOnVerify()
		assert.False(t, advanced, "repeated calls must be no-ops")
		assert.Equal(t, StatusCodeVerified, u.AuthStatus)
	})

	t.Run("never moves status backward", func(t *testing.T) {
		for _, status := range []AuthStatus{StatusCodeVerified, StatusDone} {
			u := User{AuthStatus: status}

			advanced := u.AdvanceOnVerify()

			assert.False(t, advanced)
			assert.Equal(t, status, u.AuthStatus)
		}
	})
}

func Test_User_Identity(t *testing.T) {
	phoneUser := User{AuthType: ViaPhone, Phone: "+998901234567", Email: ""}
	emailUser := User{AuthType: ViaEmail, Email: "user@example.com"}

	assert.Equal(t, "+998901234567", phoneUser.Identity())
	assert.Equal(t, "user@example.com", emailUser.Identity())
}

func Test_VerifyCode_Active(t *testing.T) {
	expiresAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	code := VerifyCode{Code: "4821", ExpiresAt: expiresAt}

	assert.True(t, code.Active(expiresAt.Add(-time.Second)))
	assert.True(t, code.Active(expiresAt), "code expiring at T is still valid at T")
	assert.False(t, code.Active(expiresAt.Add(time.Nanosecond)), "code expiring at T must fail after T")

	confirmed := VerifyCode{Code: "4821", ExpiresAt: expiresAt, IsConfirmed: true}
	assert.False(t, confirmed.Active(expiresAt.Add(-time.Minute)), "confirmed codes are never active")
}
