package credentials_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserDefaults(t *testing.T) {
	user := credentials.NewUser("  Pepe.Rone@Example.COM ", "hash")

	assert.Equal(t, "pepe.rone@example.com", user.Email)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)
	require.NotNil(t, user.VerificationToken)
	assert.NotEmpty(t, *user.VerificationToken)
	assert.True(t, user.CanLogin())
}

func TestRecordFailedLoginLocksAtThreshold(t *testing.T) {
	user := credentials.NewUser("pepe@example.com", "hash")

	for i := 0; i < credentials.MaxFailedLoginAttempts-1; i++ {
		user.RecordFailedLogin()
	}

	assert.Equal(t, credentials.MaxFailedLoginAttempts-1, user.FailedLoginAttempts)
	assert.False(t, user.IsLocked())
	assert.True(t, user.CanLogin())

	user.RecordFailedLogin()

	assert.Equal(t, credentials.MaxFailedLoginAttempts, user.FailedLoginAttempts)
	require.NotNil(t, user.LockedUntil)
	assert.True(t, user.IsLocked())
	assert.False(t, user.CanLogin())

	remaining := time.Until(*user.LockedUntil)
	assert.Greater(t, remaining, credentials.LockoutDuration-time.Minute)
	assert.LessOrEqual(t, remaining, credentials.LockoutDuration)
}

func TestLockoutExpires(t *testing.T) {
	user := credentials.NewUser("pepe@example.com", "hash")
	past := time.Now().Add(-time.Second)
	user.LockedUntil = &past

	assert.False(t, user.IsLocked())
	assert.True(t, user.CanLogin())
}

func TestInactiveAccountCannotLogin(t *testing.T) {
	user := credentials.NewUser("pepe@example.com", "hash")
	user.IsActive = false

	assert.False(t, user.IsLocked())
	assert.False(t, user.CanLogin())
}

func TestRecordSuccessfulLoginResetsCounters(t *testing.T) {
	user := credentials.NewUser("pepe@example.com", "hash")
	for i := 0; i < credentials.MaxFailedLoginAttempts; i++ {
		user.RecordFailedLogin()
	}
	require.True(t, user.IsLocked())

	user.RecordSuccessfulLogin()

	assert.Zero(t, user.FailedLoginAttempts)
	assert.Nil(t, user.LockedUntil)
	require.NotNil(t, user.LastLogin)
	assert.WithinDuration(t, time.Now(), *user.LastLogin, time.Second)
}

func TestVerifyEmailBurnsToken(t *testing.T) {
	user := credentials.NewUser("pepe@example.com", "hash")
	require.NotNil(t, user.VerificationToken)

	user.VerifyEmail()

	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationToken)
}

func TestGenerateResetTokenReplacesPending(t *testing.T) {
	user := credentials.NewUser("pepe@example.com", "hash")

	first := user.GenerateResetToken()
	second := user.GenerateResetToken()

	assert.NotEqual(t, first, second)
	assert.False(t, user.IsResetTokenValid(first))
	assert.True(t, user.IsResetTokenValid(second))
	require.NotNil(t, user.ResetTokenExpires)
	assert.WithinDuration(t, time.Now().Add(credentials.ResetTokenTTL), *user.ResetTokenExpires, time.Second)
}

func TestIsResetTokenValid(t *testing.T) {
	user := credentials.NewUser("pepe@example.com", "hash")

	assert.False(t, user.IsResetTokenValid("nope"), "no pending reset")

	token := user.GenerateResetToken()
	assert.True(t, user.IsResetTokenValid(token))
	assert.False(t, user.IsResetTokenValid("wrong-secret"))

	expired := time.Now().Add(-time.Second)
	user.ResetTokenExpires = &expired
	assert.False(t, user.IsResetTokenValid(token), "expired secret")
}

func TestUpdatePasswordClearsResetPair(t *testing.T) {
	user := credentials.NewUser("pepe@example.com", "hash")
	token := user.GenerateResetToken()

	user.UpdatePassword("new-hash")

	assert.Equal(t, "new-hash", user.PasswordHash)
	assert.Nil(t, user.ResetToken)
	assert.Nil(t, user.ResetTokenExpires)
	assert.False(t, user.IsResetTokenValid(token))
}

func TestClearResetToken(t *testing.T) {
	user := credentials.NewUser("pepe@example.com", "hash")
	user.GenerateResetToken()

	user.ClearResetToken()

	assert.Nil(t, user.ResetToken)
	assert.Nil(t, user.ResetTokenExpires)
}
