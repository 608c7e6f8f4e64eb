package credentials

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// MaxFailedLoginAttempts is the number of consecutive failures that
	// trigger a lockout.
	MaxFailedLoginAttempts = 5
	// LockoutDuration is how long an account stays locked after too many
	// failed attempts.
	LockoutDuration = 15 * time.Minute
	// ResetTokenTTL is how long a password reset secret stays usable.
	ResetTokenTTL = time.Hour
)

// User is the credential record. Reset token and its expiry are always set
// and cleared together.
type User struct {
	bun.BaseModel       `bun:"table:auth_users,alias:usr"`
	ID                  uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email               string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash        string     `bun:"password_hash,notnull" json:"-"`
	IsActive            bool       `bun:"is_active" json:"is_active"`
	IsVerified          bool       `bun:"is_verified" json:"is_verified"`
	FailedLoginAttempts int        `bun:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `bun:"locked_until,nullzero" json:"-"`
	VerificationToken   *string    `bun:"verification_token,nullzero" json:"-"`
	ResetToken          *string    `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExpires   *time.Time `bun:"reset_token_expires,nullzero" json:"-"`
	LastLogin           *time.Time `bun:"last_login,nullzero" json:"last_login,omitempty"`
	CreatedAt           *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt           *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// NewUser creates an active, unverified record with a fresh verification
// secret. The email is normalized on the way in.
func NewUser(email, passwordHash string) *User {
	now := time.Now()
	token := uuid.NewString()

	return &User{
		ID:                uuid.New(),
		Email:             NormalizeEmail(email),
		PasswordHash:      passwordHash,
		IsActive:          true,
		IsVerified:        false,
		VerificationToken: &token,
		CreatedAt:         &now,
		UpdatedAt:         &now,
	}
}

// NormalizeEmail lowers and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsLocked reports whether a lockout is set and still in the future.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return u.LockedUntil.After(time.Now())
}

// CanLogin reports whether the account may attempt a login at all. Callers
// check this before touching the password hash.
func (u *User) CanLogin() bool {
	return u.IsActive && !u.IsLocked()
}

// RecordFailedLogin increments the failure counter and, at the threshold,
// sets the lockout window.
func (u *User) RecordFailedLogin() {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLoginAttempts {
		until := time.Now().Add(LockoutDuration)
		u.LockedUntil = &until
	}
	u.touch()
}

// RecordSuccessfulLogin clears the failure counter and any lockout, and
// stamps last_login.
func (u *User) RecordSuccessfulLogin() {
	now := time.Now()
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLogin = &now
	u.touch()
}

// VerifyEmail marks the account verified and burns the verification secret.
func (u *User) VerifyEmail() {
	u.IsVerified = true
	u.VerificationToken = nil
	u.touch()
}

// GenerateResetToken replaces any pending reset secret with a fresh one.
// Requesting a reset twice invalidates the first secret.
func (u *User) GenerateResetToken() string {
	token := uuid.NewString()
	expires := time.Now().Add(ResetTokenTTL)
	u.ResetToken = &token
	u.ResetTokenExpires = &expires
	u.touch()
	return token
}

// IsResetTokenValid reports whether the given secret matches the pending one
// and has not expired.
func (u *User) IsResetTokenValid(token string) bool {
	if u.ResetToken == nil || u.ResetTokenExpires == nil {
		return false
	}
	if *u.ResetToken != token {
		return false
	}
	return u.ResetTokenExpires.After(time.Now())
}

// ClearResetToken drops the pending reset pair.
func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	u.touch()
}

// UpdatePassword replaces the hash and burns any pending reset secret, so a
// stale reset link cannot undo a newer password.
func (u *User) UpdatePassword(passwordHash string) {
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	u.touch()
}

func (u *User) touch() {
	now := time.Now()
	u.UpdatedAt = &now
}
