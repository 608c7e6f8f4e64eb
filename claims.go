package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the token payload: registered claims plus the account
// email. The subject carries the user id.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserEmail string `json:"email,omitempty"`
}

// Subject returns the subject claim
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Email returns the email claim
func (c *SessionClaims) Email() string {
	return c.UserEmail
}

// UserID parses the subject claim as a record id.
func (c *SessionClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.RegisteredClaims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
