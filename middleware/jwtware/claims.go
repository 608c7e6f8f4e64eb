package jwtware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the session payload used by the built-in key validator. It holds
// the same wire shape as the credentials package claims.
type Claims struct {
	jwt.RegisteredClaims
	UserEmail string `json:"email,omitempty"`
}

func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

func (c *Claims) Email() string {
	return c.UserEmail
}

func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.RegisteredClaims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}

func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

var _ AuthClaims = (*Claims)(nil)

// keyfuncValidator is the fallback TokenValidator, built from whatever key
// material the config carries: a static key, a key set, or JWKS URLs.
type keyfuncValidator struct {
	keyFunc jwt.Keyfunc
}

func (v *keyfuncValidator) Validate(tokenString string) (AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}
