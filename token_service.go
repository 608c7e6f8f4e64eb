package credentials

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	tokenTTL   int
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService creates a new TokenService instance. tokenTTL is in seconds.
func NewTokenService(signingKey []byte, tokenTTL int, issuer string, audience jwt.ClaimStrings, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}
}

// Issue mints a signed token for the given account.
func (ts *TokenServiceImpl) Issue(userID uuid.UUID, email string) (string, error) {
	now := time.Now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   userID.String(),
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenTTL) * time.Second)),
		},
		UserEmail: email,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *SessionClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Expiry surfaces as ErrTokenExpired; every other failure wraps
// ErrInvalidToken so callers never learn why a token was rejected.
func (ts *TokenServiceImpl) Validate(tokenString string) (*SessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrInvalidToken.Category, ErrInvalidToken.Message).
			WithTextCode(ErrInvalidToken.TextCode).
			WithCode(ErrInvalidToken.Code)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrInvalidToken
}
