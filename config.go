package credentials

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/crypto/bcrypt"
)

// Default values applied by NewConfig. The TTL is in seconds.
const (
	DefaultTokenTTL    = 3600
	DefaultTokenLookup = "header:Authorization"
	DefaultAuthScheme  = "Bearer"
	DefaultContextKey  = "user"
)

// MinSigningKeyLength is the minimum byte length accepted for the HMAC
// signing secret. Anything shorter is rejected at construction.
const MinSigningKeyLength = 32

// SimpleConfig is an immutable-after-validation Config implementation.
// Build one with NewConfig, adjust fields, then call Validate before use.
type SimpleConfig struct {
	SigningKey    string
	SigningMethod string
	ContextKey    string
	TokenTTL      int
	BcryptCost    int
	TokenLookup   string
	AuthScheme    string
	Issuer        string
	Audience      []string
}

// NewConfig returns a config populated with defaults for everything except
// the signing key, which has no safe default.
func NewConfig(signingKey string) *SimpleConfig {
	return &SimpleConfig{
		SigningKey:    signingKey,
		SigningMethod: "HS256",
		ContextKey:    DefaultContextKey,
		TokenTTL:      DefaultTokenTTL,
		BcryptCost:    passwordHashCost(),
		TokenLookup:   DefaultTokenLookup,
		AuthScheme:    DefaultAuthScheme,
	}
}

// Validate will run validation rules
func (c SimpleConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(
			&c.SigningKey,
			validation.Required,
			validation.Length(MinSigningKeyLength, 0),
		),
		validation.Field(
			&c.SigningMethod,
			validation.Required,
			validation.In("HS256"),
		),
		validation.Field(
			&c.TokenTTL,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(
			&c.BcryptCost,
			validation.Required,
			validation.Min(bcrypt.MinCost),
			validation.Max(bcrypt.MaxCost),
		),
	)
	if err != nil {
		return WrapValidation(err)
	}
	return nil
}

// MustValidate panics on an invalid config. Meant for wiring code that
// cannot continue with a broken secret.
func (c SimpleConfig) MustValidate() {
	if err := c.Validate(); err != nil {
		panic(err)
	}
}

func (c SimpleConfig) GetSigningKey() string    { return c.SigningKey }
func (c SimpleConfig) GetSigningMethod() string { return c.SigningMethod }
func (c SimpleConfig) GetContextKey() string    { return c.ContextKey }
func (c SimpleConfig) GetTokenTTL() int         { return c.TokenTTL }
func (c SimpleConfig) GetBcryptCost() int       { return c.BcryptCost }
func (c SimpleConfig) GetTokenLookup() string   { return c.TokenLookup }
func (c SimpleConfig) GetAuthScheme() string    { return c.AuthScheme }
func (c SimpleConfig) GetIssuer() string        { return c.Issuer }
func (c SimpleConfig) GetAudience() []string    { return c.Audience }

var _ Config = (*SimpleConfig)(nil)
