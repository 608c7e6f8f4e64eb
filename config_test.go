package credentials_test

import (
	"testing"

	"github.com/goliatone/go-credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewConfigDefaults(t *testing.T) {
	cfg := credentials.NewConfig(testSecret)

	assert.Equal(t, testSecret, cfg.GetSigningKey())
	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Equal(t, credentials.DefaultTokenTTL, cfg.GetTokenTTL())
	assert.Equal(t, credentials.DefaultTokenLookup, cfg.GetTokenLookup())
	assert.Equal(t, credentials.DefaultAuthScheme, cfg.GetAuthScheme())
	assert.Equal(t, credentials.DefaultContextKey, cfg.GetContextKey())
	assert.GreaterOrEqual(t, cfg.GetBcryptCost(), 4)
	assert.LessOrEqual(t, cfg.GetBcryptCost(), 31)

	assert.NoError(t, cfg.Validate())
}

func TestConfigRejectsShortSigningKey(t *testing.T) {
	cfg := credentials.NewConfig("too-short")

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, 400, credentials.HTTPStatus(err))
}

func TestConfigRejectsMissingSigningKey(t *testing.T) {
	cfg := credentials.NewConfig("")
	assert.Error(t, cfg.Validate())
}

func TestConfigRejectsBadTTL(t *testing.T) {
	cfg := credentials.NewConfig(testSecret)
	cfg.TokenTTL = 0
	assert.Error(t, cfg.Validate())

	cfg.TokenTTL = -1
	assert.Error(t, cfg.Validate())
}

func TestConfigRejectsBadBcryptCost(t *testing.T) {
	cfg := credentials.NewConfig(testSecret)
	cfg.BcryptCost = 3
	assert.Error(t, cfg.Validate())

	cfg.BcryptCost = 32
	assert.Error(t, cfg.Validate())

	cfg.BcryptCost = 12
	assert.NoError(t, cfg.Validate())
}

func TestConfigRejectsUnknownSigningMethod(t *testing.T) {
	cfg := credentials.NewConfig(testSecret)
	cfg.SigningMethod = "RS256"
	assert.Error(t, cfg.Validate())
}

func TestMustValidatePanics(t *testing.T) {
	cfg := credentials.NewConfig("nope")
	assert.Panics(t, func() {
		cfg.MustValidate()
	})
}
