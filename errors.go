package credentials

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes attached to every error the package returns. Clients switch on
// these rather than on messages.
const (
	TextCodeUnauthorized       = "UNAUTHORIZED"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	TextCodeNotFound           = "NOT_FOUND"
	TextCodeValidation         = "VALIDATION_ERROR"
	TextCodePasswordHash       = "PASSWORD_HASH_ERROR"
	TextCodeDatabase           = "DATABASE_ERROR"
	TextCodeInternal           = "INTERNAL_ERROR"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
)

// ErrUnauthorized covers accounts that cannot log in: locked out or
// deactivated. The message stays generic so callers cannot tell which.
var ErrUnauthorized = errors.New("Unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidToken is returned for tokens that fail validation for any reason
// other than expiry: bad signature, wrong algorithm, garbage input, or a
// single-use secret that does not match any live record.
var ErrInvalidToken = errors.New("Invalid token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for structurally valid tokens past their expiry.
var ErrTokenExpired = errors.New("Token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials is the single outcome for a login that fails because
// of an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("Invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrUserAlreadyExists is returned when registering an email that is taken.
var ErrUserAlreadyExists = errors.New("User already exists", errors.CategoryConflict).
	WithTextCode(TextCodeUserAlreadyExists).
	WithCode(errors.CodeConflict)

// ErrUserNotFound covers lookups by id that miss. It never leaks through the
// login or reset-request paths; those collapse to generic outcomes first.
var ErrUserNotFound = errors.New("User not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrEmptyPassword rejects empty cleartext before it reaches bcrypt.
var ErrEmptyPassword = errors.New("Password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrPasswordHash wraps bcrypt failures other than a mismatch.
var ErrPasswordHash = errors.New("Password hashing failed", errors.CategoryInternal).
	WithTextCode(TextCodePasswordHash).
	WithCode(errors.CodeInternal)

// ErrDatabase wraps store failures. The message is deliberately generic;
// the wrapped cause stays available for logs.
var ErrDatabase = errors.New("Database error", errors.CategoryInternal).
	WithTextCode(TextCodeDatabase).
	WithCode(errors.CodeInternal)

// ErrMismatchedHashAndPassword is a sentinel for a bcrypt comparison miss, kept
// distinct from infrastructure failures so callers can count it as a failed
// attempt rather than an outage.
var ErrMismatchedHashAndPassword = errors.New("Password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// WrapValidation converts an ozzo validation error into the package taxonomy.
func WrapValidation(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryValidation, "Validation failed").
		WithTextCode(TextCodeValidation).
		WithCode(errors.CodeBadRequest)
}

// WrapDatabase tags a store failure while keeping the cause for logging.
func WrapDatabase(err error) *errors.Error {
	return errors.Wrap(err, ErrDatabase.Category, ErrDatabase.Message).
		WithTextCode(ErrDatabase.TextCode).
		WithCode(ErrDatabase.Code)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// HTTPStatus maps any error to a response status. Unknown errors are treated
// as internal so infrastructure detail never reaches the client.
func HTTPStatus(err error) int {
	if err == nil {
		return errors.CodeInternal
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return errors.CodeInternal
	}

	if richErr.Code != 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return errors.CodeUnauthorized
	case errors.CategoryConflict:
		return errors.CodeConflict
	case errors.CategoryNotFound:
		return errors.CodeNotFound
	case errors.CategoryValidation, errors.CategoryBadInput:
		return errors.CodeBadRequest
	default:
		return errors.CodeInternal
	}
}
