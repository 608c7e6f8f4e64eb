package credentials

import (
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a configured cost and a bounded number of
// concurrent hashing operations, so a burst of logins cannot pin every core
// on key stretching.
type Hasher struct {
	cost int
	sem  chan struct{}
}

// NewHasher returns a Hasher with the given cost. Costs outside the bcrypt
// range fall back to the package default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = passwordHashCost()
	}

	slots := runtime.GOMAXPROCS(0)
	if slots < 1 {
		slots = 1
	}

	return &Hasher{
		cost: cost,
		sem:  make(chan struct{}, slots),
	}
}

// HashPassword will generate a password hash
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	h.sem <- struct{}{}
	defer func() { <-h.sem }()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", ErrPasswordHash
	}
	return string(hash), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func (h *Hasher) ComparePasswordAndHash(password, hash string) error {
	h.sem <- struct{}{}
	defer func() { <-h.sem }()

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return ErrPasswordHash
	}
	return nil
}

var _ PasswordAuthenticator = (*Hasher)(nil)

// HashPassword will generate a password hash at the default cost
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	if err != nil {
		return "", ErrPasswordHash
	}
	return string(hash), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return ErrPasswordHash
	}
	return nil
}
