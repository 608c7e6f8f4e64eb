package credentials

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type Auther struct {
	repo         RepositoryManager
	signingKey   []byte
	tokenTTL     int
	issuer       string
	audience     []string
	hasher       PasswordAuthenticator
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenTTL(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		repo:         repo,
		signingKey:   []byte(opts.GetSigningKey()),
		tokenTTL:     opts.GetTokenTTL(),
		issuer:       opts.GetIssuer(),
		audience:     opts.GetAudience(),
		hasher:       NewHasher(opts.GetBcryptCost()),
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	// Update the TokenService logger as well
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenTTL,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// WithTokenService sets a custom token service, e.g. one backed by an
// external key set.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	s.tokenService = ts
	return s
}

// WithHasher sets a custom password hasher.
func (s *Auther) WithHasher(hasher PasswordAuthenticator) *Auther {
	s.hasher = hasher
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login authenticates an email and password pair. An unknown email and a
// wrong password produce the same error; a locked or inactive account is
// rejected before the password is ever compared.
func (s *Auther) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Debug("Login miss for unknown email")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login user lookup failed", "error", err)
		return nil, WrapDatabase(err)
	}

	if !user.CanLogin() {
		s.logger.Warn("Login blocked", "user_id", user.ID, "locked", user.IsLocked())
		return nil, ErrUnauthorized
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if !errors.Is(err, ErrMismatchedHashAndPassword) {
			s.logger.Error("Login password comparison failed", "error", err)
			return nil, err
		}

		user.RecordFailedLogin()
		// The counter write is part of the lockout guarantee; losing it
		// silently would let an attacker keep the counter at zero.
		if terr := s.repo.Users().TrackAttemptedLogin(ctx, user); terr != nil {
			s.logger.Error("Login failed to track attempt", "error", terr)
			return nil, WrapDatabase(terr)
		}

		return nil, ErrInvalidCredentials
	}

	user.RecordSuccessfulLogin()
	if err := s.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		s.logger.Error("Login failed to track success", "error", err)
		return nil, WrapDatabase(err)
	}

	return s.respond(user)
}

// RefreshToken mints a fresh token for an authenticated account. The account
// state is re-checked so a lockout or deactivation cuts the session chain.
func (s *Auther) RefreshToken(ctx context.Context, userID uuid.UUID) (*AuthResponse, error) {
	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("RefreshToken user lookup failed", "error", err)
		return nil, WrapDatabase(err)
	}

	if !user.CanLogin() {
		s.logger.Warn("RefreshToken blocked", "user_id", user.ID, "locked", user.IsLocked())
		return nil, ErrUnauthorized
	}

	return s.respond(user)
}

// UserInfo returns the credential record for an authenticated account.
func (s *Auther) UserInfo(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("UserInfo user lookup failed", "error", err)
		return nil, WrapDatabase(err)
	}

	return user, nil
}

func (s Auther) SessionFromToken(raw string) (*SessionClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

func (s *Auther) respond(user *User) (*AuthResponse, error) {
	token, err := s.tokenService.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Token issuing failed", "error", err)
		return nil, err
	}

	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokenTTL,
		User:        user,
	}, nil
}

var _ Authenticator = (*Auther)(nil)
