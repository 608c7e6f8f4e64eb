package credentials_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-credentials"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockAuthenticator implements credentials.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*credentials.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*credentials.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthenticator) RefreshToken(ctx context.Context, userID uuid.UUID) (*credentials.AuthResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*credentials.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthenticator) UserInfo(ctx context.Context, userID uuid.UUID) (*credentials.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*credentials.User)
	return user, args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (*credentials.SessionClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*credentials.SessionClaims)
	return claims, args.Error(1)
}

// MockRepositoryManager implements credentials.RepositoryManager. RunInTx
// invokes the closure with a zero transaction so handlers run end to end.
type MockRepositoryManager struct {
	mock.Mock
	users *MockUsers
}

func NewMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{
		users: &MockUsers{},
	}
}

func (m *MockRepositoryManager) Validate() error {
	return nil
}

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return f(ctx, bun.Tx{})
	}
}

func (m *MockRepositoryManager) Users() credentials.Users {
	return m.users
}

func (m *MockRepositoryManager) MockUsers() *MockUsers {
	return m.users
}

// MockUsers implements credentials.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*credentials.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*credentials.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*credentials.User, error) {
	args := m.Called(ctx, tx, email)
	user, _ := args.Get(0).(*credentials.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id uuid.UUID) (*credentials.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*credentials.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*credentials.User, error) {
	args := m.Called(ctx, tx, id)
	user, _ := args.Get(0).(*credentials.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByVerificationToken(ctx context.Context, token string) (*credentials.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*credentials.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*credentials.User, error) {
	args := m.Called(ctx, tx, token)
	user, _ := args.Get(0).(*credentials.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByResetToken(ctx context.Context, token string) (*credentials.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*credentials.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*credentials.User, error) {
	args := m.Called(ctx, tx, token)
	user, _ := args.Get(0).(*credentials.User)
	return user, args.Error(1)
}

func (m *MockUsers) Register(ctx context.Context, user *credentials.User) (*credentials.User, error) {
	args := m.Called(ctx, user)
	record, _ := args.Get(0).(*credentials.User)
	if record == nil && args.Error(1) == nil {
		record = user
	}
	return record, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *credentials.User) (*credentials.User, error) {
	args := m.Called(ctx, tx, user)
	record, _ := args.Get(0).(*credentials.User)
	if record == nil && args.Error(1) == nil {
		record = user
	}
	return record, args.Error(1)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *credentials.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *credentials.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *credentials.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *credentials.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) SaveVerification(ctx context.Context, user *credentials.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) SaveVerificationTx(ctx context.Context, tx bun.IDB, user *credentials.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) SaveResetToken(ctx context.Context, user *credentials.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) SaveResetTokenTx(ctx context.Context, tx bun.IDB, user *credentials.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) SavePassword(ctx context.Context, user *credentials.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) SavePasswordTx(ctx context.Context, tx bun.IDB, user *credentials.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

// MockTokenService implements credentials.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(userID uuid.UUID, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(token string) (*credentials.SessionClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*credentials.SessionClaims)
	return claims, args.Error(1)
}

// recordingHasher wraps the real hasher and counts comparisons, so tests can
// prove the password path was never reached.
type recordingHasher struct {
	inner    credentials.PasswordAuthenticator
	compares int
}

func (r *recordingHasher) HashPassword(password string) (string, error) {
	return r.inner.HashPassword(password)
}

func (r *recordingHasher) ComparePasswordAndHash(password, hash string) error {
	r.compares++
	return r.inner.ComparePasswordAndHash(password, hash)
}
