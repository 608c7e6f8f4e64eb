package credentials_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-credentials"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterUser(t *testing.T) {
	repo := NewMockRepositoryManager()
	handler := credentials.NewRegisterUserHandler(repo, credentials.NewHasher(bcrypt.MinCost))

	repo.MockUsers().On("GetByEmailTx", mock.Anything, mock.Anything, "pepe@example.com").
		Return(nil, repository.NewRecordNotFound())
	repo.MockUsers().On("RegisterTx", mock.Anything, mock.Anything, mock.AnythingOfType("*credentials.User")).
		Return(nil, nil)

	var resp *credentials.RegisterUserResponse
	err := handler.Execute(context.Background(), credentials.RegisterUserMessage{
		Email:    "Pepe@Example.com",
		Password: "SuperSecret1!",
		OnResponse: func(r *credentials.RegisterUserResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, credentials.MsgUserRegistered, resp.Message)

	user := resp.User
	require.NotNil(t, user)
	assert.Equal(t, "pepe@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)
	require.NotNil(t, user.VerificationToken, "fresh accounts carry a verification secret")

	// Cleartext never lands on the record.
	assert.NotEqual(t, "SuperSecret1!", user.PasswordHash)
	assert.NoError(t, credentials.ComparePasswordAndHash("SuperSecret1!", user.PasswordHash))

	repo.MockUsers().AssertExpectations(t)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	repo := NewMockRepositoryManager()
	handler := credentials.NewRegisterUserHandler(repo, credentials.NewHasher(bcrypt.MinCost))

	existing := credentials.NewUser("pepe@example.com", "hash")
	repo.MockUsers().On("GetByEmailTx", mock.Anything, mock.Anything, "pepe@example.com").
		Return(existing, nil)

	err := handler.Execute(context.Background(), credentials.RegisterUserMessage{
		Email:    "pepe@example.com",
		Password: "SuperSecret1!",
	})

	assert.ErrorIs(t, err, credentials.ErrUserAlreadyExists)
	assert.Equal(t, 409, credentials.HTTPStatus(err))
	repo.MockUsers().AssertNotCalled(t, "RegisterTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterUserEmptyPassword(t *testing.T) {
	repo := NewMockRepositoryManager()
	handler := credentials.NewRegisterUserHandler(repo, credentials.NewHasher(bcrypt.MinCost))

	repo.MockUsers().On("GetByEmailTx", mock.Anything, mock.Anything, "pepe@example.com").
		Return(nil, repository.NewRecordNotFound())

	err := handler.Execute(context.Background(), credentials.RegisterUserMessage{
		Email: "pepe@example.com",
	})

	assert.ErrorIs(t, err, credentials.ErrEmptyPassword)
}

func TestRegisterUserCancelledContext(t *testing.T) {
	repo := NewMockRepositoryManager()
	handler := credentials.NewRegisterUserHandler(repo, credentials.NewHasher(bcrypt.MinCost))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := handler.Execute(ctx, credentials.RegisterUserMessage{
		Email:    "pepe@example.com",
		Password: "SuperSecret1!",
	})

	require.Error(t, err)
}

func TestRegisterUserDeterministicID(t *testing.T) {
	repo := NewMockRepositoryManager()
	handler := credentials.NewRegisterUserHandler(repo, credentials.NewHasher(bcrypt.MinCost))

	repo.MockUsers().On("GetByEmailTx", mock.Anything, mock.Anything, "pepe@example.com").
		Return(nil, repository.NewRecordNotFound())
	repo.MockUsers().On("RegisterTx", mock.Anything, mock.Anything, mock.AnythingOfType("*credentials.User")).
		Return(nil, nil)

	var first, second *credentials.RegisterUserResponse
	require.NoError(t, handler.Execute(context.Background(), credentials.RegisterUserMessage{
		Email:      "pepe@example.com",
		Password:   "SuperSecret1!",
		UseHashid:  true,
		OnResponse: func(r *credentials.RegisterUserResponse) { first = r },
	}))
	require.NoError(t, handler.Execute(context.Background(), credentials.RegisterUserMessage{
		Email:      "pepe@example.com",
		Password:   "SuperSecret1!",
		UseHashid:  true,
		OnResponse: func(r *credentials.RegisterUserResponse) { second = r },
	}))

	assert.Equal(t, first.User.ID, second.User.ID, "hashid ids derive from the email")
}
