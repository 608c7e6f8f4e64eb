package credentials_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-credentials"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVerifyEmail(t *testing.T) {
	repo := NewMockRepositoryManager()
	handler := credentials.NewVerifyEmailHandler(repo)

	user := credentials.NewUser("pepe@example.com", "hash")
	token := *user.VerificationToken

	repo.MockUsers().On("GetByVerificationTokenTx", mock.Anything, mock.Anything, token).
		Return(user, nil)
	repo.MockUsers().On("SaveVerificationTx", mock.Anything, mock.Anything, user).
		Return(nil)

	var resp *credentials.VerifyEmailResponse
	err := handler.Execute(context.Background(), credentials.VerifyEmailMessage{
		Token: token,
		OnResponse: func(r *credentials.VerifyEmailResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, credentials.MsgEmailVerified, resp.Message)

	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationToken, "verification secrets are single use")

	repo.MockUsers().AssertExpectations(t)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	repo := NewMockRepositoryManager()
	handler := credentials.NewVerifyEmailHandler(repo)

	repo.MockUsers().On("GetByVerificationTokenTx", mock.Anything, mock.Anything, "ghost-token").
		Return(nil, repository.NewRecordNotFound())

	err := handler.Execute(context.Background(), credentials.VerifyEmailMessage{
		Token: "ghost-token",
	})

	assert.ErrorIs(t, err, credentials.ErrInvalidToken)
	repo.MockUsers().AssertNotCalled(t, "SaveVerificationTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyEmailStoreFailure(t *testing.T) {
	repo := NewMockRepositoryManager()
	handler := credentials.NewVerifyEmailHandler(repo)

	repo.MockUsers().On("GetByVerificationTokenTx", mock.Anything, mock.Anything, "token").
		Return(nil, assert.AnError)

	err := handler.Execute(context.Background(), credentials.VerifyEmailMessage{
		Token: "token",
	})

	require.Error(t, err)
	assert.Equal(t, 500, credentials.HTTPStatus(err))
}
