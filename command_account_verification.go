package credentials

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// MsgEmailVerified is the success body for email verification.
const MsgEmailVerified = "Email verified successfully."

type VerifyEmailMessage struct {
	Token      string `json:"token"`
	OnResponse func(resp *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "user.verify_email" }

type VerifyEmailResponse struct {
	User    *User
	Message string
}

type VerifyEmailHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	h.logger = logger
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	var user *User
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByVerificationTokenTx(ctx, tx, event.Token)
		if err != nil {
			// A store miss reads as a bad token; whether the secret ever
			// existed stays unobservable.
			if repository.IsRecordNotFound(err) {
				return ErrInvalidToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verification")
		}

		user.VerifyEmail()

		if err := h.repo.Users().SaveVerificationTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist verification")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyEmailResponse{
			User:    user,
			Message: MsgEmailVerified,
		})
	}

	return nil
}
