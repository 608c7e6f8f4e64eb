package credentials

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// MsgPasswordReset is the success body for a completed reset.
const MsgPasswordReset = "Password reset successfully."

type FinalizePasswordResetMessage struct {
	Token      string `json:"token"`
	Password   string `json:"new_password"`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

type FinalizePasswordResetResponse struct {
	Message string
	Success bool
}

type FinalizePasswordResetHandler struct {
	repo   RepositoryManager
	hasher PasswordAuthenticator
	logger Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(repo RepositoryManager, hasher PasswordAuthenticator) *FinalizePasswordResetHandler {
	if hasher == nil {
		hasher = NewHasher(passwordHashCost())
	}
	return &FinalizePasswordResetHandler{
		repo:   repo,
		hasher: hasher,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByResetTokenTx(ctx, tx, event.Token)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		if !user.IsResetTokenValid(event.Token) {
			// A stale secret reads the same as a wrong one; the caller
				// never learns the token once existed.
			return ErrInvalidToken
		}

		hash, err := h.hasher.HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.UpdatePassword(hash)

		// SavePasswordTx burns the reset pair in the same statement.
		if err := h.repo.Users().SavePasswordTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist new password")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{
			Message: MsgPasswordReset,
			Success: true,
		})
	}

	return nil
}
