package credentials

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MsgPasswordChanged is the success body for an authenticated password change.
const MsgPasswordChanged = "Password changed successfully."

type ChangePasswordMessage struct {
	UserID          uuid.UUID `json:"-"`
	CurrentPassword string    `json:"current_password"`
	NewPassword     string    `json:"new_password"`
	OnResponse      func(resp *ChangePasswordResponse)
}

func (p ChangePasswordMessage) Type() string { return "user.change_password" }

type ChangePasswordResponse struct {
	Message string
	Success bool
}

type ChangePasswordHandler struct {
	repo   RepositoryManager
	hasher PasswordAuthenticator
	logger Logger
}

func NewChangePasswordHandler(repo RepositoryManager, hasher PasswordAuthenticator) *ChangePasswordHandler {
	if hasher == nil {
		hasher = NewHasher(passwordHashCost())
	}
	return &ChangePasswordHandler{
		repo:   repo,
		hasher: hasher,
		logger: defLogger{},
	}
}

func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByIDTx(ctx, tx, event.UserID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password change")
		}

		// The current password is proven before anything changes.
		if err := h.hasher.ComparePasswordAndHash(event.CurrentPassword, user.PasswordHash); err != nil {
			if goerrors.Is(err, ErrMismatchedHashAndPassword) {
				return ErrInvalidCredentials
			}
			return err
		}

		hash, err := h.hasher.HashPassword(event.NewPassword)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		// UpdatePassword also drops any pending reset secret, so an old
		// reset link cannot roll back this change.
		user.UpdatePassword(hash)

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
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password change transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ChangePasswordResponse{
			Message: MsgPasswordChanged,
			Success: true,
		})
	}

	return nil
}
