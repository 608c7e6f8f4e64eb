package credentials

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// MsgPasswordResetRequested is returned for every reset request, whether or
// not the email maps to an account.
const MsgPasswordResetRequested = "If the email exists, a password reset link has been sent."

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Message string
	Success bool
}

type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	h.logger = logger
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{
		Message: MsgPasswordResetRequested,
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			// Unknown emails take the same path out as known ones.
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		token := user.GenerateResetToken()

		if err := h.repo.Users().SaveResetTokenTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset token")
		}

		// The secret goes out-of-band only; never in the response body.
		h.logger.Info("Password reset token issued", "email", user.Email, "token", token)

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
