package credentials

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// MsgUserRegistered is returned to the client regardless of delivery state;
// the verification secret itself goes out-of-band.
const MsgUserRegistered = "User registered successfully. Please check your email for verification."

type RegisterUserMessage struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	UseHashid bool
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserResponse struct {
	User    *User
	Message string
}

type RegisterUserHandler struct {
	repo   RepositoryManager
	hasher PasswordAuthenticator
	logger Logger
}

func NewRegisterUserHandler(repo RepositoryManager, hasher PasswordAuthenticator) *RegisterUserHandler {
	if hasher == nil {
		hasher = NewHasher(passwordHashCost())
	}
	return &RegisterUserHandler{
		repo:   repo,
		hasher: hasher,
		logger: defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	h.logger = logger
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	var user *User
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		email := NormalizeEmail(event.Email)

		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, email); err == nil {
			return ErrUserAlreadyExists
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
		}

		hash, err := h.hasher.HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user = NewUser(email, hash)
		if event.UseHashid {
			if id, err := hashid.NewUUID(email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	// The secret never travels in the response body.
	if user.VerificationToken != nil {
		h.logger.Info("Verification token issued", "email", user.Email, "token", *user.VerificationToken)
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{
			User:    user,
			Message: MsgUserRegistered,
		})
	}

	return nil
}
