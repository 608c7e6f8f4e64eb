package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the credential store. Every write is a narrow update of one field
// group; records are never replaced wholesale.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	GetByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)
	GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error

	SaveVerification(ctx context.Context, user *User) error
	SaveVerificationTx(ctx context.Context, tx bun.IDB, user *User) error
	SaveResetToken(ctx context.Context, user *User) error
	SaveResetTokenTx(ctx context.Context, tx bun.IDB, user *User) error
	SavePassword(ctx context.Context, user *User) error
	SavePasswordTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.getBy(ctx, tx, "email", NormalizeEmail(email))
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	return a.getBy(ctx, tx, "id", id.String())
}

func (a *users) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	return a.GetByVerificationTokenTx(ctx, a.db, token)
}

func (a *users) GetByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error) {
	return a.getBy(ctx, tx, "verification_token", token)
}

func (a *users) GetByResetToken(ctx context.Context, token string) (*User, error) {
	return a.GetByResetTokenTx(ctx, a.db, token)
}

func (a *users) GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error) {
	return a.getBy(ctx, tx, "reset_token", token)
}

func (a *users) getBy(ctx context.Context, tx bun.IDB, column, value string) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	return a.TrackAttemptedLoginTx(ctx, a.db, user)
}

// TrackAttemptedLoginTx writes the attempt counter and lockout as absolute
// values taken from the record, so a racing writer leaves a consistent pair.
func (a *users) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	_, err := tx.NewRaw(`
		UPDATE "auth_users" AS "usr"
		SET
			"failed_login_attempts" = ?,
			"locked_until" = ?,
			"updated_at" = ?
		WHERE
			("usr".id = ?);
	`, user.FailedLoginAttempts, user.LockedUntil, time.Now(), user.ID).Exec(ctx)

	return err
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	// NOTE: Updating using the ORM fails due to a bug, it wont reset
	// locked_until, failed_login_attempts fields.
	lastLogin := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "auth_users" AS "usr"
		SET
			"last_login" = ?,
			"locked_until" = NULL,
			"failed_login_attempts" = 0,
			"updated_at" = ?
		WHERE
			("usr".id = ?);
	`, lastLogin, lastLogin, user.ID).Exec(ctx)

	return err
}

func (a *users) SaveVerification(ctx context.Context, user *User) error {
	return a.SaveVerificationTx(ctx, a.db, user)
}

func (a *users) SaveVerificationTx(ctx context.Context, tx bun.IDB, user *User) error {
	_, err := tx.NewRaw(`
		UPDATE "auth_users" AS "usr"
		SET
			"is_verified" = ?,
			"verification_token" = ?,
			"updated_at" = ?
		WHERE
			("usr".id = ?);
	`, user.IsVerified, user.VerificationToken, time.Now(), user.ID).Exec(ctx)

	return err
}

func (a *users) SaveResetToken(ctx context.Context, user *User) error {
	return a.SaveResetTokenTx(ctx, a.db, user)
}

func (a *users) SaveResetTokenTx(ctx context.Context, tx bun.IDB, user *User) error {
	_, err := tx.NewRaw(`
		UPDATE "auth_users" AS "usr"
		SET
			"reset_token" = ?,
			"reset_token_expires" = ?,
			"updated_at" = ?
		WHERE
			("usr".id = ?);
	`, user.ResetToken, user.ResetTokenExpires, time.Now(), user.ID).Exec(ctx)

	return err
}

func (a *users) SavePassword(ctx context.Context, user *User) error {
	return a.SavePasswordTx(ctx, a.db, user)
}

// SavePasswordTx replaces the hash and always clears the reset pair in the
// same statement, keeping the single-use guarantee at the store level.
func (a *users) SavePasswordTx(ctx context.Context, tx bun.IDB, user *User) error {
	_, err := tx.NewRaw(`
		UPDATE "auth_users" AS "usr"
		SET
			"password_hash" = ?,
			"reset_token" = NULL,
			"reset_token_expires" = NULL,
			"updated_at" = ?
		WHERE
			("usr".id = ?);
	`, user.PasswordHash, time.Now(), user.ID).Exec(ctx)

	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
