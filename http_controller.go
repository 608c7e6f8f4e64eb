package credentials

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// MsgLoggedOut is the success body for logout. Tokens are stateless; the
// client discards its copy.
const MsgLoggedOut = "Logged out successfully."

// RouteRegistrar is the subset of the router this controller needs to mount
// its routes.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

type AuthControllerRoutes struct {
	Register             string
	Login                string
	VerifyEmail          string
	RequestPasswordReset string
	ConfirmPasswordReset string
	UserInfo             string
	ChangePassword       string
	RefreshToken         string
	Logout               string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *AuthControllerRoutes
	Auther       Authenticator
	RouteAuth    *RouteAuthenticator
	Hasher       PasswordAuthenticator
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerRouteAuth(route *RouteAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.RouteAuth = route
		return c
	}
}

func WithControllerHasher(hasher PasswordAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Hasher = hasher
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Register:             "/auth/register",
			Login:                "/auth/login",
			VerifyEmail:          "/auth/verify-email",
			RequestPasswordReset: "/auth/request-password-reset",
			ConfirmPasswordReset: "/auth/confirm-password-reset",
			UserInfo:             "/auth/user/info",
			ChangePassword:       "/auth/user/change-password",
			RefreshToken:         "/auth/user/refresh-token",
			Logout:               "/auth/user/logout",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Hasher == nil {
		c.Hasher = NewHasher(passwordHashCost())
	}

	return c
}

// RegisterAuthRoutes mounts the credential routes. The account routes are
// wrapped in the strict bearer middleware when a RouteAuthenticator and
// config are provided.
func RegisterAuthRoutes(app RouteRegistrar, cfg Config, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.Register)
	app.Post(controller.Routes.Login, controller.Login)
	app.Get(controller.Routes.VerifyEmail, controller.VerifyEmail)
	app.Post(controller.Routes.RequestPasswordReset, controller.RequestPasswordReset)
	app.Post(controller.Routes.ConfirmPasswordReset, controller.ConfirmPasswordReset)

	var protected []router.MiddlewareFunc
	if controller.RouteAuth != nil && cfg != nil {
		protected = append(protected, controller.RouteAuth.ProtectedRoute(
			cfg,
			controller.RouteAuth.MakeAuthErrorHandler(false),
		))
	}

	app.Get(controller.Routes.UserInfo, controller.UserInfo, protected...)
	app.Post(controller.Routes.ChangePassword, controller.ChangePassword, protected...)
	app.Post(controller.Routes.RefreshToken, controller.RefreshToken, protected...)
	app.Post(controller.Routes.Logout, controller.Logout, protected...)

	return controller
}

// passwordSpecials is the special-character set accepted by the complexity rule.
const passwordSpecials = "@$!%*?&"

// ValidatePasswordComplexity enforces at least 8 characters with one lower,
// one upper, one digit, and one special character.
func ValidatePasswordComplexity(value any) error {
	password, _ := value.(string)

	if len(password) < 8 {
		return fmt.Errorf("must be at least 8 characters long")
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return fmt.Errorf("must contain a lowercase letter, an uppercase letter, a digit, and one of %s", passwordSpecials)
	}

	return nil
}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.By(ValidatePasswordComplexity),
		),
	)
}

func (a *AuthController) Register(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	if a.Debug {
		a.Logger.Debug("register payload: %s", print.MaybePrettyJSON(payload))
	}

	handler := NewRegisterUserHandler(a.Repo, a.Hasher).WithLogger(a.Logger)

	var resp *RegisterUserResponse
	err := handler.Execute(ctx.Context(), RegisterUserMessage{
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(r *RegisterUserResponse) {
			resp = r
		},
	})

	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"message": resp.Message,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	resp, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, resp)
}

func (a *AuthController) VerifyEmail(ctx router.Context) error {
	token := ctx.Query("token", "")
	if token == "" {
		return a.ErrorHandler(ctx, ErrInvalidToken)
	}

	handler := NewVerifyEmailHandler(a.Repo).WithLogger(a.Logger)

	var resp *VerifyEmailResponse
	err := handler.Execute(ctx.Context(), VerifyEmailMessage{
		Token: token,
		OnResponse: func(r *VerifyEmailResponse) {
			resp = r
		},
	})

	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"message": resp.Message,
	})
}

// RequestPasswordResetRequest payload
type RequestPasswordResetRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r RequestPasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

func (a *AuthController) RequestPasswordReset(ctx router.Context) error {
	payload := new(RequestPasswordResetRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	handler := NewInitializePasswordResetHandler(a.Repo).WithLogger(a.Logger)

	var resp *InitializePasswordResetResponse
	err := handler.Execute(ctx.Context(), InitializePasswordResetMessage{
		Email: payload.Email,
		OnResponse: func(r *InitializePasswordResetResponse) {
			resp = r
		},
	})

	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"message": resp.Message,
	})
}

// ConfirmPasswordResetRequest payload
type ConfirmPasswordResetRequest struct {
	Token       string `form:"token" json:"token"`
	NewPassword string `form:"new_password" json:"new_password"`
}

// Validate will run validation rules
func (r ConfirmPasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Token,
			validation.Required,
		),
		validation.Field(
			&r.NewPassword,
			validation.Required,
			validation.By(ValidatePasswordComplexity),
		),
	)
}

func (a *AuthController) ConfirmPasswordReset(ctx router.Context) error {
	payload := new(ConfirmPasswordResetRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	handler := NewFinalizePasswordResetHandler(a.Repo, a.Hasher).WithLogger(a.Logger)

	var resp *FinalizePasswordResetResponse
	err := handler.Execute(ctx.Context(), FinalizePasswordResetMessage{
		Token:    payload.Token,
		Password: payload.NewPassword,
		OnResponse: func(r *FinalizePasswordResetResponse) {
			resp = r
		},
	})

	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"message": resp.Message,
	})
}

func (a *AuthController) UserInfo(ctx router.Context) error {
	identity, ok := IdentityFromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	user, err := a.Auther.UserInfo(ctx.Context(), identity.UserID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, user)
}

// ChangePasswordRequest payload
type ChangePasswordRequest struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.CurrentPassword,
			validation.Required,
		),
		validation.Field(
			&r.NewPassword,
			validation.Required,
			validation.By(ValidatePasswordComplexity),
		),
	)
}

func (a *AuthController) ChangePassword(ctx router.Context) error {
	identity, ok := IdentityFromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	payload := new(ChangePasswordRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, WrapValidation(err))
	}

	handler := NewChangePasswordHandler(a.Repo, a.Hasher).WithLogger(a.Logger)

	var resp *ChangePasswordResponse
	err := handler.Execute(ctx.Context(), ChangePasswordMessage{
		UserID:          identity.UserID,
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
		OnResponse: func(r *ChangePasswordResponse) {
			resp = r
		},
	})

	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"message": resp.Message,
	})
}

func (a *AuthController) RefreshToken(ctx router.Context) error {
	identity, ok := IdentityFromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	resp, err := a.Auther.RefreshToken(ctx.Context(), identity.UserID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, resp)
}

func (a *AuthController) Logout(ctx router.Context) error {
	return ctx.JSON(fiber.StatusOK, map[string]any{
		"message": MsgLoggedOut,
	})
}
