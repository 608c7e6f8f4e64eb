package credentials

import (
	"context"

	"github.com/goliatone/go-credentials/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteAuthenticator wires the bearer middleware into routes. Strict and
// optional routes share the exact same verification path; they differ only
// in what happens after a failure.
type RouteAuthenticator struct {
	auth         Authenticator
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.ErrorHandler = defaultErrHandler

	return a, nil
}

// ProtectedRoute rejects requests without a valid bearer token.
func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return a.route(cfg, errorHandler, false)
}

// OptionalRoute verifies a bearer token when present but lets the request
// through either way. Handlers check the context for an identity.
func (a *RouteAuthenticator) OptionalRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return a.route(cfg, errorHandler, true)
}

func (a *RouteAuthenticator) route(cfg Config, errorHandler func(router.Context, error) error, optional bool) router.MiddlewareFunc {
	validator := a.tokenValidator()
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return jwtware.New(jwtware.Config{
			ErrorHandler: errorHandler,
			SigningKey: jwtware.SigningKey{
				Key:    []byte(cfg.GetSigningKey()),
				JWTAlg: cfg.GetSigningMethod(),
			},
			AuthScheme:     cfg.GetAuthScheme(),
			ContextKey:     cfg.GetContextKey(),
			TokenLookup:    cfg.GetTokenLookup(),
			TokenValidator: validator,
			Optional:       optional,
			ValidationListeners: []jwtware.ValidationListener{
				requireParsableSubject,
			},
			ContextEnricher: enrichWithIdentity,
			SuccessHandler: func(ctx router.Context) error {
				return hf(ctx)
			},
		})
	}
}

func (a *RouteAuthenticator) tokenValidator() jwtware.TokenValidator {
	type tokenServiceProvider interface {
		TokenService() TokenService
	}

	if provider, ok := a.auth.(tokenServiceProvider); ok {
		return tokenValidatorAdapter{service: provider.TokenService()}
	}

	return nil
}

// tokenValidatorAdapter bridges the package TokenService to the middleware
// validator interface.
type tokenValidatorAdapter struct {
	service TokenService
}

func (t tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := t.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// requireParsableSubject rejects tokens whose subject is not a record id.
// A signed token with a garbage subject fails closed.
func requireParsableSubject(ctx router.Context, claims jwtware.AuthClaims) error {
	if _, err := claims.UserID(); err != nil {
		return ErrInvalidToken
	}
	return nil
}

func enrichWithIdentity(c context.Context, claims jwtware.AuthClaims) context.Context {
	id, err := claims.UserID()
	if err != nil {
		return c
	}
	return WithIdentity(c, &AuthenticatedIdentity{
		UserID: id,
		Email:  claims.Email(),
	})
}

// MakeAuthErrorHandler maps middleware failures to the package taxonomy.
// With optional set, failures log and fall through to the next handler.
func (a *RouteAuthenticator) MakeAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if errors.Is(err, jwtware.ErrJWTMissing) {
			// No credential at all; distinct from one that failed to parse.
			richErr = ErrUnauthorized
		} else if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if errors.As(err, &richErr) && richErr.TextCode == TextCodeInvalidToken {
			// already mapped by the token service
		} else if IsMalformedError(err) {
			richErr = ErrInvalidToken
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithTextCode(TextCodeInvalidToken).
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		logRichError(a.Logger, "Authentication error", richErr)

		return a.ErrorHandler(ctx, richErr)
	}
}

// defaultErrHandler renders any error as the package's JSON error body.
func defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithTextCode(TextCodeInternal).
			WithCode(errors.CodeInternal)
	}

	return c.JSON(HTTPStatus(richErr), ErrorResponse{
		Error:   richErr.TextCode,
		Message: richErr.Message,
	})
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func logRichError(logger Logger, scope string, err *errors.Error) {
	logger.Info(
		scope,
		"error", err.Message,
		"category", err.Category,
		"details", print.MaybePrettyJSON(err.Metadata),
	)
}
