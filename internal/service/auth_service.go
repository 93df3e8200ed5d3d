package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"redirly/internal/models"
)

//go:generate mockgen -destination=mock_auth_backend_test.go -package=service redirly/internal/service AuthBackend

// UnknownErrorMessage is reported when the backend fails without a usable message
const UnknownErrorMessage = "Unknown error occurred"

// AuthBackend is the capability set the facade needs from an external
// authentication provider. Implementations report provider failures as
// *models.AuthError when they can.
type AuthBackend interface {
	SignIn(ctx context.Context, email, password string) (*models.User, *models.Session, error)
	SignUp(ctx context.Context, email, password string) (*models.User, *models.Session, error)
	// SignInWithProvider starts an OAuth flow and returns the provider authorization URL
	SignInWithProvider(ctx context.Context, provider models.Provider) (string, error)
	ResetPasswordForEmail(ctx context.Context, email string) error
	Update(ctx context.Context, credentials models.UserCredentials) error
	SignOut(ctx context.Context) error
}

// AuthMetrics records the outcome of facade operations
type AuthMetrics interface {
	ObserveAuth(operation, outcome string, elapsed time.Duration)
}

// AuthService is a uniform facade over the auth backend. No method returns a
// Go error or panics; callers inspect the Error field of the result.
type AuthService interface {
	SignIn(ctx context.Context, credentials models.UserCredentials) models.AuthResult
	SignUp(ctx context.Context, credentials models.UserCredentials) models.AuthResult
	OAuthLogin(ctx context.Context, provider models.Provider) models.StatusResult
	OAuthRedirect(ctx context.Context, provider models.Provider) models.RedirectResult
	PasswordReset(ctx context.Context, credentials models.UserCredentials) models.StatusResult
	UpdateUser(ctx context.Context, credentials models.UserCredentials) models.StatusResult
	SignOut(ctx context.Context) models.StatusResult
}

type authService struct {
	backend AuthBackend
	logger  *slog.Logger
	metrics AuthMetrics
}

// NewAuthService creates a new auth facade. metrics may be nil.
func NewAuthService(backend AuthBackend, logger *slog.Logger, metrics AuthMetrics) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		backend: backend,
		logger:  logger,
		metrics: metrics,
	}
}

// Outcome labels used for metrics
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomePanic = "panic"
)

// normalize runs a backend call and maps its outcome to a value and an
// *AuthError. Panics inside the backend are recovered and reported as
// UnknownErrorMessage.
func normalize[T any](ctx context.Context, s *authService, op string, call func(context.Context) (T, error)) (result T, authErr *models.AuthError) {
	start := time.Now()
	outcome := OutcomeOK

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			authErr = &models.AuthError{Message: UnknownErrorMessage}
			outcome = OutcomePanic
			s.logger.Error("auth backend panicked",
				slog.String("operation", op),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
		if s.metrics != nil {
			s.metrics.ObserveAuth(op, outcome, time.Since(start))
		}
	}()

	value, err := call(ctx)
	if err == nil {
		return value, nil
	}

	outcome = OutcomeError
	authErr = toAuthError(err)
	s.logger.Warn("auth operation failed",
		slog.String("operation", op),
		slog.String("error", authErr.Message),
		slog.Int("status", authErr.Status),
	)
	var zero T
	return zero, authErr
}

// toAuthError reduces any error to an *AuthError with a non-empty message
func toAuthError(err error) *models.AuthError {
	var authErr *models.AuthError
	if errors.As(err, &authErr) {
		if strings.TrimSpace(authErr.Message) == "" {
			return &models.AuthError{Message: UnknownErrorMessage, Status: authErr.Status, Code: authErr.Code}
		}
		return authErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &models.AuthError{Message: err.Error(), Code: "canceled"}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return &models.AuthError{Message: msg}
	}
	return &models.AuthError{Message: UnknownErrorMessage}
}

type userSession struct {
	user    *models.User
	session *models.Session
}

func (s *authService) authenticate(ctx context.Context, op string, fn func(context.Context) (*models.User, *models.Session, error)) models.AuthResult {
	us, authErr := normalize(ctx, s, op, func(ctx context.Context) (userSession, error) {
		user, session, err := fn(ctx)
		if err != nil {
			return userSession{}, err
		}
		if user == nil {
			return userSession{}, &models.AuthError{Message: UnknownErrorMessage}
		}
		return userSession{user: user, session: session}, nil
	})
	if authErr != nil {
		return models.AuthResult{Error: authErr}
	}
	return models.AuthResult{User: us.user, Session: us.session}
}

func (s *authService) status(ctx context.Context, op string, fn func(context.Context) error) models.StatusResult {
	_, authErr := normalize(ctx, s, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return models.StatusResult{Error: authErr}
}

// SignIn forwards email and password to the backend
func (s *authService) SignIn(ctx context.Context, credentials models.UserCredentials) models.AuthResult {
	return s.authenticate(ctx, "sign_in", func(ctx context.Context) (*models.User, *models.Session, error) {
		return s.backend.SignIn(ctx, credentials.Email, credentials.Password)
	})
}

// SignUp registers a new account with the backend
func (s *authService) SignUp(ctx context.Context, credentials models.UserCredentials) models.AuthResult {
	return s.authenticate(ctx, "sign_up", func(ctx context.Context) (*models.User, *models.Session, error) {
		return s.backend.SignUp(ctx, credentials.Email, credentials.Password)
	})
}

// OAuthLogin starts a provider login. The user arrives later through the
// provider redirect, so only the error is reported.
func (s *authService) OAuthLogin(ctx context.Context, provider models.Provider) models.StatusResult {
	return models.StatusResult{Error: s.OAuthRedirect(ctx, provider).Error}
}

// OAuthRedirect starts a provider login and returns the URL to send the browser to
func (s *authService) OAuthRedirect(ctx context.Context, provider models.Provider) models.RedirectResult {
	url, authErr := normalize(ctx, s, "oauth_login", func(ctx context.Context) (string, error) {
		return s.backend.SignInWithProvider(ctx, provider)
	})
	return models.RedirectResult{Error: authErr, URL: url}
}

// PasswordReset asks the backend to send a reset email to credentials.Email
func (s *authService) PasswordReset(ctx context.Context, credentials models.UserCredentials) models.StatusResult {
	return s.status(ctx, "password_reset", func(ctx context.Context) error {
		return s.backend.ResetPasswordForEmail(ctx, credentials.Email)
	})
}

// UpdateUser forwards the given fields to the backend for the signed in user
func (s *authService) UpdateUser(ctx context.Context, credentials models.UserCredentials) models.StatusResult {
	return s.status(ctx, "update_user", func(ctx context.Context) error {
		return s.backend.Update(ctx, credentials)
	})
}

// SignOut ends the backend session
func (s *authService) SignOut(ctx context.Context) models.StatusResult {
	return s.status(ctx, "sign_out", s.backend.SignOut)
}
