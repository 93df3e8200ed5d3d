// Package authclient adapts a hosted GoTrue (Supabase Auth) server to the
// capability set used by the auth facade.
package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"redirly/internal/models"

	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// Config describes how to reach the GoTrue server. URL takes precedence over
// ProjectRef when both are set.
type Config struct {
	URL        string
	ProjectRef string
	APIKey     string
}

// GoTrueBackend implements service.AuthBackend on top of gotrue-go
type GoTrueBackend struct {
	client gotrue.Client
}

// NewGoTrueBackend creates a backend from cfg
func NewGoTrueBackend(cfg Config) *GoTrueBackend {
	client := gotrue.New(cfg.ProjectRef, cfg.APIKey)
	if cfg.URL != "" {
		client = client.WithCustomGoTrueURL(strings.TrimRight(cfg.URL, "/"))
	}
	return &GoTrueBackend{client: client}
}

// NewGoTrueBackendWithClient wraps an already configured client
func NewGoTrueBackendWithClient(client gotrue.Client) *GoTrueBackend {
	return &GoTrueBackend{client: client}
}

type accessTokenKey struct{}

// WithAccessToken returns a context carrying the caller's access token.
// Session scoped operations (SignOut, Update) require it.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFromContext returns the access token stored by WithAccessToken
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(string)
	return token, ok && token != ""
}

// errNotSignedIn mirrors the provider's response to a missing session
func errNotSignedIn() *models.AuthError {
	return &models.AuthError{Message: "not signed in", Status: http.StatusUnauthorized, Code: "no_session"}
}

func (b *GoTrueBackend) sessionClient(ctx context.Context) (gotrue.Client, error) {
	token, ok := AccessTokenFromContext(ctx)
	if !ok {
		return nil, errNotSignedIn()
	}
	return b.client.WithToken(token), nil
}

// SignIn exchanges email and password for a session
func (b *GoTrueBackend) SignIn(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	resp, err := b.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, nil, translateError(err)
	}

	return toUser(resp.User), toSession(resp.Session), nil
}

// SignUp registers a new account. When email confirmation is enabled the
// provider returns no session.
func (b *GoTrueBackend) SignUp(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	resp, err := b.client.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, nil, translateError(err)
	}

	user := toUser(resp.User)
	session := toSession(resp.Session)
	if session != nil && resp.Session.User.ID.String() != zeroUUID {
		// autoconfirm on: the user is nested in the session
		user = toUser(resp.Session.User)
	}
	return user, session, nil
}

// SignInWithProvider returns the authorization URL for an OAuth provider
func (b *GoTrueBackend) SignInWithProvider(ctx context.Context, provider models.Provider) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := b.client.Authorize(types.AuthorizeRequest{
		Provider: types.Provider(provider),
	})
	if err != nil {
		return "", translateError(err)
	}
	return resp.AuthorizationURL, nil
}

// ResetPasswordForEmail sends a password recovery email
func (b *GoTrueBackend) ResetPasswordForEmail(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.client.Recover(types.RecoverRequest{Email: email}); err != nil {
		return translateError(err)
	}
	return nil
}

// Update changes the email and/or password of the signed in user
func (b *GoTrueBackend) Update(ctx context.Context, credentials models.UserCredentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client, err := b.sessionClient(ctx)
	if err != nil {
		return err
	}

	req := types.UpdateUserRequest{Email: credentials.Email}
	if credentials.Password != "" {
		password := credentials.Password
		req.Password = &password
	}

	if _, err := client.UpdateUser(req); err != nil {
		return translateError(err)
	}
	return nil
}

// SignOut revokes the session identified by the context access token
func (b *GoTrueBackend) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client, err := b.sessionClient(ctx)
	if err != nil {
		return err
	}

	if err := client.Logout(); err != nil {
		return translateError(err)
	}
	return nil
}

const zeroUUID = "00000000-0000-0000-0000-000000000000"

func toUser(u types.User) *models.User {
	return &models.User{
		ID:        u.ID.String(),
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toSession(s types.Session) *models.Session {
	if s.AccessToken == "" {
		return nil
	}
	return &models.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
	}
}

// gotrue-go reports non-2xx responses as "response status code N: <body>"
var statusErrorPattern = regexp.MustCompile(`(?s)status code (\d{3}): (.*)$`)

// providerErrorBody covers the error shapes GoTrue has used across versions
type providerErrorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
}

// translateError converts a gotrue-go error into *models.AuthError
func translateError(err error) error {
	if err == nil {
		return nil
	}

	m := statusErrorPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return &models.AuthError{Message: err.Error()}
	}

	status, _ := strconv.Atoi(m[1])
	authErr := &models.AuthError{Message: strings.TrimSpace(m[2]), Status: status}

	var body providerErrorBody
	if jsonErr := json.Unmarshal([]byte(m[2]), &body); jsonErr != nil {
		return authErr
	}

	for _, msg := range []string{body.ErrorDescription, body.Msg, body.Message, body.Error} {
		if msg != "" {
			authErr.Message = msg
			break
		}
	}

	switch {
	case body.ErrorCode != "":
		authErr.Code = body.ErrorCode
	case body.Error != "" && body.Error != authErr.Message:
		authErr.Code = body.Error
	default:
		var code string
		if json.Unmarshal(body.Code, &code) == nil {
			authErr.Code = code
		}
	}
	return authErr
}
