package models

import (
	"fmt"
	"regexp"
	"time"
)

// UserCredentials is the input to the password based auth operations.
// Password is empty for password reset requests.
type UserCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// Provider names a third-party OAuth identity provider. The value is passed
// to the auth backend unchanged.
type Provider string

const (
	ProviderApple     Provider = "apple"
	ProviderAzure     Provider = "azure"
	ProviderBitbucket Provider = "bitbucket"
	ProviderDiscord   Provider = "discord"
	ProviderFacebook  Provider = "facebook"
	ProviderGitHub    Provider = "github"
	ProviderGitLab    Provider = "gitlab"
	ProviderGoogle    Provider = "google"
	ProviderTwitter   Provider = "twitter"
)

var providerPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Valid reports whether p is well-formed. Unknown providers are allowed; the
// auth backend decides whether it supports them.
func (p Provider) Valid() bool {
	return providerPattern.MatchString(string(p))
}

// User is the user record reported by the auth backend
type User struct {
	ID        string    `json:"id"` // UUID
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session holds the tokens issued by the auth backend after a sign-in
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// AuthError is the single error kind surfaced by the auth facade.
// Status and Code are filled in when the provider reported them.
type AuthError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth error (%d): %s", e.Status, e.Message)
	}
	return "auth error: " + e.Message
}

// AuthResult is returned by sign-in and sign-up. Exactly one of Error and
// User is non-nil.
type AuthResult struct {
	Error   *AuthError `json:"error"`
	User    *User      `json:"user"`
	Session *Session   `json:"session,omitempty"`
}

// StatusResult is returned by operations that only report success or failure
type StatusResult struct {
	Error *AuthError `json:"error"`
}

// RedirectResult carries the provider authorization URL of an OAuth login
type RedirectResult struct {
	Error *AuthError `json:"error"`
	URL   string     `json:"url,omitempty"`
}
