package models

// SignInRequest represents the request body for email/password sign in
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignUpRequest represents the request body for user registration
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// PasswordResetRequest represents the request body for a password reset email
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateUserRequest represents the request body for updating the signed in user.
// At least one field must be set.
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

// Credentials converts the request to the facade input
func (r *SignInRequest) Credentials() UserCredentials {
	return UserCredentials{Email: r.Email, Password: r.Password}
}

// Credentials converts the request to the facade input
func (r *SignUpRequest) Credentials() UserCredentials {
	return UserCredentials{Email: r.Email, Password: r.Password}
}

// Empty reports whether the request carries no changes
func (r *UpdateUserRequest) Empty() bool {
	return r.Email == "" && r.Password == ""
}

// Credentials converts the request to the facade input
func (r *UpdateUserRequest) Credentials() UserCredentials {
	return UserCredentials{Email: r.Email, Password: r.Password}
}
