// Package auth implements user registration, login, token issuance and
// verification. This file defines the request and response payloads.
package auth

// RegisterRequest is the registration payload. Username is trimmed before
// the validate tags are applied.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// LoginRequest is the login payload. Unlike registration, the username is
// used exactly as given, with no trimming or shape constraints.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserPayload is the client-facing identity of an authenticated user. It
// is both the login response body and the access token claim set.
type UserPayload struct {
	UserID   string `json:"userID"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	User UserPayload `json:"user"`
}
