package auth

import "time"

// User represents a row in the users table. Identity, username, email and
// password hash are write-once; only the refresh token hash changes after
// creation, overwritten on each successful login.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // never exposed
	RefreshTokenHash *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}
