package user

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile holds the display information stored 1:1 with a user.
type Profile struct {
	ID        string     `json:"id"`
	FullName  *string    `json:"full_name"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// CreateUserInput holds the fields required to sign up a new account.
type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// UpdateProfileInput holds optional fields for a partial profile update.
type UpdateProfileInput struct {
	FullName *string `json:"full_name,omitempty"`
}

// Session represents an active login session.
type Session struct {
	TokenHash string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
