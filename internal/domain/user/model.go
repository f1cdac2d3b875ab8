package user

import (
	"errors"
	"time"
)

// User represents a user account
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name,omitempty"`
	PasswordHash string    `json:"-"` // Not exposed in JSON
	Status       string    `json:"status"`
	GoogleID     *string   `json:"-"`
	AppleID      *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Account statuses. A password account starts pending and becomes active
// once the emailed verification code is consumed. OAuth accounts are
// created active because the provider already verified the email.
const (
	StatusPending = "pending"
	StatusActive  = "active"
)

// External identity providers
const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

// ExternalIdentity is a verified identity from an OAuth provider.
type ExternalIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// Typed registration/authentication failures.
var (
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrNotFound           = errors.New("user not found")
)
