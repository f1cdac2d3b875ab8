package user

import "context"

// Service defines the interface for user business logic
type Service interface {
	// Register creates a pending account and emails a verification code
	Register(ctx context.Context, email, password, name string) (*User, error)

	// VerifyEmail consumes a verification code and activates the account
	VerifyEmail(ctx context.Context, email, code string) (*User, error)

	// Authenticate checks credentials for an active account
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// RequestPasswordReset emails a reset code. It succeeds silently for
	// unknown emails so callers cannot probe for accounts.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset code and replaces the password
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// ResolveExternal upserts a user from a verified OAuth identity
	ResolveExternal(ctx context.Context, identity ExternalIdentity) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)
}
