package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user. Returns ErrDuplicateEmail when the
	// email is already taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Activate transitions a pending user to active
	Activate(ctx context.Context, id int64) error

	// UpdatePassword replaces a user's password hash
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// UpsertExternal resolves a verified external identity to a user
	// with a conditional write: find by provider subject, otherwise
	// attach to the account with the same email, otherwise create.
	// Safe against concurrent first-logins of the same identity.
	UpsertExternal(ctx context.Context, identity ExternalIdentity) (*User, error)
}
