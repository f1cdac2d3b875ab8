package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alora-app/alora/internal/domain/user"
)

// UserRepository implements user.Repository
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) user.Repository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, status, google_id, apple_id, created_at, updated_at`

func scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	var name, googleID, appleID sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &u.Status,
		&googleID, &appleID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if name.Valid {
		u.Name = &name.String
	}
	if googleID.Valid {
		u.GoogleID = &googleID.String
	}
	if appleID.Valid {
		u.AppleID = &appleID.String
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)
	return &u, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
		INSERT INTO users (email, name, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		u.Email, u.Name, u.PasswordHash, u.Status, now.Unix(), now.Unix(),
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return user.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Activate transitions a pending user to active
func (r *UserRepository) Activate(ctx context.Context, id int64) error {
	query := `UPDATE users SET status = 'active', updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("activating user: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.ErrNotFound
	}
	return nil
}

// UpsertExternal resolves a verified external identity to a user in two
// conditional writes: claim by provider subject, then attach-or-create
// by email. Concurrent first logins of the same identity land on the
// same row because both statements are arbitrated by the database.
func (r *UserRepository) UpsertExternal(ctx context.Context, identity user.ExternalIdentity) (*user.User, error) {
	var column string
	switch identity.Provider {
	case user.ProviderGoogle:
		column = "google_id"
	case user.ProviderApple:
		column = "apple_id"
	default:
		return nil, fmt.Errorf("unknown provider %q", identity.Provider)
	}

	now := time.Now().Unix()

	claim := `UPDATE users SET updated_at = $1 WHERE ` + column + ` = $2 RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRowContext(ctx, claim, now, identity.Subject))
	if err == nil {
		return u, nil
	}
	if err != user.ErrNotFound {
		return nil, fmt.Errorf("resolving external identity: %w", err)
	}

	var name *string
	if identity.Name != "" {
		name = &identity.Name
	}

	// The provider verified the email, so the account is created (or
	// promoted) active. ON CONFLICT attaches the identity to an
	// existing password account with the same email.
	upsert := `
		INSERT INTO users (email, name, status, ` + column + `, created_at, updated_at)
		VALUES ($1, $2, 'active', $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			` + column + ` = excluded.` + column + `,
			status = 'active',
			updated_at = excluded.updated_at
		RETURNING ` + userColumns

	u, err = scanUser(r.db.QueryRowContext(ctx, upsert,
		identity.Email, name, identity.Subject, now, now))
	if err != nil {
		return nil, fmt.Errorf("upserting external identity: %w", err)
	}
	return u, nil
}
