package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alora-app/alora/internal/domain/resettoken"
)

// TokenRepository implements resettoken.Repository
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *sql.DB) resettoken.Repository {
	return &TokenRepository{db: db}
}

// Create persists a new token
func (r *TokenRepository) Create(ctx context.Context, t *resettoken.Token) error {
	t.CreatedAt = time.Now()

	query := `
		INSERT INTO reset_tokens (user_id, purpose, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		t.UserID, t.Purpose, t.Code, t.ExpiresAt.Unix(), t.CreatedAt.Unix(),
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("creating token: %w", err)
	}
	return nil
}

// Consume marks a matching unused, unexpired token as used. The whole
// check runs inside the UPDATE so the code is single-use even under
// concurrent submissions.
func (r *TokenRepository) Consume(ctx context.Context, userID int64, purpose, code string, now time.Time) error {
	query := `
		UPDATE reset_tokens SET used = 1
		WHERE user_id = $1 AND purpose = $2 AND code = $3 AND used = 0 AND expires_at > $4
	`

	result, err := r.db.ExecContext(ctx, query, userID, purpose, code, now.Unix())
	if err != nil {
		return fmt.Errorf("consuming token: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return resettoken.ErrInvalidCode
	}
	return nil
}

// DeleteExpired removes tokens past their expiry.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE expires_at <= $1`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("deleting expired tokens: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
