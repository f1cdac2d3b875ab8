package resettoken

import (
	"context"
	"time"
)

// Repository defines the interface for token data access
type Repository interface {
	// Create persists a new token
	Create(ctx context.Context, t *Token) error

	// Consume marks a matching unused, unexpired token as used in a
	// single conditional write. Returns ErrInvalidCode when no token
	// qualifies.
	Consume(ctx context.Context, userID int64, purpose, code string, now time.Time) error

	// DeleteExpired removes tokens past their expiry and returns the
	// number removed. Called by the periodic sweeper.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
