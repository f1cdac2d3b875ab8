// Package session implements the single-use handoff that bridges a
// browser OAuth redirect back to the mobile client. A session id moves
// {pending -> consumed} or {pending -> expired}; there is no way back.
package session

import (
	"context"
	"errors"
	"time"
)

// Identity is the verified identity a pending session is bound to.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// ErrExpired covers unknown, expired and already-consumed session ids.
// The cases are indistinguishable so the id space cannot be probed.
var ErrExpired = errors.New("invalid or expired session")

// Store mints and consumes single-use session ids. Implementations must
// make Exchange an atomic check-and-consume so concurrent instances
// cannot both redeem the same id.
type Store interface {
	// Mint stores a pending session and returns its opaque id.
	Mint(ctx context.Context, identity Identity, ttl time.Duration) (string, error)

	// Exchange consumes a pending session and returns its identity.
	// Returns ErrExpired for unknown, expired or consumed ids.
	Exchange(ctx context.Context, id string) (*Identity, error)

	// PutState stores an OAuth state value for the redirect flow.
	PutState(ctx context.Context, state, redirectURI string, ttl time.Duration) error

	// TakeState consumes a state value and returns its redirect URI.
	TakeState(ctx context.Context, state string) (string, error)
}
