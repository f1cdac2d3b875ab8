package subscription

import "context"

// Repository defines the interface for subscription data access
type Repository interface {
	// GetByUser retrieves the user's subscription
	GetByUser(ctx context.Context, userID int64) (*Subscription, error)

	// Apply records an event and upserts the subscription in one
	// transaction. It returns (false, nil) for a duplicate event id and
	// (false, nil) for an event older than the stored state; (true,
	// nil) when the subscription row changed.
	Apply(ctx context.Context, ev *Event, sub *Subscription) (bool, error)
}
