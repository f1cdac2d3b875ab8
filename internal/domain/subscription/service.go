package subscription

import "context"

// Service defines the interface for subscription sync
type Service interface {
	// GetByUser retrieves the user's subscription
	GetByUser(ctx context.Context, userID int64) (*Subscription, error)

	// ProcessEvent applies a billing webhook event. Duplicate and
	// out-of-order deliveries are acknowledged without effect.
	ProcessEvent(ctx context.Context, ev *Event) (bool, error)
}
