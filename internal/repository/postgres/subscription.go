package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alora-app/alora/internal/domain/subscription"
)

// SubscriptionRepository implements subscription.Repository
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sql.DB) subscription.Repository {
	return &SubscriptionRepository{db: db}
}

// GetByUser retrieves the user's subscription
func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	var s subscription.Subscription
	var entitlements string
	var cancelledAt, billingIssueAt sql.NullInt64
	var eventAt, createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, plan, status, entitlement_ids, cancelled_at,
			billing_issue_detected_at, event_at, created_at, updated_at
		FROM subscriptions WHERE user_id = $1
	`, userID).Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &entitlements,
		&cancelledAt, &billingIssueAt, &eventAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, subscription.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting subscription: %w", err)
	}

	if err := json.Unmarshal([]byte(entitlements), &s.EntitlementIDs); err != nil {
		return nil, fmt.Errorf("decoding entitlements: %w", err)
	}
	s.CancelledAt = timePtr(cancelledAt)
	s.BillingIssueDetectedAt = timePtr(billingIssueAt)
	s.EventAt = time.Unix(eventAt, 0)
	s.CreatedAt = time.Unix(createdAt, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)
	return &s, nil
}

// Apply records an event and upserts the subscription in one
// transaction. A duplicate event id short-circuits before the upsert;
// an event older than the stored state leaves the row untouched. Both
// cases return (false, nil) so the caller acknowledges the delivery.
func (r *SubscriptionRepository) Apply(ctx context.Context, ev *subscription.Event, sub *subscription.Subscription) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO billing_events (event_id, event_type, user_id, occurred_at, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ev.EventID, ev.Type, ev.UserID, ev.OccurredAt.Unix(), now)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("recording billing event: %w", err)
	}

	entitlements, err := json.Marshal(sub.EntitlementIDs)
	if err != nil {
		return false, err
	}
	if sub.EntitlementIDs == nil {
		entitlements = []byte("[]")
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO subscriptions
			(user_id, plan, status, entitlement_ids, cancelled_at,
			 billing_issue_detected_at, event_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			plan = excluded.plan,
			status = excluded.status,
			entitlement_ids = excluded.entitlement_ids,
			cancelled_at = excluded.cancelled_at,
			billing_issue_detected_at = excluded.billing_issue_detected_at,
			event_at = excluded.event_at,
			updated_at = excluded.updated_at
		WHERE subscriptions.event_at <= excluded.event_at
	`, sub.UserID, sub.Plan, sub.Status, string(entitlements),
		unixPtr(sub.CancelledAt), unixPtr(sub.BillingIssueDetectedAt),
		sub.EventAt.Unix(), now, now)
	if err != nil {
		return false, fmt.Errorf("upserting subscription: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
