package subscription

import (
	"errors"
	"time"
)

// Subscription mirrors the billing provider's view of a user. Plan and
// status are independent axes: plan is the entitlement tier, status the
// current validity. Both are driven by the inbound billing webhook.
type Subscription struct {
	ID                     int64      `json:"id"`
	UserID                 int64      `json:"-"`
	Plan                   string     `json:"plan"`
	Status                 string     `json:"status"`
	EntitlementIDs         []string   `json:"entitlement_ids"`
	CancelledAt            *time.Time `json:"cancelled_at,omitempty"`
	BillingIssueDetectedAt *time.Time `json:"billing_issue_detected_at,omitempty"`
	// EventAt is the provider timestamp of the last applied event; an
	// older event is acknowledged but not applied.
	EventAt   time.Time `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Plans
const (
	PlanFree    = "free"
	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
)

// Statuses
const (
	StatusActive       = "active"
	StatusExpired      = "expired"
	StatusCancelled    = "cancelled"
	StatusBillingIssue = "billing_issue"
	StatusTrial        = "trial"
)

// Event is one billing webhook delivery. EventID is the provider's
// delivery id and deduplicates retries.
type Event struct {
	EventID        string
	Type           string
	UserID         int64
	Plan           string
	Status         string
	EntitlementIDs []string
	OccurredAt     time.Time
}

var ErrNotFound = errors.New("subscription not found")
