package dto

import "time"

// BillingEventRequest is the payload the billing provider delivers to
// POST /api/webhooks/billing.
type BillingEventRequest struct {
	EventID        string    `json:"eventId" validate:"required"`
	Type           string    `json:"type" validate:"required"`
	UserID         int64     `json:"userId" validate:"required,gt=0"`
	Plan           string    `json:"plan" validate:"required,oneof=free monthly annual"`
	Status         string    `json:"status" validate:"required,oneof=active expired cancelled billing_issue trial"`
	EntitlementIDs []string  `json:"entitlementIds"`
	OccurredAt     time.Time `json:"occurredAt" validate:"required"`
}

// BillingEventResponse acknowledges a delivery.
type BillingEventResponse struct {
	Applied bool `json:"applied"`
}
