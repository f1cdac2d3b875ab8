package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/alora-app/alora/internal/domain/subscription"
	"github.com/alora-app/alora/internal/pkg/logger"
	"github.com/alora-app/alora/internal/pkg/metrics"
)

// SubscriptionService implements subscription.Service
type SubscriptionService struct {
	repo   subscription.Repository
	logger *logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo subscription.Repository, log *logger.Logger) subscription.Service {
	return &SubscriptionService{
		repo:   repo,
		logger: log,
	}
}

// GetByUser retrieves the user's subscription. A user the billing
// provider has never reported is on the free plan.
func (s *SubscriptionService) GetByUser(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	sub, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			return &subscription.Subscription{
				UserID: userID,
				Plan:   subscription.PlanFree,
				Status: subscription.StatusActive,
			}, nil
		}
		return nil, err
	}
	return sub, nil
}

// ProcessEvent applies a billing webhook event. Duplicate deliveries and
// events older than the stored state are acknowledged without effect so
// the provider stops retrying.
func (s *SubscriptionService) ProcessEvent(ctx context.Context, ev *subscription.Event) (bool, error) {
	if err := validateEvent(ev); err != nil {
		metrics.RecordWebhookEvent(ev.Type, "invalid")
		return false, err
	}

	sub := &subscription.Subscription{
		UserID:         ev.UserID,
		Plan:           ev.Plan,
		Status:         ev.Status,
		EntitlementIDs: ev.EntitlementIDs,
		EventAt:        ev.OccurredAt,
	}
	// cancelledAt and billingIssueDetectedAt exist only in their
	// corresponding status; the upsert clears them otherwise.
	switch ev.Status {
	case subscription.StatusCancelled:
		t := ev.OccurredAt
		sub.CancelledAt = &t
	case subscription.StatusBillingIssue:
		t := ev.OccurredAt
		sub.BillingIssueDetectedAt = &t
	}

	applied, err := s.repo.Apply(ctx, ev, sub)
	if err != nil {
		metrics.RecordWebhookEvent(ev.Type, "error")
		return false, err
	}

	outcome := "applied"
	if !applied {
		outcome = "skipped"
	}
	metrics.RecordWebhookEvent(ev.Type, outcome)

	s.logger.WithFields(map[string]interface{}{
		"event_id": ev.EventID,
		"user_id":  ev.UserID,
		"status":   ev.Status,
		"applied":  applied,
	}).Info("Billing event processed")

	return applied, nil
}

func validateEvent(ev *subscription.Event) error {
	switch ev.Plan {
	case subscription.PlanFree, subscription.PlanMonthly, subscription.PlanAnnual:
	default:
		return fmt.Errorf("unknown plan %q", ev.Plan)
	}
	switch ev.Status {
	case subscription.StatusActive, subscription.StatusExpired, subscription.StatusCancelled,
		subscription.StatusBillingIssue, subscription.StatusTrial:
	default:
		return fmt.Errorf("unknown status %q", ev.Status)
	}
	if ev.EventID == "" {
		return fmt.Errorf("event id is required")
	}
	if ev.OccurredAt.IsZero() {
		return fmt.Errorf("event timestamp is required")
	}
	return nil
}
