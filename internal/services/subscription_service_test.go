package services

import (
	"context"
	"testing"
	"time"

	"github.com/alora-app/alora/internal/domain/subscription"
	"github.com/alora-app/alora/internal/testutil"
)

func newSubscriptionService(t *testing.T) subscription.Service {
	t.Helper()
	return NewSubscriptionService(testutil.NewMockSubscriptionRepository(), testutil.NewTestLogger())
}

func billingEvent(id string, at time.Time, plan, status string) *subscription.Event {
	return &subscription.Event{
		EventID:        id,
		Type:           "SUBSCRIPTION_UPDATED",
		UserID:         1,
		Plan:           plan,
		Status:         status,
		EntitlementIDs: []string{"premium"},
		OccurredAt:     at,
	}
}

func TestProcessEventAppliesState(t *testing.T) {
	svc := newSubscriptionService(t)
	ctx := context.Background()
	now := time.Now()

	applied, err := svc.ProcessEvent(ctx, billingEvent("ev-1", now, subscription.PlanMonthly, subscription.StatusActive))
	if err != nil {
		t.Fatalf("ProcessEvent() error = %v", err)
	}
	if !applied {
		t.Fatal("event was not applied")
	}

	sub, err := svc.GetByUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetByUser() error = %v", err)
	}
	if sub.Plan != subscription.PlanMonthly || sub.Status != subscription.StatusActive {
		t.Errorf("subscription = %s/%s, want monthly/active", sub.Plan, sub.Status)
	}
	if sub.CancelledAt != nil || sub.BillingIssueDetectedAt != nil {
		t.Error("timestamps set outside their status")
	}
}

func TestProcessEventDuplicateIsNoOp(t *testing.T) {
	svc := newSubscriptionService(t)
	ctx := context.Background()
	now := time.Now()

	ev := billingEvent("ev-1", now, subscription.PlanMonthly, subscription.StatusActive)
	if _, err := svc.ProcessEvent(ctx, ev); err != nil {
		t.Fatalf("first ProcessEvent() error = %v", err)
	}

	// Same delivery retried with different content must not re-apply.
	retry := billingEvent("ev-1", now.Add(time.Hour), subscription.PlanAnnual, subscription.StatusCancelled)
	applied, err := svc.ProcessEvent(ctx, retry)
	if err != nil {
		t.Fatalf("retry ProcessEvent() error = %v", err)
	}
	if applied {
		t.Error("duplicate event id was applied")
	}

	sub, _ := svc.GetByUser(ctx, 1)
	if sub.Plan != subscription.PlanMonthly {
		t.Errorf("plan = %q after duplicate, want monthly", sub.Plan)
	}
}

func TestProcessEventOutOfOrderIsSkipped(t *testing.T) {
	svc := newSubscriptionService(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := svc.ProcessEvent(ctx, billingEvent("ev-2", now, subscription.PlanAnnual, subscription.StatusActive)); err != nil {
		t.Fatalf("ProcessEvent() error = %v", err)
	}

	// An older event delivered late is acknowledged but not applied.
	applied, err := svc.ProcessEvent(ctx, billingEvent("ev-1", now.Add(-time.Hour), subscription.PlanMonthly, subscription.StatusExpired))
	if err != nil {
		t.Fatalf("late ProcessEvent() error = %v", err)
	}
	if applied {
		t.Error("stale event was applied")
	}

	sub, _ := svc.GetByUser(ctx, 1)
	if sub.Plan != subscription.PlanAnnual || sub.Status != subscription.StatusActive {
		t.Errorf("subscription = %s/%s, want annual/active", sub.Plan, sub.Status)
	}
}

func TestProcessEventStatusTimestamps(t *testing.T) {
	tests := []struct {
		name             string
		status           string
		wantCancelled    bool
		wantBillingIssue bool
	}{
		{"cancelled sets cancelledAt", subscription.StatusCancelled, true, false},
		{"billing issue sets billingIssueDetectedAt", subscription.StatusBillingIssue, false, true},
		{"active sets neither", subscription.StatusActive, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newSubscriptionService(t)
			ctx := context.Background()

			if _, err := svc.ProcessEvent(ctx, billingEvent("ev-1", time.Now(), subscription.PlanMonthly, tt.status)); err != nil {
				t.Fatalf("ProcessEvent() error = %v", err)
			}
			sub, _ := svc.GetByUser(ctx, 1)
			if got := sub.CancelledAt != nil; got != tt.wantCancelled {
				t.Errorf("cancelledAt set = %v, want %v", got, tt.wantCancelled)
			}
			if got := sub.BillingIssueDetectedAt != nil; got != tt.wantBillingIssue {
				t.Errorf("billingIssueDetectedAt set = %v, want %v", got, tt.wantBillingIssue)
			}
		})
	}
}

func TestProcessEventRejectsUnknownValues(t *testing.T) {
	svc := newSubscriptionService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ev   *subscription.Event
	}{
		{"unknown plan", billingEvent("ev-1", time.Now(), "lifetime", subscription.StatusActive)},
		{"unknown status", billingEvent("ev-2", time.Now(), subscription.PlanMonthly, "paused")},
		{"missing event id", billingEvent("", time.Now(), subscription.PlanMonthly, subscription.StatusActive)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ProcessEvent(ctx, tt.ev); err == nil {
				t.Error("ProcessEvent() accepted an invalid event")
			}
		})
	}
}

func TestGetByUserDefaultsToFree(t *testing.T) {
	svc := newSubscriptionService(t)

	sub, err := svc.GetByUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetByUser() error = %v", err)
	}
	if sub.Plan != subscription.PlanFree {
		t.Errorf("plan = %q, want free", sub.Plan)
	}
}
