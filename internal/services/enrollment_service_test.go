package services

import (
	"context"
	"errors"
	"testing"

	"github.com/alora-app/alora/internal/domain/enrollment"
	"github.com/alora-app/alora/internal/domain/module"
	"github.com/alora-app/alora/internal/testutil"
)

func seedModule(t *testing.T, repo *testutil.MockModuleRepository, userID int64, days int) *module.Module {
	t.Helper()
	m := &module.Module{
		UserID:    userID,
		Title:     "Grounded Mornings",
		TotalDays: days,
	}
	for i := 1; i <= days; i++ {
		m.Days = append(m.Days, module.Day{
			DayNumber:        i,
			Title:            "Day",
			FrameworkName:    "Box Breathing",
			ReflectionPrompt: "What did you notice?",
			ShiftFocus:       "One mindful breath",
		})
	}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("seeding module: %v", err)
	}
	return m
}

func newEnrollmentService(t *testing.T) (enrollment.Service, *testutil.MockModuleRepository) {
	t.Helper()
	modules := testutil.NewMockModuleRepository()
	svc := NewEnrollmentService(testutil.NewMockEnrollmentRepository(), modules, testutil.NewTestLogger())
	return svc, modules
}

func TestStartEnrollment(t *testing.T) {
	svc, modules := newEnrollmentService(t)
	ctx := context.Background()
	m := seedModule(t, modules, 1, 5)

	e, err := svc.Start(ctx, 1, m.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if e.Status != enrollment.StatusActive {
		t.Errorf("status = %q, want %q", e.Status, enrollment.StatusActive)
	}
	if e.CurrentDay != 1 {
		t.Errorf("currentDay = %d, want 1", e.CurrentDay)
	}
	if len(e.CompletedDays) != 0 {
		t.Errorf("completedDays = %d, want 0", len(e.CompletedDays))
	}
}

func TestStartEnrollmentDuplicateActive(t *testing.T) {
	svc, modules := newEnrollmentService(t)
	ctx := context.Background()
	m := seedModule(t, modules, 1, 5)

	if _, err := svc.Start(ctx, 1, m.ID); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	if _, err := svc.Start(ctx, 1, m.ID); !errors.Is(err, enrollment.ErrActiveExists) {
		t.Errorf("second Start() error = %v, want ErrActiveExists", err)
	}
}

func TestStartEnrollmentUnknownModule(t *testing.T) {
	svc, _ := newEnrollmentService(t)

	if _, err := svc.Start(context.Background(), 1, 99); !errors.Is(err, module.ErrNotFound) {
		t.Errorf("Start() error = %v, want module.ErrNotFound", err)
	}
}

func TestCompleteDayAdvancesAndGuards(t *testing.T) {
	svc, modules := newEnrollmentService(t)
	ctx := context.Background()
	m := seedModule(t, modules, 1, 5)
	e, _ := svc.Start(ctx, 1, m.ID)

	// Skipping ahead is rejected.
	if _, err := svc.CompleteDay(ctx, 1, e.ID, enrollment.DayCompletion{DayNumber: 2}); !errors.Is(err, enrollment.ErrWrongDay) {
		t.Errorf("skip-ahead error = %v, want ErrWrongDay", err)
	}

	summary := "Noticed a pattern of rushing"
	updated, err := svc.CompleteDay(ctx, 1, e.ID, enrollment.DayCompletion{
		DayNumber:         1,
		ReflectionSummary: &summary,
	})
	if err != nil {
		t.Fatalf("CompleteDay() error = %v", err)
	}
	if updated.CurrentDay != 2 {
		t.Errorf("currentDay = %d, want 2", updated.CurrentDay)
	}
	if len(updated.CompletedDays) != 1 {
		t.Fatalf("completedDays = %d, want 1", len(updated.CompletedDays))
	}
	if updated.CompletedDays[0].CompletedAt.IsZero() {
		t.Error("completedAt was not stamped")
	}

	// Completing the same day twice is rejected.
	if _, err := svc.CompleteDay(ctx, 1, e.ID, enrollment.DayCompletion{DayNumber: 1}); !errors.Is(err, enrollment.ErrWrongDay) {
		t.Errorf("duplicate-day error = %v, want ErrWrongDay", err)
	}
}

func TestFinishRequiresAllDays(t *testing.T) {
	svc, modules := newEnrollmentService(t)
	ctx := context.Background()
	m := seedModule(t, modules, 1, 5)
	e, _ := svc.Start(ctx, 1, m.ID)

	if _, err := svc.Finish(ctx, 1, e.ID); !errors.Is(err, enrollment.ErrNotFinished) {
		t.Errorf("early Finish() error = %v, want ErrNotFinished", err)
	}

	for day := 1; day <= m.TotalDays; day++ {
		if _, err := svc.CompleteDay(ctx, 1, e.ID, enrollment.DayCompletion{DayNumber: day}); err != nil {
			t.Fatalf("CompleteDay(%d) error = %v", day, err)
		}
	}

	done, err := svc.Finish(ctx, 1, e.ID)
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if done.Status != enrollment.StatusCompleted {
		t.Errorf("status = %q, want %q", done.Status, enrollment.StatusCompleted)
	}
	if done.CompletedAt == nil {
		t.Error("completedAt was not stamped")
	}

	// Terminal: no completing days, no finishing twice.
	if _, err := svc.CompleteDay(ctx, 1, e.ID, enrollment.DayCompletion{DayNumber: 6}); !errors.Is(err, enrollment.ErrNotActive) {
		t.Errorf("post-finish CompleteDay() error = %v, want ErrNotActive", err)
	}
	if _, err := svc.Finish(ctx, 1, e.ID); !errors.Is(err, enrollment.ErrNotActive) {
		t.Errorf("second Finish() error = %v, want ErrNotActive", err)
	}
}

func TestAbandon(t *testing.T) {
	svc, modules := newEnrollmentService(t)
	ctx := context.Background()
	m := seedModule(t, modules, 1, 5)
	e, _ := svc.Start(ctx, 1, m.ID)

	abandoned, err := svc.Abandon(ctx, 1, e.ID)
	if err != nil {
		t.Fatalf("Abandon() error = %v", err)
	}
	if abandoned.Status != enrollment.StatusAbandoned {
		t.Errorf("status = %q, want %q", abandoned.Status, enrollment.StatusAbandoned)
	}

	if _, err := svc.Abandon(ctx, 1, e.ID); !errors.Is(err, enrollment.ErrNotActive) {
		t.Errorf("second Abandon() error = %v, want ErrNotActive", err)
	}

	// A new enrollment for the same module may start once the old one
	// is no longer active.
	if _, err := svc.Start(ctx, 1, m.ID); err != nil {
		t.Errorf("restart after abandon error = %v", err)
	}
}

func TestEnrollmentScopedToUser(t *testing.T) {
	svc, modules := newEnrollmentService(t)
	ctx := context.Background()
	m := seedModule(t, modules, 1, 5)
	e, _ := svc.Start(ctx, 1, m.ID)

	if _, err := svc.GetByID(ctx, 2, e.ID); !errors.Is(err, enrollment.ErrNotFound) {
		t.Errorf("cross-user GetByID() error = %v, want ErrNotFound", err)
	}
}
