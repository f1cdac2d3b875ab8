package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alora-app/alora/internal/domain/enrollment"
	"github.com/alora-app/alora/internal/prompt"
	"github.com/alora-app/alora/internal/testutil"
)

type contentFixture struct {
	svc         *ContentService
	enrollments enrollment.Service
	completer   *testutil.MockCompleter
	moduleID    int64
	enrollID    int64
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()
	modules := testutil.NewMockModuleRepository()
	enrollRepo := testutil.NewMockEnrollmentRepository()
	users := testutil.NewMockUserRepository()
	completer := &testutil.MockCompleter{Response: "generated content"}
	log := testutil.NewTestLogger()

	m := seedModule(t, modules, 1, 5)
	enrollments := NewEnrollmentService(enrollRepo, modules, log)
	e, err := enrollments.Start(context.Background(), 1, m.ID)
	if err != nil {
		t.Fatalf("starting enrollment: %v", err)
	}

	return &contentFixture{
		svc:         NewContentService(enrollRepo, modules, users, completer, log),
		enrollments: enrollments,
		completer:   completer,
		moduleID:    m.ID,
		enrollID:    e.ID,
	}
}

func (f *contentFixture) completeAll(t *testing.T, summaries []string) {
	t.Helper()
	for day := 1; day <= 5; day++ {
		dc := enrollment.DayCompletion{DayNumber: day}
		if day <= len(summaries) && summaries[day-1] != "" {
			s := summaries[day-1]
			dc.ReflectionSummary = &s
		}
		if _, err := f.enrollments.CompleteDay(context.Background(), 1, f.enrollID, dc); err != nil {
			t.Fatalf("CompleteDay(%d) error = %v", day, err)
		}
	}
	if _, err := f.enrollments.Finish(context.Background(), 1, f.enrollID); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
}

func (f *contentFixture) lastPrompt(t *testing.T) prompt.Prompt {
	t.Helper()
	if len(f.completer.Prompts) == 0 {
		t.Fatal("no prompt was sent")
	}
	return f.completer.Prompts[len(f.completer.Prompts)-1]
}

func TestDayFrameUsesCurrentDay(t *testing.T) {
	f := newContentFixture(t)

	out, err := f.svc.DayFrame(context.Background(), 1, f.enrollID, "")
	if err != nil {
		t.Fatalf("DayFrame() error = %v", err)
	}
	if out != "generated content" {
		t.Errorf("output = %q", out)
	}

	p := f.lastPrompt(t)
	if !strings.Contains(p.User, "Day 1 of 5") {
		t.Errorf("prompt is not positioned on day 1:\n%s", p.User)
	}
	if !strings.Contains(p.User, "Box Breathing") {
		t.Error("prompt does not name the framework")
	}
}

func TestDayVoiceCarriesPriorSummaries(t *testing.T) {
	f := newContentFixture(t)
	summary := "Found calm before meetings"
	if _, err := f.enrollments.CompleteDay(context.Background(), 1, f.enrollID, enrollment.DayCompletion{
		DayNumber:         1,
		ReflectionSummary: &summary,
	}); err != nil {
		t.Fatalf("CompleteDay() error = %v", err)
	}

	if _, err := f.svc.DayVoice(context.Background(), 1, f.enrollID, "Spanish"); err != nil {
		t.Fatalf("DayVoice() error = %v", err)
	}

	p := f.lastPrompt(t)
	if !strings.Contains(p.User, "Day 2 of 5") {
		t.Error("prompt did not advance to day 2")
	}
	if !strings.Contains(p.User, summary) {
		t.Error("prompt does not carry the prior reflection summary")
	}
	if !strings.Contains(p.System, "Respond only in Spanish") {
		t.Error("system prompt does not constrain the language")
	}
}

func TestDayContentRequiresActiveEnrollment(t *testing.T) {
	f := newContentFixture(t)
	if _, err := f.enrollments.Abandon(context.Background(), 1, f.enrollID); err != nil {
		t.Fatalf("Abandon() error = %v", err)
	}

	if _, err := f.svc.DayFrame(context.Background(), 1, f.enrollID, ""); !errors.Is(err, enrollment.ErrNotActive) {
		t.Errorf("DayFrame() error = %v, want ErrNotActive", err)
	}
}

func TestCompletionQuote(t *testing.T) {
	f := newContentFixture(t)

	// Before completion the quote is refused.
	if _, err := f.svc.CompletionQuote(context.Background(), 1, f.enrollID); !errors.Is(err, enrollment.ErrNotFinished) {
		t.Errorf("early CompletionQuote() error = %v, want ErrNotFinished", err)
	}

	f.completeAll(t, []string{"Learned to pause", "Stopped rushing"})

	if _, err := f.svc.CompletionQuote(context.Background(), 1, f.enrollID); err != nil {
		t.Fatalf("CompletionQuote() error = %v", err)
	}
	p := f.lastPrompt(t)
	if !strings.Contains(p.User, "Learned to pause") {
		t.Error("prompt does not carry the reflections")
	}
	if !strings.Contains(p.User, prompt.NoActionsPlaceholder) {
		t.Error("empty action list did not render its placeholder")
	}
}

func TestCompletionQuoteWithNoReflections(t *testing.T) {
	f := newContentFixture(t)
	f.completeAll(t, nil)

	if _, err := f.svc.CompletionQuote(context.Background(), 1, f.enrollID); err != nil {
		t.Fatalf("CompletionQuote() error = %v", err)
	}
	if !strings.Contains(f.lastPrompt(t).User, prompt.NoReflectionsPlaceholder) {
		t.Error("empty reflection list did not render its placeholder")
	}
}
