package services

import (
	"context"
	"time"

	"github.com/alora-app/alora/internal/domain/enrollment"
	"github.com/alora-app/alora/internal/domain/module"
	"github.com/alora-app/alora/internal/domain/user"
	"github.com/alora-app/alora/internal/llm"
	"github.com/alora-app/alora/internal/pkg/logger"
	"github.com/alora-app/alora/internal/pkg/metrics"
	"github.com/alora-app/alora/internal/prompt"
)

// ContentService generates the per-day coaching content for an active
// enrollment: the daily frame reading, voice-session instructions, the
// shift micro-action and the completion quote.
type ContentService struct {
	enrollments enrollment.Repository
	modules     module.Repository
	users       user.Repository
	llm         llm.Completer
	logger      *logger.Logger
}

// NewContentService creates a new content service
func NewContentService(enrollments enrollment.Repository, modules module.Repository, users user.Repository, completer llm.Completer, log *logger.Logger) *ContentService {
	return &ContentService{
		enrollments: enrollments,
		modules:     modules,
		users:       users,
		llm:         completer,
		logger:      log,
	}
}

// dayState is the loaded context shared by the per-day stages.
type dayState struct {
	enrollment *enrollment.Enrollment
	module     *module.Module
	day        module.Day
	summaries  []string
}

// loadCurrentDay loads an active enrollment positioned on a remaining day.
func (s *ContentService) loadCurrentDay(ctx context.Context, userID, enrollmentID int64) (*dayState, error) {
	e, err := s.enrollments.GetByID(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.Status != enrollment.StatusActive {
		return nil, enrollment.ErrNotActive
	}

	m, err := s.modules.GetByID(ctx, userID, e.ModuleID)
	if err != nil {
		return nil, err
	}
	if e.CurrentDay > m.TotalDays {
		return nil, enrollment.ErrNotFinished
	}

	return &dayState{
		enrollment: e,
		module:     m,
		day:        m.Days[e.CurrentDay-1],
		summaries:  reflectionSummaries(e.CompletedDays),
	}, nil
}

func (st *dayState) dayContext() prompt.DayContext {
	return prompt.DayContext{
		ModuleTitle:          st.module.Title,
		DayNumber:            st.day.DayNumber,
		TotalDays:            st.module.TotalDays,
		DayTitle:             st.day.Title,
		FrameworkName:        st.day.FrameworkName,
		FrameworkDescription: st.day.FrameworkDescription,
	}
}

// DayFrame generates the current day's introductory reading.
func (s *ContentService) DayFrame(ctx context.Context, userID, enrollmentID int64, language string) (string, error) {
	st, err := s.loadCurrentDay(ctx, userID, enrollmentID)
	if err != nil {
		return "", err
	}
	return s.complete(ctx, "frame", prompt.Frame(prompt.FrameInput{
		Day:            st.dayContext(),
		PriorSummaries: st.summaries,
		Language:       language,
	}))
}

// DayVoice generates the current day's voice-session instructions.
func (s *ContentService) DayVoice(ctx context.Context, userID, enrollmentID int64, language string) (string, error) {
	st, err := s.loadCurrentDay(ctx, userID, enrollmentID)
	if err != nil {
		return "", err
	}
	return s.complete(ctx, "voice", prompt.Voice(prompt.VoiceInput{
		Day:              st.dayContext(),
		ReflectionPrompt: st.day.ReflectionPrompt,
		PriorSummaries:   st.summaries,
		Language:         language,
	}))
}

// DayShift generates the current day's closing micro-action, grounded in
// the most recent reflection when one exists.
func (s *ContentService) DayShift(ctx context.Context, userID, enrollmentID int64, language string) (string, error) {
	st, err := s.loadCurrentDay(ctx, userID, enrollmentID)
	if err != nil {
		return "", err
	}

	var lastSummary string
	if n := len(st.summaries); n > 0 {
		lastSummary = st.summaries[n-1]
	}

	return s.complete(ctx, "shift", prompt.Shift(prompt.ShiftInput{
		Day:               st.dayContext(),
		ShiftFocus:        st.day.ShiftFocus,
		ReflectionSummary: lastSummary,
		Language:          language,
	}))
}

// SummarizeTranscript condenses a voice-session transcript into the
// short reflection summary stored with the day's completion.
func (s *ContentService) SummarizeTranscript(ctx context.Context, userID, enrollmentID int64, transcript string) (string, error) {
	st, err := s.loadCurrentDay(ctx, userID, enrollmentID)
	if err != nil {
		return "", err
	}
	return s.complete(ctx, "summary", prompt.Summary(prompt.SummaryInput{
		Transcript:       transcript,
		FrameworkName:    st.day.FrameworkName,
		ReflectionPrompt: st.day.ReflectionPrompt,
	}))
}

// CompletionQuote generates the shareable quote for a finished enrollment.
func (s *ContentService) CompletionQuote(ctx context.Context, userID, enrollmentID int64) (string, error) {
	e, err := s.enrollments.GetByID(ctx, userID, enrollmentID)
	if err != nil {
		return "", err
	}
	if e.Status != enrollment.StatusCompleted {
		return "", enrollment.ErrNotFinished
	}

	m, err := s.modules.GetByID(ctx, userID, e.ModuleID)
	if err != nil {
		return "", err
	}

	var userName string
	if u, err := s.users.GetByID(ctx, userID); err == nil && u.Name != nil {
		userName = *u.Name
	}

	var actions []string
	for _, dc := range e.CompletedDays {
		if dc.ShiftAction != nil && *dc.ShiftAction != "" {
			actions = append(actions, *dc.ShiftAction)
		}
	}

	return s.complete(ctx, "quote", prompt.Quote(prompt.QuoteInput{
		ModuleTitle: m.Title,
		TotalDays:   m.TotalDays,
		Reflections: reflectionSummaries(e.CompletedDays),
		Actions:     actions,
		UserName:    userName,
	}))
}

func (s *ContentService) complete(ctx context.Context, stage string, p prompt.Prompt) (string, error) {
	start := time.Now()
	out, err := s.llm.Complete(ctx, p)
	if err != nil {
		metrics.RecordGeneration(stage, "error", time.Since(start))
		s.logger.ErrorWithErr(err, "Content generation failed")
		return "", err
	}
	metrics.RecordGeneration(stage, "success", time.Since(start))
	return out, nil
}

func reflectionSummaries(completions []enrollment.DayCompletion) []string {
	var out []string
	for _, dc := range completions {
		if dc.ReflectionSummary != nil && *dc.ReflectionSummary != "" {
			out = append(out, *dc.ReflectionSummary)
		}
	}
	return out
}
