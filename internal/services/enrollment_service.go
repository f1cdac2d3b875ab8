package services

import (
	"context"
	"time"

	"github.com/alora-app/alora/internal/domain/enrollment"
	"github.com/alora-app/alora/internal/domain/module"
	"github.com/alora-app/alora/internal/pkg/logger"
)

// EnrollmentService implements enrollment.Service
type EnrollmentService struct {
	repo    enrollment.Repository
	modules module.Repository
	logger  *logger.Logger
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(repo enrollment.Repository, modules module.Repository, log *logger.Logger) enrollment.Service {
	return &EnrollmentService{
		repo:    repo,
		modules: modules,
		logger:  log,
	}
}

// Start begins an enrollment at day 1 with no completions. The storage
// layer rejects a second active enrollment for the same module.
func (s *EnrollmentService) Start(ctx context.Context, userID, moduleID int64) (*enrollment.Enrollment, error) {
	if _, err := s.modules.GetByID(ctx, userID, moduleID); err != nil {
		return nil, err
	}

	e := &enrollment.Enrollment{
		UserID:     userID,
		ModuleID:   moduleID,
		Status:     enrollment.StatusActive,
		CurrentDay: 1,
		StartedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":       userID,
		"module_id":     moduleID,
		"enrollment_id": e.ID,
	}).Info("Enrollment started")

	return e, nil
}

// CompleteDay records a finished day and advances currentDay. The day
// must be the current one: no skipping ahead, no completing twice.
func (s *EnrollmentService) CompleteDay(ctx context.Context, userID, id int64, dc enrollment.DayCompletion) (*enrollment.Enrollment, error) {
	if dc.CompletedAt.IsZero() {
		dc.CompletedAt = time.Now()
	}
	if err := s.repo.CompleteDay(ctx, userID, id, dc); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}

// Finish transitions to completed once every day is done.
func (s *EnrollmentService) Finish(ctx context.Context, userID, id int64) (*enrollment.Enrollment, error) {
	e, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	m, err := s.modules.GetByID(ctx, userID, e.ModuleID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Finish(ctx, userID, id, m.TotalDays); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":       userID,
		"enrollment_id": id,
	}).Info("Enrollment completed")

	return s.repo.GetByID(ctx, userID, id)
}

// Abandon exits an active enrollment permanently.
func (s *EnrollmentService) Abandon(ctx context.Context, userID, id int64) (*enrollment.Enrollment, error) {
	if err := s.repo.Abandon(ctx, userID, id); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":       userID,
		"enrollment_id": id,
	}).Info("Enrollment abandoned")

	return s.repo.GetByID(ctx, userID, id)
}

// GetByID retrieves one of the user's enrollments
func (s *EnrollmentService) GetByID(ctx context.Context, userID, id int64) (*enrollment.Enrollment, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// ListByUser retrieves the user's enrollments
func (s *EnrollmentService) ListByUser(ctx context.Context, userID int64) ([]*enrollment.Enrollment, error) {
	return s.repo.ListByUser(ctx, userID)
}
