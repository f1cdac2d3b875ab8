package enrollment

import "context"

// Service defines the interface for the enrollment lifecycle
type Service interface {
	// Start begins an enrollment at day 1 with no completions
	Start(ctx context.Context, userID, moduleID int64) (*Enrollment, error)

	// CompleteDay records a finished day and advances currentDay
	CompleteDay(ctx context.Context, userID, id int64, dc DayCompletion) (*Enrollment, error)

	// Finish transitions to completed once every day is done
	Finish(ctx context.Context, userID, id int64) (*Enrollment, error)

	// Abandon exits an active enrollment permanently
	Abandon(ctx context.Context, userID, id int64) (*Enrollment, error)

	// GetByID retrieves one of the user's enrollments
	GetByID(ctx context.Context, userID, id int64) (*Enrollment, error)

	// ListByUser retrieves the user's enrollments
	ListByUser(ctx context.Context, userID int64) ([]*Enrollment, error)
}
