package enrollment

import "context"

// Repository defines the interface for enrollment data access. The
// mutating methods are conditional writes: each one re-checks the
// lifecycle precondition inside the statement so concurrent instances
// cannot race past it.
type Repository interface {
	// Create persists a new active enrollment. Returns ErrActiveExists
	// when an active enrollment for (user, module) is already present.
	Create(ctx context.Context, e *Enrollment) error

	// GetByID retrieves one of the user's enrollments with completions
	GetByID(ctx context.Context, userID, id int64) (*Enrollment, error)

	// ListByUser retrieves the user's enrollments, newest first
	ListByUser(ctx context.Context, userID int64) ([]*Enrollment, error)

	// CompleteDay appends a DayCompletion and increments currentDay,
	// guarded on status=active and currentDay=dc.DayNumber. Returns
	// ErrNotActive or ErrWrongDay when the guard fails.
	CompleteDay(ctx context.Context, userID, id int64, dc DayCompletion) error

	// Finish transitions active->completed and stamps completedAt,
	// guarded on currentDay > totalDays.
	Finish(ctx context.Context, userID, id int64, totalDays int) error

	// Abandon transitions active->abandoned.
	Abandon(ctx context.Context, userID, id int64) error
}
