package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alora-app/alora/internal/domain/enrollment"
)

// EnrollmentRepository implements enrollment.Repository
type EnrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB) enrollment.Repository {
	return &EnrollmentRepository{db: db}
}

// Create persists a new active enrollment. The partial unique index on
// (user_id, module_id) WHERE status='active' turns a concurrent second
// start into a unique violation.
func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		INSERT INTO enrollments (user_id, module_id, status, current_day, started_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		e.UserID, e.ModuleID, e.Status, e.CurrentDay, e.StartedAt.Unix(),
	).Scan(&e.ID)
	if isUniqueViolation(err) {
		return enrollment.ErrActiveExists
	}
	if err != nil {
		return fmt.Errorf("creating enrollment: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's enrollments with its completions
func (r *EnrollmentRepository) GetByID(ctx context.Context, userID, id int64) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	var startedAt int64
	var completedAt sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, module_id, status, current_day, started_at, completed_at
		FROM enrollments WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(&e.ID, &e.UserID, &e.ModuleID, &e.Status, &e.CurrentDay, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, enrollment.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting enrollment: %w", err)
	}
	e.StartedAt = time.Unix(startedAt, 0)
	e.CompletedAt = timePtr(completedAt)

	if e.CompletedDays, err = r.loadCompletions(ctx, e.ID); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByUser retrieves the user's enrollments, newest first
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID int64) ([]*enrollment.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, module_id, status, current_day, started_at, completed_at
		FROM enrollments WHERE user_id = $1
		ORDER BY id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*enrollment.Enrollment
	for rows.Next() {
		var e enrollment.Enrollment
		var startedAt int64
		var completedAt sql.NullInt64
		if err := rows.Scan(&e.ID, &e.UserID, &e.ModuleID, &e.Status, &e.CurrentDay, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning enrollment: %w", err)
		}
		e.StartedAt = time.Unix(startedAt, 0)
		e.CompletedAt = timePtr(completedAt)
		enrollments = append(enrollments, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range enrollments {
		if e.CompletedDays, err = r.loadCompletions(ctx, e.ID); err != nil {
			return nil, err
		}
	}
	return enrollments, nil
}

// CompleteDay advances currentDay and appends the completion in one
// transaction. The UPDATE re-checks status and day inside the statement
// so concurrent completions of the same day cannot both pass.
func (r *EnrollmentRepository) CompleteDay(ctx context.Context, userID, id int64, dc enrollment.DayCompletion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE enrollments SET current_day = current_day + 1
		WHERE user_id = $1 AND id = $2 AND status = 'active' AND current_day = $3
	`, userID, id, dc.DayNumber)
	if err != nil {
		return fmt.Errorf("advancing enrollment: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return r.diagnose(ctx, userID, id, dc.DayNumber)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO day_completions
			(enrollment_id, day_number, completed_at, reflection_summary, shift_action, voice_session_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, dc.DayNumber, dc.CompletedAt.Unix(), dc.ReflectionSummary, dc.ShiftAction, dc.VoiceSessionID)
	if err != nil {
		return fmt.Errorf("recording day completion: %w", err)
	}

	return tx.Commit()
}

// Finish transitions active->completed, guarded on every day being done.
func (r *EnrollmentRepository) Finish(ctx context.Context, userID, id int64, totalDays int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE enrollments SET status = 'completed', completed_at = $1
		WHERE user_id = $2 AND id = $3 AND status = 'active' AND current_day > $4
	`, time.Now().Unix(), userID, id, totalDays)
	if err != nil {
		return fmt.Errorf("finishing enrollment: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		if err := r.diagnose(ctx, userID, id, -1); err != enrollment.ErrWrongDay {
			return err
		}
		return enrollment.ErrNotFinished
	}
	return nil
}

// Abandon transitions active->abandoned.
func (r *EnrollmentRepository) Abandon(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE enrollments SET status = 'abandoned'
		WHERE user_id = $1 AND id = $2 AND status = 'active'
	`, userID, id)
	if err != nil {
		return fmt.Errorf("abandoning enrollment: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		if err := r.diagnose(ctx, userID, id, -1); err != enrollment.ErrWrongDay {
			return err
		}
		return enrollment.ErrNotActive
	}
	return nil
}

// diagnose turns a failed guarded UPDATE into the typed lifecycle error.
func (r *EnrollmentRepository) diagnose(ctx context.Context, userID, id int64, wantDay int) error {
	var status string
	var currentDay int
	err := r.db.QueryRowContext(ctx, `
		SELECT status, current_day FROM enrollments WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(&status, &currentDay)
	if err == sql.ErrNoRows {
		return enrollment.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading enrollment: %w", err)
	}
	if status != enrollment.StatusActive {
		return enrollment.ErrNotActive
	}
	if wantDay >= 0 && currentDay != wantDay {
		return enrollment.ErrWrongDay
	}
	return enrollment.ErrWrongDay
}

func (r *EnrollmentRepository) loadCompletions(ctx context.Context, enrollmentID int64) ([]enrollment.DayCompletion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day_number, completed_at, reflection_summary, shift_action, voice_session_id
		FROM day_completions WHERE enrollment_id = $1
		ORDER BY day_number
	`, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("loading day completions: %w", err)
	}
	defer rows.Close()

	var completions []enrollment.DayCompletion
	for rows.Next() {
		var dc enrollment.DayCompletion
		var completedAt int64
		var summary, action, voiceID sql.NullString
		if err := rows.Scan(&dc.DayNumber, &completedAt, &summary, &action, &voiceID); err != nil {
			return nil, fmt.Errorf("scanning day completion: %w", err)
		}
		dc.CompletedAt = time.Unix(completedAt, 0)
		if summary.Valid {
			dc.ReflectionSummary = &summary.String
		}
		if action.Valid {
			dc.ShiftAction = &action.String
		}
		if voiceID.Valid {
			dc.VoiceSessionID = &voiceID.String
		}
		completions = append(completions, dc)
	}
	return completions, rows.Err()
}
