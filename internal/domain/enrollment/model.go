package enrollment

import (
	"errors"
	"time"
)

// Enrollment tracks a user's pass through one generated module. At most
// one active enrollment may exist per (user, module); the storage layer
// enforces this with a partial unique index, not application locking.
type Enrollment struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"-"`
	ModuleID      int64           `json:"module_id"`
	Status        string          `json:"status"`
	CurrentDay    int             `json:"current_day"`
	CompletedDays []DayCompletion `json:"completed_days"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// DayCompletion is an embedded, append-only record of one finished day.
type DayCompletion struct {
	DayNumber         int       `json:"day_number"`
	CompletedAt       time.Time `json:"completed_at"`
	ReflectionSummary *string   `json:"reflection_summary,omitempty"`
	ShiftAction       *string   `json:"shift_action,omitempty"`
	VoiceSessionID    *string   `json:"voice_session_id,omitempty"`
}

// Enrollment statuses. Only active is initial; completed and abandoned
// are terminal with no transition back.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// Typed lifecycle failures.
var (
	ErrNotFound     = errors.New("enrollment not found")
	ErrActiveExists = errors.New("an active enrollment already exists for this module")
	ErrNotActive    = errors.New("enrollment is not active")
	ErrWrongDay     = errors.New("day does not match the current day")
	ErrNotFinished  = errors.New("not all days are completed")
)
