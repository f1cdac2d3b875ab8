package module

import (
	"errors"
	"time"
)

// Module is a generated multi-day coaching curriculum.
type Module struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TotalDays   int       `json:"total_days"`
	Days        []Day     `json:"days"`
	CreatedAt   time.Time `json:"created_at"`
}

// Day pairs a named framework with a reflection prompt and a shift focus.
type Day struct {
	DayNumber            int    `json:"day_number"`
	Title                string `json:"title"`
	FrameworkName        string `json:"framework_name"`
	FrameworkDescription string `json:"framework_description"`
	ReflectionPrompt     string `json:"reflection_prompt"`
	ShiftFocus           string `json:"shift_focus"`
}

// A generation run produces 2-3 modules of 5-7 days each.
const (
	MinModules = 2
	MaxModules = 3
	MinDays    = 5
	MaxDays    = 7
)

var ErrNotFound = errors.New("module not found")
