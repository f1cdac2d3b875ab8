package client

import "time"

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// User is the public view of an account.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair carries an access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse pairs the user with a fresh token set.
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// Day is one day of a coaching module.
type Day struct {
	DayNumber            int    `json:"day_number"`
	Title                string `json:"title"`
	FrameworkName        string `json:"framework_name"`
	FrameworkDescription string `json:"framework_description"`
	ReflectionPrompt     string `json:"reflection_prompt"`
	ShiftFocus           string `json:"shift_focus"`
}

// Module is a generated multi-day coaching curriculum.
type Module struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TotalDays   int       `json:"total_days"`
	Days        []Day     `json:"days"`
	CreatedAt   time.Time `json:"created_at"`
}

// Subscription is a user's billing state.
type Subscription struct {
	Plan           string   `json:"plan"`
	Status         string   `json:"status"`
	EntitlementIDs []string `json:"entitlement_ids"`
}
