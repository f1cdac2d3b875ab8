package dto

// StartEnrollmentRequest is the payload for POST /api/enrollments
type StartEnrollmentRequest struct {
	ModuleID int64 `json:"moduleId" validate:"required,gt=0"`
}

// CompleteDayRequest is the payload for
// POST /api/enrollments/{id}/complete-day. When a voice transcript is
// sent without a reflection summary, the server summarizes it.
type CompleteDayRequest struct {
	DayNumber         int     `json:"dayNumber" validate:"required,gt=0"`
	ReflectionSummary *string `json:"reflectionSummary" validate:"omitempty,max=1000"`
	VoiceTranscript   *string `json:"voiceTranscript" validate:"omitempty"`
	ShiftAction       *string `json:"shiftAction" validate:"omitempty,max=1000"`
	VoiceSessionID    *string `json:"voiceSessionId" validate:"omitempty,max=100"`
}

// ContentResponse wraps a generated piece of day content.
type ContentResponse struct {
	Content string `json:"content"`
}
