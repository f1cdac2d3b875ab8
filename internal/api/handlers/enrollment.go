package handlers

import (
	"context"
	"net/http"

	"github.com/alora-app/alora/internal/api/dto"
	"github.com/alora-app/alora/internal/api/middleware"
	"github.com/alora-app/alora/internal/domain/enrollment"
	"github.com/alora-app/alora/internal/pkg/utils"
	"github.com/alora-app/alora/internal/pkg/validator"
	"github.com/alora-app/alora/internal/services"
)

// EnrollmentHandler handles the enrollment lifecycle and the generated
// per-day content endpoints.
type EnrollmentHandler struct {
	enrollments enrollment.Service
	content     *services.ContentService
	validator   *validator.Validator
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollments enrollment.Service, content *services.ContentService, v *validator.Validator) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		content:     content,
		validator:   v,
	}
}

// Start handles POST /api/enrollments
func (h *EnrollmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	var req dto.StartEnrollmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	e, err := h.enrollments.Start(r.Context(), userID, req.ModuleID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, e)
}

// List handles GET /api/enrollments
func (h *EnrollmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	enrollments, err := h.enrollments.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if enrollments == nil {
		enrollments = []*enrollment.Enrollment{}
	}
	utils.WriteSuccess(w, http.StatusOK, enrollments)
}

// Get handles GET /api/enrollments/{id}
func (h *EnrollmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	e, err := h.enrollments.GetByID(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, e)
}

// CompleteDay handles POST /api/enrollments/{id}/complete-day. A voice
// transcript sent without a summary is summarized server-side before
// the completion is recorded.
func (h *EnrollmentHandler) CompleteDay(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req dto.CompleteDayRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	summary := req.ReflectionSummary
	if summary == nil && req.VoiceTranscript != nil && *req.VoiceTranscript != "" {
		s, err := h.content.SummarizeTranscript(r.Context(), userID, id, *req.VoiceTranscript)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		summary = &s
	}

	e, err := h.enrollments.CompleteDay(r.Context(), userID, id, enrollment.DayCompletion{
		DayNumber:         req.DayNumber,
		ReflectionSummary: summary,
		ShiftAction:       req.ShiftAction,
		VoiceSessionID:    req.VoiceSessionID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, e)
}

// Finish handles POST /api/enrollments/{id}/finish
func (h *EnrollmentHandler) Finish(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	e, err := h.enrollments.Finish(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, e)
}

// Abandon handles POST /api/enrollments/{id}/abandon
func (h *EnrollmentHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	e, err := h.enrollments.Abandon(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, e)
}

// DayFrame handles GET /api/enrollments/{id}/day/frame
func (h *EnrollmentHandler) DayFrame(w http.ResponseWriter, r *http.Request) {
	h.dayContent(w, r, h.content.DayFrame)
}

// DayVoice handles GET /api/enrollments/{id}/day/voice
func (h *EnrollmentHandler) DayVoice(w http.ResponseWriter, r *http.Request) {
	h.dayContent(w, r, h.content.DayVoice)
}

// DayShift handles GET /api/enrollments/{id}/day/shift
func (h *EnrollmentHandler) DayShift(w http.ResponseWriter, r *http.Request) {
	h.dayContent(w, r, h.content.DayShift)
}

// Quote handles GET /api/enrollments/{id}/quote
func (h *EnrollmentHandler) Quote(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	content, err := h.content.CompletionQuote(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.ContentResponse{Content: content})
}

type contentFunc func(ctx context.Context, userID, enrollmentID int64, language string) (string, error)

func (h *EnrollmentHandler) dayContent(w http.ResponseWriter, r *http.Request, fn contentFunc) {
	userID, _ := middleware.GetUserID(r)
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	content, err := fn(r.Context(), userID, id, r.URL.Query().Get("language"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.ContentResponse{Content: content})
}
