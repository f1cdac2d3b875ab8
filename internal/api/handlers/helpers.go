package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alora-app/alora/internal/domain/enrollment"
	"github.com/alora-app/alora/internal/domain/module"
	"github.com/alora-app/alora/internal/domain/resettoken"
	"github.com/alora-app/alora/internal/domain/user"
	"github.com/alora-app/alora/internal/pkg/validator"
	"github.com/alora-app/alora/internal/services"
	"github.com/alora-app/alora/internal/session"

	apperrors "github.com/alora-app/alora/internal/pkg/errors"
	"github.com/alora-app/alora/internal/pkg/utils"
)

// decodeAndValidate decodes the JSON body into dst and validates it.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validator, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, apperrors.BadRequest("Invalid request body"))
		return false
	}
	if details := v.Validate(dst); details != nil {
		utils.WriteError(w, apperrors.ValidationError("Validation failed", details))
		return false
	}
	return true
}

// idParam parses the {id} URL parameter.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteError(w, apperrors.BadRequest("Invalid id"))
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain errors onto the API error envelope.
// Anything unmapped surfaces as a generic 500 with the internal error
// attached for logging, never for the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		utils.WriteError(w, appErr)
		return
	}

	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		utils.WriteError(w, apperrors.InvalidCredentials("Invalid email or password"))
	case errors.Is(err, user.ErrEmailNotVerified):
		utils.WriteError(w, apperrors.Forbidden("Email is not verified"))
	case errors.Is(err, user.ErrDuplicateEmail):
		utils.WriteError(w, apperrors.Conflict("Email is already registered"))
	case errors.Is(err, user.ErrNotFound):
		utils.WriteError(w, apperrors.NotFound("User"))
	case errors.Is(err, resettoken.ErrInvalidCode):
		utils.WriteError(w, apperrors.BadRequest("Invalid or expired code"))
	case errors.Is(err, session.ErrExpired):
		utils.WriteError(w, apperrors.InvalidCredentials("Invalid or expired session"))
	case errors.Is(err, module.ErrNotFound):
		utils.WriteError(w, apperrors.NotFound("Module"))
	case errors.Is(err, enrollment.ErrNotFound):
		utils.WriteError(w, apperrors.NotFound("Enrollment"))
	case errors.Is(err, enrollment.ErrActiveExists):
		utils.WriteError(w, apperrors.Conflict("An active enrollment already exists for this module"))
	case errors.Is(err, enrollment.ErrNotActive):
		utils.WriteError(w, apperrors.InvalidState("Enrollment is not active"))
	case errors.Is(err, enrollment.ErrWrongDay):
		utils.WriteError(w, apperrors.InvalidState("Day does not match the current day"))
	case errors.Is(err, enrollment.ErrNotFinished):
		utils.WriteError(w, apperrors.InvalidState("Not all days are completed"))
	case errors.Is(err, services.ErrBadGeneration):
		utils.WriteError(w, apperrors.GenerationError("Generation produced invalid content", err))
	default:
		utils.WriteError(w, apperrors.Internal("Something went wrong", err))
	}
}
