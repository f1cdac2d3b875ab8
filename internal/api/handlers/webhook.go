package handlers

import (
	"net/http"

	"github.com/alora-app/alora/internal/api/dto"
	"github.com/alora-app/alora/internal/domain/subscription"
	"github.com/alora-app/alora/internal/pkg/errors"
	"github.com/alora-app/alora/internal/pkg/utils"
	"github.com/alora-app/alora/internal/pkg/validator"
)

// WebhookHandler ingests billing provider deliveries.
type WebhookHandler struct {
	subscriptions subscription.Service
	validator     *validator.Validator
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(subscriptions subscription.Service, v *validator.Validator) *WebhookHandler {
	return &WebhookHandler{
		subscriptions: subscriptions,
		validator:     v,
	}
}

// Billing handles POST /api/webhooks/billing. Duplicates and stale
// events get a 200 with applied=false so the provider stops retrying.
func (h *WebhookHandler) Billing(w http.ResponseWriter, r *http.Request) {
	var req dto.BillingEventRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	applied, err := h.subscriptions.ProcessEvent(r.Context(), &subscription.Event{
		EventID:        req.EventID,
		Type:           req.Type,
		UserID:         req.UserID,
		Plan:           req.Plan,
		Status:         req.Status,
		EntitlementIDs: req.EntitlementIDs,
		OccurredAt:     req.OccurredAt,
	})
	if err != nil {
		utils.WriteError(w, errors.BadRequest(err.Error()))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.BillingEventResponse{Applied: applied})
}
