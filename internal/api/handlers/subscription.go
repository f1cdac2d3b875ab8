package handlers

import (
	"net/http"

	"github.com/alora-app/alora/internal/api/middleware"
	"github.com/alora-app/alora/internal/domain/subscription"
	"github.com/alora-app/alora/internal/pkg/utils"
)

// SubscriptionHandler serves the current user's subscription state.
type SubscriptionHandler struct {
	subscriptions subscription.Service
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Get handles GET /api/subscription
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	sub, err := h.subscriptions.GetByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, sub)
}
