package handlers

import (
	"net/http"

	"github.com/alora-app/alora/internal/api/dto"
	"github.com/alora-app/alora/internal/api/middleware"
	"github.com/alora-app/alora/internal/domain/module"
	"github.com/alora-app/alora/internal/domain/user"
	"github.com/alora-app/alora/internal/pkg/utils"
	"github.com/alora-app/alora/internal/pkg/validator"
)

// ModuleHandler handles module generation and lookup.
type ModuleHandler struct {
	modules   module.Service
	users     user.Service
	validator *validator.Validator
}

// NewModuleHandler creates a new module handler
func NewModuleHandler(modules module.Service, users user.Service, v *validator.Validator) *ModuleHandler {
	return &ModuleHandler{
		modules:   modules,
		users:     users,
		validator: v,
	}
}

// Generate handles POST /api/modules/generate
func (h *ModuleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	var req dto.GenerateModulesRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	var userName string
	if u, err := h.users.GetByID(r.Context(), userID); err == nil && u.Name != nil {
		userName = *u.Name
	}

	modules, err := h.modules.Generate(r.Context(), userID, req.PersonalContext, userName, req.Language)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, modules)
}

// List handles GET /api/modules
func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	modules, err := h.modules.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if modules == nil {
		modules = []*module.Module{}
	}
	utils.WriteSuccess(w, http.StatusOK, modules)
}

// Get handles GET /api/modules/{id}
func (h *ModuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	m, err := h.modules.GetByID(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, m)
}
