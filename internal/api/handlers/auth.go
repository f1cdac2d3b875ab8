package handlers

import (
	"net/http"

	"github.com/alora-app/alora/internal/api/dto"
	"github.com/alora-app/alora/internal/api/middleware"
	"github.com/alora-app/alora/internal/auth"
	"github.com/alora-app/alora/internal/config"
	"github.com/alora-app/alora/internal/domain/user"
	"github.com/alora-app/alora/internal/pkg/errors"
	"github.com/alora-app/alora/internal/pkg/logger"
	"github.com/alora-app/alora/internal/pkg/utils"
	"github.com/alora-app/alora/internal/pkg/validator"
)

// AuthHandler handles account registration and password authentication.
type AuthHandler struct {
	users     user.Service
	validator *validator.Validator
	cfg       config.AuthConfig
	logger    *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users user.Service, v *validator.Validator, cfg config.AuthConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		validator: v,
		cfg:       cfg,
		logger:    log,
	}
}

func (h *AuthHandler) mintTokens(w http.ResponseWriter, u *user.User) (auth.TokenPair, bool) {
	tokens, err := auth.MintTokens(u.ID, u.Email, h.cfg.JWTSecret, h.cfg.AccessTokenExpiry, h.cfg.RefreshTokenExpiry)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to mint tokens")
		utils.WriteError(w, errors.Internal("Something went wrong", err))
		return auth.TokenPair{}, false
	}
	return tokens, true
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusCreated,
		"Check your email for a verification code", dto.NewUserResponse(u))
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, err := h.users.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	tokens, ok := h.mintTokens(w, u)
	if !ok {
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{User: dto.NewUserResponse(u), Tokens: tokens})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	tokens, ok := h.mintTokens(w, u)
	if !ok {
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{User: dto.NewUserResponse(u), Tokens: tokens})
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	claims, err := auth.ParseClaims(req.RefreshToken, h.cfg.JWTSecret)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
		return
	}

	tokens, ok := h.mintTokens(w, u)
	if !ok {
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{User: dto.NewUserResponse(u), Tokens: tokens})
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.users.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	// Same response whether or not the account exists.
	utils.WriteSuccessWithMessage(w, http.StatusOK,
		"If the email is registered, a reset code is on its way", nil)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Password updated", nil)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.NewUserResponse(u))
}
