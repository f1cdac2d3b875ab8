// Package dto defines the request and response bodies of the HTTP API.
// Validation tags drive the per-field error details returned on 400s.
package dto

import (
	"time"

	"github.com/alora-app/alora/internal/auth"
	"github.com/alora-app/alora/internal/domain/user"
)

// RegisterRequest is the payload for POST /api/auth/register
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

// VerifyEmailRequest is the payload for POST /api/auth/verify-email
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// LoginRequest is the payload for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the payload for POST /api/auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ForgotPasswordRequest is the payload for POST /api/auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the payload for POST /api/auth/reset-password
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ExchangeSessionRequest is the payload for POST /api/auth/exchange-session
type ExchangeSessionRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// SocialGoogleRequest is the payload for POST /api/auth/social/google
type SocialGoogleRequest struct {
	Token string `json:"token" validate:"required"`
}

// SocialAppleRequest is the payload for POST /api/auth/social/apple
type SocialAppleRequest struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse pairs the user with a fresh token set.
type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
