package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/alora-app/alora/internal/auth"
	"github.com/alora-app/alora/internal/domain/resettoken"
	"github.com/alora-app/alora/internal/domain/user"
	"github.com/alora-app/alora/internal/mailer"
	"github.com/alora-app/alora/internal/pkg/logger"
	"github.com/alora-app/alora/internal/pkg/metrics"
)

// UserService implements user.Service
type UserService struct {
	repo       user.Repository
	tokens     resettoken.Repository
	mail       mailer.Mailer
	bcryptCost int
	logger     *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, tokens resettoken.Repository, mail mailer.Mailer, bcryptCost int, log *logger.Logger) user.Service {
	return &UserService{
		repo:       repo,
		tokens:     tokens,
		mail:       mail,
		bcryptCost: bcryptCost,
		logger:     log,
	}
}

// Register creates a pending account and emails a verification code.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*user.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		Status:       user.StatusPending,
	}
	if name != "" {
		u.Name = &name
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if err := s.issueCode(ctx, u, resettoken.PurposeVerify,
		"Verify your email", "Your verification code is %s. It expires in 15 minutes."); err != nil {
		// The account exists; the user can request a fresh code.
		s.logger.ErrorWithErr(err, "Failed to send verification code")
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
	}).Info("User registered")

	return u, nil
}

// VerifyEmail consumes a verification code and activates the account.
func (s *UserService) VerifyEmail(ctx context.Context, email, code string) (*user.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, resettoken.ErrInvalidCode
		}
		return nil, err
	}

	if u.Status == user.StatusActive {
		return u, nil
	}

	if err := s.tokens.Consume(ctx, u.ID, resettoken.PurposeVerify, code, time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Activate(ctx, u.ID); err != nil {
		return nil, err
	}

	u.Status = user.StatusActive
	s.logger.WithFields(map[string]interface{}{"user_id": u.ID}).Info("Email verified")
	return u, nil
}

// Authenticate checks credentials for an active account. Unknown email
// and wrong password both come back as ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			metrics.RecordLogin("password", "failure")
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	if u.PasswordHash == "" || auth.CheckPassword(u.PasswordHash, password) != nil {
		metrics.RecordLogin("password", "failure")
		return nil, user.ErrInvalidCredentials
	}

	if u.Status != user.StatusActive {
		metrics.RecordLogin("password", "failure")
		return nil, user.ErrEmailNotVerified
	}

	metrics.RecordLogin("password", "success")
	return u, nil
}

// RequestPasswordReset emails a reset code. Unknown emails succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.issueCode(ctx, u, resettoken.PurposeReset,
		"Reset your password", "Your password reset code is %s. It expires in 15 minutes."); err != nil {
		s.logger.ErrorWithErr(err, "Failed to send reset code")
		return err
	}
	return nil
}

// ResetPassword consumes a reset code and replaces the password.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return resettoken.ErrInvalidCode
		}
		return err
	}

	if err := s.tokens.Consume(ctx, u.ID, resettoken.PurposeReset, code, time.Now()); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{"user_id": u.ID}).Info("Password reset")
	return nil
}

// ResolveExternal upserts a user from a verified OAuth identity.
func (s *UserService) ResolveExternal(ctx context.Context, identity user.ExternalIdentity) (*user.User, error) {
	u, err := s.repo.UpsertExternal(ctx, identity)
	if err != nil {
		metrics.RecordLogin(identity.Provider, "failure")
		return nil, err
	}
	metrics.RecordLogin(identity.Provider, "success")
	return u, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) issueCode(ctx context.Context, u *user.User, purpose, subject, bodyFormat string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	t := &resettoken.Token{
		UserID:    u.ID,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: time.Now().Add(resettoken.DefaultTTL),
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return err
	}

	return s.mail.Send(ctx, u.Email, subject, fmt.Sprintf(bodyFormat, code))
}

// generateCode returns a 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
