package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alora-app/alora/internal/domain/resettoken"
	"github.com/alora-app/alora/internal/domain/user"
	"github.com/alora-app/alora/internal/testutil"
)

func newUserService(t *testing.T) (user.Service, *testutil.MockUserRepository, *testutil.MockTokenRepository, *testutil.MockMailer) {
	t.Helper()
	repo := testutil.NewMockUserRepository()
	tokens := testutil.NewMockTokenRepository()
	mail := testutil.NewMockMailer()
	svc := NewUserService(repo, tokens, mail, 4, testutil.NewTestLogger())
	return svc, repo, tokens, mail
}

func TestRegisterCreatesPendingUserAndEmailsCode(t *testing.T) {
	svc, _, tokens, mail := newUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "sam@example.com", "secret123", "Sam")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Status != user.StatusPending {
		t.Errorf("status = %q, want %q", u.Status, user.StatusPending)
	}
	if u.PasswordHash == "secret123" || u.PasswordHash == "" {
		t.Error("password was not hashed")
	}

	if len(mail.Sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mail.Sent))
	}
	code := tokens.LastCode(u.ID, resettoken.PurposeVerify)
	if code == "" {
		t.Fatal("no verification code was created")
	}
	if !strings.Contains(mail.Sent[0].Body, code) {
		t.Error("mail body does not contain the verification code")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "sam@example.com", "secret123", ""); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(ctx, "sam@example.com", "other456", "")
	if !errors.Is(err, user.ErrDuplicateEmail) {
		t.Errorf("error = %v, want ErrDuplicateEmail", err)
	}
}

func TestVerifyEmailActivatesAccount(t *testing.T) {
	svc, repo, tokens, _ := newUserService(t)
	ctx := context.Background()

	u, _ := svc.Register(ctx, "sam@example.com", "secret123", "")
	code := tokens.LastCode(u.ID, resettoken.PurposeVerify)

	verified, err := svc.VerifyEmail(ctx, "sam@example.com", code)
	if err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	if verified.Status != user.StatusActive {
		t.Errorf("status = %q, want %q", verified.Status, user.StatusActive)
	}
	if repo.Users[u.ID].Status != user.StatusActive {
		t.Error("activation was not persisted")
	}

	// The code is single-use.
	if err := tokens.Consume(ctx, u.ID, resettoken.PurposeVerify, code, time.Now()); !errors.Is(err, resettoken.ErrInvalidCode) {
		t.Errorf("second consume error = %v, want ErrInvalidCode", err)
	}
}

func TestVerifyEmailWrongCode(t *testing.T) {
	svc, _, _, _ := newUserService(t)
	ctx := context.Background()

	svc.Register(ctx, "sam@example.com", "secret123", "")
	_, err := svc.VerifyEmail(ctx, "sam@example.com", "000000x")
	if !errors.Is(err, resettoken.ErrInvalidCode) {
		t.Errorf("error = %v, want ErrInvalidCode", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, tokens, _ := newUserService(t)
	ctx := context.Background()

	u, _ := svc.Register(ctx, "sam@example.com", "secret123", "")

	// Pending accounts get a typed error so the client can prompt for
	// verification instead of showing "wrong password".
	if _, err := svc.Authenticate(ctx, "sam@example.com", "secret123"); !errors.Is(err, user.ErrEmailNotVerified) {
		t.Errorf("pending login error = %v, want ErrEmailNotVerified", err)
	}

	code := tokens.LastCode(u.ID, resettoken.PurposeVerify)
	if _, err := svc.VerifyEmail(ctx, "sam@example.com", code); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "sam@example.com", "secret123", nil},
		{"wrong password", "sam@example.com", "wrong", user.ErrInvalidCredentials},
		{"unknown email", "ghost@example.com", "secret123", user.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, _, mail := newUserService(t)

	if err := svc.RequestPasswordReset(context.Background(), "ghost@example.com"); err != nil {
		t.Errorf("RequestPasswordReset() error = %v, want nil", err)
	}
	if len(mail.Sent) != 0 {
		t.Errorf("sent %d mails for unknown email, want 0", len(mail.Sent))
	}
}

func TestResetPasswordFlow(t *testing.T) {
	svc, _, tokens, _ := newUserService(t)
	ctx := context.Background()

	u, _ := svc.Register(ctx, "sam@example.com", "secret123", "")
	svc.VerifyEmail(ctx, "sam@example.com", tokens.LastCode(u.ID, resettoken.PurposeVerify))

	if err := svc.RequestPasswordReset(ctx, "sam@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	code := tokens.LastCode(u.ID, resettoken.PurposeReset)

	if err := svc.ResetPassword(ctx, "sam@example.com", code, "newpass789"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	if _, err := svc.Authenticate(ctx, "sam@example.com", "secret123"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Error("old password still authenticates")
	}
	if _, err := svc.Authenticate(ctx, "sam@example.com", "newpass789"); err != nil {
		t.Errorf("new password does not authenticate: %v", err)
	}

	// The reset code is single-use.
	if err := svc.ResetPassword(ctx, "sam@example.com", code, "another000"); !errors.Is(err, resettoken.ErrInvalidCode) {
		t.Errorf("reused code error = %v, want ErrInvalidCode", err)
	}
}

func TestResolveExternal(t *testing.T) {
	svc, repo, _, _ := newUserService(t)
	ctx := context.Background()

	identity := user.ExternalIdentity{
		Provider: user.ProviderGoogle,
		Subject:  "google-sub-1",
		Email:    "sam@example.com",
		Name:     "Sam",
	}

	first, err := svc.ResolveExternal(ctx, identity)
	if err != nil {
		t.Fatalf("ResolveExternal() error = %v", err)
	}
	if first.Status != user.StatusActive {
		t.Errorf("status = %q, want %q", first.Status, user.StatusActive)
	}

	second, err := svc.ResolveExternal(ctx, identity)
	if err != nil {
		t.Fatalf("second ResolveExternal() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second resolve created user %d, want %d", second.ID, first.ID)
	}
	if len(repo.Users) != 1 {
		t.Errorf("user count = %d, want 1", len(repo.Users))
	}
}

func TestResolveExternalAttachesToPasswordAccount(t *testing.T) {
	svc, _, tokens, _ := newUserService(t)
	ctx := context.Background()

	u, _ := svc.Register(ctx, "sam@example.com", "secret123", "")
	svc.VerifyEmail(ctx, "sam@example.com", tokens.LastCode(u.ID, resettoken.PurposeVerify))

	resolved, err := svc.ResolveExternal(ctx, user.ExternalIdentity{
		Provider: user.ProviderApple,
		Subject:  "apple-sub-1",
		Email:    "sam@example.com",
	})
	if err != nil {
		t.Fatalf("ResolveExternal() error = %v", err)
	}
	if resolved.ID != u.ID {
		t.Errorf("resolved to user %d, want existing user %d", resolved.ID, u.ID)
	}
}
