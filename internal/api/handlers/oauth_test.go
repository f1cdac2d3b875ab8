package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alora-app/alora/internal/config"
	"github.com/alora-app/alora/internal/domain/user"
	"github.com/alora-app/alora/internal/pkg/validator"
	"github.com/alora-app/alora/internal/services"
	"github.com/alora-app/alora/internal/session"
	"github.com/alora-app/alora/internal/testutil"
)

func newOAuthHandler(t *testing.T) (*OAuthHandler, *testutil.MemorySessionStore, user.Service) {
	t.Helper()
	users := services.NewUserService(
		testutil.NewMockUserRepository(), testutil.NewMockTokenRepository(),
		testutil.NewMockMailer(), 4, testutil.NewTestLogger())
	sessions := testutil.NewMemorySessionStore()

	cfg := &config.Config{}
	cfg.Auth = testAuthConfig()
	cfg.Session.TTL = 2 * time.Minute
	cfg.Server.MobileErrorURL = "alora://auth/error"

	h := NewOAuthHandler(nil, nil, users, sessions, validator.New(), cfg, testutil.NewTestLogger())
	return h, sessions, users
}

func TestExchangeSessionIsSingleUse(t *testing.T) {
	h, sessions, users := newOAuthHandler(t)
	ctx := context.Background()

	u, err := users.ResolveExternal(ctx, user.ExternalIdentity{
		Provider: user.ProviderGoogle,
		Subject:  "google-sub-1",
		Email:    "sam@example.com",
	})
	if err != nil {
		t.Fatalf("resolving identity: %v", err)
	}

	id, err := sessions.Mint(ctx, session.Identity{UserID: u.ID, Email: u.Email}, time.Minute)
	if err != nil {
		t.Fatalf("minting session: %v", err)
	}

	first := postJSON(t, h.ExchangeSession, "/api/auth/exchange-session", map[string]string{"sessionId": id})
	if first.Code != http.StatusOK {
		t.Fatalf("first exchange status = %d, want 200: %s", first.Code, first.Body.String())
	}

	second := postJSON(t, h.ExchangeSession, "/api/auth/exchange-session", map[string]string{"sessionId": id})
	if second.Code != http.StatusUnauthorized {
		t.Fatalf("second exchange status = %d, want 401", second.Code)
	}
}

func TestExchangeSessionUnknownAndExpired(t *testing.T) {
	h, sessions, users := newOAuthHandler(t)
	ctx := context.Background()

	u, _ := users.ResolveExternal(ctx, user.ExternalIdentity{
		Provider: user.ProviderGoogle,
		Subject:  "google-sub-1",
		Email:    "sam@example.com",
	})
	expired, _ := sessions.Mint(ctx, session.Identity{UserID: u.ID, Email: u.Email}, -time.Second)

	tests := []struct {
		name      string
		sessionID string
	}{
		{"unknown id", "sess-does-not-exist"},
		{"expired id", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.ExchangeSession, "/api/auth/exchange-session", map[string]string{"sessionId": tt.sessionID})
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestExchangeSessionMissingID(t *testing.T) {
	h, _, _ := newOAuthHandler(t)

	rec := postJSON(t, h.ExchangeSession, "/api/auth/exchange-session", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
