package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alora-app/alora/internal/config"
	"github.com/alora-app/alora/internal/pkg/validator"
	"github.com/alora-app/alora/internal/services"
	"github.com/alora-app/alora/internal/testutil"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:          "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		BCryptCost:         4,
	}
}

func newAuthHandler(t *testing.T) (*AuthHandler, *testutil.MockTokenRepository) {
	t.Helper()
	tokens := testutil.NewMockTokenRepository()
	users := services.NewUserService(
		testutil.NewMockUserRepository(), tokens, testutil.NewMockMailer(), 4, testutil.NewTestLogger())
	return NewAuthHandler(users, validator.New(), testAuthConfig(), testutil.NewTestLogger()), tokens
}

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterValidation(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":    "not-an-email",
		"password": "123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Success {
		t.Error("success = true on a validation failure")
	}
	if resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", resp.Error.Code)
	}
	if resp.Error.Details["email"] == "" {
		t.Error("details has no entry for the invalid email")
	}
	if resp.Error.Details["password"] == "" {
		t.Error("details has no entry for the short password")
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	h, tokens := newAuthHandler(t)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":    "sam@example.com",
		"password": "secret123",
		"name":     "Sam",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	// Login before verification is refused with a typed error, not a
	// generic credential failure.
	rec = postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "sam@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unverified login status = %d, want 403", rec.Code)
	}

	rec = postJSON(t, h.VerifyEmail, "/api/auth/verify-email", map[string]string{
		"email": "sam@example.com",
		"code":  tokens.LastCode(1, "email_verification"),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "sam@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
			Tokens struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			} `json:"tokens"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Tokens.AccessToken == "" || resp.Data.Tokens.RefreshToken == "" {
		t.Error("login response is missing tokens")
	}
	if resp.Data.User.Email != "sam@example.com" {
		t.Errorf("user email = %q", resp.Data.User.Email)
	}
}

func TestLoginInvalidCredentialsAreGeneric(t *testing.T) {
	h, _ := newAuthHandler(t)

	// Unknown account and wrong password produce byte-identical error
	// payloads so the endpoint cannot be used to probe for accounts.
	unknown := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "ghost@example.com", "password": "whatever1",
	})
	if unknown.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", unknown.Code)
	}

	var resp errorEnvelope
	if err := json.Unmarshal(unknown.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Error.Code != "INVALID_CREDENTIALS" {
		t.Errorf("code = %q, want INVALID_CREDENTIALS", resp.Error.Code)
	}
}
