package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alora-app/alora/internal/auth"
)

const testSecret = "test-secret-key-that-is-long-enough"

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		if !ok {
			t.Error("GetUserID() not set on an authenticated request")
		}
		if userID != 42 {
			t.Errorf("GetUserID() = %d, want 42", userID)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	pair, err := auth.MintTokens(42, "sam@example.com", testSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddlewareCookieToken(t *testing.T) {
	pair, err := auth.MintTokens(42, "sam@example.com", testSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: pair.AccessToken})
	rec := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	expired, err := auth.MintTokens(42, "sam@example.com", testSecret, -time.Minute, -time.Minute)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	wrongSecret, err := auth.MintTokens(42, "sam@example.com", "some-other-secret-entirely", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"malformed header", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expired.AccessToken},
		{"wrong signing key", "Bearer " + wrongSecret.AccessToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler reached without valid credentials")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not the error envelope: %v", err)
			}
			if body.Success || body.Error.Code != "UNAUTHORIZED" {
				t.Errorf("error code = %q, want UNAUTHORIZED", body.Error.Code)
			}
		})
	}
}
