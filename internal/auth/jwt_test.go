package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMintTokens(t *testing.T) {
	pair, err := MintTokens(42, "test@example.com", "test-secret", 15*time.Minute, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("MintTokens() returned empty token")
	}

	access, err := ParseClaims(pair.AccessToken, "test-secret")
	if err != nil {
		t.Fatalf("ParseClaims(access) error = %v", err)
	}
	refresh, err := ParseClaims(pair.RefreshToken, "test-secret")
	if err != nil {
		t.Fatalf("ParseClaims(refresh) error = %v", err)
	}

	if access.UserID != 42 || access.Email != "test@example.com" {
		t.Errorf("access claims = %+v, want uid 42 email test@example.com", access)
	}
	if !refresh.ExpiresAt.After(access.ExpiresAt.Time) {
		t.Error("refresh token should outlive access token")
	}
}

func TestMintTokens_MissingSecret(t *testing.T) {
	_, err := MintTokens(1, "a@b.c", "", time.Minute, time.Hour)
	if !errors.Is(err, ErrMissingSecret) {
		t.Errorf("MintTokens() error = %v, want ErrMissingSecret", err)
	}
}

func TestParseClaims_Tampered(t *testing.T) {
	pair, err := MintTokens(1, "a@b.c", "test-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", pair.AccessToken},
		{"garbage", "not.a.token"},
		{"flipped payload", tamper(pair.AccessToken)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := "test-secret"
			if tt.name == "wrong secret" {
				secret = "other-secret"
			}
			_, err := ParseClaims(tt.token, secret)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ParseClaims() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestParseClaims_Expired(t *testing.T) {
	pair, err := MintTokens(1, "a@b.c", "test-secret", -time.Minute, -time.Minute)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	_, err = ParseClaims(pair.AccessToken, "test-secret")
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ParseClaims() error = %v, want ErrExpiredToken", err)
	}
}

// tamper flips a character in the token payload so the signature no
// longer matches.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	payload := parts[1]
	var b byte = 'A'
	if payload[0] == 'A' {
		b = 'B'
	}
	parts[1] = string(b) + payload[1:]
	return strings.Join(parts, ".")
}
