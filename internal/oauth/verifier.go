package oauth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alora-app/alora/internal/domain/user"
)

const (
	googleTokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"
	appleKeysURL       = "https://appleid.apple.com/auth/keys"
	appleIssuer        = "https://appleid.apple.com"
)

// ErrInvalidIDToken is returned for any provider token that does not
// verify. Callers surface it as a generic authentication failure.
var ErrInvalidIDToken = errors.New("invalid identity token")

// IdentityVerifier verifies provider-issued identity tokens from the
// mobile SDK sign-in flows.
type IdentityVerifier interface {
	VerifyGoogle(ctx context.Context, idToken string) (*user.ExternalIdentity, error)
	VerifyApple(ctx context.Context, identityToken string) (*user.ExternalIdentity, error)
}

// Verifier verifies Google and Apple identity tokens against the
// providers' endpoints.
type Verifier struct {
	googleClientID string
	appleClientID  string
	httpClient     *http.Client
}

// NewVerifier creates a verifier bound to the app's provider client ids.
func NewVerifier(googleClientID, appleClientID string) *Verifier {
	return &Verifier{
		googleClientID: googleClientID,
		appleClientID:  appleClientID,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyGoogle validates a Google ID token via the tokeninfo endpoint
// and checks it was issued for this app.
func (v *Verifier) VerifyGoogle(ctx context.Context, idToken string) (*user.ExternalIdentity, error) {
	endpoint := googleTokeninfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidIDToken
	}

	var info struct {
		Sub           string `json:"sub"`
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding tokeninfo: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, ErrInvalidIDToken
	}
	if v.googleClientID != "" && info.Aud != v.googleClientID {
		return nil, ErrInvalidIDToken
	}

	return &user.ExternalIdentity{
		Provider: user.ProviderGoogle,
		Subject:  info.Sub,
		Email:    info.Email,
		Name:     info.Name,
	}, nil
}

// VerifyApple validates an Apple identity token against Apple's signing
// keys and checks issuer and audience.
func (v *Verifier) VerifyApple(ctx context.Context, identityToken string) (*user.ExternalIdentity, error) {
	keys, err := v.fetchAppleKeys(ctx)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(identityToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidIDToken
		}
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, ErrInvalidIDToken
		}
		return key, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidIDToken
	}

	iss, _ := claims["iss"].(string)
	if iss != appleIssuer {
		return nil, ErrInvalidIDToken
	}
	if v.appleClientID != "" {
		aud, _ := claims["aud"].(string)
		if aud != v.appleClientID {
			return nil, ErrInvalidIDToken
		}
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, ErrInvalidIDToken
	}

	return &user.ExternalIdentity{
		Provider: user.ProviderApple,
		Subject:  sub,
		Email:    email,
	}, nil
}

// fetchAppleKeys downloads Apple's JWKS and builds RSA public keys by kid.
func (v *Verifier) fetchAppleKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, appleKeysURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching apple keys: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Keys []struct {
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding apple keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(body.Keys))
	for _, k := range body.Keys {
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nb),
			E: int(new(big.Int).SetBytes(eb).Int64()),
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("apple keys response contained no usable keys")
	}
	return keys, nil
}
