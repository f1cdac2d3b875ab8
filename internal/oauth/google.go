package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/alora-app/alora/internal/config"
	"github.com/alora-app/alora/internal/domain/user"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleFlow runs the server-side Google OAuth redirect flow.
type GoogleFlow struct {
	conf *oauth2.Config
}

// NewGoogleFlow builds the flow from config. Returns nil when Google
// OAuth is not configured; the handlers answer 503 in that case.
func NewGoogleFlow(cfg config.GoogleOAuthConfig) *GoogleFlow {
	if cfg.ClientID == "" {
		return nil
	}
	return &GoogleFlow{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthCodeURL returns the provider consent-screen URL for a state value.
func (g *GoogleFlow) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for tokens and resolves the
// user's profile into a verified identity.
func (g *GoogleFlow) Exchange(ctx context.Context, code string) (*user.ExternalIdentity, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	client := g.conf.Client(ctx, tok)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned %d", resp.StatusCode)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("userinfo response missing id or email")
	}

	return &user.ExternalIdentity{
		Provider: user.ProviderGoogle,
		Subject:  info.ID,
		Email:    info.Email,
		Name:     info.Name,
	}, nil
}

// RandomState returns an unguessable state value for the redirect flow.
func RandomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
