package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/alora-app/alora/internal/api/dto"
	"github.com/alora-app/alora/internal/auth"
	"github.com/alora-app/alora/internal/config"
	"github.com/alora-app/alora/internal/domain/user"
	"github.com/alora-app/alora/internal/oauth"
	"github.com/alora-app/alora/internal/pkg/errors"
	"github.com/alora-app/alora/internal/pkg/logger"
	"github.com/alora-app/alora/internal/pkg/metrics"
	"github.com/alora-app/alora/internal/pkg/utils"
	"github.com/alora-app/alora/internal/pkg/validator"
	"github.com/alora-app/alora/internal/session"
)

const stateTTL = 10 * time.Minute

// OAuthHandler handles the Google redirect flow, SDK token sign-in and
// the single-use session exchange that hands the browser flow back to
// the mobile app.
type OAuthHandler struct {
	flow      *oauth.GoogleFlow
	verifier  oauth.IdentityVerifier
	users     user.Service
	sessions  session.Store
	validator *validator.Validator
	authCfg   config.AuthConfig
	serverCfg config.ServerConfig
	ttl       time.Duration
	logger    *logger.Logger
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(flow *oauth.GoogleFlow, verifier oauth.IdentityVerifier, users user.Service,
	sessions session.Store, v *validator.Validator, cfg *config.Config, log *logger.Logger) *OAuthHandler {
	return &OAuthHandler{
		flow:      flow,
		verifier:  verifier,
		users:     users,
		sessions:  sessions,
		validator: v,
		authCfg:   cfg.Auth,
		serverCfg: cfg.Server,
		ttl:       cfg.Session.TTL,
		logger:    log,
	}
}

// GoogleRedirect handles GET /api/auth/google. It stores the caller's
// redirect URI under an unguessable state value and bounces the browser
// to the consent screen.
func (h *OAuthHandler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	if h.flow == nil {
		utils.WriteErrorMessage(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Google sign-in is not configured")
		return
	}

	redirectURI := r.URL.Query().Get("redirectUri")
	if redirectURI == "" {
		utils.WriteError(w, errors.BadRequest("redirectUri is required"))
		return
	}
	if _, err := url.Parse(redirectURI); err != nil {
		utils.WriteError(w, errors.BadRequest("redirectUri is not a valid URL"))
		return
	}

	state := oauth.RandomState()
	if err := h.sessions.PutState(r.Context(), state, redirectURI, stateTTL); err != nil {
		h.logger.ErrorWithErr(err, "Failed to store OAuth state")
		utils.WriteError(w, errors.Internal("Something went wrong", err))
		return
	}

	http.Redirect(w, r, h.flow.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback handles GET /api/auth/google/callback. Success mints a
// single-use session id and redirects to the stored URI; every failure
// lands on the fixed mobile error URL so the app can show one screen.
func (h *OAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.flow == nil {
		http.Redirect(w, r, h.serverCfg.MobileErrorURL, http.StatusFound)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		http.Redirect(w, r, h.serverCfg.MobileErrorURL, http.StatusFound)
		return
	}

	redirectURI, err := h.sessions.TakeState(r.Context(), state)
	if err != nil {
		h.logger.ErrorWithErr(err, "OAuth state did not resolve")
		http.Redirect(w, r, h.serverCfg.MobileErrorURL, http.StatusFound)
		return
	}

	identity, err := h.flow.Exchange(r.Context(), code)
	if err != nil {
		h.logger.ErrorWithErr(err, "Google code exchange failed")
		http.Redirect(w, r, h.serverCfg.MobileErrorURL, http.StatusFound)
		return
	}

	u, err := h.users.ResolveExternal(r.Context(), *identity)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to resolve Google identity")
		http.Redirect(w, r, h.serverCfg.MobileErrorURL, http.StatusFound)
		return
	}

	sessionID, err := h.sessions.Mint(r.Context(), session.Identity{UserID: u.ID, Email: u.Email}, h.ttl)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to mint session")
		http.Redirect(w, r, h.serverCfg.MobileErrorURL, http.StatusFound)
		return
	}

	target := redirectURI
	if u, err := url.Parse(redirectURI); err == nil {
		q := u.Query()
		q.Set("sessionId", sessionID)
		u.RawQuery = q.Encode()
		target = u.String()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// ExchangeSession handles POST /api/auth/exchange-session. The session
// id is single-use: a second exchange of the same id fails like an
// expired one.
func (h *OAuthHandler) ExchangeSession(w http.ResponseWriter, r *http.Request) {
	var req dto.ExchangeSessionRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	identity, err := h.sessions.Exchange(r.Context(), req.SessionID)
	if err != nil {
		metrics.RecordSessionExchange("failure")
		writeServiceError(w, err)
		return
	}

	u, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		metrics.RecordSessionExchange("failure")
		writeServiceError(w, err)
		return
	}

	tokens, err := auth.MintTokens(u.ID, u.Email, h.authCfg.JWTSecret,
		h.authCfg.AccessTokenExpiry, h.authCfg.RefreshTokenExpiry)
	if err != nil {
		metrics.RecordSessionExchange("failure")
		utils.WriteError(w, errors.Internal("Something went wrong", err))
		return
	}

	metrics.RecordSessionExchange("success")
	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{User: dto.NewUserResponse(u), Tokens: tokens})
}

// SocialGoogle handles POST /api/auth/social/google: sign-in with an ID
// token obtained by the mobile Google SDK.
func (h *OAuthHandler) SocialGoogle(w http.ResponseWriter, r *http.Request) {
	var req dto.SocialGoogleRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	identity, err := h.verifier.VerifyGoogle(r.Context(), req.Token)
	if err != nil {
		utils.WriteError(w, errors.InvalidCredentials("Invalid identity token"))
		return
	}
	h.respondWithIdentity(w, r, identity)
}

// SocialApple handles POST /api/auth/social/apple: sign-in with an
// Apple identity token.
func (h *OAuthHandler) SocialApple(w http.ResponseWriter, r *http.Request) {
	var req dto.SocialAppleRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	identity, err := h.verifier.VerifyApple(r.Context(), req.IdentityToken)
	if err != nil {
		utils.WriteError(w, errors.InvalidCredentials("Invalid identity token"))
		return
	}
	h.respondWithIdentity(w, r, identity)
}

func (h *OAuthHandler) respondWithIdentity(w http.ResponseWriter, r *http.Request, identity *user.ExternalIdentity) {
	u, err := h.users.ResolveExternal(r.Context(), *identity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	tokens, err := auth.MintTokens(u.ID, u.Email, h.authCfg.JWTSecret,
		h.authCfg.AccessTokenExpiry, h.authCfg.RefreshTokenExpiry)
	if err != nil {
		utils.WriteError(w, errors.Internal("Something went wrong", err))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{User: dto.NewUserResponse(u), Tokens: tokens})
}
