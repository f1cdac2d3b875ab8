package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/alora-app/alora/internal/api/handlers"
	"github.com/alora-app/alora/internal/api/middleware"
	"github.com/alora-app/alora/internal/config"
	"github.com/alora-app/alora/internal/pkg/logger"
	"github.com/alora-app/alora/internal/pkg/metrics"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	OAuth        *handlers.OAuthHandler
	Module       *handlers.ModuleHandler
	Enrollment   *handlers.EnrollmentHandler
	Subscription *handlers.SubscriptionHandler
	Webhook      *handlers.WebhookHandler
}

// New builds the HTTP routing tree.
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware())

	// Public routes
	r.Group(func(r chi.Router) {
		// Swagger documentation
		r.Get("/swagger/*", httpSwagger.WrapHandler)

		// Health checks and metrics
		r.Get("/health", h.Health.Health)
		r.Get("/healthz", h.Health.Health)
		r.Get("/readyz", h.Health.Ready)
		r.Method(http.MethodGet, "/metrics", metrics.Handler())

		// Account and token endpoints
		r.Post("/api/auth/register", h.Auth.Register)
		r.Post("/api/auth/verify-email", h.Auth.VerifyEmail)
		r.Post("/api/auth/login", h.Auth.Login)
		r.Post("/api/auth/refresh", h.Auth.Refresh)
		r.Post("/api/auth/forgot-password", h.Auth.ForgotPassword)
		r.Post("/api/auth/reset-password", h.Auth.ResetPassword)

		// OAuth flows and session exchange
		r.Get("/api/auth/google", h.OAuth.GoogleRedirect)
		r.Get("/api/auth/google/callback", h.OAuth.GoogleCallback)
		r.Post("/api/auth/exchange-session", h.OAuth.ExchangeSession)
		r.Post("/api/auth/social/google", h.OAuth.SocialGoogle)
		r.Post("/api/auth/social/apple", h.OAuth.SocialApple)
	})

	// Billing webhook (shared-secret auth, not user auth)
	r.Group(func(r chi.Router) {
		r.Use(middleware.WebhookAuth(cfg.Billing.WebhookSecret))
		r.Post("/api/webhooks/billing", h.Webhook.Billing)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		r.Get("/api/auth/me", h.Auth.Me)

		r.Route("/api/modules", func(r chi.Router) {
			r.Get("/", h.Module.List)
			r.Post("/generate", h.Module.Generate)
			r.Get("/{id}", h.Module.Get)
		})

		r.Route("/api/enrollments", func(r chi.Router) {
			r.Get("/", h.Enrollment.List)
			r.Post("/", h.Enrollment.Start)
			r.Get("/{id}", h.Enrollment.Get)
			r.Post("/{id}/complete-day", h.Enrollment.CompleteDay)
			r.Post("/{id}/finish", h.Enrollment.Finish)
			r.Post("/{id}/abandon", h.Enrollment.Abandon)
			r.Get("/{id}/day/frame", h.Enrollment.DayFrame)
			r.Get("/{id}/day/voice", h.Enrollment.DayVoice)
			r.Get("/{id}/day/shift", h.Enrollment.DayShift)
			r.Get("/{id}/quote", h.Enrollment.Quote)
		})

		r.Get("/api/subscription", h.Subscription.Get)
	})

	return r
}
