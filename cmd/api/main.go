// Package main is the entry point for the Alora API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alora-app/alora/internal/api/handlers"
	"github.com/alora-app/alora/internal/api/router"
	"github.com/alora-app/alora/internal/config"
	"github.com/alora-app/alora/internal/jobs"
	"github.com/alora-app/alora/internal/llm"
	"github.com/alora-app/alora/internal/mailer"
	"github.com/alora-app/alora/internal/oauth"
	"github.com/alora-app/alora/internal/pkg/logger"
	"github.com/alora-app/alora/internal/pkg/validator"
	"github.com/alora-app/alora/internal/repository/postgres"
	"github.com/alora-app/alora/internal/services"
	"github.com/alora-app/alora/internal/session"
)

// @title Alora API
// @version 1.0
// @description Backend API for the Alora personal-coaching app.
// @BasePath /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	log.Infof("starting alora api (env=%s)", cfg.Server.Environment)

	db, err := postgres.Open(cfg.Database)
	if err != nil {
		log.ErrorWithErr(err, "failed to open database")
		os.Exit(1)
	}
	defer db.Close()

	sessions, err := session.NewRedisStore(context.Background(), cfg.Redis)
	if err != nil {
		log.ErrorWithErr(err, "failed to connect to redis")
		os.Exit(1)
	}
	defer sessions.Close()

	userRepo := postgres.NewUserRepository(db)
	moduleRepo := postgres.NewModuleRepository(db)
	enrollmentRepo := postgres.NewEnrollmentRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)

	completer := llm.New(cfg.LLM.OpenAIAPIKey, cfg.LLM.Model)
	mail := mailer.NewSMTP(cfg.Mail)

	userSvc := services.NewUserService(userRepo, tokenRepo, mail, cfg.Auth.BCryptCost, log)
	moduleSvc := services.NewModuleService(moduleRepo, completer, log)
	enrollmentSvc := services.NewEnrollmentService(enrollmentRepo, moduleRepo, log)
	subscriptionSvc := services.NewSubscriptionService(subscriptionRepo, log)
	contentSvc := services.NewContentService(enrollmentRepo, moduleRepo, userRepo, completer, log)

	sweeper := jobs.NewSweeper(tokenRepo, log)
	if err := sweeper.Start(); err != nil {
		log.ErrorWithErr(err, "failed to start token sweeper")
		os.Exit(1)
	}
	defer sweeper.Stop()

	v := validator.New()
	googleFlow := oauth.NewGoogleFlow(cfg.OAuth.Google)
	verifier := oauth.NewVerifier(cfg.OAuth.Google.ClientID, cfg.OAuth.Apple.ClientID)

	h := &router.Handlers{
		Health:       handlers.NewHealthHandler(db),
		Auth:         handlers.NewAuthHandler(userSvc, v, cfg.Auth, log),
		OAuth:        handlers.NewOAuthHandler(googleFlow, verifier, userSvc, sessions, v, cfg, log),
		Module:       handlers.NewModuleHandler(moduleSvc, userSvc, v),
		Enrollment:   handlers.NewEnrollmentHandler(enrollmentSvc, contentSvc, v),
		Subscription: handlers.NewSubscriptionHandler(subscriptionSvc),
		Webhook:      handlers.NewWebhookHandler(subscriptionSvc, v),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.ErrorWithErr(err, "server error")
		os.Exit(1)
	case sig := <-quit:
		log.Infof("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.ErrorWithErr(err, "graceful shutdown failed")
		os.Exit(1)
	}
	log.Info("server stopped")
}
