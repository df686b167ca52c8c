package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gr8terthings/signup-proxy/internal/config"
	"github.com/gr8terthings/signup-proxy/internal/infra/http/handlers"
	"github.com/gr8terthings/signup-proxy/internal/infra/http/middleware"
	"github.com/gr8terthings/signup-proxy/internal/infra/integration/airtable"
	"github.com/gr8terthings/signup-proxy/internal/infra/integration/emailoctopus"
	"github.com/gr8terthings/signup-proxy/internal/infra/integration/mailersend"
	"github.com/gr8terthings/signup-proxy/internal/infra/mail"
	"github.com/gr8terthings/signup-proxy/internal/infra/queue"
	"github.com/gr8terthings/signup-proxy/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the public signup API and the admin server",
		Long: `Run the public signup API and, unless ADMIN_ADDR is empty, the admin
server exposing /metrics and /healthz.

Configuration is read from the environment and an optional .env file.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Failure outbox (optional)
	var outbox middleware.FailureReporter
	var broker handlers.Pinger
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Printf("⚠️ failure outbox disabled: %v", err)
		} else {
			defer rabbit.Close()
			outbox = queue.NewProducer(rabbit.Ch)
			broker = rabbit
		}
	}

	// 2. Use cases
	subscribeUC, surveyUC := buildUseCases(cfg, middleware.CountFailures(outbox))

	// 3. Router
	var limiter *handlers.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = handlers.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		defer limiter.Stop()
	}
	router := handlers.NewRouter(
		handlers.NewSubscribeHandler(subscribeUC, logger),
		handlers.NewSurveyHandler(surveyUC, logger),
		handlers.RouterOptions{
			Logger:         logger,
			AllowedOrigins: cfg.AllowedOrigins,
			RateLimiter:    limiter,
			TrustProxy:     cfg.TrustProxy,
		},
	)

	servers := []*http.Server{{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if cfg.AdminAddr != "" {
		health := handlers.NewHealthHandler(broker, integrationStatus(cfg), Version)
		servers = append(servers, &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           adminRouter(health),
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	return run(ctx, logger, servers)
}

func buildUseCases(cfg config.Config, failures usecase.FailureReporter) (*usecase.SubscribeUseCase, *usecase.SurveyUseCase) {
	logger := cfg.Logger

	records := airtable.NewClient(cfg.AirtableToken, cfg.AirtableBaseID, cfg.AirtableTableID, cfg.AirtableURL, cfg.HTTPTimeout)

	var list usecase.ListStore
	if cfg.ListStoreEnabled() {
		list = emailoctopus.NewClient(cfg.EOAPIKey, cfg.EOListID, cfg.EOURL, cfg.HTTPTimeout)
	} else {
		logger.Println("⚠️ EO_API_KEY/EO_LIST_ID not set, list mirroring disabled")
	}

	mailer := newMailer(cfg)
	if mailer == nil {
		logger.Println("⚠️ no mailer configured, opt-in and alert emails disabled")
	}

	return usecase.NewSubscribeUseCase(records, list, mailer, failures, logger),
		usecase.NewSurveyUseCase(records, mailer, failures, logger)
}

// newMailer prefers MailerSend and falls back to SMTP.
func newMailer(cfg config.Config) usecase.Mailer {
	switch {
	case cfg.MailerSendEnabled():
		return mailersend.NewClient(mailersend.Options{
			APIKey:          cfg.MailerSendAPIKey,
			BaseURL:         cfg.MailerSendURL,
			OptInTemplateID: cfg.MailerSendOptInTemplate,
			From:            mailersend.Recipient{Email: cfg.MailFrom, Name: cfg.MailFromName},
			AlertTo:         mailersend.Recipient{Email: cfg.AlertTo, Name: cfg.AlertToName},
			Timeout:         cfg.HTTPTimeout,
		}, cfg.Logger)
	case cfg.SMTPEnabled():
		return mail.NewEmailSender(
			cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword,
			cfg.MailFrom, cfg.MailFromName, cfg.AlertTo, cfg.OptInURL,
		)
	default:
		return nil
	}
}

func integrationStatus(cfg config.Config) map[string]bool {
	return map[string]bool{
		"airtable":     true,
		"emailoctopus": cfg.ListStoreEnabled(),
		"mailersend":   cfg.MailerSendEnabled(),
		"smtp":         cfg.SMTPEnabled(),
	}
}

func adminRouter(health *handlers.HealthHandler) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", health.Handle)
	return r
}

// run serves until ctx is cancelled or any server fails, then shuts all of them down.
func run(ctx context.Context, logger *log.Logger, servers []*http.Server) error {
	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Printf("🔥 listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Println("⚠️ shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("❌ shutdown %s: %v", srv.Addr, err)
		}
	}
	return runErr
}
