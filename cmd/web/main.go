package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"learnora.com/app/internal/config"
	"learnora.com/app/internal/database"
	"learnora.com/app/internal/events"
	"learnora.com/app/internal/mailer"
	apphttp "learnora.com/app/internal/http"
	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/entitlements"
	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/internal/modules/receipts"
	"learnora.com/app/internal/modules/users"
	"learnora.com/app/internal/storage"
)

func main() {
	cfg, err := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDSN)
	if err != nil {
		return err
	}

	store, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("storage ready", "driver", store.Driver)

	verifier, err := payments.NewVerifier(cfg.Gateway.KeySecret, cfg.Gateway.WebhookSecret)
	if err != nil {
		return err
	}

	userRepo := users.NewRepo(db)
	courseRepo := courses.NewGormRepo(db)

	var subscribers events.Fanout
	if cfg.RabbitURL != "" {
		rabbit := events.NewRabbit(cfg.RabbitURL, cfg.EventsExchange)
		if err := rabbit.Connect(); err != nil {
			return err
		}
		defer rabbit.Close()
		subscribers = append(subscribers, rabbit)
		logger.Info("event publisher ready", "exchange", cfg.EventsExchange)
	}
	if cfg.Mail.Enabled() {
		notifier := receipts.NewNotifier(mailer.NewSMTPMailer(cfg.Mail.SMTP), userRepo, courseRepo, cfg.Mail.From, cfg.Mail.FromName)
		notifier.SetLogger(logger)
		subscribers = append(subscribers, notifier)
		logger.Info("receipt emails enabled", "smtp_host", cfg.Mail.SMTP.Host)
	}

	courseSvc := courses.NewService(courseRepo, store.Storage, cfg.Gateway.Currency)
	courseSvc.SetLogger(logger)

	owned := entitlements.NewService(db)
	owned.SetLogger(logger)

	ledger := payments.NewLedger(payments.LedgerDeps{
		DB: db,
		Gateway: payments.NewRazorpay(payments.RazorpayConfig{
			BaseURL:   cfg.Gateway.BaseURL,
			KeyID:     cfg.Gateway.KeyID,
			KeySecret: cfg.Gateway.KeySecret,
			Timeout:   cfg.Gateway.Timeout,
		}),
		Users:    userRepo,
		Courses:  courseRepo,
		Currency: cfg.Gateway.Currency,
	})
	ledger.SetLogger(logger)

	reconciler := payments.NewReconciler(payments.ReconcilerDeps{
		DB:             db,
		Ledger:         ledger,
		Granter:        owned,
		Verifier:       verifier,
		Publisher:      subscribers,
		GrantOnWebhook: cfg.GrantOnWebhook,
	})
	reconciler.SetLogger(logger)

	deps := apphttp.Deps{
		Logger:       logger,
		DB:           db,
		Users:        userRepo,
		Courses:      courseRepo,
		CourseSvc:    courseSvc,
		Owned:        owned,
		Ledger:       ledger,
		Reconciler:   reconciler,
		GatewayKeyID: cfg.Gateway.KeyID,
		AdminToken:   cfg.AdminToken,
	}
	if store.Driver == "local" {
		deps.UploadDir = cfg.Storage.LocalDir
		deps.UploadPrefix = cfg.Storage.LocalURLPrefix
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apphttp.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Addr, "grant_on_webhook", cfg.GrantOnWebhook)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
