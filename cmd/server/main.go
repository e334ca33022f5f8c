package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"familytree/internal/backend"
	"familytree/internal/cache"
	"familytree/internal/config"
	"familytree/internal/handlers"
	"familytree/internal/logging"
	"familytree/internal/repository"
	"familytree/internal/security"
	"familytree/internal/service"
)

// reminderInterval is how often the birthday digest goes out
const reminderInterval = 24 * time.Hour

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "familytree")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	generated, err := cfg.ResolveSecrets()
	if err != nil {
		return err
	}
	if generated {
		logger.Warn("JWT_SECRET or CSRF_SECRET is not set, using a random secret; sessions end on restart")
	}
	proxies, err := security.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	templates, err := handlers.LoadTemplates()
	if err != nil {
		return err
	}

	// Services
	relationships := service.NewRelationshipService(repository.New(store), cache.New(), logger, time.Now)
	migrator := service.NewMigrationService(relationships, logger)
	relationships.LoadAll(ctx)

	if !cfg.AuthEnabled() {
		logger.Warn("ADMIN_PASSWORD_HASH is not set, every visitor can edit the family tree")
	}
	sessions := security.NewSessions(cfg.JWTSecret, cfg.SessionDuration)
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret, cfg.SessionDuration)
	loginLimiter := security.NewRateLimiter(5, time.Minute, proxies)

	router := handlers.NewRouter(handlers.Handlers{
		Middleware: handlers.NewMiddleware(sessions, csrf, loginLimiter, cfg.AuthEnabled(), logger),
		Auth:       handlers.NewAuthHandler(sessions, cfg.AdminUsername, cfg.AdminPasswordHash, templates, logger),
		People:     handlers.NewPeopleHandler(relationships, templates, logger),
		Families:   handlers.NewFamilyHandler(relationships, templates, logger),
		Birthdays:  handlers.NewBirthdayHandler(relationships, cfg.BirthdayHorizonDays, templates, logger),
		Migration:  handlers.NewMigrationHandler(relationships, migrator, templates, logger),
	})

	if len(cfg.ReminderRecipients) > 0 {
		email, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
		if err != nil {
			return err
		}
		if email.IsEnabled() {
			reminders := service.NewReminderService(relationships, email, logger)
			go runReminders(ctx, reminders, cfg, logger)
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runReminders sends the birthday digest once a day until ctx is done
func runReminders(ctx context.Context, reminders *service.ReminderService, cfg *config.Config, logger *zap.Logger) {
	ticker := time.NewTicker(reminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := reminders.SendDigest(ctx, cfg.ReminderRecipients, cfg.ReminderDays); err != nil {
				logger.Error("failed to send birthday digest", zap.Error(err))
			}
		}
	}
}
