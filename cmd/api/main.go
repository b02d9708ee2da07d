package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadflow_backend/internal/appointments"
	"leadflow_backend/internal/discord"
	"leadflow_backend/internal/email"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/http/router"
	"leadflow_backend/internal/leads"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/notify"
	"leadflow_backend/internal/reminders"
	"leadflow_backend/internal/sheets"
	"leadflow_backend/internal/whatsapp"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Workflow Collaborators
	// ========================================================================
	// Each collaborator initializes independently. A failure downgrades the
	// API to 503 answers instead of crashing the process, so a half-configured
	// deployment stays inspectable through /health.

	scorer := initScorer(ctx, cfg, log)
	store := initStore(ctx, cfg, log)
	calendar := initCalendar(cfg, log)

	discordClient := discord.NewClient(cfg, log)
	emailSender := email.NewSender(cfg, log)
	whatsappClient := whatsapp.NewClient(cfg, log)
	dispatcher := notify.NewDispatcher(cfg, log, discordClient, emailSender, whatsappClient)

	reminderClient, closeReminders := initReminderClient(cfg, log)
	if closeReminders != nil {
		defer closeReminders()
	}
	startReminderWorker(ctx, cfg, discordClient, log)

	var workflow *leads.Workflow
	if scorer != nil && store != nil && calendar != nil {
		var reminderScheduler leads.ReminderScheduler
		if reminderClient != nil {
			reminderScheduler = reminderClient
		}
		workflow = leads.NewWorkflow(scorer, store, calendar, dispatcher, reminderScheduler, log)
		log.Info("lead workflow initialized")
	} else {
		log.Error("lead workflow unavailable, intake will answer 503",
			"scorer", scorer != nil, "sheets", store != nil, "calendar", calendar != nil)
	}

	health := handler.Health{
		Workflow: workflow != nil,
		Scorer:   scorer != nil,
		Sheets:   store != nil,
		Calendar: calendar != nil,
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Modules: []apphttp.Module{
			leads.NewModule(workflow, store, health, log),
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initScorer picks the first configured model backend, Groq before Gemini.
func initScorer(ctx context.Context, cfg *config.Config, log *logger.Logger) *scoring.Service {
	switch {
	case cfg.GetGroqAPIKey() != "":
		log.Info("intent scorer using groq", "model", cfg.GetGroqModel())
		return scoring.New(scoring.NewGroqBackend(cfg), log)
	case cfg.GetGeminiAPIKey() != "":
		backend, err := scoring.NewGeminiBackend(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize gemini scorer", "error", err)
			return nil
		}
		log.Info("intent scorer using gemini", "model", cfg.GetGeminiModel())
		return scoring.New(backend, log)
	default:
		log.Error("no scorer API key configured")
		return nil
	}
}

func initStore(ctx context.Context, cfg *config.Config, log *logger.Logger) *sheets.Store {
	store, err := sheets.NewStore(cfg, log)
	if err != nil {
		log.Error("failed to initialize sheets store", "error", err)
		return nil
	}

	if err := withRetry(ctx, log, "sheet headers", 3, 2*time.Second, func() error {
		return store.EnsureHeaders(ctx)
	}); err != nil {
		log.Error("failed to verify sheet headers", "error", err)
		return nil
	}

	return store
}

func initCalendar(cfg *config.Config, log *logger.Logger) *appointments.Scheduler {
	scheduler, err := appointments.NewScheduler(cfg, log)
	if err != nil {
		log.Error("failed to initialize calendar scheduler", "error", err)
		return nil
	}
	return scheduler
}

func initReminderClient(cfg *config.Config, log *logger.Logger) (*reminders.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; appointment reminders disabled")
		return nil, nil
	}

	client, err := reminders.NewClient(cfg, appointmentLocation(cfg, log), log)
	if err != nil {
		log.Error("failed to initialize reminder client", "error", err)
		return nil, nil
	}

	return client, func() { _ = client.Close() }
}

func startReminderWorker(ctx context.Context, cfg *config.Config, announce *discord.Client, log *logger.Logger) {
	if cfg.GetRedisURL() == "" {
		return
	}

	worker, err := reminders.NewWorker(cfg, announce, log)
	if err != nil {
		log.Error("failed to initialize reminder worker", "error", err)
		return
	}

	go worker.Run(ctx)
	log.Info("reminder worker started", "queue", cfg.GetRemindersQueue())
}

// appointmentLocation resolves the calendar timezone used to interpret
// zone-less appointment times for reminder timing.
func appointmentLocation(cfg *config.Config, log *logger.Logger) *time.Location {
	loc, err := time.LoadLocation(cfg.GetTimezone())
	if err != nil {
		log.Warn("invalid timezone, using system local time", "timezone", cfg.GetTimezone(), "error", err)
		return time.Local
	}
	return loc
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
