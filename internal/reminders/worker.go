package reminders

import (
	"context"
	"fmt"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Announcer posts a plain reminder message, normally the Discord webhook
// client.
type Announcer interface {
	Configured() bool
	PostContent(ctx context.Context, content string) error
}

// Worker consumes due reminder tasks and announces them.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	announce Announcer
	log      *logger.Logger
}

func NewWorker(cfg config.ReminderConfig, announce Announcer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetRemindersQueue()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		announce: announce,
		log:      log,
	}
	w.mux.HandleFunc(TaskLeadReminder, w.handleLeadReminder)

	return w, nil
}

func (w *Worker) handleLeadReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadReminderPayload(task)
	if err != nil {
		return err
	}

	if w.announce == nil || !w.announce.Configured() {
		w.log.Warn("reminder dropped, no announcement channel configured", "lead_id", payload.LeadID)
		return nil
	}

	message := fmt.Sprintf("⏰ Upcoming consultation: %s about the %s at %s (lead %s)",
		payload.Name, payload.Model, payload.Datetime, payload.LeadID)
	if err := w.announce.PostContent(ctx, message); err != nil {
		return err
	}

	w.log.Info("reminder delivered", "lead_id", payload.LeadID)
	return nil
}

// Run serves the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("reminder worker stopped", "error", err)
	}
}
