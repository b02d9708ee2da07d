package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues one reminder per lead, due a configured interval
// before the appointment.
type Client struct {
	client   *asynq.Client
	queue    string
	leadTime time.Duration
	loc      *time.Location
	log      *logger.Logger
}

// NewClient connects the reminder queue. loc interprets zone-less
// appointment times and must match the calendar's timezone.
func NewClient(cfg config.ReminderConfig, loc *time.Location, log *logger.Logger) (*Client, error) {
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
	if loc == nil {
		loc = time.Local
	}

	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queue,
		leadTime: cfg.GetReminderLead(),
		loc:      loc,
		log:      log,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleReminder enqueues the reminder task. Appointments already
// inside the reminder window are skipped silently, and the task id is
// derived from the lead so a replayed intake cannot double-book.
func (c *Client) ScheduleReminder(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead) error {
	if c == nil || c.client == nil {
		return nil
	}

	appointment, _, err := domain.ParseAppointmentIn(processed.Datetime, c.loc)
	if err != nil {
		return fmt.Errorf("parse appointment time: %w", err)
	}

	runAt := appointment.Add(-c.leadTime)
	if !runAt.After(time.Now()) {
		return nil
	}

	task, err := NewLeadReminderTask(LeadReminderPayload{
		LeadID:   lead.ID(),
		Name:     processed.Name,
		Model:    processed.Model,
		Datetime: processed.Datetime,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.TaskID("lead-reminder:"+lead.ID()),
		asynq.ProcessAt(runAt),
		asynq.Queue(c.queue),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	c.log.Info("reminder scheduled", "lead_id", lead.ID(), "run_at", runAt)
	return nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
