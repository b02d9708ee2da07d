// Package notify fans a processed lead out to the configured
// notification channels.
package notify

import (
	"context"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Channel is one outbound notification target.
type Channel interface {
	Name() string
	Configured() bool
	Send(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead, meetLink string) error
}

// Dispatcher sends through every requested channel in order. One failing
// channel never stops the others.
type Dispatcher struct {
	order  []string
	byName map[string]Channel
	log    *logger.Logger
}

func NewDispatcher(cfg config.NotifyConfig, log *logger.Logger, channels ...Channel) *Dispatcher {
	byName := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		byName[ch.Name()] = ch
	}

	return &Dispatcher{
		order:  cfg.GetNotificationChannels(),
		byName: byName,
		log:    log,
	}
}

// Notify attempts every configured channel and returns the names of the
// ones that did not deliver, in attempt order. A channel that is not
// configured counts as failed without being attempted.
func (d *Dispatcher) Notify(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead, meetLink string) []string {
	failed := make([]string, 0)

	for _, name := range d.order {
		ch := d.byName[name]
		if ch == nil || !ch.Configured() {
			d.log.Warn("notification channel not configured", "channel", name)
			failed = append(failed, name)
			continue
		}

		if err := ch.Send(ctx, lead, processed, meetLink); err != nil {
			d.log.Error("notification failed", "channel", name, "error", err)
			failed = append(failed, name)
			continue
		}

		d.log.NotifyResult(name, lead.ID(), true)
	}

	return failed
}
