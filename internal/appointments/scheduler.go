// Package appointments books consultation slots in Google Calendar.
package appointments

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Service accounts cannot mint Meet conferences without a Workspace
// domain, so events carry a generic link the agent replaces.
const meetLinkPlaceholder = "https://meet.google.com/new"

const consultationDuration = time.Hour

const descriptionTemplate = `Lead consultation with %s

Email: %s
Phone: %s
Intent Score: %.2f
Lead ID: %s

Meeting Link: %s

Please review lead details before the meeting.
Send calendar invite manually to: %s`

// Scheduler turns a scored lead into a one hour calendar event.
type Scheduler struct {
	client   *Client
	timezone string
	location *time.Location
	log      *logger.Logger
}

func NewScheduler(cfg config.CalendarConfig, log *logger.Logger) (*Scheduler, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(cfg.GetTimezone())
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.GetTimezone(), err)
	}

	return &Scheduler{
		client:   client,
		timezone: cfg.GetTimezone(),
		location: location,
		log:      log,
	}, nil
}

// ScheduleConsultation creates the calendar event for a scored lead and
// returns the meeting link, or "" when the event could not be created.
func (s *Scheduler) ScheduleConsultation(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead) string {
	start, hasOffset, err := domain.ParseAppointmentIn(processed.Datetime, s.location)
	if err != nil {
		s.log.Error("calendar event failed", "error", err, "datetime", processed.Datetime)
		return ""
	}
	end := start.Add(consultationDuration)

	event := Event{
		Summary: fmt.Sprintf("Car Consultation - %s", processed.Model),
		Description: fmt.Sprintf(descriptionTemplate,
			processed.Name,
			lead.Email,
			processed.Phone,
			processed.IntentScore,
			lead.ID(),
			meetLinkPlaceholder,
			lead.Email,
		),
		Start: EventTime{DateTime: formatEventTime(start, hasOffset), TimeZone: s.timezone},
		End:   EventTime{DateTime: formatEventTime(end, hasOffset), TimeZone: s.timezone},
		Reminders: Reminders{
			UseDefault: false,
			Overrides: []ReminderOverride{
				{Method: "popup", Minutes: 30},
				{Method: "popup", Minutes: 60},
			},
		},
	}

	created, err := s.client.InsertEvent(ctx, event)
	if err != nil {
		s.log.Error("calendar event failed", "error", err, "lead_id", lead.ID())
		return ""
	}

	s.log.Info("calendar event created", "event_id", created.ID, "link", created.HTMLLink)
	return meetLinkPlaceholder
}

// formatEventTime keeps the offset only for inputs that carried one, so
// zone-less appointments stay wall-clock in the configured timezone.
func formatEventTime(t time.Time, hasOffset bool) string {
	if hasOffset {
		return t.Format(time.RFC3339)
	}
	return t.Format("2006-01-02T15:04:05")
}
