// Package leads wires the lead intake pipeline: validation, scoring,
// persistence, scheduling and notification.
package leads

import (
	"context"
	"fmt"
	"strings"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

// Scorer produces the intent analysis for a lead. It never fails; at
// worst it returns the fallback score.
type Scorer interface {
	AnalyzeLead(ctx context.Context, lead domain.Lead) domain.ProcessedLead
}

// Store persists leads and answers duplicate checks.
type Store interface {
	Exists(ctx context.Context, email, phone string) bool
	LogLead(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead) bool
}

// Calendar books the consultation slot and returns the meeting link, or
// "" when the event could not be created.
type Calendar interface {
	ScheduleConsultation(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead) string
}

// Notifier fans the lead out to the configured channels and returns the
// names of the channels that did not deliver.
type Notifier interface {
	Notify(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead, meetLink string) []string
}

// ReminderScheduler enqueues a pre-appointment reminder.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead) error
}

// Workflow runs one lead through the full intake sequence. Validation
// and duplicate rejection stop the run before any side effect; every
// later step degrades softly into the result's errors or warnings.
type Workflow struct {
	scorer    Scorer
	store     Store
	calendar  Calendar
	notifier  Notifier
	reminders ReminderScheduler
	log       *logger.Logger
}

// NewWorkflow wires the workflow's collaborators. reminders may be nil
// when the reminder queue is disabled.
func NewWorkflow(scorer Scorer, store Store, calendar Calendar, notifier Notifier, reminders ReminderScheduler, log *logger.Logger) *Workflow {
	return &Workflow{
		scorer:    scorer,
		store:     store,
		calendar:  calendar,
		notifier:  notifier,
		reminders: reminders,
		log:       log,
	}
}

// ProcessLead runs the intake sequence over raw webhook fields and
// always returns a well-formed result. A panic anywhere in the sequence
// is converted into a single "Unexpected error" entry with success=false.
func (w *Workflow) ProcessLead(ctx context.Context, fields map[string]string) (result *domain.WorkflowResult) {
	result = domain.NewWorkflowResult()

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("workflow panic", "panic", fmt.Sprint(r))
			result.AddError(fmt.Sprintf("Unexpected error: %v", r))
			result.Success = false
		}
	}()

	errs, pastDated := domain.ValidateLead(fields)
	if len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		w.log.Warn("lead validation failed", "errors", strings.Join(errs, "; "))
		return result
	}

	lead := domain.NewLead(fields)
	leadID := lead.ID()
	result.LeadID = &leadID
	w.log.Info("processing lead", "name", lead.Name, "lead_id", leadID)
	if pastDated {
		w.log.WorkflowWarning(leadID, "appointment datetime is in the past")
	}

	if w.store.Exists(ctx, lead.Email, lead.Phone) {
		result.AddError("Duplicate lead - already processed")
		w.log.Warn("duplicate lead detected", "lead_id", leadID)
		return result
	}

	processed := w.scorer.AnalyzeLead(ctx, lead)
	score := processed.IntentScore
	result.IntentScore = &score
	w.log.Info("intent score calculated", "lead_id", leadID, "score", score)
	if score == domain.FallbackScore {
		result.AddWarning("AI analysis failed - using default score - manual review recommended")
	}

	if w.store.LogLead(ctx, lead, processed) {
		w.log.WorkflowStep(leadID, "stored")
	} else {
		result.AddError("Failed to log to Google Sheets")
		w.log.WorkflowWarning(leadID, "lead row not written, continuing")
	}

	meetLink := w.calendar.ScheduleConsultation(ctx, lead, processed)
	if meetLink != "" {
		result.MeetLink = &meetLink
		w.log.WorkflowStep(leadID, "scheduled")
		w.scheduleReminder(ctx, lead, processed)
	} else {
		result.AddWarning("Failed to create calendar event")
		w.log.WorkflowWarning(leadID, "calendar event not created")
	}

	for _, channel := range w.notifier.Notify(ctx, lead, processed, meetLink) {
		result.AddWarning(fmt.Sprintf("Failed to send %s notification", channel))
	}
	w.log.WorkflowStep(leadID, "notified")

	result.Success = true
	w.log.Info("lead processing complete", "name", lead.Name, "lead_id", leadID)
	return result
}

func (w *Workflow) scheduleReminder(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead) {
	if w.reminders == nil {
		return
	}
	if err := w.reminders.ScheduleReminder(ctx, lead, processed); err != nil {
		w.log.Warn("reminder scheduling failed", "lead_id", lead.ID(), "error", err)
	}
}
