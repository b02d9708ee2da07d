package leads

import (
	"context"
	"errors"
	"testing"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

type fakeScorer struct {
	processed domain.ProcessedLead
	panicMsg  string
	calls     int
}

func (f *fakeScorer) AnalyzeLead(_ context.Context, _ domain.Lead) domain.ProcessedLead {
	f.calls++
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.processed
}

type fakeStore struct {
	exists      bool
	logOK       bool
	existsCalls int
	logCalls    int
	loggedLead  domain.Lead
}

func (f *fakeStore) Exists(_ context.Context, _, _ string) bool {
	f.existsCalls++
	return f.exists
}

func (f *fakeStore) LogLead(_ context.Context, lead domain.Lead, _ domain.ProcessedLead) bool {
	f.logCalls++
	f.loggedLead = lead
	return f.logOK
}

type fakeCalendar struct {
	link  string
	calls int
}

func (f *fakeCalendar) ScheduleConsultation(_ context.Context, _ domain.Lead, _ domain.ProcessedLead) string {
	f.calls++
	return f.link
}

type fakeNotifier struct {
	failed   []string
	calls    int
	lastLink string
}

func (f *fakeNotifier) Notify(_ context.Context, _ domain.Lead, _ domain.ProcessedLead, meetLink string) []string {
	f.calls++
	f.lastLink = meetLink
	return f.failed
}

type fakeReminders struct {
	err   error
	calls int
}

func (f *fakeReminders) ScheduleReminder(_ context.Context, _ domain.Lead, _ domain.ProcessedLead) error {
	f.calls++
	return f.err
}

type fixture struct {
	scorer    *fakeScorer
	store     *fakeStore
	calendar  *fakeCalendar
	notifier  *fakeNotifier
	reminders *fakeReminders
	workflow  *Workflow
}

func newFixture() *fixture {
	f := &fixture{
		scorer: &fakeScorer{processed: domain.ProcessedLead{
			Name:        "Jane Smith",
			Phone:       "+15551234567",
			Model:       "Tesla Model 3",
			Datetime:    "2030-06-01T14:00:00",
			IntentScore: 0.85,
		}},
		store:     &fakeStore{logOK: true},
		calendar:  &fakeCalendar{link: "https://meet.google.com/new"},
		notifier:  &fakeNotifier{},
		reminders: &fakeReminders{},
	}
	f.workflow = NewWorkflow(f.scorer, f.store, f.calendar, f.notifier, f.reminders, logger.New("development"))
	return f
}

func validFields() map[string]string {
	return map[string]string{
		"name":                 "Jane Smith",
		"email":                "jane@example.com",
		"phone":                "+1 (555) 123-4567",
		"car_model":            "Tesla Model 3",
		"appointment_datetime": "2030-06-01T14:00:00",
	}
}

func TestProcessLeadHappyPath(t *testing.T) {
	f := newFixture()

	result := f.workflow.ProcessLead(context.Background(), validFields())

	if !result.Success {
		t.Fatalf("Success = false, errors %v", result.Errors)
	}
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("expected clean result, got errors %v warnings %v", result.Errors, result.Warnings)
	}
	wantID := domain.DeriveLeadID("jane@example.com", "+1 (555) 123-4567")
	if result.LeadID == nil || *result.LeadID != wantID {
		t.Errorf("LeadID = %v, want %q", result.LeadID, wantID)
	}
	if result.IntentScore == nil || *result.IntentScore != 0.85 {
		t.Errorf("IntentScore = %v, want 0.85", result.IntentScore)
	}
	if result.MeetLink == nil || *result.MeetLink != "https://meet.google.com/new" {
		t.Errorf("MeetLink = %v", result.MeetLink)
	}
	if f.store.logCalls != 1 {
		t.Errorf("LogLead called %d times", f.store.logCalls)
	}
	if f.notifier.lastLink != "https://meet.google.com/new" {
		t.Errorf("notifier got link %q", f.notifier.lastLink)
	}
	if f.reminders.calls != 1 {
		t.Errorf("reminder scheduled %d times, want 1", f.reminders.calls)
	}
	if f.store.loggedLead.Timestamp == "" {
		t.Error("logged lead is missing the capture timestamp")
	}
}

func TestProcessLeadValidationFailureStopsEverything(t *testing.T) {
	f := newFixture()

	result := f.workflow.ProcessLead(context.Background(), map[string]string{})

	if result.Success {
		t.Fatal("Success = true for empty payload")
	}
	if len(result.Errors) != 5 {
		t.Errorf("got %d errors, want one per missing field: %v", len(result.Errors), result.Errors)
	}
	if result.LeadID != nil {
		t.Errorf("LeadID = %q, want nil before identification", *result.LeadID)
	}
	if f.store.existsCalls != 0 || f.scorer.calls != 0 || f.calendar.calls != 0 || f.notifier.calls != 0 {
		t.Error("collaborators were called despite validation failure")
	}
}

func TestProcessLeadDuplicateRejected(t *testing.T) {
	f := newFixture()
	f.store.exists = true

	result := f.workflow.ProcessLead(context.Background(), validFields())

	if result.Success {
		t.Fatal("Success = true for duplicate lead")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Duplicate lead - already processed" {
		t.Errorf("Errors = %v", result.Errors)
	}
	if result.LeadID == nil {
		t.Error("duplicate result should still carry the lead id")
	}
	if f.scorer.calls != 0 || f.store.logCalls != 0 {
		t.Error("duplicate lead was scored or stored")
	}
}

func TestProcessLeadStoreFailureStillSucceeds(t *testing.T) {
	f := newFixture()
	f.store.logOK = false

	result := f.workflow.ProcessLead(context.Background(), validFields())

	if !result.Success {
		t.Fatal("storage failure must not fail the run")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Failed to log to Google Sheets" {
		t.Errorf("Errors = %v", result.Errors)
	}
	if f.calendar.calls != 1 || f.notifier.calls != 1 {
		t.Error("later steps skipped after storage failure")
	}
}

func TestProcessLeadCalendarFailureWarns(t *testing.T) {
	f := newFixture()
	f.calendar.link = ""

	result := f.workflow.ProcessLead(context.Background(), validFields())

	if !result.Success {
		t.Fatal("calendar failure must not fail the run")
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != "Failed to create calendar event" {
		t.Errorf("Warnings = %v", result.Warnings)
	}
	if result.MeetLink != nil {
		t.Errorf("MeetLink = %q, want nil", *result.MeetLink)
	}
	if f.notifier.calls != 1 || f.notifier.lastLink != "" {
		t.Errorf("notifier calls=%d link=%q, want 1 with empty link", f.notifier.calls, f.notifier.lastLink)
	}
	if f.reminders.calls != 0 {
		t.Error("reminder scheduled without a booked event")
	}
}

func TestProcessLeadNotificationFailuresWarnPerChannel(t *testing.T) {
	f := newFixture()
	f.notifier.failed = []string{"discord", "email"}

	result := f.workflow.ProcessLead(context.Background(), validFields())

	if !result.Success {
		t.Fatal("notification failures must not fail the run")
	}
	want := []string{"Failed to send discord notification", "Failed to send email notification"}
	if len(result.Warnings) != len(want) {
		t.Fatalf("Warnings = %v", result.Warnings)
	}
	for i, w := range want {
		if result.Warnings[i] != w {
			t.Errorf("Warnings[%d] = %q, want %q", i, result.Warnings[i], w)
		}
	}
}

func TestProcessLeadFallbackScoreFlagsManualReview(t *testing.T) {
	f := newFixture()
	f.scorer.processed.IntentScore = domain.FallbackScore

	result := f.workflow.ProcessLead(context.Background(), validFields())

	if !result.Success {
		t.Fatal("fallback score must not fail the run")
	}
	if result.IntentScore == nil || *result.IntentScore != domain.FallbackScore {
		t.Errorf("IntentScore = %v", result.IntentScore)
	}
	found := false
	for _, w := range result.Warnings {
		if w == "AI analysis failed - using default score - manual review recommended" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing manual-review warning, got %v", result.Warnings)
	}
}

func TestProcessLeadPanicBecomesUnexpectedError(t *testing.T) {
	f := newFixture()
	f.scorer.panicMsg = "groq exploded"

	result := f.workflow.ProcessLead(context.Background(), validFields())

	if result.Success {
		t.Fatal("Success = true after panic")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Unexpected error: groq exploded" {
		t.Errorf("Errors = %v", result.Errors)
	}
	if result.LeadID == nil {
		t.Error("panic after identification should keep the lead id")
	}
}

func TestProcessLeadReminderFailureIsInvisible(t *testing.T) {
	f := newFixture()
	f.reminders.err = errors.New("redis down")

	result := f.workflow.ProcessLead(context.Background(), validFields())

	if !result.Success || len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("reminder failure leaked into result: success=%v errors=%v warnings=%v",
			result.Success, result.Errors, result.Warnings)
	}
	if f.reminders.calls != 1 {
		t.Errorf("reminder attempts = %d, want 1", f.reminders.calls)
	}
}

func TestProcessLeadWithoutReminderQueue(t *testing.T) {
	f := newFixture()
	f.workflow = NewWorkflow(f.scorer, f.store, f.calendar, f.notifier, nil, logger.New("development"))

	result := f.workflow.ProcessLead(context.Background(), validFields())

	if !result.Success {
		t.Fatalf("Success = false without reminder queue, errors %v", result.Errors)
	}
}

func TestProcessLeadPastAppointmentStillProcessed(t *testing.T) {
	f := newFixture()
	fields := validFields()
	fields["appointment_datetime"] = "2020-01-15T10:00:00"

	result := f.workflow.ProcessLead(context.Background(), fields)

	if !result.Success {
		t.Fatalf("past-dated appointment rejected: %v", result.Errors)
	}
	if f.store.logCalls != 1 {
		t.Error("past-dated lead was not stored")
	}
}
