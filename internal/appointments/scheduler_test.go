package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

type eventCapture struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (c *eventCapture) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if c.fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	var event Event
	_ = json.NewDecoder(r.Body).Decode(&event)
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	_ = json.NewEncoder(w).Encode(CreatedEvent{ID: "evt-1", HTMLLink: "https://calendar.google.com/event?eid=evt-1"})
}

func (c *eventCapture) captured() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

func newTestScheduler(t *testing.T, capture *eventCapture) *Scheduler {
	t.Helper()
	srv := httptest.NewServer(capture)
	t.Cleanup(srv.Close)

	client := &Client{
		baseURL:    srv.URL,
		calendarID: "primary",
		tokens:     staticToken("test-token"),
		http:       srv.Client(),
	}
	return &Scheduler{
		client:   client,
		timezone: "America/New_York",
		location: time.UTC,
		log:      logger.New("development"),
	}
}

func TestScheduleConsultationBuildsEvent(t *testing.T) {
	capture := &eventCapture{}
	scheduler := newTestScheduler(t, capture)

	lead := domain.Lead{
		Name:                "Jane Smith",
		Email:               "jane@acme-corp.com",
		Phone:               "+15551234567",
		CarModel:            "BMW X5",
		AppointmentDatetime: "2030-06-01T14:30:00Z",
	}
	processed := domain.ProcessedLead{
		Name:        "Jane Smith",
		Phone:       "+15551234567",
		Model:       "BMW X5",
		Datetime:    "2030-06-01T14:30:00Z",
		IntentScore: 0.85,
	}

	link := scheduler.ScheduleConsultation(context.Background(), lead, processed)
	if link != "https://meet.google.com/new" {
		t.Fatalf("unexpected meet link %q", link)
	}

	events := capture.captured()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	event := events[0]

	if event.Summary != "Car Consultation - BMW X5" {
		t.Errorf("unexpected summary %q", event.Summary)
	}
	if event.Start.DateTime != "2030-06-01T14:30:00Z" || event.Start.TimeZone != "America/New_York" {
		t.Errorf("unexpected start %+v", event.Start)
	}
	if event.End.DateTime != "2030-06-01T15:30:00Z" {
		t.Errorf("event must end one hour after start, got %+v", event.End)
	}
	if event.Reminders.UseDefault {
		t.Error("default reminders must be off")
	}
	if len(event.Reminders.Overrides) != 2 ||
		event.Reminders.Overrides[0] != (ReminderOverride{Method: "popup", Minutes: 30}) ||
		event.Reminders.Overrides[1] != (ReminderOverride{Method: "popup", Minutes: 60}) {
		t.Errorf("unexpected reminder overrides %+v", event.Reminders.Overrides)
	}

	for _, want := range []string{
		"Lead consultation with Jane Smith",
		"Email: jane@acme-corp.com",
		"Intent Score: 0.85",
		"Lead ID: " + lead.ID(),
		"Meeting Link: https://meet.google.com/new",
		"Send calendar invite manually to: jane@acme-corp.com",
	} {
		if !strings.Contains(event.Description, want) {
			t.Errorf("description missing %q", want)
		}
	}
}

func TestScheduleConsultationNaiveDatetime(t *testing.T) {
	capture := &eventCapture{}
	scheduler := newTestScheduler(t, capture)

	processed := domain.ProcessedLead{Name: "Jane", Phone: "+15551234567", Model: "Audi A4", Datetime: "2030-06-01T14:30:00", IntentScore: 0.5}
	link := scheduler.ScheduleConsultation(context.Background(), domain.Lead{Email: "a@b.com"}, processed)
	if link == "" {
		t.Fatal("expected event to be created")
	}

	event := capture.captured()[0]
	if event.Start.DateTime != "2030-06-01T14:30:00" {
		t.Errorf("zone-less input must stay zone-less, got %q", event.Start.DateTime)
	}
	if event.End.DateTime != "2030-06-01T15:30:00" {
		t.Errorf("unexpected end %q", event.End.DateTime)
	}
}

func TestScheduleConsultationAPIFailure(t *testing.T) {
	capture := &eventCapture{fail: true}
	scheduler := newTestScheduler(t, capture)

	processed := domain.ProcessedLead{Datetime: "2030-06-01T14:30:00Z"}
	if link := scheduler.ScheduleConsultation(context.Background(), domain.Lead{}, processed); link != "" {
		t.Fatalf("expected empty link on failure, got %q", link)
	}
}

func TestScheduleConsultationUnparseableDatetime(t *testing.T) {
	capture := &eventCapture{}
	scheduler := newTestScheduler(t, capture)

	processed := domain.ProcessedLead{Datetime: "June 1st at 2pm"}
	if link := scheduler.ScheduleConsultation(context.Background(), domain.Lead{}, processed); link != "" {
		t.Fatalf("expected empty link, got %q", link)
	}
	if len(capture.captured()) != 0 {
		t.Error("no event may be sent for an unparseable datetime")
	}
}
