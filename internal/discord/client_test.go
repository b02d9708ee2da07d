package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

type testConfig struct {
	webhookURL string
}

func (c testConfig) GetNotificationChannels() []string { return []string{"discord"} }
func (c testConfig) GetDiscordWebhookURL() string      { return c.webhookURL }
func (c testConfig) GetSMTPHost() string               { return "" }
func (c testConfig) GetSMTPPort() int                  { return 587 }
func (c testConfig) GetSMTPUsername() string           { return "" }
func (c testConfig) GetSMTPPassword() string           { return "" }
func (c testConfig) GetEmailFrom() string              { return "" }
func (c testConfig) GetWhatsAppAPIURL() string         { return "" }
func (c testConfig) GetWhatsAppUsername() string       { return "" }
func (c testConfig) GetWhatsAppPassword() string       { return "" }
func (c testConfig) GetWhatsAppDeviceID() string       { return "" }
func (c testConfig) GetDefaultPhoneRegion() string     { return "US" }

func testLead() (domain.Lead, domain.ProcessedLead) {
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
		IntentScore: 0.6,
	}
	return lead, processed
}

func captureClient(t *testing.T, status int) (*Client, *webhookMessage) {
	t.Helper()
	var captured webhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(testConfig{webhookURL: srv.URL}, logger.New("development"))
	if client == nil {
		t.Fatal("expected configured client")
	}
	client.http = srv.Client()
	return client, &captured
}

func TestSendBuildsEmbed(t *testing.T) {
	client, captured := captureClient(t, http.StatusNoContent)
	lead, processed := testLead()

	if err := client.Send(context.Background(), lead, processed, ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if captured.Content != "New lead received" {
		t.Errorf("unexpected content %q", captured.Content)
	}
	if len(captured.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(captured.Embeds))
	}
	embed := captured.Embeds[0]
	if embed.Title != "🚗 New Lead: Jane Smith" {
		t.Errorf("unexpected title %q", embed.Title)
	}
	if embed.Color != colorNormal {
		t.Errorf("expected normal color, got %d", embed.Color)
	}
	if embed.Footer.Text != "Lead Automation System" {
		t.Errorf("unexpected footer %q", embed.Footer.Text)
	}
	if len(embed.Fields) != 6 {
		t.Fatalf("expected 6 fields without meet link, got %d", len(embed.Fields))
	}
	if embed.Fields[3].Name != "📊 Intent Score" || embed.Fields[3].Value != "0.60/1.0" {
		t.Errorf("unexpected score field %+v", embed.Fields[3])
	}
	if embed.Fields[4].Value != lead.ID() {
		t.Errorf("unexpected lead id field %+v", embed.Fields[4])
	}
	if embed.Fields[5].Inline {
		t.Error("appointment field must not be inline")
	}
}

func TestSendHighIntentPingsChannel(t *testing.T) {
	client, captured := captureClient(t, http.StatusNoContent)
	lead, processed := testLead()
	processed.IntentScore = 0.8

	if err := client.Send(context.Background(), lead, processed, "https://meet.google.com/new"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if captured.Content != "@here New lead received!" {
		t.Errorf("unexpected content %q", captured.Content)
	}
	embed := captured.Embeds[0]
	if embed.Color != colorHighIntent {
		t.Errorf("expected high intent color, got %d", embed.Color)
	}
	if len(embed.Fields) != 7 {
		t.Fatalf("expected meet link field, got %d fields", len(embed.Fields))
	}
	last := embed.Fields[6]
	if last.Name != "🎥 Google Meet" || !strings.Contains(last.Value, "[Join Meeting](https://meet.google.com/new)") {
		t.Errorf("unexpected meet field %+v", last)
	}
}

func TestSendFailsOnWebhookError(t *testing.T) {
	client, _ := captureClient(t, http.StatusBadRequest)
	lead, processed := testLead()

	if err := client.Send(context.Background(), lead, processed, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestUnconfiguredClient(t *testing.T) {
	client := NewClient(testConfig{}, logger.New("development"))
	if client != nil {
		t.Fatal("expected nil client without webhook url")
	}
	if client.Configured() {
		t.Error("nil client must not report configured")
	}
	lead, processed := testLead()
	if err := client.Send(context.Background(), lead, processed, ""); err == nil {
		t.Error("nil client must fail to send")
	}
}
