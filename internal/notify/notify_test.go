package notify

import (
	"context"
	"errors"
	"testing"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

type testConfig struct {
	channels []string
}

func (c testConfig) GetNotificationChannels() []string { return c.channels }
func (c testConfig) GetDiscordWebhookURL() string      { return "" }
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

type fakeChannel struct {
	name       string
	configured bool
	err        error

	calls     int
	lastLink  string
	callOrder *[]string
}

func (f *fakeChannel) Name() string     { return f.name }
func (f *fakeChannel) Configured() bool { return f.configured }

func (f *fakeChannel) Send(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead, meetLink string) error {
	f.calls++
	f.lastLink = meetLink
	if f.callOrder != nil {
		*f.callOrder = append(*f.callOrder, f.name)
	}
	return f.err
}

func newDispatcher(order []string, channels ...Channel) *Dispatcher {
	return NewDispatcher(testConfig{channels: order}, logger.New("development"), channels...)
}

func TestNotifyAllChannelsSucceed(t *testing.T) {
	var order []string
	discord := &fakeChannel{name: "discord", configured: true, callOrder: &order}
	email := &fakeChannel{name: "email", configured: true, callOrder: &order}
	d := newDispatcher([]string{"discord", "email"}, discord, email)

	failed := d.Notify(context.Background(), domain.Lead{}, domain.ProcessedLead{}, "https://meet.google.com/new")
	if len(failed) != 0 {
		t.Fatalf("expected no failures, got %v", failed)
	}
	if len(order) != 2 || order[0] != "discord" || order[1] != "email" {
		t.Fatalf("channels must run in configured order, got %v", order)
	}
	if discord.lastLink != "https://meet.google.com/new" {
		t.Errorf("meet link not passed through: %q", discord.lastLink)
	}
}

func TestNotifyRespectsConfiguredOrder(t *testing.T) {
	var order []string
	discord := &fakeChannel{name: "discord", configured: true, callOrder: &order}
	email := &fakeChannel{name: "email", configured: true, callOrder: &order}
	d := newDispatcher([]string{"email", "discord"}, discord, email)

	d.Notify(context.Background(), domain.Lead{}, domain.ProcessedLead{}, "")
	if len(order) != 2 || order[0] != "email" {
		t.Fatalf("expected email first, got %v", order)
	}
}

func TestNotifyUnconfiguredChannelFailsWithoutAttempt(t *testing.T) {
	discord := &fakeChannel{name: "discord", configured: false}
	email := &fakeChannel{name: "email", configured: true}
	d := newDispatcher([]string{"discord", "email"}, discord, email)

	failed := d.Notify(context.Background(), domain.Lead{}, domain.ProcessedLead{}, "")
	if len(failed) != 1 || failed[0] != "discord" {
		t.Fatalf("expected discord to fail, got %v", failed)
	}
	if discord.calls != 0 {
		t.Error("unconfigured channel must not be attempted")
	}
	if email.calls != 1 {
		t.Error("remaining channels must still run")
	}
}

func TestNotifyChannelErrorDoesNotStopOthers(t *testing.T) {
	discord := &fakeChannel{name: "discord", configured: true, err: errors.New("webhook down")}
	email := &fakeChannel{name: "email", configured: true}
	d := newDispatcher([]string{"discord", "email"}, discord, email)

	failed := d.Notify(context.Background(), domain.Lead{}, domain.ProcessedLead{}, "")
	if len(failed) != 1 || failed[0] != "discord" {
		t.Fatalf("expected discord failure only, got %v", failed)
	}
	if email.calls != 1 {
		t.Error("email must still be attempted")
	}
}

func TestNotifyUnknownChannelName(t *testing.T) {
	email := &fakeChannel{name: "email", configured: true}
	d := newDispatcher([]string{"sms", "email"}, email)

	failed := d.Notify(context.Background(), domain.Lead{}, domain.ProcessedLead{}, "")
	if len(failed) != 1 || failed[0] != "sms" {
		t.Fatalf("expected sms to fail, got %v", failed)
	}
}
