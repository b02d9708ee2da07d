// Package discord posts lead notifications to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Embed colors and the score at which a lead pings the channel.
const (
	colorHighIntent = 15158332
	colorNormal     = 5814783

	highIntentThreshold = 0.8
)

type Client struct {
	webhookURL string
	http       *http.Client
	log        *logger.Logger
}

func NewClient(cfg config.NotifyConfig, log *logger.Logger) *Client {
	if cfg.GetDiscordWebhookURL() == "" {
		return nil
	}

	return &Client{
		webhookURL: cfg.GetDiscordWebhookURL(),
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type webhookMessage struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields"`
	Timestamp string       `json:"timestamp"`
	Footer    embedFooter  `json:"footer"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

func (c *Client) Name() string {
	return "discord"
}

func (c *Client) Configured() bool {
	return c != nil && c.webhookURL != ""
}

// Send posts the lead embed. High intent leads ping the channel and get
// the urgent color.
func (c *Client) Send(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead, meetLink string) error {
	if !c.Configured() {
		return fmt.Errorf("discord webhook not configured")
	}

	color := colorNormal
	content := "New lead received"
	if processed.IntentScore >= highIntentThreshold {
		color = colorHighIntent
		content = "@here New lead received!"
	}

	fields := []embedField{
		{Name: "📧 Email", Value: lead.Email, Inline: true},
		{Name: "📱 Phone", Value: processed.Phone, Inline: true},
		{Name: "🚙 Model", Value: processed.Model, Inline: true},
		{Name: "📊 Intent Score", Value: fmt.Sprintf("%.2f/1.0", processed.IntentScore), Inline: true},
		{Name: "🆔 Lead ID", Value: lead.ID(), Inline: true},
		{Name: "📅 Appointment", Value: processed.Datetime, Inline: false},
	}
	if meetLink != "" {
		fields = append(fields, embedField{
			Name:   "🎥 Google Meet",
			Value:  fmt.Sprintf("[Join Meeting](%s)", meetLink),
			Inline: false,
		})
	}

	message := webhookMessage{
		Content: content,
		Embeds: []embed{{
			Title:     fmt.Sprintf("🚗 New Lead: %s", processed.Name),
			Color:     color,
			Fields:    fields,
			Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.999999"),
			Footer:    embedFooter{Text: "Lead Automation System"},
		}},
	}

	if err := c.post(ctx, message); err != nil {
		return err
	}

	c.log.Info("discord notification sent", "lead_id", lead.ID())
	return nil
}

// PostContent posts a plain text message, used for appointment reminders.
func (c *Client) PostContent(ctx context.Context, content string) error {
	if !c.Configured() {
		return fmt.Errorf("discord webhook not configured")
	}
	return c.post(ctx, webhookMessage{Content: content})
}

func (c *Client) post(ctx context.Context, message webhookMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal discord message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("discord request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
