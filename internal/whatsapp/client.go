// Package whatsapp delivers lead confirmations through a gowa gateway.
package whatsapp

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
	"leadflow_backend/platform/phone"
)

type Client struct {
	baseURL  string
	username string
	password string
	deviceID string
	region   string
	http     *http.Client
	log      *logger.Logger
}

type gowaRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func NewClient(cfg config.NotifyConfig, log *logger.Logger) *Client {
	if cfg.GetWhatsAppAPIURL() == "" {
		return nil
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.GetWhatsAppAPIURL(), "/"),
		username: cfg.GetWhatsAppUsername(),
		password: cfg.GetWhatsAppPassword(),
		deviceID: cfg.GetWhatsAppDeviceID(),
		region:   cfg.GetDefaultPhoneRegion(),
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

func (c *Client) Name() string {
	return "whatsapp"
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// Send messages the lead a short appointment confirmation.
func (c *Client) Send(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead, meetLink string) error {
	message := fmt.Sprintf("🚗 Your consultation for the %s is confirmed for %s.\nReference: %s",
		processed.Model, processed.Datetime, lead.ID())
	if meetLink != "" {
		message += fmt.Sprintf("\nJoin: %s", meetLink)
	}
	return c.SendMessage(ctx, processed.Phone, message)
}

// SendMessage delivers a free-form message to the given phone number.
func (c *Client) SendMessage(ctx context.Context, phoneNumber string, message string) error {
	if !c.Configured() {
		return fmt.Errorf("whatsapp gateway not configured")
	}

	normalized := strings.TrimPrefix(phone.NormalizeE164InRegion(phoneNumber, c.region), "+")

	payload := gowaRequest{
		Phone:   normalized,
		Message: message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/send/message", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("whatsapp sent via gowa", "phone", normalized)
	return nil
}
