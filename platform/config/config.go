// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetWebhookRatePerMinute() int
	GetGlobalRatePerHour() int
}

// ScorerConfig provides settings for the lead intent scorer.
type ScorerConfig interface {
	GetGroqAPIKey() string
	GetGroqBaseURL() string
	GetGroqModel() string
	GetGeminiAPIKey() string
	GetGeminiModel() string
}

// SheetsConfig provides settings for the spreadsheet lead store.
type SheetsConfig interface {
	GetSheetsCredentialsJSON() string
	GetSpreadsheetID() string
}

// CalendarConfig provides settings for appointment booking.
type CalendarConfig interface {
	GetCalendarCredentialsJSON() string
	GetCalendarID() string
	GetTimezone() string
}

// NotifyConfig provides settings for the notification channels.
type NotifyConfig interface {
	GetNotificationChannels() []string
	GetDiscordWebhookURL() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFrom() string
	GetWhatsAppAPIURL() string
	GetWhatsAppUsername() string
	GetWhatsAppPassword() string
	GetWhatsAppDeviceID() string
	GetDefaultPhoneRegion() string
}

// ReminderConfig provides settings for the appointment reminder queue.
type ReminderConfig interface {
	GetRedisURL() string
	GetRemindersQueue() string
	GetReminderLead() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	GroqAPIKey           string
	GroqBaseURL          string
	GroqModel            string
	GeminiAPIKey         string
	GeminiModel          string
	SheetsCredsJSON      string
	SpreadsheetID        string
	CalendarCredsJSON    string
	CalendarID           string
	Timezone             string
	NotificationChannels []string
	DiscordWebhookURL    string
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	EmailFrom            string
	WhatsAppAPIURL       string
	WhatsAppUsername     string
	WhatsAppPassword     string
	WhatsAppDeviceID     string
	DefaultPhoneRegion   string
	RedisURL             string
	RemindersQueue       string
	ReminderLead         time.Duration
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	WebhookRatePerMinute int
	GlobalRatePerHour    int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string          { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool        { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string     { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool      { return c.CORSAllowCreds }
func (c *Config) GetWebhookRatePerMinute() int { return c.WebhookRatePerMinute }
func (c *Config) GetGlobalRatePerHour() int    { return c.GlobalRatePerHour }

// ScorerConfig implementation
func (c *Config) GetGroqAPIKey() string   { return c.GroqAPIKey }
func (c *Config) GetGroqBaseURL() string  { return c.GroqBaseURL }
func (c *Config) GetGroqModel() string    { return c.GroqModel }
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }

// SheetsConfig implementation
func (c *Config) GetSheetsCredentialsJSON() string { return c.SheetsCredsJSON }
func (c *Config) GetSpreadsheetID() string         { return c.SpreadsheetID }

// CalendarConfig implementation
func (c *Config) GetCalendarCredentialsJSON() string { return c.CalendarCredsJSON }
func (c *Config) GetCalendarID() string              { return c.CalendarID }
func (c *Config) GetTimezone() string                { return c.Timezone }

// NotifyConfig implementation
func (c *Config) GetNotificationChannels() []string { return c.NotificationChannels }
func (c *Config) GetDiscordWebhookURL() string      { return c.DiscordWebhookURL }
func (c *Config) GetSMTPHost() string               { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                  { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string           { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string           { return c.SMTPPassword }
func (c *Config) GetEmailFrom() string              { return c.EmailFrom }
func (c *Config) GetWhatsAppAPIURL() string         { return c.WhatsAppAPIURL }
func (c *Config) GetWhatsAppUsername() string       { return c.WhatsAppUsername }
func (c *Config) GetWhatsAppPassword() string       { return c.WhatsAppPassword }
func (c *Config) GetWhatsAppDeviceID() string       { return c.WhatsAppDeviceID }
func (c *Config) GetDefaultPhoneRegion() string     { return c.DefaultPhoneRegion }

// ReminderConfig implementation
func (c *Config) GetRedisURL() string            { return c.RedisURL }
func (c *Config) GetRemindersQueue() string      { return c.RemindersQueue }
func (c *Config) GetReminderLead() time.Duration { return c.ReminderLead }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", ""))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "true"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpUsername := getEnv("SMTP_USERNAME", "")
	emailFrom := getEnv("EMAIL_FROM", "")
	if emailFrom == "" {
		emailFrom = smtpUsername
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		GroqAPIKey:           getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:          getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:            getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		SheetsCredsJSON:      loadCredentials("GOOGLE_SHEETS_CREDS", "./credentials/sheets_creds.json"),
		SpreadsheetID:        getEnv("SPREADSHEET_ID", ""),
		CalendarCredsJSON:    loadCredentials("GOOGLE_CALENDAR_CREDS", "./credentials/calendar_creds.json"),
		CalendarID:           getEnv("CALENDAR_ID", "primary"),
		Timezone:             getEnv("TIMEZONE", "America/New_York"),
		NotificationChannels: splitCSV(getEnv("NOTIFICATION_CHANNELS", "discord,email")),
		DiscordWebhookURL:    getEnv("DISCORD_WEBHOOK_URL", ""),
		SMTPHost:             getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         smtpUsername,
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		EmailFrom:            emailFrom,
		WhatsAppAPIURL:       getEnv("WHATSAPP_API_URL", ""),
		WhatsAppUsername:     getEnv("WHATSAPP_API_USERNAME", ""),
		WhatsAppPassword:     getEnv("WHATSAPP_API_PASSWORD", ""),
		WhatsAppDeviceID:     getEnv("WHATSAPP_DEVICE_ID", ""),
		DefaultPhoneRegion:   getEnv("DEFAULT_PHONE_REGION", "US"),
		RedisURL:             getEnv("REDIS_URL", ""),
		RemindersQueue:       getEnv("REMINDERS_QUEUE", "default"),
		ReminderLead:         mustDuration(getEnv("REMINDER_LEAD", "30m")),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		WebhookRatePerMinute: mustInt(getEnv("WEBHOOK_RATE_PER_MINUTE", "10")),
		GlobalRatePerHour:    mustInt(getEnv("GLOBAL_RATE_PER_HOUR", "100")),
	}

	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("SMTP_PORT must be a positive number")
	}
	if cfg.WebhookRatePerMinute <= 0 || cfg.GlobalRatePerHour <= 0 {
		return nil, fmt.Errorf("rate limits must be positive numbers")
	}
	if cfg.RedisURL != "" && cfg.ReminderLead <= 0 {
		return nil, fmt.Errorf("REMINDER_LEAD must be a positive duration when reminders are enabled")
	}

	return cfg, nil
}

// loadCredentials resolves Google service account JSON from, in order:
// <name>_BASE64 (base64-encoded JSON), <name> (raw JSON), <name>_FILE (path).
func loadCredentials(name, defaultFile string) string {
	if encoded := getEnv(name+"_BASE64", ""); encoded != "" {
		if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			return string(decoded)
		}
	}
	if raw := getEnv(name, ""); raw != "" {
		return raw
	}
	data, err := os.ReadFile(getEnv(name+"_FILE", defaultFile))
	if err != nil {
		return ""
	}
	return string(data)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
