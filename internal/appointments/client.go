package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/googleauth"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// tokenSource mints bearer tokens for the Calendar API.
type tokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client inserts events into a single Google calendar.
type Client struct {
	baseURL    string
	calendarID string
	tokens     tokenSource
	http       *http.Client
}

func NewClient(cfg config.CalendarConfig) (*Client, error) {
	tokens, err := googleauth.NewTokenSource(cfg.GetCalendarCredentialsJSON(), googleauth.ScopeCalendar)
	if err != nil {
		return nil, fmt.Errorf("calendar credentials: %w", err)
	}

	calendarID := cfg.GetCalendarID()
	if calendarID == "" {
		calendarID = "primary"
	}

	return &Client{
		baseURL:    defaultBaseURL,
		calendarID: calendarID,
		tokens:     tokens,
		http:       &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Event is the Calendar API event body, scoped to the fields we send.
type Event struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
	Reminders   Reminders `json:"reminders"`
}

// EventTime carries a wall-clock time plus the zone it belongs to. The
// dateTime keeps its offset only when the caller supplied one.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type Reminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []ReminderOverride `json:"overrides"`
}

type ReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// CreatedEvent is the slice of the insert response we care about.
type CreatedEvent struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

// InsertEvent creates the event and returns its id and browser link.
func (c *Client) InsertEvent(ctx context.Context, event Event) (*CreatedEvent, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal calendar event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("calendar token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("calendar api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var created CreatedEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode calendar response: %w", err)
	}
	return &created, nil
}
