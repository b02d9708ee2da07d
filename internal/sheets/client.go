package sheets

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

	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/googleauth"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// tokenSource mints bearer tokens for the Sheets API.
type tokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the Google Sheets values API for a single spreadsheet.
// Ranges without a sheet prefix address the first worksheet.
type Client struct {
	baseURL       string
	spreadsheetID string
	tokens        tokenSource
	http          *http.Client
}

func NewClient(cfg config.SheetsConfig) (*Client, error) {
	if cfg.GetSpreadsheetID() == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	tokens, err := googleauth.NewTokenSource(cfg.GetSheetsCredentialsJSON(), googleauth.ScopeSpreadsheets)
	if err != nil {
		return nil, fmt.Errorf("sheets credentials: %w", err)
	}

	return &Client{
		baseURL:       defaultBaseURL,
		spreadsheetID: cfg.GetSpreadsheetID(),
		tokens:        tokens,
		http:          &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type valueRange struct {
	Range  string  `json:"range,omitempty"`
	Values [][]any `json:"values"`
}

// Values reads the cell values of the given A1 range.
func (c *Client) Values(ctx context.Context, rangeRef string) ([][]any, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s", c.baseURL, c.spreadsheetID, url.PathEscape(rangeRef))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var vr valueRange
	if err := c.do(req, &vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

// Append appends rows after the table that contains the given range.
// Values are written raw, as gspread does, so strings stay strings.
func (c *Client) Append(ctx context.Context, rangeRef string, rows [][]any) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=RAW", c.baseURL, c.spreadsheetID, url.PathEscape(rangeRef))

	body, err := json.Marshal(valueRange{Values: rows})
	if err != nil {
		return apperr.Internal(fmt.Sprintf("marshal sheet rows: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

// Update overwrites the cells of the given range.
func (c *Client) Update(ctx context.Context, rangeRef string, rows [][]any) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW", c.baseURL, c.spreadsheetID, url.PathEscape(rangeRef))

	body, err := json.Marshal(valueRange{Values: rows})
	if err != nil {
		return apperr.Internal(fmt.Sprintf("marshal sheet rows: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	token, err := c.tokens.Token(req.Context())
	if err != nil {
		return apperr.Internal(fmt.Sprintf("sheets token: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("sheets request failed: %v", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return apperr.Internal(fmt.Sprintf("sheets api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperr.Internal(fmt.Sprintf("decode sheets response: %v", err))
		}
	}
	return nil
}
