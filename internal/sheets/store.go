// Package sheets persists leads to a Google spreadsheet, which doubles
// as the system of record and the dedupe index.
package sheets

import (
	"context"
	"fmt"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Column layout of the lead sheet. Status and notes live past the header
// in columns I and J and are only written by UpdateStatus.
var headerRow = []any{"Timestamp", "Name", "Email", "Phone", "Car Model", "Appointment", "Intent Score"}

const (
	leadRange  = "A:G"
	nameColumn = "B:B"
	emailIndex = 2
	phoneIndex = 3
	statusCol  = "I"
	notesCol   = "J"
)

// Store reads and writes lead rows.
type Store struct {
	client *Client
	log    *logger.Logger
}

func NewStore(cfg config.SheetsConfig, log *logger.Logger) (*Store, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{client: client, log: log}, nil
}

// EnsureHeaders writes the header row when the sheet is still empty.
func (s *Store) EnsureHeaders(ctx context.Context) error {
	rows, err := s.client.Values(ctx, "1:1")
	if err != nil {
		return fmt.Errorf("read sheet headers: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		return nil
	}

	if err := s.client.Append(ctx, "A1", [][]any{headerRow}); err != nil {
		return fmt.Errorf("write sheet headers: %w", err)
	}
	s.log.Info("created sheet headers")
	return nil
}

// Exists reports whether a lead with the same email or phone is already
// recorded. A read failure is treated as no duplicate so that a sheet
// outage does not block intake.
func (s *Store) Exists(ctx context.Context, email, phone string) bool {
	rows, err := s.client.Values(ctx, leadRange)
	if err != nil {
		s.log.StoreError("duplicate check", err)
		return false
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cellText(row, emailIndex) == email || cellText(row, phoneIndex) == phone {
			return true
		}
	}
	return false
}

// LogLead appends the lead as a new row. It re-checks for duplicates
// right before writing and reports false when the row was not written.
func (s *Store) LogLead(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead) bool {
	if s.Exists(ctx, lead.Email, lead.Phone) {
		s.log.Warn("lead already recorded, skipping duplicate", "email", lead.Email)
		return false
	}

	row := []any{
		lead.Timestamp,
		processed.Name,
		lead.Email,
		processed.Phone,
		processed.Model,
		processed.Datetime,
		processed.IntentScore,
	}

	if err := s.client.Append(ctx, "A1", [][]any{row}); err != nil {
		s.log.StoreError("append lead", err)
		return false
	}

	s.log.Info("logged lead to sheet", "name", processed.Name)
	return true
}

// ListAll returns every lead row as a record keyed by the header row.
func (s *Store) ListAll(ctx context.Context) ([]map[string]any, error) {
	rows, err := s.client.Values(ctx, leadRange)
	if err != nil {
		s.log.StoreError("list leads", err)
		return nil, err
	}
	if len(rows) == 0 {
		return []map[string]any{}, nil
	}

	headers := make([]string, 0, len(rows[0]))
	for i := range rows[0] {
		headers = append(headers, cellText(rows[0], i))
	}

	records := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]any, len(headers))
		for i, key := range headers {
			if i < len(row) {
				record[key] = row[i]
			} else {
				record[key] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// UpdateStatus finds the row whose name column equals leadID and writes
// the status into column I and, when given, the notes into column J.
// It reports false when no row matched or the write failed.
func (s *Store) UpdateStatus(ctx context.Context, leadID, status, notes string) bool {
	rows, err := s.client.Values(ctx, nameColumn)
	if err != nil {
		s.log.StoreError("find lead", err)
		return false
	}

	rowNum := 0
	for i, row := range rows {
		if cellText(row, 0) == leadID {
			rowNum = i + 1
			break
		}
	}
	if rowNum == 0 {
		return false
	}

	if err := s.client.Update(ctx, fmt.Sprintf("%s%d", statusCol, rowNum), [][]any{{status}}); err != nil {
		s.log.StoreError("update status", err)
		return false
	}
	if notes != "" {
		if err := s.client.Update(ctx, fmt.Sprintf("%s%d", notesCol, rowNum), [][]any{{notes}}); err != nil {
			s.log.StoreError("update notes", err)
			return false
		}
	}

	s.log.Info("updated lead status", "lead_id", leadID, "status", status)
	return true
}

func cellText(row []any, idx int) string {
	if idx >= len(row) {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return s
	}
	return fmt.Sprint(row[idx])
}
