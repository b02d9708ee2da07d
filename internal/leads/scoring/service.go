// Package scoring qualifies inbound leads with a language model.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

const (
	// maxAttempts bounds independent analysis calls per lead. There is no
	// backoff; a fresh call either succeeds or the next one runs.
	maxAttempts = 3

	// modelTemperature keeps scoring near-deterministic.
	modelTemperature = 0.3
)

// Completer runs one model completion and returns the raw response text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service scores leads through a Completer backend, falling back to the
// neutral score when every attempt fails.
type Service struct {
	backend Completer
	log     *logger.Logger
}

// New creates a scoring service on top of a model backend.
func New(backend Completer, log *logger.Logger) *Service {
	return &Service{backend: backend, log: log}
}

// AnalyzeLead runs up to maxAttempts analysis calls and returns the first
// structurally valid result, with the intent score clamped to [0, 1].
// When no attempt yields a usable response the lead fields are echoed back
// with the fallback score.
func (s *Service) AnalyzeLead(ctx context.Context, lead domain.Lead) domain.ProcessedLead {
	prompt := buildPrompt(lead)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := s.backend.Complete(ctx, systemPrompt, prompt)
		if err != nil {
			s.log.Error("lead analysis attempt failed", "lead", lead.Name, "attempt", attempt, "error", err)
			continue
		}

		processed, err := parseProcessedLead(content)
		if err != nil {
			s.log.Error("lead analysis response rejected", "lead", lead.Name, "attempt", attempt, "error", err)
			continue
		}

		s.log.Info("lead analysis complete", "lead", lead.Name, "attempt", attempt)
		return processed
	}

	s.log.Warn("using fallback score - manual review recommended", "lead", lead.Name)
	return domain.FallbackProcessed(lead)
}

// parseProcessedLead decodes a model response. All five fields must be
// present; the score may arrive as a number or a numeric string.
func parseProcessedLead(content string) (domain.ProcessedLead, error) {
	var raw struct {
		Name        *string         `json:"name"`
		Phone       *string         `json:"phone"`
		Model       *string         `json:"model"`
		Datetime    *string         `json:"datetime"`
		IntentScore json.RawMessage `json:"intent_score"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return domain.ProcessedLead{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if raw.Name == nil || raw.Phone == nil || raw.Model == nil || raw.Datetime == nil || raw.IntentScore == nil {
		return domain.ProcessedLead{}, fmt.Errorf("response missing required fields")
	}

	score, err := coerceScore(raw.IntentScore)
	if err != nil {
		return domain.ProcessedLead{}, err
	}

	return domain.ProcessedLead{
		Name:        *raw.Name,
		Phone:       *raw.Phone,
		Model:       *raw.Model,
		Datetime:    *raw.Datetime,
		IntentScore: clampScore(score),
	}, nil
}

func coerceScore(raw json.RawMessage) (float64, error) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("intent_score %q is not numeric", text)
		}
		return parsed, nil
	}

	return 0, fmt.Errorf("intent_score has unsupported type")
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
