package scoring

import (
	"context"

	"leadflow_backend/platform/ai/groq"
	"leadflow_backend/platform/config"
)

// GroqBackend adapts the Groq chat completions client to the Completer
// interface. This is the default scoring backend.
type GroqBackend struct {
	client *groq.Client
}

// NewGroqBackend builds the Groq backend from scorer configuration.
func NewGroqBackend(cfg config.ScorerConfig) *GroqBackend {
	return &GroqBackend{
		client: groq.NewClient(groq.Config{
			APIKey:  cfg.GetGroqAPIKey(),
			BaseURL: cfg.GetGroqBaseURL(),
			Model:   cfg.GetGroqModel(),
		}),
	}
}

// Complete implements Completer.
func (b *GroqBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return b.client.Complete(ctx, groq.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  modelTemperature,
		JSONResponse: true,
	})
}
