package scoring

import (
	"context"
	"fmt"
	"strings"

	"leadflow_backend/platform/config"

	"google.golang.org/genai"
)

// GeminiBackend adapts the Gemini SDK to the Completer interface. It is
// used when a Gemini key is configured and no Groq key is.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend builds the Gemini backend from scorer configuration.
func NewGeminiBackend(ctx context.Context, cfg config.ScorerConfig) (*GeminiBackend, error) {
	if cfg.GetGeminiAPIKey() == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GetGeminiAPIKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.GetGeminiModel()
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiBackend{client: client, model: model}, nil
}

// Complete implements Completer.
func (b *GeminiBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](modelTemperature),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
