// Package groq provides a minimal client for Groq's OpenAI-compatible
// chat completions API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Config for the Groq API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client calls Groq's OpenAI-compatible endpoint.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a Groq client with sensible defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	// JSONResponse asks the API to constrain output to a JSON object.
	JSONResponse bool
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error interface{} `json:"error"`
}

// Complete runs one chat completion and returns the assistant message content.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openAIMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.UserPrompt})

	payload := map[string]interface{}{
		"model":       c.config.Model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.JSONResponse {
		payload["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonBody, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode groq response: %v", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("groq api error: %v", result.Error)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("groq api error: empty choices")
	}

	return result.Choices[0].Message.Content, nil
}
