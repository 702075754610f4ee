package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Model generates a text completion for a prompt
type Model interface {
	Generate(ctx context.Context, prompt string, jsonOutput bool) (string, error)
}

// GeminiModel calls a Gemini model through the GenAI SDK
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Gemini-backed Model
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

// Generate implements Model
func (m *GeminiModel) Generate(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	var cfg *genai.GenerateContentConfig
	if jsonOutput {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("GenAI returned an empty response")
	}
	return text, nil
}

// Name returns the model name
func (m *GeminiModel) Name() string {
	return fmt.Sprintf("genai:%s", m.model)
}
