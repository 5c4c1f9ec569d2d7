// Package gemini implements the inference client against the Google Gemini
// API.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Client struct {
	apiKey string
	model  string
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
	}
}

// GetModel returns the model name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

// Generate implements the inference.Client interface. The genai client is
// created per call; it wraps a pooled gRPC connection and the suggestion
// cache calls this at most once per TTL window.
func (client *Client) Generate(ctx context.Context, prompt string) (string, error) {
	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(client.apiKey))
	if err != nil {
		return "", fmt.Errorf("genai.NewClient > %w", err)
	}
	defer func() {
		_ = genaiClient.Close()
	}()

	model := genaiClient.GenerativeModel(client.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("model.GenerateContent > %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}
	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}
	return "", fmt.Errorf("unexpected response format from Gemini")
}
