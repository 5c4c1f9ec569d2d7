// Package inference defines the text-generation collaborator consumed by
// the suggestion cache. Providers are treated as unreliable and rate
// limited; callers must keep a non-generative fallback.
package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client is a text-generation provider.
type Client interface {
	// Generate returns the raw completion for the prompt. The caller owns
	// parsing and validation of the returned text.
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	DefaultMaxRetryAttempts = 3
)
