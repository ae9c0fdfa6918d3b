package llm

import (
	"context"
	"errors"
)

// ErrCredentialMissing is returned when no API key is available for the provider.
var ErrCredentialMissing = errors.New("model API credential missing")

// Client abstracts a generative-text provider used by the classifier.
// Implementations must be safe for use by concurrent requests.
type Client interface {
	// Generate sends a single prompt and returns the model's text answer.
	Generate(ctx context.Context, prompt string) (string, error)
	// SourceName returns a short provider label (e.g. "Gemini").
	SourceName() string
	// ModelName returns the provider-specific model identifier.
	ModelName() string
}

// Factory builds a client bound to one API key.
// It must return ErrCredentialMissing for an empty key without touching the network.
type Factory func(apiKey string) (Client, error)
