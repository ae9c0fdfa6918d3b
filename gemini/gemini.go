package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"signal-classifier/llm"

	"google.golang.org/genai"
)

const (
	sourceName   = "Gemini"
	DefaultModel = "gemini-2.5-flash"
)

// Config configures the Gemini client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint (tests, proxies).
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the Gemini generateContent API through the genai SDK.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client. No request is sent until Generate.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, llm.ErrCredentialMissing
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) SourceName() string { return sourceName }

func (c *Client) ModelName() string { return c.model }

// Generate sends the prompt as a single user turn and returns the text answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", mapError(err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", &llm.ProviderError{
			Provider: sourceName,
			Kind:     llm.KindMalformed,
			Message:  "no text part in response",
		}
	}
	return text, nil
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.StatusError(sourceName, apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return llm.StatusError(sourceName, apiErrPtr.Code, apiErrPtr.Message, err)
	}
	return llm.Wrap(sourceName, err)
}
