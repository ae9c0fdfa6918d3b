package providers

import (
	"context"
	"fmt"
	"strings"

	"signal-classifier/config"
	"signal-classifier/deepseek"
	"signal-classifier/gemini"
	"signal-classifier/llm"
	"signal-classifier/stubllm"
)

// NewFactory returns a factory for the configured provider.
// Every client it builds is bound to the key passed at call time.
func NewFactory(cfg *config.Config) (llm.Factory, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return func(apiKey string) (llm.Client, error) {
			if strings.TrimSpace(apiKey) == "" {
				return nil, llm.ErrCredentialMissing
			}
			client, err := gemini.NewClient(context.Background(), gemini.Config{
				APIKey:  apiKey,
				Model:   cfg.Model,
				BaseURL: cfg.BaseURL,
			})
			if err != nil {
				return nil, err
			}
			return client, nil
		}, nil
	case config.ProviderDeepSeek:
		return func(apiKey string) (llm.Client, error) {
			client, err := deepseek.NewClient(deepseek.Config{
				APIKey:  apiKey,
				Model:   cfg.Model,
				BaseURL: cfg.BaseURL,
			})
			if err != nil {
				return nil, err
			}
			return client, nil
		}, nil
	case config.ProviderStub:
		stub := stubllm.NewClient(cfg.StubResponse)
		return func(apiKey string) (llm.Client, error) {
			if strings.TrimSpace(apiKey) == "" {
				return nil, llm.ErrCredentialMissing
			}
			return stub, nil
		}, nil
	}
	return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
}
