package llm

import (
	"context"
	"fmt"
	"strings"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration.
// Missing credentials do not fail construction: the returned client rejects every request instead,
// so batch callers can keep going with their own fallback.
func NewClient(ctx context.Context, config *Config, apiKey string) Client {
	if config == nil {
		config = DefaultConfig()
	}

	var (
		client Client
		err    error
	)
	switch config.Provider {
	case ProviderGemini:
		client, err = NewGeminiClient(ctx, config, apiKey)
	default:
		client, err = NewAnthropicClient(config, apiKey)
	}
	if err != nil {
		return &unavailableClient{config: config, err: err}
	}
	return client
}

// unavailableClient fails every request with the error that prevented construction.
type unavailableClient struct {
	config *Config
	err    error
}

func (c *unavailableClient) GenerateContent(_ context.Context, _ string, _ ModelTier) (string, error) {
	return "", &APICallError{Message: "client unavailable", Cause: c.err}
}

func (c *unavailableClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

func (c *unavailableClient) Close() error {
	return nil
}

// cleanText trims a generated reply; an empty reply is an error.
func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text in response")
	}
	return text, nil
}
