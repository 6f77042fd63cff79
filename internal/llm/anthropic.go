package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicClient implements Client for the Anthropic Messages API.
type AnthropicClient struct {
	client     anthropic.Client
	httpClient *http.Client
	config     *Config
}

// NewAnthropicClient creates an Anthropic client.
func NewAnthropicClient(config *Config, apiKey string) (*AnthropicClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	httpClient := &http.Client{Timeout: 2 * time.Minute}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(config.MaxRetries),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicClient{
		client:     anthropic.NewClient(opts...),
		httpClient: httpClient,
		config:     config,
	}, nil
}

// GenerateContent sends prompt as a single user message and returns the text reply.
func (c *AnthropicClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model := c.config.GetModel(tier)
	if model == "" {
		return "", &APICallError{Message: fmt.Sprintf("no model configured for tier %s", tier)}
	}

	maxTokens := c.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		slog.Debug("Anthropic request failed", "model", model, "elapsed", time.Since(start), "error", err)
		return "", wrapAnthropicError(err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text, err := cleanText(strings.Join(parts, ""))
	if err != nil {
		return "", &APICallError{Message: "malformed response", Cause: err}
	}

	slog.Debug("Anthropic request completed", "model", model, "elapsed", time.Since(start), "output_tokens", msg.Usage.OutputTokens)
	return text, nil
}

// GetModel returns the model name for a tier
func (c *AnthropicClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *AnthropicClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// wrapAnthropicError converts SDK errors, keeping the status and the API's own message.
func wrapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		msg := extractAnthropicError([]byte(apiErr.RawJSON()))
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &APICallError{Message: msg, StatusCode: apiErr.StatusCode, Cause: err}
	}
	return &APICallError{Message: "request failed", Cause: err}
}

// extractAnthropicError pulls the human-readable message out of an error body.
func extractAnthropicError(body []byte) string {
	var e anthropicErrorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Error.Type != "" && e.Error.Message != "" {
		return e.Error.Type + ": " + e.Error.Message
	}
	return e.Error.Message
}
