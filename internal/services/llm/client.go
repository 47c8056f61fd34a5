package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"recut/internal/config"
)

const defaultHTTPTimeout = 120 * time.Second

// Option customizes client construction.
type Option func(*openai.ClientConfig)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *openai.ClientConfig) {
		if client != nil {
			c.HTTPClient = client
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *openai.ClientConfig) {
		if d > 0 {
			c.HTTPClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient constructs an API client for cfg. An empty BaseURL targets the
// public OpenAI API.
func NewClient(cfg config.OpenAIConfig, opts ...Option) *openai.Client {
	clientConfig := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientConfig.BaseURL = strings.TrimRight(base, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	for _, opt := range opts {
		opt(&clientConfig)
	}
	return openai.NewClientWithConfig(clientConfig)
}

// StatusCode extracts the HTTP status of an API failure, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// DescribeError summarizes an API failure for display.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	switch code := StatusCode(err); {
	case code == http.StatusUnauthorized:
		return "invalid API key"
	case code == http.StatusTooManyRequests:
		return "quota or rate limit exceeded"
	case code >= 500:
		return fmt.Sprintf("service unavailable (HTTP %d)", code)
	case code > 0:
		return fmt.Sprintf("request rejected (HTTP %d)", code)
	}
	return "request failed"
}

// HealthCheck verifies the key by listing models.
func HealthCheck(ctx context.Context, client *openai.Client) error {
	if client == nil {
		return errors.New("llm health: client required")
	}
	if _, err := client.ListModels(ctx); err != nil {
		return fmt.Errorf("llm health: %s: %w", DescribeError(err), err)
	}
	return nil
}
