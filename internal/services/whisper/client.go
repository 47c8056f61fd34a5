package whisper

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"recut/internal/config"
	"recut/internal/logging"
	"recut/internal/services"
	"recut/internal/services/llm"
)

// DefaultModel is the hosted transcription model.
const DefaultModel = openai.Whisper1

// Client submits audio to an OpenAI-compatible transcription endpoint.
type Client struct {
	api      *openai.Client
	model    string
	language string
	filename string
	logger   *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLanguage sets the ISO-639-1 hint sent with each request.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = strings.TrimSpace(lang)
	}
}

// WithFilename sets the upload name, which the API uses to detect the
// audio container.
func WithFilename(name string) Option {
	return func(c *Client) {
		if strings.TrimSpace(name) != "" {
			c.filename = strings.TrimSpace(name)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "whisper")
	}
}

// New wraps an existing API client.
func New(api *openai.Client, model string, opts ...Option) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	c := &Client{
		api:      api,
		model:    strings.TrimSpace(model),
		filename: "audio.mp3",
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the [transcription] section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	conn := cfg.TranscriptionOpenAI()
	api := llm.NewClient(conn, llm.WithTimeout(cfg.TranscriptionTimeout()))
	return New(api, conn.Model,
		WithLanguage(cfg.Transcription.Language),
		WithLogger(logger),
	)
}

// Model reports the transcription model name.
func (c *Client) Model() string {
	return c.model
}

// Transcribe uploads audio and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", services.Wrap(services.ErrTranscription, "transcribing", "whisper", "empty audio", nil)
	}
	started := time.Now()
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: c.filename,
		Reader:   bytes.NewReader(audio),
		Language: c.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "transcription request failed", "transcription_failed",
			logging.String(logging.FieldErrorHint, llm.DescribeError(err)),
			logging.String(logging.FieldImpact, "session stays idle until transcription succeeds"),
			logging.Error(err),
		)
		return "", services.Wrap(services.ErrTranscription, "transcribing", "whisper", llm.DescribeError(err), err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", services.Wrap(services.ErrTranscription, "transcribing", "whisper", "service returned empty transcript", nil)
	}
	logging.WithContext(ctx, c.logger).Info("audio transcribed",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.String("model", c.model),
		logging.Int("audio_bytes", len(audio)),
		logging.Int("chars", len(text)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return text, nil
}
