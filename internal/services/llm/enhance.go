package llm

import (
	"context"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"recut/internal/logging"
	"recut/internal/services"
)

// EnhanceSystemPrompt instructs the model to tighten a transcript without
// inventing content.
const EnhanceSystemPrompt = "You are an expert video editor. Your task is to improve the provided video transcription " +
	"by removing duplicate sentences, repetitive ideas, and creating a more coherent story. " +
	"Maintain the original meaning and key points, but make the content flow better. " +
	"Do not add fictional information. Only output the edited transcript text without any explanations, " +
	"formatting, or additional notes."

const (
	DefaultEnhanceModel       = "gpt-4o-mini"
	DefaultEnhanceTemperature = 0.7
)

// Enhancer rewrites transcripts with a chat completion model.
type Enhancer struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// NewEnhancer wraps client. Empty model and non-positive temperature fall
// back to package defaults.
func NewEnhancer(client *openai.Client, model string, temperature float64, logger *slog.Logger) *Enhancer {
	if strings.TrimSpace(model) == "" {
		model = DefaultEnhanceModel
	}
	if temperature <= 0 {
		temperature = DefaultEnhanceTemperature
	}
	return &Enhancer{
		client:      client,
		model:       strings.TrimSpace(model),
		temperature: float32(temperature),
		logger:      logging.NewComponentLogger(logger, "enhancer"),
	}
}

// Enhance returns the rewritten transcript.
func (e *Enhancer) Enhance(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "enhancing", "chat completion", "transcript is empty", nil)
	}
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: EnhanceSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "enhancing", "chat completion", DescribeError(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrTranscription, "enhancing", "chat completion", "model returned no choices", nil)
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", services.Wrap(services.ErrTranscription, "enhancing", "chat completion", "model returned empty content", nil)
	}
	logging.WithContext(ctx, e.logger).Info("transcript enhanced",
		logging.String(logging.FieldEventType, "transcript_enhanced"),
		logging.String("model", e.model),
		logging.Int("input_chars", len(text)),
		logging.Int("output_chars", len(out)),
		logging.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return out, nil
}
