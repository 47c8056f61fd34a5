package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"recut/internal/config"
	"recut/internal/services"
	"recut/internal/services/llm"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var enhance bool

	cmd := &cobra.Command{
		Use:   "transcribe <video>",
		Short: "Transcribe a video's speech to text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.environment()
			if err != nil {
				return err
			}
			text, err := transcribeMedia(cmd.Context(), cfg, logger, args[0])
			if err != nil {
				return err
			}
			if enhance {
				text, err = enhanceText(cmd.Context(), cfg, logger, text)
				if err != nil {
					return err
				}
			}
			return writeTextOutput(cmd, outputPath, text)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the transcript to this file instead of stdout")
	cmd.Flags().BoolVar(&enhance, "enhance", false, "Clean up the transcript with the configured chat model")
	return cmd
}

func transcribeMedia(ctx context.Context, cfg *config.Config, logger *slog.Logger, ref string) (string, error) {
	ctx = services.WithStage(ctx, "transcribing")
	transcriber, extractor, err := newTranscription(cfg, logger)
	if err != nil {
		return "", err
	}
	media, err := newMediaSource(cfg).Load(ctx, ref)
	if err != nil {
		return "", err
	}
	data, err := extractor.Extract(ctx, media)
	if err != nil {
		return "", err
	}
	text, err := transcriber.Transcribe(ctx, data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(services.ErrTranscription, "transcribing", "transcribe", "transcript is empty", nil)
	}
	return text, nil
}

func newEnhanceCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "enhance <transcript|->",
		Short: "Fix transcription errors and punctuation with a chat model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.environment()
			if err != nil {
				return err
			}
			text, err := readTextInput(cmd, args[0])
			if err != nil {
				return err
			}
			enhanced, err := enhanceText(cmd.Context(), cfg, logger, text)
			if err != nil {
				return err
			}
			return writeTextOutput(cmd, outputPath, enhanced)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the enhanced transcript to this file instead of stdout")
	return cmd
}

func enhanceText(ctx context.Context, cfg *config.Config, logger *slog.Logger, text string) (string, error) {
	if err := cfg.RequireAPIKey("enhance"); err != nil {
		return "", err
	}
	conn := cfg.EnhanceOpenAI()
	enhancer := llm.NewEnhancer(llm.NewClient(conn), conn.Model, cfg.Enhance.Temperature, logger)
	enhanced, err := enhancer.Enhance(services.WithStage(ctx, "enhancing"), text)
	if err != nil {
		return "", fmt.Errorf("enhance transcript: %w", err)
	}
	return enhanced, nil
}
