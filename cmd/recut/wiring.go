package main

import (
	"log/slog"

	"recut/internal/config"
	"recut/internal/engine"
	"recut/internal/media/audio"
	"recut/internal/media/source"
	"recut/internal/pipeline"
	"recut/internal/services/whisper"
	"recut/internal/services/whisperx"
)

func newMediaSource(cfg *config.Config) source.FileSource {
	return source.FileSource{FFprobeBinary: cfg.Engine.FFprobeBinary}
}

// newTranscription builds the configured speech-to-text backend together
// with an extractor producing the audio format that backend expects.
func newTranscription(cfg *config.Config, logger *slog.Logger) (pipeline.Transcriber, audio.Extractor, error) {
	switch cfg.Transcription.Backend {
	case config.BackendWhisperX:
		svc := whisperx.NewService(whisperx.Config{
			Model:       cfg.Transcription.WhisperXModel,
			CUDAEnabled: cfg.Transcription.WhisperXCUDA,
			Language:    cfg.Transcription.Language,
			WorkDir:     cfg.Paths.WorkDir,
		})
		return svc, newExtractor(cfg, audio.FormatWAV), nil
	default:
		if err := cfg.RequireAPIKey("transcription"); err != nil {
			return nil, audio.Extractor{}, err
		}
		return whisper.NewFromConfig(cfg, logger), newExtractor(cfg, audio.FormatMP3), nil
	}
}

func newExtractor(cfg *config.Config, format string) audio.Extractor {
	return audio.Extractor{
		FFmpegBinary: cfg.Engine.FFmpegBinary,
		Format:       format,
		WorkDir:      cfg.Paths.WorkDir,
	}
}

func newProcessor(cfg *config.Config, logger *slog.Logger) (*pipeline.Processor, error) {
	return pipeline.NewProcessorFromConfig(cfg, engine.NewFromConfig(cfg, logger), logger)
}
