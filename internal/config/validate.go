package config

import (
	"errors"
	"fmt"
	"os"

	"recut/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if c.Enhance.Temperature < 0 || c.Enhance.Temperature > 2 {
		return errors.New("enhance.temperature must be between 0 and 2")
	}
	switch c.Transcript.Aligner {
	case AlignerSet, AlignerLCS:
	default:
		return fmt.Errorf("transcript.aligner: unsupported value %q (want set or lcs)", c.Transcript.Aligner)
	}
	if c.Session.RetentionHours < 0 {
		return errors.New("session.retention_hours must be zero or positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateEngine() error {
	switch c.Engine.BusyPolicy {
	case BusyPolicyWait, BusyPolicyReject:
	default:
		return fmt.Errorf("engine.busy_policy: unsupported value %q (want wait or reject)", c.Engine.BusyPolicy)
	}
	if c.Engine.LoadTimeoutSeconds < 0 {
		return errors.New("engine.load_timeout_seconds must be positive")
	}
	if c.Engine.MinFreeMiB < 0 {
		return errors.New("engine.min_free_mib must be zero or positive")
	}
	if c.Engine.MarkerFontFile != "" {
		if _, err := os.Stat(c.Engine.MarkerFontFile); err != nil {
			return fmt.Errorf("engine.marker_font_file: %w", err)
		}
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case BackendOpenAI, BackendWhisperX:
	default:
		return fmt.Errorf("transcription.backend: unsupported value %q (want openai or whisperx)", c.Transcription.Backend)
	}
	if c.Transcription.TimeoutSeconds < 0 {
		return errors.New("transcription.timeout_seconds must be positive")
	}
	if lang := c.Transcription.Language; lang != "" && !language.Supported(lang) {
		return fmt.Errorf("transcription.language: unsupported value %q (use an ISO 639-1 code such as \"en\")", lang)
	}
	return nil
}
