package config

import (
	"fmt"
	"os"
	"strings"

	"recut/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeEngine(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeEnhance()
	c.Transcript.Aligner = lowerTrim(c.Transcript.Aligner, defaultAligner)
	c.Logging.Format = lowerTrim(c.Logging.Format, defaultLogFormat)
	c.Logging.Level = lowerTrim(c.Logging.Level, defaultLogLevel)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(orDefault(c.Paths.WorkDir, defaultWorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(orDefault(c.Paths.StateDir, defaultStateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEngine() error {
	if value, ok := os.LookupEnv("RECUT_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Engine.FFmpegBinary = strings.TrimSpace(value)
	}
	c.Engine.FFmpegBinary = orDefault(c.Engine.FFmpegBinary, defaultFFmpegBinary)
	c.Engine.FFprobeBinary = orDefault(c.Engine.FFprobeBinary, defaultFFprobeBinary)
	c.Engine.BusyPolicy = lowerTrim(c.Engine.BusyPolicy, defaultBusyPolicy)
	if c.Engine.LoadTimeoutSeconds == 0 {
		c.Engine.LoadTimeoutSeconds = defaultLoadTimeoutSeconds
	}
	c.Engine.MarkerText = strings.TrimSpace(c.Engine.MarkerText)
	if font := strings.TrimSpace(c.Engine.MarkerFontFile); font != "" {
		expanded, err := expandPath(font)
		if err != nil {
			return fmt.Errorf("engine.marker_font_file: %w", err)
		}
		c.Engine.MarkerFontFile = expanded
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Backend = lowerTrim(c.Transcription.Backend, defaultTranscriptionEngine)
	c.Transcription.APIKey = strings.TrimSpace(c.Transcription.APIKey)
	if c.Transcription.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Transcription.APIKey = strings.TrimSpace(value)
		}
	}
	c.Transcription.BaseURL = strings.TrimSpace(c.Transcription.BaseURL)
	c.Transcription.Model = orDefault(c.Transcription.Model, defaultTranscriptionModel)
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if code := language.ToISO2(c.Transcription.Language); code != "" {
		c.Transcription.Language = code
	}
	if c.Transcription.TimeoutSeconds == 0 {
		c.Transcription.TimeoutSeconds = defaultTranscriptionTmo
	}
	c.Transcription.WhisperXModel = orDefault(c.Transcription.WhisperXModel, defaultWhisperXModel)
}

func (c *Config) normalizeEnhance() {
	c.Enhance.APIKey = strings.TrimSpace(c.Enhance.APIKey)
	c.Enhance.BaseURL = strings.TrimSpace(c.Enhance.BaseURL)
	c.Enhance.Model = orDefault(c.Enhance.Model, defaultEnhanceModel)
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func lowerTrim(value, fallback string) string {
	return strings.ToLower(orDefault(value, fallback))
}
