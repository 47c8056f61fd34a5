package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Busy policies for the transcoding engine.
const (
	BusyPolicyWait   = "wait"
	BusyPolicyReject = "reject"
)

// Transcription backends.
const (
	BackendOpenAI   = "openai"
	BackendWhisperX = "whisperx"
)

// Transcript aligners.
const (
	AlignerSet = "set"
	AlignerLCS = "lcs"
)

// Paths contains directory configuration.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Engine configures the ffmpeg-backed transcoding engine.
type Engine struct {
	FFmpegBinary       string `toml:"ffmpeg_binary"`
	FFprobeBinary      string `toml:"ffprobe_binary"`
	BusyPolicy         string `toml:"busy_policy"`
	LoadTimeoutSeconds int    `toml:"load_timeout_seconds"`
	MarkerText         string `toml:"marker_text"`
	MarkerFontFile     string `toml:"marker_font_file"`
	MinFreeMiB         int    `toml:"min_free_mib"`
}

// Transcription selects and configures the speech-to-text backend.
type Transcription struct {
	Backend        string `toml:"backend"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	WhisperXModel  string `toml:"whisperx_model"`
	WhisperXCUDA   bool   `toml:"whisperx_cuda"`
}

// Enhance configures LLM transcript enhancement. Connection settings fall
// back to [transcription] when empty.
type Enhance struct {
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
}

// Transcript configures transcript diffing.
type Transcript struct {
	Aligner string `toml:"aligner"`
}

// Session configures the editing session store.
type Session struct {
	RetentionHours int `toml:"retention_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for recut.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Engine        Engine        `toml:"engine"`
	Transcription Transcription `toml:"transcription"`
	Enhance       Enhance       `toml:"enhance"`
	Transcript    Transcript    `toml:"transcript"`
	Session       Session       `toml:"session"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/recut/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("recut.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the work, state, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SessionDBPath returns the location of the session database.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.Paths.StateDir, "sessions.db")
}

// LoadTimeout returns the engine load deadline.
func (c *Config) LoadTimeout() time.Duration {
	return time.Duration(c.Engine.LoadTimeoutSeconds) * time.Second
}

// TranscriptionTimeout returns the per-request transcription deadline.
func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.Transcription.TimeoutSeconds) * time.Second
}

// SessionRetention returns how long idle sessions are kept.
func (c *Config) SessionRetention() time.Duration {
	return time.Duration(c.Session.RetentionHours) * time.Hour
}

// OpenAIConfig contains connection settings for OpenAI-compatible endpoints.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// TranscriptionOpenAI returns the connection used for whisper transcription.
func (c *Config) TranscriptionOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:  strings.TrimSpace(c.Transcription.APIKey),
		BaseURL: strings.TrimSpace(c.Transcription.BaseURL),
		Model:   strings.TrimSpace(c.Transcription.Model),
	}
}

// EnhanceOpenAI returns the connection used for transcript enhancement,
// falling back to the transcription credentials.
func (c *Config) EnhanceOpenAI() OpenAIConfig {
	cfg := OpenAIConfig{
		APIKey:  strings.TrimSpace(c.Enhance.APIKey),
		BaseURL: strings.TrimSpace(c.Enhance.BaseURL),
		Model:   strings.TrimSpace(c.Enhance.Model),
	}
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(c.Transcription.APIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = strings.TrimSpace(c.Transcription.BaseURL)
	}
	return cfg
}

// RequireAPIKey reports a configuration error when an OpenAI-backed feature
// is used without credentials.
func (c *Config) RequireAPIKey(feature string) error {
	key := c.Transcription.APIKey
	if feature == "enhance" {
		key = c.EnhanceOpenAI().APIKey
	}
	if strings.TrimSpace(key) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/recut/config.toml"
	}
	return fmt.Errorf("%s requires an OpenAI API key. Set OPENAI_API_KEY or edit %s (create with 'recut config init')", feature, defaultPath)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
