package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"recut/internal/config"
)

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RECUT_FFMPEG", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "recut", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".cache", "recut", "work"); cfg.Paths.WorkDir != want {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "recut", "sessions.db"); cfg.SessionDBPath() != want {
		t.Fatalf("unexpected session db path: got %q want %q", cfg.SessionDBPath(), want)
	}
	if cfg.Transcription.APIKey != "sk-test" {
		t.Fatalf("expected API key from env, got %q", cfg.Transcription.APIKey)
	}
	if cfg.EnhanceOpenAI().APIKey != "sk-test" {
		t.Fatalf("expected enhance key to fall back to transcription key")
	}
	if cfg.Engine.BusyPolicy != config.BusyPolicyWait {
		t.Fatalf("unexpected busy policy %q", cfg.Engine.BusyPolicy)
	}
	if cfg.Engine.FFmpegBinary != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary %q", cfg.Engine.FFmpegBinary)
	}
	if cfg.Transcript.Aligner != config.AlignerSet {
		t.Fatalf("unexpected aligner %q", cfg.Transcript.Aligner)
	}
	if cfg.LoadTimeout() != 30*time.Second {
		t.Fatalf("unexpected load timeout %s", cfg.LoadTimeout())
	}
	if cfg.Enhance.Model != "gpt-4o-mini" || cfg.Enhance.Temperature != 0.7 {
		t.Fatalf("unexpected enhance defaults %+v", cfg.Enhance)
	}
}

func TestLoadCustomFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("RECUT_FFMPEG", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "recut.toml")
	content := `
[paths]
work_dir = "~/scratch"

[engine]
busy_policy = "REJECT"
marker_text = "  Cut  "

[transcription]
backend = "whisperx"
api_key = "file-key"
language = "English"

[transcript]
aligner = "lcs"

[session]
retention_hours = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom file to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempHome, "scratch") {
		t.Fatalf("unexpected work dir %q", cfg.Paths.WorkDir)
	}
	if cfg.Engine.BusyPolicy != config.BusyPolicyReject {
		t.Fatalf("expected busy policy normalized to reject, got %q", cfg.Engine.BusyPolicy)
	}
	if cfg.Engine.MarkerText != "Cut" {
		t.Fatalf("expected trimmed marker text, got %q", cfg.Engine.MarkerText)
	}
	if cfg.Transcription.Backend != config.BackendWhisperX || cfg.Transcription.APIKey != "file-key" {
		t.Fatalf("unexpected transcription config %+v", cfg.Transcription)
	}
	if cfg.Transcription.Language != "en" {
		t.Fatalf("expected language normalized to en, got %q", cfg.Transcription.Language)
	}
	if cfg.Transcript.Aligner != config.AlignerLCS {
		t.Fatalf("unexpected aligner %q", cfg.Transcript.Aligner)
	}
	if cfg.Session.RetentionHours != 0 {
		t.Fatalf("expected retention 0 to be kept, got %d", cfg.Session.RetentionHours)
	}
}

func TestFFmpegEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RECUT_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Engine.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected env override, got %q", cfg.Engine.FFmpegBinary)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cases := map[string]string{
		"busy policy":  "[engine]\nbusy_policy = \"drop\"\n",
		"backend":      "[transcription]\nbackend = \"local\"\n",
		"aligner":      "[transcript]\naligner = \"fuzzy\"\n",
		"temperature":  "[enhance]\ntemperature = 3.5\n",
		"log format":   "[logging]\nformat = \"xml\"\n",
		"unknown key":  "[engine]\nthreads = 4\n",
		"missing font": "[engine]\nmarker_font_file = \"/nonexistent/font.ttf\"\n",
		"language":     "[transcription]\nlanguage = \"klingonese\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := config.Default()
	err := cfg.RequireAPIKey("transcribe")
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	cfg.Enhance.APIKey = "enhance-only"
	if err := cfg.RequireAPIKey("enhance"); err != nil {
		t.Fatalf("expected enhance key to satisfy enhance, got %v", err)
	}
	if err := cfg.RequireAPIKey("transcribe"); err == nil {
		t.Fatal("expected transcribe to still require a transcription key")
	}
}

func TestCreateSampleMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var sample config.Config
	if err := toml.Unmarshal(data, &sample); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := config.Default()
	if sample.Engine != def.Engine {
		t.Fatalf("sample engine %+v differs from defaults %+v", sample.Engine, def.Engine)
	}
	if sample.Enhance != def.Enhance {
		t.Fatalf("sample enhance %+v differs from defaults %+v", sample.Enhance, def.Enhance)
	}
	if sample.Transcription != def.Transcription {
		t.Fatalf("sample transcription %+v differs from defaults %+v", sample.Transcription, def.Transcription)
	}
	if sample.Transcript.Aligner != def.Transcript.Aligner || sample.Session != def.Session {
		t.Fatalf("sample transcript/session differ from defaults")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = ""
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.StateDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
