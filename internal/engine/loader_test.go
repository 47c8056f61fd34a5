package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recut/internal/services"
	"recut/internal/testsupport"
)

func TestFFmpegLoaderWithStub(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	loader := FFmpegLoader{Binary: cfg.Engine.FFmpegBinary, WorkRoot: cfg.Paths.WorkDir}

	h, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if h.Version != "6.1.1-recut-test" {
		t.Fatalf("unexpected version %q", h.Version)
	}
	if filepath.Dir(h.WorkDir) != cfg.Paths.WorkDir {
		t.Fatalf("workspace %q not under %q", h.WorkDir, cfg.Paths.WorkDir)
	}
	if info, err := os.Stat(h.WorkDir); err != nil || !info.IsDir() {
		t.Fatalf("expected workspace directory: %v", err)
	}
}

func TestFFmpegLoaderFailures(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		loader := FFmpegLoader{Binary: filepath.Join(t.TempDir(), "no-ffmpeg"), WorkRoot: t.TempDir()}
		if _, err := loader.Load(context.Background()); !errors.Is(err, services.ErrEngineLoad) {
			t.Fatalf("expected ErrEngineLoad, got %v", err)
		}
	})
	t.Run("missing encoders", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
		t.Setenv(testsupport.FakeFFmpegModeEnv, "noencoders")
		loader := FFmpegLoader{Binary: cfg.Engine.FFmpegBinary, WorkRoot: cfg.Paths.WorkDir}
		if _, err := loader.Load(context.Background()); !errors.Is(err, services.ErrEngineLoad) {
			t.Fatalf("expected ErrEngineLoad, got %v", err)
		}
		if entries, _ := os.ReadDir(cfg.Paths.WorkDir); len(entries) != 0 {
			t.Fatalf("expected no workspace to be created, found %d entries", len(entries))
		}
	})
	t.Run("insufficient space", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
		loader := FFmpegLoader{Binary: cfg.Engine.FFmpegBinary, WorkRoot: cfg.Paths.WorkDir, MinFreeMiB: 1 << 30}
		if _, err := loader.Load(context.Background()); !errors.Is(err, services.ErrEngineLoad) {
			t.Fatalf("expected ErrEngineLoad, got %v", err)
		}
		if entries, _ := os.ReadDir(cfg.Paths.WorkDir); len(entries) != 0 {
			t.Fatalf("expected partial workspace to be removed, found %d entries", len(entries))
		}
	})
}

func TestParseVersion(t *testing.T) {
	if got := parseVersion([]byte("ffmpeg version n7.0 Copyright (c)\nmore")); got != "n7.0" {
		t.Fatalf("parseVersion = %q", got)
	}
	if got := parseVersion([]byte("garbage")); got != "" {
		t.Fatalf("expected empty version, got %q", got)
	}
}

func TestMissingNames(t *testing.T) {
	listing := []byte("Encoders:\n V....D libx264  H.264\n A....D aac  AAC\n")
	if missing := missingNames(listing, []string{"libx264", "aac", "libopus"}); len(missing) != 1 || missing[0] != "libopus" {
		t.Fatalf("unexpected missing %v", missing)
	}
}

func TestProgressReaderMonotonic(t *testing.T) {
	var got []float64
	reader := newProgressReader(10, func(p float64) { got = append(got, p) })
	input := "out_time_us=5000000\nout_time_us=2000000\nout_time_us=N/A\nout_time_ms=20000000\nprogress=end\n"
	if err := reader.consume(strings.NewReader(input)); err != nil {
		t.Fatalf("consume: %v", err)
	}
	reader.finish()
	want := []float64{50, 100}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("progress = %v, want %v", got, want)
	}
}

func TestTailBuffer(t *testing.T) {
	buf := &tailBuffer{limit: 5}
	_, _ = buf.Write([]byte("hello "))
	_, _ = buf.Write([]byte("world"))
	if buf.String() != "world" {
		t.Fatalf("tail = %q", buf.String())
	}
}

func TestCheckOutput(t *testing.T) {
	if err := checkOutput(nil); !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected ErrTranscode for empty output, got %v", err)
	}
	if err := checkOutput([]byte("\x00\x00\x00\x18moov")); !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected ErrTranscode for non-mp4, got %v", err)
	}
	if err := checkOutput([]byte("\x00\x00\x00\x18ftypisom")); err != nil {
		t.Fatalf("expected valid mp4 header, got %v", err)
	}
}
