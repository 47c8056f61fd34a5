package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recut/internal/media/audio"
	"recut/internal/media/source"
	"recut/internal/services"
	"recut/internal/testsupport"
)

func recordArgs(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "args.txt")
	t.Setenv(testsupport.FakeFFmpegArgsEnv, path)
	return path
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestExtractMP3FromPath(t *testing.T) {
	testsupport.StubBinaries(t, filepath.Join(t.TempDir(), "bin"), "ffmpeg")
	argsPath := recordArgs(t)
	work := t.TempDir()
	video := testsupport.WriteText(t, t.TempDir(), "talk.mp4", "video")

	data, err := audio.Extractor{WorkDir: work}.Extract(context.Background(), source.Media{Path: video})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected audio bytes")
	}
	args := strings.Join(readArgs(t, argsPath), " ")
	if !strings.Contains(args, "-i "+video) || !strings.Contains(args, "-acodec libmp3lame -q:a 2") {
		t.Fatalf("unexpected args %q", args)
	}
	entries, err := os.ReadDir(work)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch dir removed, found %d entries", len(entries))
	}
}

func TestExtractWAVStagesData(t *testing.T) {
	testsupport.StubBinaries(t, filepath.Join(t.TempDir(), "bin"), "ffmpeg")
	argsPath := recordArgs(t)

	_, err := audio.Extractor{Format: audio.FormatWAV, WorkDir: t.TempDir()}.Extract(context.Background(), source.Media{Data: []byte("video")})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	args := readArgs(t, argsPath)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ac 1 -ar 16000 -c:a pcm_s16le") {
		t.Fatalf("unexpected args %q", joined)
	}
	if !strings.HasSuffix(args[len(args)-1], "audio.wav") {
		t.Fatalf("unexpected output %q", args[len(args)-1])
	}
}

func TestExtractFailures(t *testing.T) {
	testsupport.StubBinaries(t, filepath.Join(t.TempDir(), "bin"), "ffmpeg")
	ctx := context.Background()

	if _, err := (audio.Extractor{Format: "ogg"}).Extract(ctx, source.Media{Data: []byte("x")}); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected ErrExtraction for unsupported format, got %v", err)
	}
	if _, err := (audio.Extractor{WorkDir: t.TempDir()}).Extract(ctx, source.Media{}); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected ErrExtraction for empty media, got %v", err)
	}

	t.Setenv(testsupport.FakeFFmpegModeEnv, "fail")
	_, err := audio.Extractor{WorkDir: t.TempDir()}.Extract(ctx, source.Media{Data: []byte("x")})
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid argument") {
		t.Fatalf("expected stderr in error, got %v", err)
	}

	t.Setenv(testsupport.FakeFFmpegModeEnv, "empty")
	if _, err := (audio.Extractor{WorkDir: t.TempDir()}).Extract(ctx, source.Media{Data: []byte("x")}); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected ErrExtraction for empty output, got %v", err)
	}
}
