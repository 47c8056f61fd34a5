package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"recut/internal/testsupport"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", FrameRate: "30000/1001"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "123.45", Size: "1000"},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if math.Abs(result.FrameRate()-29.97) > 0.01 {
		t.Fatalf("unexpected frame rate: %v", result.FrameRate())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	result := Result{Streams: []Stream{{Duration: "4.5"}, {Duration: "5.25"}}}
	if result.DurationSeconds() != 5.25 {
		t.Fatalf("expected longest stream duration, got %v", result.DurationSeconds())
	}
	bad := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(bad.DurationSeconds()) {
		t.Fatalf("expected NaN, got %v", bad.DurationSeconds())
	}
	if bad.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", bad.SizeBytes())
	}
	if (Result{}).FrameRate() != 0 {
		t.Fatal("expected zero frame rate without video")
	}
}

func TestInspectWithStub(t *testing.T) {
	dir := testsupport.StubBinaries(t, filepath.Join(t.TempDir(), "bin"), "ffprobe")
	t.Setenv(testsupport.FakeFFprobeDurationEnv, "12.5")
	input := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Inspect(context.Background(), filepath.Join(dir, "ffprobe"), input)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
	if result.VideoStreamCount() != 1 || result.AudioStreamCount() != 1 {
		t.Fatalf("unexpected streams %+v", result.Streams)
	}
	if result.FrameRate() != 30 {
		t.Fatalf("unexpected frame rate %v", result.FrameRate())
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
