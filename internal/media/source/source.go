package source

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"recut/internal/media/ffprobe"
	"recut/internal/services"
)

// Media is a loaded input video.
type Media struct {
	Ref      string
	Path     string
	Data     []byte
	Duration float64
}

// FileSource resolves references as filesystem paths.
type FileSource struct {
	FFprobeBinary string
}

// Load reads ref and probes its duration.
func (s FileSource) Load(ctx context.Context, ref string) (Media, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Media{}, services.Wrap(services.ErrExtraction, "extracting", "load source", "no video selected", nil)
	}
	path, err := filepath.Abs(ref)
	if err != nil {
		return Media{}, services.Wrap(services.ErrExtraction, "extracting", "load source", "resolve path", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Media{}, services.Wrap(services.ErrExtraction, "extracting", "load source", "stat video", err)
	}
	if info.IsDir() {
		return Media{}, services.Wrap(services.ErrExtraction, "extracting", "load source", fmt.Sprintf("%s is a directory", path), nil)
	}

	probe, err := ffprobe.Inspect(ctx, s.FFprobeBinary, path)
	if err != nil {
		return Media{}, services.Wrap(services.ErrExtraction, "extracting", "ffprobe", "inspect video", err)
	}
	if probe.VideoStreamCount() == 0 {
		return Media{}, services.Wrap(services.ErrExtraction, "extracting", "ffprobe", "no video stream", nil)
	}
	if probe.AudioStreamCount() == 0 {
		return Media{}, services.Wrap(services.ErrExtraction, "extracting", "ffprobe", "no audio stream", nil)
	}
	duration := probe.DurationSeconds()
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return Media{}, services.Wrap(services.ErrInvalidDuration, "extracting", "ffprobe", fmt.Sprintf("unusable duration %v", duration), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Media{}, services.Wrap(services.ErrExtraction, "extracting", "load source", "read video", err)
	}
	if len(data) == 0 {
		return Media{}, services.Wrap(services.ErrExtraction, "extracting", "load source", "video is empty", nil)
	}
	return Media{Ref: ref, Path: path, Data: data, Duration: duration}, nil
}
