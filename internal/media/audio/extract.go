package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"recut/internal/media/source"
	"recut/internal/services"
)

var commandContext = exec.CommandContext

// Output formats.
const (
	FormatMP3 = "mp3"
	FormatWAV = "wav"
)

// Extractor converts a video's first audio track into a standalone file.
type Extractor struct {
	FFmpegBinary string
	Format       string
	WorkDir      string
}

// Extract returns encoded audio for media. When media has no Path, its Data
// is staged in a scratch directory first.
func (e Extractor) Extract(ctx context.Context, media source.Media) ([]byte, error) {
	format := strings.ToLower(strings.TrimSpace(e.Format))
	if format == "" {
		format = FormatMP3
	}
	codecArgs, err := codecArgs(format)
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, "extracting", "audio", "", err)
	}

	if e.WorkDir != "" {
		if err := os.MkdirAll(e.WorkDir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrExtraction, "extracting", "audio", "create work dir", err)
		}
	}
	dir, err := os.MkdirTemp(e.WorkDir, "audio-")
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, "extracting", "audio", "create scratch dir", err)
	}
	defer os.RemoveAll(dir)

	input := media.Path
	if input == "" {
		if len(media.Data) == 0 {
			return nil, services.Wrap(services.ErrExtraction, "extracting", "audio", "no video data", nil)
		}
		input = filepath.Join(dir, "input")
		if err := os.WriteFile(input, media.Data, 0o600); err != nil {
			return nil, services.Wrap(services.ErrExtraction, "extracting", "audio", "stage input", err)
		}
	}
	output := filepath.Join(dir, "audio."+format)

	binary := strings.TrimSpace(e.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", input, "-vn", "-map", "0:a:0"}
	args = append(args, codecArgs...)
	args = append(args, output)

	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrExtraction, "extracting", "ffmpeg", "cancelled", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, services.Wrap(services.ErrExtraction, "extracting", "ffmpeg", strings.TrimSpace(stderr.String()), err)
		}
		return nil, services.Wrap(services.ErrExtraction, "extracting", "ffmpeg", "run ffmpeg", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, "extracting", "audio", "read output", err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrExtraction, "extracting", "audio", "ffmpeg produced no audio", nil)
	}
	return data, nil
}

func codecArgs(format string) ([]string, error) {
	switch format {
	case FormatMP3:
		return []string{"-acodec", "libmp3lame", "-q:a", "2"}, nil
	case FormatWAV:
		return []string{"-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le"}, nil
	default:
		return nil, fmt.Errorf("unsupported audio format %q", format)
	}
}
