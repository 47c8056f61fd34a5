package pipeline

import (
	"context"

	"recut/internal/editplan"
	"recut/internal/engine"
	"recut/internal/media/source"
)

// MediaSource loads source media and reports its duration.
type MediaSource interface {
	Load(ctx context.Context, ref string) (source.Media, error)
}

// AudioExtractor produces an audio stream suitable for transcription.
type AudioExtractor interface {
	Extract(ctx context.Context, media source.Media) ([]byte, error)
}

// Transcriber turns audio into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Engine renders edit plans. *engine.Adapter satisfies it.
type Engine interface {
	EnsureLoaded(ctx context.Context) (*engine.Handle, error)
	RunJob(ctx context.Context, h *engine.Handle, input []byte, plan editplan.Plan, sink engine.ProgressSink) ([]byte, error)
}
