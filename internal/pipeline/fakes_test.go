package pipeline_test

import (
	"context"
	"sync"

	"recut/internal/editplan"
	"recut/internal/engine"
	"recut/internal/media/source"
	"recut/internal/pipeline"
)

type fakeSource struct {
	mu    sync.Mutex
	media source.Media
	err   error
	calls int
}

func (f *fakeSource) Load(_ context.Context, ref string) (source.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return source.Media{}, f.err
	}
	m := f.media
	m.Ref = ref
	return m, nil
}

func (f *fakeSource) loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeExtractor struct {
	audio []byte
	err   error
}

func (f fakeExtractor) Extract(context.Context, source.Media) ([]byte, error) {
	return f.audio, f.err
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return f.text, f.err
}

// fakeEngine records plans and replays scripted engine progress.
type fakeEngine struct {
	mu       sync.Mutex
	loadErr  error
	runErr   error
	progress []float64
	output   []byte
	plans    []editplan.Plan
	started  chan struct{}
	release  chan struct{}
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		progress: []float64{0, 50, 100},
		output:   []byte("\x00\x00\x00\x18ftypisom"),
	}
}

func (f *fakeEngine) EnsureLoaded(context.Context) (*engine.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return &engine.Handle{Binary: "ffmpeg", Version: "test"}, nil
}

func (f *fakeEngine) RunJob(ctx context.Context, _ *engine.Handle, _ []byte, plan editplan.Plan, sink engine.ProgressSink) ([]byte, error) {
	f.mu.Lock()
	f.plans = append(f.plans, plan)
	started, release := f.started, f.release
	runErr, progress, output := f.runErr, f.progress, f.output
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	for _, p := range progress {
		sink(p)
	}
	return output, nil
}

func (f *fakeEngine) recordedPlans() []editplan.Plan {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]editplan.Plan(nil), f.plans...)
}

func testMedia(duration float64) source.Media {
	return source.Media{Ref: "talk.mp4", Path: "/videos/talk.mp4", Data: []byte("video"), Duration: duration}
}

type progressLog struct {
	mu      sync.Mutex
	updates []pipeline.Progress
}

func (l *progressLog) sink(p pipeline.Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, p)
}

func (l *progressLog) all() []pipeline.Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]pipeline.Progress(nil), l.updates...)
}
