package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"recut/internal/config"
	"recut/internal/editplan"
	"recut/internal/logging"
	"recut/internal/services"
)

const (
	defaultLoadTimeout = 30 * time.Second
	stderrTailBytes    = 4096
	waitDelay          = 5 * time.Second
	stage              = "transcoding"
	loadKey            = "load"
)

// ProgressSink receives job progress in percent, [0,100], non-decreasing.
type ProgressSink func(percent float64)

// Option configures an Adapter.
type Option func(*Adapter)

// WithBusyPolicy selects config.BusyPolicyWait or config.BusyPolicyReject.
func WithBusyPolicy(policy string) Option {
	return func(a *Adapter) {
		if policy != "" {
			a.policy = policy
		}
	}
}

// WithLoadTimeout bounds a single load attempt.
func WithLoadTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.loadTimeout = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logging.NewComponentLogger(logger, "engine")
	}
}

// Adapter owns the lifecycle of one engine Handle and serializes jobs on it.
type Adapter struct {
	loader      Loader
	policy      string
	loadTimeout time.Duration
	logger      *slog.Logger

	loads singleflight.Group
	jobs  *semaphore.Weighted

	mu         sync.Mutex
	handle     *Handle
	generation uint64
	// epoch counts resets; a load started before a reset is discarded.
	epoch uint64
}

// NewAdapter constructs an Adapter around loader.
func NewAdapter(loader Loader, opts ...Option) *Adapter {
	a := &Adapter{
		loader:      loader,
		policy:      config.BusyPolicyWait,
		loadTimeout: defaultLoadTimeout,
		logger:      logging.NewComponentLogger(nil, "engine"),
		jobs:        semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewFromConfig builds an Adapter backed by FFmpegLoader.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Adapter {
	loader := FFmpegLoader{
		Binary:     cfg.Engine.FFmpegBinary,
		WorkRoot:   cfg.Paths.WorkDir,
		MinFreeMiB: cfg.Engine.MinFreeMiB,
	}
	return NewAdapter(loader,
		WithBusyPolicy(cfg.Engine.BusyPolicy),
		WithLoadTimeout(cfg.LoadTimeout()),
		WithLogger(logger),
	)
}

// Current returns the cached handle, or nil when nothing is loaded.
func (a *Adapter) Current() *Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handle
}

// EnsureLoaded returns the cached handle, loading it first if needed.
// Concurrent callers share one load, which runs detached from any single
// caller's cancellation and is bounded by the load timeout. A caller whose
// ctx ends stops waiting without aborting the load for others.
func (a *Adapter) EnsureLoaded(ctx context.Context) (*Handle, error) {
	if h := a.Current(); h != nil {
		return h, nil
	}
	ch := a.loads.DoChan(loadKey, func() (any, error) {
		if h := a.Current(); h != nil {
			return h, nil
		}
		return a.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, services.Wrap(services.ErrEngineLoad, stage, "load", "cancelled while waiting for engine", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Handle), nil
	}
}

func (a *Adapter) load(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, a.loadTimeout)
	defer cancel()

	logger := logging.WithContext(ctx, a.logger)
	started := time.Now()
	a.mu.Lock()
	epoch := a.epoch
	a.mu.Unlock()

	h, err := a.loader.Load(ctx)
	if err == nil && h == nil {
		err = errors.New("loader returned no handle")
	}
	if err != nil {
		if !errors.Is(err, services.ErrEngineLoad) {
			err = services.Wrap(services.ErrEngineLoad, stage, "load", "", err)
		}
		a.mu.Lock()
		if a.epoch == epoch {
			a.handle = nil
		}
		a.mu.Unlock()
		logging.ErrorWithContext(logger, "engine load failed", "engine_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check engine.ffmpeg_binary and paths.work_dir"),
		)
		return nil, err
	}

	a.mu.Lock()
	if a.epoch != epoch {
		a.mu.Unlock()
		if err := os.RemoveAll(h.WorkDir); err != nil {
			logger.Warn("remove discarded engine workspace", logging.Error(err))
		}
		logger.Info("engine load discarded after reset",
			logging.String(logging.FieldEventType, "engine_load_discarded"),
			logging.String("work_dir", h.WorkDir),
		)
		return nil, services.Wrap(services.ErrEngineLoad, stage, "load", "engine was reset while loading", nil)
	}
	a.generation++
	h.generation = a.generation
	a.handle = h
	a.mu.Unlock()

	logger.Info("engine loaded",
		logging.String(logging.FieldEventType, "engine_loaded"),
		logging.String("binary", h.Binary),
		logging.String("version", h.Version),
		logging.String("work_dir", h.WorkDir),
		logging.Duration("elapsed", time.Since(started)),
	)
	return h, nil
}

// Reset waits for any running job, then drops the cached handle and removes
// its workspace. A load still in flight is discarded when it finishes and its
// waiters get ErrEngineLoad. The next EnsureLoaded loads from scratch.
func (a *Adapter) Reset(ctx context.Context) error {
	if err := a.jobs.Acquire(ctx, 1); err != nil {
		return services.Wrap(services.ErrEngineBusy, stage, "reset", "cancelled while waiting for running job", err)
	}
	defer a.jobs.Release(1)

	a.mu.Lock()
	h := a.handle
	a.handle = nil
	a.epoch++
	a.mu.Unlock()
	a.loads.Forget(loadKey)
	if h == nil {
		return nil
	}
	a.logger.Info("engine reset",
		logging.String(logging.FieldEventType, "engine_reset"),
		logging.String("work_dir", h.WorkDir),
	)
	if err := os.RemoveAll(h.WorkDir); err != nil {
		return fmt.Errorf("remove engine workspace: %w", err)
	}
	return nil
}

// RunJob renders plan over input and returns the produced MP4 bytes. Only one
// job runs at a time; a second caller waits or fails with ErrEngineBusy
// according to the busy policy. The job directory is removed on every path.
func (a *Adapter) RunJob(ctx context.Context, h *Handle, input []byte, plan editplan.Plan, sink ProgressSink) ([]byte, error) {
	if h == nil {
		return nil, services.Wrap(services.ErrEngineLoad, stage, "run", "no engine handle", nil)
	}
	if len(input) == 0 {
		return nil, services.Wrap(services.ErrValidation, stage, "run", "empty input media", nil)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if err := a.acquire(ctx); err != nil {
		return nil, err
	}
	defer a.jobs.Release(1)

	if current := a.Current(); current == nil || current.generation != h.generation {
		return nil, services.Wrap(services.ErrEngineLoad, stage, "run", "engine handle was reset", nil)
	}

	jobDir, err := os.MkdirTemp(h.WorkDir, "job-")
	if err != nil {
		return nil, services.Wrap(services.ErrTranscode, stage, "prepare", "create job directory", err)
	}
	defer func() {
		if err := os.RemoveAll(jobDir); err != nil {
			a.logger.Warn("job directory cleanup failed",
				logging.String("job_dir", jobDir),
				logging.Error(err),
				logging.String(logging.FieldEventType, "job_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
				logging.String(logging.FieldImpact, "disk space is not reclaimed"),
			)
		}
	}()

	inputPath := filepath.Join(jobDir, "input")
	outputPath := filepath.Join(jobDir, "output.mp4")
	if err := os.WriteFile(inputPath, input, 0o600); err != nil {
		return nil, services.Wrap(services.ErrTranscode, stage, "prepare", "write input", err)
	}

	logger := logging.WithContext(ctx, a.logger)
	logger.Info("transcode started",
		logging.String(logging.FieldEventType, "transcode_started"),
		logging.Bool("passthrough", plan.Passthrough()),
		logging.Int("keep_intervals", len(plan.KeepIntervals)),
		logging.Float64("expected_seconds", plan.OutputDuration()),
	)
	started := time.Now()

	if err := a.execute(ctx, h, plan, inputPath, outputPath, sink); err != nil {
		return nil, err
	}

	output, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscode, stage, "read output", "", err)
	}
	if err := checkOutput(output); err != nil {
		return nil, err
	}

	logger.Info("transcode completed",
		logging.String(logging.FieldEventType, "transcode_completed"),
		logging.Int64("output_bytes", int64(len(output))),
		logging.Duration("elapsed", time.Since(started)),
	)
	return output, nil
}

func (a *Adapter) acquire(ctx context.Context) error {
	if a.policy == config.BusyPolicyReject {
		if !a.jobs.TryAcquire(1) {
			return services.Wrap(services.ErrEngineBusy, stage, "acquire", "another job is running", nil)
		}
		return nil
	}
	if err := a.jobs.Acquire(ctx, 1); err != nil {
		return services.Wrap(services.ErrTranscode, stage, "acquire", "cancelled while waiting for running job", err)
	}
	return nil
}

func (a *Adapter) execute(ctx context.Context, h *Handle, plan editplan.Plan, inputPath, outputPath string, sink ProgressSink) error {
	cmd := commandContext(ctx, h.Binary, editplan.Args(plan, inputPath, outputPath)...) //nolint:gosec
	cmd.Dir = filepath.Dir(inputPath)
	cmd.WaitDelay = waitDelay
	stderr := &tailBuffer{limit: stderrTailBytes}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrTranscode, stage, "start", "stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrTranscode, stage, "start", "", err)
	}

	progress := newProgressReader(plan.OutputDuration(), sink)
	readErr := progress.consume(stdout)
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return services.Wrap(services.ErrTranscode, stage, "run", "cancelled", ctxErr)
	}
	if waitErr != nil {
		return services.Wrap(services.ErrTranscode, stage, "run", stderr.String(), waitErr)
	}
	if readErr != nil {
		return services.Wrap(services.ErrTranscode, stage, "progress", "read progress output", readErr)
	}
	progress.finish()
	return nil
}

// checkOutput requires a non-empty MP4 whose first box is ftyp.
func checkOutput(data []byte) error {
	if len(data) == 0 {
		return services.Wrap(services.ErrTranscode, stage, "validate output", "engine produced an empty file", nil)
	}
	if len(data) < 8 || string(data[4:8]) != "ftyp" {
		return services.Wrap(services.ErrTranscode, stage, "validate output", "output is not an MP4 file", nil)
	}
	return nil
}
