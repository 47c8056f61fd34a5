package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"recut/internal/config"
	"recut/internal/editplan"
	"recut/internal/logging"
	"recut/internal/media/source"
	"recut/internal/services"
	"recut/internal/timeline"
	"recut/internal/transcript"
)

// Request describes one processing run.
type Request struct {
	Media    source.Media
	Original string
	Edited   string
	Progress ProgressSink
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    string                 `json:"run_id"`
	Segments []timeline.EditSegment `json:"segments"`
	Plan     editplan.Plan          `json:"plan"`
	Output   []byte                 `json:"-"`
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithAligner replaces the default set-membership aligner.
func WithAligner(aligner transcript.Aligner) ProcessorOption {
	return func(p *Processor) {
		if aligner != nil {
			p.aligner = aligner
		}
	}
}

// WithMapper replaces the uniform timeline mapper.
func WithMapper(mapper timeline.Mapper) ProcessorOption {
	return func(p *Processor) {
		if mapper != nil {
			p.mapper = mapper
		}
	}
}

// WithPlanOptions sets the marker overlay used by compiled plans.
func WithPlanOptions(opts editplan.Options) ProcessorOption {
	return func(p *Processor) {
		p.planOpts = opts
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logging.NewComponentLogger(logger, "pipeline")
	}
}

// Processor runs the processing stages for a request. It holds no
// per-request state and is safe for concurrent use; the engine serializes
// the render step.
type Processor struct {
	engine   Engine
	aligner  transcript.Aligner
	mapper   timeline.Mapper
	planOpts editplan.Options
	logger   *slog.Logger
}

// NewProcessor constructs a Processor rendering through eng.
func NewProcessor(eng Engine, opts ...ProcessorOption) *Processor {
	p := &Processor{
		engine:  eng,
		aligner: transcript.SetAligner{},
		mapper:  timeline.UniformMapper{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewProcessorFromConfig selects the aligner and marker overlay from cfg.
func NewProcessorFromConfig(cfg *config.Config, eng Engine, logger *slog.Logger) (*Processor, error) {
	aligner, err := transcript.NewAligner(cfg.Transcript.Aligner)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "aligner", "", err)
	}
	return NewProcessor(eng,
		WithAligner(aligner),
		WithPlanOptions(editplan.Options{
			MarkerText: cfg.Engine.MarkerText,
			FontFile:   cfg.Engine.MarkerFontFile,
		}),
		WithLogger(logger),
	), nil
}

// Plan computes the edit segments and plan without rendering.
func (p *Processor) Plan(original, edited string, duration float64) ([]timeline.EditSegment, editplan.Plan, error) {
	return p.prepare(original, edited, duration, newTracker(nil))
}

func (p *Processor) prepare(original, edited string, duration float64, progress *tracker) ([]timeline.EditSegment, editplan.Plan, error) {
	originalUnits := transcript.Segment(original)
	if len(originalUnits) == 0 {
		err := services.Wrap(services.ErrValidation, StageSegmenting, "segment", "original transcript has no sentences", nil)
		return nil, editplan.Plan{}, &StageError{Stage: StageSegmenting, Err: err}
	}
	editedUnits := transcript.Segment(edited)
	progress.report(StageSegmenting, percentSegmented,
		fmt.Sprintf("%d original and %d edited sentences", len(originalUnits), len(editedUnits)))

	decisions := p.aligner.Align(originalUnits, editedUnits)
	progress.report(StageAligning, percentAligned,
		fmt.Sprintf("keeping %d of %d sentences", transcript.KeptCount(decisions), len(decisions)))

	segments, err := p.mapper.Map(decisions, duration)
	if err != nil {
		return nil, editplan.Plan{}, tagStage(StageMapping, services.ErrInvalidDuration, err)
	}
	progress.report(StageMapping, percentMapped, "")

	plan, err := editplan.Compile(segments, duration, p.planOpts)
	if err != nil {
		return segments, editplan.Plan{}, tagStage(StagePlanning, services.ErrValidation, err)
	}
	message := fmt.Sprintf("%d keep intervals", len(plan.KeepIntervals))
	switch {
	case transcript.KeptCount(decisions) == 0:
		message = "every sentence was removed, re-encoding unchanged"
		logging.WarnWithContext(p.logger, "edit removed every sentence", "nothing_kept",
			logging.String(logging.FieldImpact, "video is re-encoded without cuts"),
			logging.String(logging.FieldErrorHint, "keep at least one sentence in the edited transcript"),
		)
	case plan.Passthrough():
		message = "no cuts, re-encoding only"
	}
	progress.report(StagePlanning, percentPlanned, message)
	return segments, plan, nil
}

// Run executes every processing stage for req. Failures are returned as
// *StageError and also delivered to req.Progress as a final "failed" event.
func (p *Processor) Run(ctx context.Context, req Request) (Result, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	progress := newTracker(req.Progress)
	started := time.Now()

	fail := func(err *StageError) (Result, error) {
		progress.fail(err)
		logging.ErrorWithContext(logger, "processing failed", "processing_failed",
			logging.String("failed_stage", err.Stage),
			logging.String(logging.FieldErrorHint, errorHint(err)),
			logging.Error(err.Err),
		)
		return Result{RunID: runID}, err
	}

	if err := ctx.Err(); err != nil {
		return fail(&StageError{Stage: StageSegmenting, Err: services.Wrap(services.ErrTranscode, StageSegmenting, "start", "cancelled", err)})
	}
	if len(req.Media.Data) == 0 {
		return fail(&StageError{Stage: StageExtracting, Err: services.Wrap(services.ErrExtraction, StageExtracting, "load", "source media not loaded", nil)})
	}

	logger.Info("processing started",
		logging.String(logging.FieldEventType, "processing_started"),
		logging.String("source", req.Media.Ref),
		logging.Float64("duration_seconds", req.Media.Duration),
	)

	segments, plan, err := p.prepare(req.Original, req.Edited, req.Media.Duration, progress)
	if err != nil {
		return fail(err.(*StageError))
	}

	handle, err := p.engine.EnsureLoaded(ctx)
	if err != nil {
		return fail(tagStage(StageLoading, services.ErrEngineLoad, err))
	}
	progress.report(StageLoading, percentPlanned, "engine ready")

	sampler := logging.NewProgressSampler(10)
	engineProgress := progress.engineSink()
	output, err := p.engine.RunJob(ctx, handle, req.Media.Data, plan, func(percent float64) {
		engineProgress(percent)
		if sampler.ShouldLog(percent, StageTranscoding) {
			logger.Debug("transcode progress", logging.Float64("percent", percent))
		}
	})
	if err != nil {
		return fail(tagStage(StageTranscoding, services.ErrTranscode, err))
	}

	progress.report(StageDone, 100, "")
	logger.Info("processing completed",
		logging.String(logging.FieldEventType, "processing_completed"),
		logging.Int("keep_intervals", len(plan.KeepIntervals)),
		logging.Bool("passthrough", plan.Passthrough()),
		logging.Int64("output_bytes", int64(len(output))),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{RunID: runID, Segments: segments, Plan: plan, Output: output}, nil
}

func errorHint(err *StageError) string {
	switch err.Stage {
	case StageLoading:
		return "check that ffmpeg is installed with libx264, aac, select and drawtext"
	case StageTranscoding:
		return "inspect the ffmpeg stderr in the error message"
	case StageMapping, StageExtracting:
		return "verify the source video has a readable duration"
	case StagePlanning, StageSegmenting:
		return "review the transcripts"
	}
	return ""
}
