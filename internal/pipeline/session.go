package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"recut/internal/logging"
	"recut/internal/media/source"
	"recut/internal/services"
	"recut/internal/session"
)

// State is a Session lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateExtracting   State = "extracting"
	StateTranscribing State = "transcribing"
	StateEditing      State = "editing"
	StateProcessing   State = "processing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

func (s State) busy() bool {
	return s == StateExtracting || s == StateTranscribing || s == StateProcessing
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionID fixes the session identifier instead of generating one.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if strings.TrimSpace(id) != "" {
			s.id = strings.TrimSpace(id)
		}
	}
}

// WithSessionLogger attaches a logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logging.NewComponentLogger(logger, "session")
	}
}

// Session is one user's editing session over a single source video.
type Session struct {
	id          string
	source      MediaSource
	extractor   AudioExtractor
	transcriber Transcriber
	processor   *Processor
	logger      *slog.Logger

	mu         sync.Mutex
	state      State
	ref        string
	media      source.Media
	duration   float64
	original   string
	current    string
	failure    *StageError
	last       *Result
	outputPath string
	createdAt  time.Time
}

// NewSession constructs an idle session.
func NewSession(src MediaSource, extractor AudioExtractor, transcriber Transcriber, processor *Processor, opts ...SessionOption) *Session {
	s := &Session{
		id:          uuid.NewString(),
		source:      src,
		extractor:   extractor,
		transcriber: transcriber,
		processor:   processor,
		logger:      logging.NewNop(),
		state:       StateIdle,
		createdAt:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Original returns the transcript produced by transcription.
func (s *Session) Original() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original
}

// Current returns the user's edited transcript.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Failure returns the error that put the session in Failed, or nil.
func (s *Session) Failure() *StageError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// LastResult returns the result of the latest successful run, or nil once a
// later run fails.
func (s *Session) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// SetOutputPath records where the latest output was written.
func (s *Session) SetOutputPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputPath = path
}

func (s *Session) ctx(ctx context.Context) context.Context {
	return services.WithSessionID(ctx, s.id)
}

// begin moves the session into a busy state, resetting everything tied to
// the previous source.
func (s *Session) begin(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.busy() {
		return services.Wrap(services.ErrEngineBusy, string(s.state), "start", "session is busy", nil)
	}
	s.state = StateExtracting
	s.ref = strings.TrimSpace(ref)
	s.media = source.Media{}
	s.duration = 0
	s.original = ""
	s.current = ""
	s.failure = nil
	s.last = nil
	s.outputPath = ""
	return nil
}

// Start extracts audio from ref and transcribes it. On success the session
// is in Editing with original and current set to the transcript.
func (s *Session) Start(ctx context.Context, ref string) error {
	if err := s.begin(ref); err != nil {
		return err
	}
	ctx = s.ctx(ctx)
	s.logTransition(ctx, StateExtracting)

	media, err := s.source.Load(ctx, ref)
	if err != nil {
		return s.failStart(ctx, tagStage(StageExtracting, services.ErrExtraction, err))
	}
	audio, err := s.extractor.Extract(ctx, media)
	if err != nil {
		return s.failStart(ctx, tagStage(StageExtracting, services.ErrExtraction, err))
	}

	s.setState(ctx, StateTranscribing)
	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return s.failStart(ctx, tagStage(StageTranscribing, services.ErrTranscription, err))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		err := services.Wrap(services.ErrTranscription, StageTranscribing, "transcribe", "transcript is empty", nil)
		return s.failStart(ctx, &StageError{Stage: StageTranscribing, Err: err})
	}

	s.mu.Lock()
	s.media = media
	s.duration = media.Duration
	s.original = text
	s.current = text
	s.state = StateEditing
	s.mu.Unlock()
	s.logTransition(ctx, StateEditing)
	return nil
}

// Import loads ref and uses text as the transcript instead of transcribing.
func (s *Session) Import(ctx context.Context, ref, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrValidation, StageTranscribing, "import", "transcript is empty", nil)
	}
	if err := s.begin(ref); err != nil {
		return err
	}
	ctx = s.ctx(ctx)
	media, err := s.source.Load(ctx, ref)
	if err != nil {
		return s.failStart(ctx, tagStage(StageExtracting, services.ErrExtraction, err))
	}
	s.mu.Lock()
	s.media = media
	s.duration = media.Duration
	s.original = text
	s.current = text
	s.state = StateEditing
	s.mu.Unlock()
	s.logTransition(ctx, StateEditing)
	return nil
}

func (s *Session) failStart(ctx context.Context, err *StageError) error {
	s.mu.Lock()
	s.media = source.Media{}
	s.duration = 0
	s.original = ""
	s.current = ""
	s.failure = err
	s.state = StateFailed
	s.mu.Unlock()
	logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "session start failed", "session_failed",
		logging.String("failed_stage", err.Stage),
		logging.String(logging.FieldErrorHint, services.Details(err.Err).Message),
		logging.Error(err.Err),
	)
	return err
}

// UpdateCurrentTranscript replaces the edited transcript. It runs nothing.
// Editing after Done or Failed returns the session to Editing.
func (s *Session) UpdateCurrentTranscript(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.original == "" {
		return services.Wrap(services.ErrValidation, string(s.state), "edit", "no transcript to edit yet", nil)
	}
	s.current = text
	if s.state == StateDone || s.state == StateFailed {
		s.state = StateEditing
		s.failure = nil
	}
	return nil
}

// Process renders the current transcript. A second call while one is
// running fails with services.ErrEngineBusy.
func (s *Session) Process(ctx context.Context, sink ProgressSink) (Result, error) {
	ctx = s.ctx(ctx)
	s.mu.Lock()
	if s.state.busy() {
		state := s.state
		s.mu.Unlock()
		err := services.Wrap(services.ErrEngineBusy, string(state), "process", "session is busy", nil)
		notifyFailure(sink, err)
		return Result{}, err
	}
	if s.original == "" {
		state := s.state
		s.mu.Unlock()
		err := services.Wrap(services.ErrValidation, string(state), "process", "no transcript to process", nil)
		notifyFailure(sink, err)
		return Result{}, err
	}
	s.state = StateProcessing
	s.failure = nil
	ref := s.ref
	req := Request{Media: s.media, Original: s.original, Edited: s.current, Progress: sink}
	s.mu.Unlock()
	s.logTransition(ctx, StateProcessing)

	if len(req.Media.Data) == 0 {
		media, err := s.source.Load(ctx, ref)
		if err != nil {
			stageErr := tagStage(StageExtracting, services.ErrExtraction, err)
			notifyFailure(sink, stageErr)
			s.finish(ctx, nil, stageErr)
			return Result{}, stageErr
		}
		s.mu.Lock()
		s.media = media
		s.duration = media.Duration
		s.mu.Unlock()
		req.Media = media
	}

	result, err := s.processor.Run(ctx, req)
	if err != nil {
		s.finish(ctx, nil, err)
		return result, err
	}
	s.finish(ctx, &result, nil)
	return result, nil
}

func (s *Session) finish(ctx context.Context, result *Result, err error) {
	s.mu.Lock()
	if err != nil {
		var stageErr *StageError
		if !errors.As(err, &stageErr) {
			stageErr = &StageError{Stage: StageFailed, Err: err}
		}
		s.failure = stageErr
		s.last = nil
		s.state = StateFailed
	} else {
		s.last = result
		s.state = StateDone
	}
	state := s.state
	s.mu.Unlock()
	s.logTransition(ctx, state)
}

// Submit runs Process in the background after applying edited (when not
// empty) as the current transcript. The run ends with the request; progress
// goes to both sink and Run.Progress.
func (s *Session) Submit(ctx context.Context, edited string, sink ProgressSink) *Run {
	run := newRun()
	go func() {
		forward := func(p Progress) {
			run.deliver(p)
			if sink != nil {
				sink(p)
			}
		}
		if strings.TrimSpace(edited) != "" {
			if err := s.UpdateCurrentTranscript(edited); err != nil {
				notifyFailure(forward, err)
				run.finish(Result{}, err)
				return
			}
		}
		result, err := s.Process(ctx, forward)
		run.finish(result, err)
	}()
	return run
}

// Snapshot captures the persistent part of the session.
func (s *Session) Snapshot() session.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := session.Record{
		ID:         s.id,
		Source:     s.ref,
		Duration:   s.duration,
		Original:   s.original,
		Current:    s.current,
		State:      string(s.state),
		OutputPath: s.outputPath,
		CreatedAt:  s.createdAt,
	}
	if s.failure != nil {
		rec.FailureStage = s.failure.Stage
		if s.failure.Err != nil {
			rec.FailureMessage = s.failure.Err.Error()
		}
	}
	return rec
}

// Restore loads a persisted snapshot into an idle session. Media is reloaded
// on the next Process. A snapshot taken mid-stage resumes in Editing when a
// transcript exists and in Idle otherwise.
func (s *Session) Restore(rec session.Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("restore session: record id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.busy() {
		return services.Wrap(services.ErrEngineBusy, string(s.state), "restore", "session is busy", nil)
	}
	s.id = rec.ID
	s.ref = rec.Source
	s.media = source.Media{}
	s.duration = rec.Duration
	s.original = rec.Original
	s.current = rec.Current
	s.outputPath = rec.OutputPath
	s.last = nil
	s.failure = nil
	if !rec.CreatedAt.IsZero() {
		s.createdAt = rec.CreatedAt
	}

	state := State(rec.State)
	switch {
	case state == StateFailed:
		s.failure = &StageError{Stage: rec.FailureStage, Err: errors.New(rec.FailureMessage)}
	case state == StateIdle || state == StateEditing || state == StateDone:
	default:
		state = StateIdle
		if rec.Original != "" {
			state = StateEditing
		}
	}
	s.state = state
	return nil
}

func (s *Session) setState(ctx context.Context, state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logTransition(ctx, state)
}

func (s *Session) logTransition(ctx context.Context, state State) {
	logging.WithContext(ctx, s.logger).Info("session state changed",
		logging.String(logging.FieldEventType, "session_state"),
		logging.String("state", string(state)),
	)
}

func notifyFailure(sink ProgressSink, err error) {
	if sink != nil {
		sink(Progress{Stage: StageFailed, Message: err.Error(), Err: err})
	}
}
