package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"recut/internal/config"
	"recut/internal/fileutil"
	"recut/internal/logging"
	"recut/internal/pipeline"
	"recut/internal/preflight"
	"recut/internal/session"
)

// sessionEnv bundles what the session commands share: config, logger, and
// the open session store.
type sessionEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *session.Store
}

func openSessionEnv(cmd *cobra.Command, ctx *commandContext) (*sessionEnv, error) {
	cfg, logger, err := ctx.environment()
	if err != nil {
		return nil, err
	}
	store, err := session.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &sessionEnv{cfg: cfg, logger: logger, store: store}, nil
}

func (e *sessionEnv) Close() error {
	return e.store.Close()
}

func (e *sessionEnv) lockDir() string {
	return filepath.Join(e.cfg.Paths.StateDir, "locks")
}

// transcriptPath is the editable copy of a session's transcript.
func (e *sessionEnv) transcriptPath(id string) string {
	return filepath.Join(e.cfg.Paths.StateDir, "transcripts", id+".txt")
}

func (e *sessionEnv) lock(id string) (*session.Lock, error) {
	lock, err := session.AcquireLock(e.lockDir(), id)
	if errors.Is(err, session.ErrLocked) {
		return nil, fmt.Errorf("session %s is in use by another recut process (is \"recut session watch\" running?)", id)
	}
	return lock, err
}

func (e *sessionEnv) newSession(id string, transcriber pipeline.Transcriber, extractor pipeline.AudioExtractor) (*pipeline.Session, error) {
	processor, err := newProcessor(e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	return pipeline.NewSession(newMediaSource(e.cfg), extractor, transcriber, processor,
		pipeline.WithSessionID(id),
		pipeline.WithSessionLogger(e.logger),
	), nil
}

// open locks the session and restores its persisted state. Callers release
// the returned lock.
func (e *sessionEnv) open(ctx context.Context, id string) (*pipeline.Session, *session.Lock, error) {
	lock, err := e.lock(id)
	if err != nil {
		return nil, nil, err
	}
	rec, err := e.store.Get(ctx, id)
	if err == nil && rec == nil {
		err = fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		_ = lock.Release()
		return nil, nil, err
	}
	sess, err := e.newSession(id, nil, nil)
	if err == nil {
		err = sess.Restore(*rec)
	}
	if err != nil {
		_ = lock.Release()
		return nil, nil, err
	}
	return sess, lock, nil
}

func (e *sessionEnv) save(ctx context.Context, sess *pipeline.Session) error {
	rec := sess.Snapshot()
	if err := e.store.Save(ctx, &rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (e *sessionEnv) writeTranscript(id, text string) (string, error) {
	path := e.transcriptPath(id)
	if err := fileutil.WriteFileAtomic(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write session transcript: %w", err)
	}
	return path, nil
}

// render processes the session's current transcript, writes the output,
// records the run, and persists the session whatever the outcome.
func (e *sessionEnv) render(cmd *cobra.Command, sess *pipeline.Session, outputPath string) (pipeline.Result, string, error) {
	ctx := cmd.Context()
	if err := preflight.CheckWorkspace(e.cfg); err != nil {
		return pipeline.Result{}, "", fmt.Errorf("workspace not ready: %w", err)
	}
	rec := sess.Snapshot()
	if outputPath == "" {
		outputPath = rec.OutputPath
	}
	target, err := resolveOutputPath(outputPath, rec.Source)
	if err != nil {
		return pipeline.Result{}, "", err
	}

	display := newProgressDisplay(cmd.ErrOrStderr(), "Rendering")
	result, runErr := sess.Process(ctx, display.Sink())
	display.Close()
	if runErr == nil {
		if runErr = writeMediaOutput(target, result.Output); runErr == nil {
			sess.SetOutputPath(target)
		}
	}

	// Bookkeeping outlives a cancelled render.
	saveCtx := context.WithoutCancel(ctx)
	if err := e.recordRun(saveCtx, sess.ID(), result, target, runErr); err != nil {
		logging.WarnWithContext(e.logger, "failed to record run", "run_record_failed",
			logging.String(logging.FieldSessionID, sess.ID()),
			logging.String(logging.FieldImpact, "run history is incomplete"),
			logging.Error(err),
		)
	}
	if err := e.save(saveCtx, sess); err != nil && runErr == nil {
		runErr = err
	}
	return result, target, runErr
}

func (e *sessionEnv) recordRun(ctx context.Context, sessionID string, result pipeline.Result, target string, runErr error) error {
	runID := result.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	run, err := e.store.StartRun(ctx, sessionID, runID)
	if err != nil {
		return err
	}
	run.KeepIntervals = result.Plan.KeepIntervals
	run.Filter = result.Plan.FilterExpression
	if runErr != nil {
		run.Status = session.RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = session.RunStatusSucceeded
		run.OutputPath = target
	}
	return e.store.FinishRun(ctx, run)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
