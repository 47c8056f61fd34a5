package pipeline

import (
	"errors"
	"fmt"

	"recut/internal/services"
)

// StageError tags a failure with the pipeline stage it occurred in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Stage)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded on err, or "".
func FailedStage(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

// tagStage wraps err in a StageError and guarantees it carries marker.
func tagStage(stage string, marker error, err error) *StageError {
	var existing *StageError
	if errors.As(err, &existing) {
		return existing
	}
	if marker != nil && !errors.Is(err, marker) {
		err = services.Wrap(marker, stage, stage, "", err)
	}
	return &StageError{Stage: stage, Err: err}
}
