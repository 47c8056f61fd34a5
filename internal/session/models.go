package session

import (
	"time"

	"recut/internal/editplan"
)

// Record is the persisted snapshot of one editing session.
type Record struct {
	ID             string    `json:"id" yaml:"id"`
	Source         string    `json:"source" yaml:"source"`
	Duration       float64   `json:"duration" yaml:"duration"`
	Original       string    `json:"original" yaml:"original"`
	Current        string    `json:"current" yaml:"current"`
	State          string    `json:"state" yaml:"state"`
	FailureStage   string    `json:"failure_stage,omitempty" yaml:"failure_stage,omitempty"`
	FailureMessage string    `json:"failure_message,omitempty" yaml:"failure_message,omitempty"`
	OutputPath     string    `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
}

// HasTranscript reports whether transcription has completed for the session.
func (r Record) HasTranscript() bool {
	return r.Original != ""
}

// RunStatus tracks a processing attempt.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one processing attempt for a session.
type Run struct {
	ID            string              `json:"id" yaml:"id"`
	SessionID     string              `json:"session_id" yaml:"session_id"`
	Status        RunStatus           `json:"status" yaml:"status"`
	KeepIntervals []editplan.Interval `json:"keep_intervals,omitempty" yaml:"keep_intervals,omitempty"`
	Filter        string              `json:"filter,omitempty" yaml:"filter,omitempty"`
	OutputPath    string              `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Error         string              `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt     time.Time           `json:"started_at" yaml:"started_at"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}
