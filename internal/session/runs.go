package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"recut/internal/editplan"
)

const runColumns = "id, session_id, status, keep_intervals_json, filter, output_path, error_message, started_at, finished_at"

// StartRun records the beginning of a processing attempt.
func (s *Store) StartRun(ctx context.Context, sessionID, runID string) (*Run, error) {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(runID) == "" {
		return nil, errors.New("session id and run id are required")
	}
	run := &Run{
		ID:        runID,
		SessionID: sessionID,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, session_id, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.SessionID, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	return run, nil
}

// FinishRun stores the outcome of run and stamps FinishedAt.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.Status == "" || run.Status == RunStatusRunning {
		return fmt.Errorf("finish run %s: terminal status required", run.ID)
	}
	var intervals any
	if len(run.KeepIntervals) > 0 {
		data, err := json.Marshal(run.KeepIntervals)
		if err != nil {
			return fmt.Errorf("marshal keep intervals: %w", err)
		}
		intervals = string(data)
	}
	finished := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE runs
         SET status = ?, keep_intervals_json = ?, filter = ?, output_path = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		string(run.Status),
		intervals,
		nullableString(run.Filter),
		nullableString(run.OutputPath),
		nullableString(run.Error),
		formatTime(finished),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("finish run %s: not found", run.ID)
	}
	run.FinishedAt = &finished
	return nil
}

// Runs returns the runs of a session, oldest first.
func (s *Store) Runs(ctx context.Context, sessionID string) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE session_id = ? ORDER BY started_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		status       string
		intervalsRaw sql.NullString
		filter       sql.NullString
		outputPath   sql.NullString
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.SessionID,
		&status,
		&intervalsRaw,
		&filter,
		&outputPath,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.Filter = filter.String
	run.OutputPath = outputPath.String
	run.Error = errorMessage.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		finished := parseTime(finishedRaw.String)
		run.FinishedAt = &finished
	}
	if intervalsRaw.Valid && intervalsRaw.String != "" {
		var intervals []editplan.Interval
		if err := json.Unmarshal([]byte(intervalsRaw.String), &intervals); err != nil {
			return nil, fmt.Errorf("decode keep intervals: %w", err)
		}
		run.KeepIntervals = intervals
	}
	return &run, nil
}
