package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const sessionColumns = "id, source, duration, original, current, state, failure_stage, failure_message, output_path, created_at, updated_at"

// Save inserts or replaces rec, stamping UpdatedAt and, for new records,
// CreatedAt.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id is required")
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	_, err := s.execWithRetry(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             source = excluded.source,
             duration = excluded.duration,
             original = excluded.original,
             current = excluded.current,
             state = excluded.state,
             failure_stage = excluded.failure_stage,
             failure_message = excluded.failure_message,
             output_path = excluded.output_path,
             updated_at = excluded.updated_at`,
		rec.ID,
		rec.Source,
		rec.Duration,
		rec.Original,
		rec.Current,
		rec.State,
		nullableString(rec.FailureStage),
		nullableString(rec.FailureMessage),
		nullableString(rec.OutputPath),
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns the session with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return rec, nil
}

// List returns all sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a session and its runs. It reports whether a row existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Prune deletes sessions idle for longer than olderThan. A non-positive
// duration keeps everything.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	cutoff := formatTime(time.Now().Add(-olderThan))
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec            Record
		failureStage   sql.NullString
		failureMessage sql.NullString
		outputPath     sql.NullString
		createdRaw     string
		updatedRaw     string
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.Source,
		&rec.Duration,
		&rec.Original,
		&rec.Current,
		&rec.State,
		&failureStage,
		&failureMessage,
		&outputPath,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	rec.FailureStage = failureStage.String
	rec.FailureMessage = failureMessage.String
	rec.OutputPath = outputPath.String
	rec.CreatedAt = parseTime(createdRaw)
	rec.UpdatedAt = parseTime(updatedRaw)
	return &rec, nil
}
