package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"recut/internal/session"
)

type sessionDetails struct {
	Session        *session.Record `json:"session" yaml:"session"`
	Runs           []*session.Run  `json:"runs" yaml:"runs"`
	TranscriptPath string          `json:"transcript_path" yaml:"transcript_path"`
}

func renderSessionList(records []*session.Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.ID,
			rec.State,
			filepath.Base(rec.Source),
			formatSeconds(rec.Duration),
			formatTimestamp(rec.UpdatedAt),
		})
	}
	return renderTable(
		[]string{"ID", "State", "Source", "Duration", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func renderSessionDetails(details sessionDetails) string {
	rec := details.Session
	fields := [][]string{
		{"ID", rec.ID},
		{"State", rec.State},
		{"Source", rec.Source},
		{"Duration", formatSeconds(rec.Duration)},
		{"Transcript file", details.TranscriptPath},
		{"Edited", yesNo(rec.Current != rec.Original)},
		{"Created", formatTimestamp(rec.CreatedAt)},
		{"Updated", formatTimestamp(rec.UpdatedAt)},
	}
	if rec.OutputPath != "" {
		fields = append(fields, []string{"Output", rec.OutputPath})
	}
	if rec.FailureMessage != "" {
		fields = append(fields, []string{"Failed stage", rec.FailureStage})
		fields = append(fields, []string{"Failure", rec.FailureMessage})
	}

	var b strings.Builder
	b.WriteString(renderTable([]string{"Field", "Value"}, fields, nil))
	if len(details.Runs) == 0 {
		b.WriteString("\nNo runs yet")
		return b.String()
	}

	rows := make([][]string, 0, len(details.Runs))
	for _, run := range details.Runs {
		outcome := run.OutputPath
		if run.Error != "" {
			outcome = run.Error
		}
		finished := "-"
		if run.FinishedAt != nil {
			finished = formatTimestamp(*run.FinishedAt)
		}
		rows = append(rows, []string{
			shortID(run.ID),
			string(run.Status),
			fmt.Sprintf("%d", len(run.KeepIntervals)),
			formatTimestamp(run.StartedAt),
			finished,
			outcome,
		})
	}
	b.WriteString("\n")
	b.WriteString(renderTable(
		[]string{"Run", "Status", "Intervals", "Started", "Finished", "Outcome"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	))
	return b.String()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
