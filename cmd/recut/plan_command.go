package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recut/internal/config"
	"recut/internal/editplan"
	"recut/internal/media/ffprobe"
	"recut/internal/timeline"
)

type planReport struct {
	SourceDuration float64                `json:"source_duration" yaml:"source_duration"`
	OutputDuration float64                `json:"output_duration" yaml:"output_duration"`
	KeptSentences  int                    `json:"kept_sentences" yaml:"kept_sentences"`
	TotalSentences int                    `json:"total_sentences" yaml:"total_sentences"`
	Passthrough    bool                   `json:"passthrough" yaml:"passthrough"`
	Segments       []timeline.EditSegment `json:"segments" yaml:"segments"`
	Plan           editplan.Plan          `json:"plan" yaml:"plan"`
}

func newPlanReport(segments []timeline.EditSegment, plan editplan.Plan) planReport {
	report := planReport{
		SourceDuration: plan.SourceDuration,
		OutputDuration: plan.OutputDuration(),
		TotalSentences: len(segments),
		Passthrough:    plan.Passthrough(),
		Segments:       segments,
		Plan:           plan,
	}
	for _, seg := range segments {
		if seg.Keep {
			report.KeptSentences++
		}
	}
	return report
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var originalPath string
	var editedPath string
	var mediaPath string
	var duration float64
	var format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the cuts an edited transcript produces without rendering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := validateFormat(format)
			if err != nil {
				return err
			}
			cfg, logger, err := ctx.environment()
			if err != nil {
				return err
			}
			original, err := readTextInput(cmd, originalPath)
			if err != nil {
				return fmt.Errorf("original transcript: %w", err)
			}
			edited, err := readTextInput(cmd, editedPath)
			if err != nil {
				return fmt.Errorf("edited transcript: %w", err)
			}
			if duration <= 0 {
				if strings.TrimSpace(mediaPath) == "" {
					return errors.New("either --duration or --media is required")
				}
				duration, err = probeDuration(cmd, cfg, mediaPath)
				if err != nil {
					return err
				}
			}

			processor, err := newProcessor(cfg, logger)
			if err != nil {
				return err
			}
			segments, plan, err := processor.Plan(original, edited, duration)
			if err != nil {
				return err
			}
			report := newPlanReport(segments, plan)

			switch outputFormat {
			case formatJSON:
				return writeJSON(cmd, report)
			case formatYAML:
				return writeYAML(cmd, report)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPlanReport(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&originalPath, "original", "", "Original transcript file (- for stdin)")
	cmd.Flags().StringVar(&editedPath, "edited", "", "Edited transcript file (- for stdin)")
	cmd.Flags().StringVar(&mediaPath, "media", "", "Video to probe for its duration")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Source duration in seconds")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json, or yaml")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("edited")
	return cmd
}

func probeDuration(cmd *cobra.Command, cfg *config.Config, mediaPath string) (float64, error) {
	path, err := config.ExpandPath(mediaPath)
	if err != nil {
		return 0, err
	}
	probe, err := ffprobe.Inspect(cmd.Context(), cfg.Engine.FFprobeBinary, path)
	if err != nil {
		return 0, err
	}
	seconds := probe.DurationSeconds()
	if seconds <= 0 {
		return 0, fmt.Errorf("%s: duration unavailable", path)
	}
	return seconds, nil
}

func renderPlanReport(report planReport) string {
	rows := make([][]string, 0, len(report.Segments))
	for _, seg := range report.Segments {
		rows = append(rows, []string{
			fmt.Sprintf("%d", seg.SourceIndex+1),
			keepLabel(seg.Keep),
			formatSeconds(seg.Start),
			formatSeconds(seg.End),
			seg.Text,
		})
	}
	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"#", "Action", "Start", "End", "Sentence"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Kept %d of %d sentences; %s of %s\n",
		report.KeptSentences, report.TotalSentences,
		formatSeconds(report.OutputDuration), formatSeconds(report.SourceDuration))
	switch {
	case report.Passthrough && report.KeptSentences == 0:
		b.WriteString("Every sentence was removed; the video is re-encoded unchanged\n")
	case report.Passthrough:
		b.WriteString("No cuts; the video is re-encoded unchanged\n")
	default:
		intervals := make([]string, 0, len(report.Plan.KeepIntervals))
		for _, iv := range report.Plan.KeepIntervals {
			intervals = append(intervals, fmt.Sprintf("%s-%s", formatSeconds(iv.Start), formatSeconds(iv.End)))
		}
		fmt.Fprintf(&b, "Keep intervals: %s\n", strings.Join(intervals, ", "))
	}
	fmt.Fprintf(&b, "Filter: %s", report.Plan.FilterExpression)
	return b.String()
}

func keepLabel(keep bool) string {
	if keep {
		return "keep"
	}
	return "cut"
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.2fs", seconds)
}
