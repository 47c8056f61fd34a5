package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recut/internal/pipeline"
	"recut/internal/preflight"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var originalPath string
	var editedPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Render a video cut to match an edited transcript",
		Long: "Render a video cut to match an edited transcript.\n\n" +
			"Without --original the video is transcribed first, which only makes\n" +
			"sense when the edited transcript was produced from the same backend.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.environment()
			if err != nil {
				return err
			}
			if err := preflight.CheckWorkspace(cfg); err != nil {
				return fmt.Errorf("workspace not ready: %w", err)
			}
			edited, err := readTextInput(cmd, editedPath)
			if err != nil {
				return fmt.Errorf("edited transcript: %w", err)
			}

			var original string
			if strings.TrimSpace(originalPath) != "" {
				original, err = readTextInput(cmd, originalPath)
				if err != nil {
					return fmt.Errorf("original transcript: %w", err)
				}
			} else {
				original, err = transcribeMedia(cmd.Context(), cfg, logger, args[0])
				if err != nil {
					return err
				}
			}

			media, err := newMediaSource(cfg).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			target, err := resolveOutputPath(outputPath, media.Path)
			if err != nil {
				return err
			}
			processor, err := newProcessor(cfg, logger)
			if err != nil {
				return err
			}

			display := newProgressDisplay(cmd.ErrOrStderr(), "Rendering")
			result, err := processor.Run(cmd.Context(), pipeline.Request{
				Media:    media,
				Original: original,
				Edited:   edited,
				Progress: display.Sink(),
			})
			display.Close()
			if err != nil {
				return err
			}
			if err := writeMediaOutput(target, result.Output); err != nil {
				return err
			}
			printResultSummary(cmd, target, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&originalPath, "original", "", "Original transcript file (- for stdin); transcribes the video when omitted")
	cmd.Flags().StringVar(&editedPath, "edited", "", "Edited transcript file (- for stdin)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: <video>.edited.mp4)")
	_ = cmd.MarkFlagRequired("edited")
	return cmd
}

func printResultSummary(cmd *cobra.Command, target string, result pipeline.Result) {
	report := newPlanReport(result.Segments, result.Plan)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%d bytes)\n", target, len(result.Output))
	fmt.Fprintf(out, "Kept %d of %d sentences; %s of %s\n",
		report.KeptSentences, report.TotalSentences,
		formatSeconds(report.OutputDuration), formatSeconds(report.SourceDuration))
}
