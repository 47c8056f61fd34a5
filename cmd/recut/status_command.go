package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recut/internal/engine"
	"recut/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration, dependencies, and API access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.environment()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			var lines []string
			problems := 0

			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			configNote := ctx.configPath
			if !ctx.configExists {
				configNote += " (not found, using defaults)"
			}
			lines = append(lines,
				renderStatusLine("Config file", statusInfo, configNote, colorize),
				renderStatusLine("Transcription backend", statusInfo, cfg.Transcription.Backend, colorize),
				renderStatusLine("Aligner", statusInfo, cfg.Transcript.Aligner, colorize),
				renderStatusLine("Busy policy", statusInfo, cfg.Engine.BusyPolicy, colorize),
			)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			ffmpegReady := false
			for _, dep := range preflight.CheckSystemDeps(cfg) {
				switch {
				case dep.Available:
					lines = append(lines, renderStatusLine(dep.Name, statusOK, dep.Path, colorize))
					if dep.Command == cfg.Engine.FFmpegBinary {
						ffmpegReady = true
					}
				case dep.Optional:
					lines = append(lines, renderStatusLine(dep.Name, statusWarn, dep.Detail+" (optional)", colorize))
				default:
					problems++
					lines = append(lines, renderStatusLine(dep.Name, statusError, dep.Detail, colorize))
				}
			}

			if ffmpegReady {
				adapter := engine.NewFromConfig(cfg, logger)
				handle, err := adapter.EnsureLoaded(cmd.Context())
				if err != nil {
					problems++
					lines = append(lines, renderStatusLine("Engine", statusError, err.Error(), colorize))
				} else {
					lines = append(lines, renderStatusLine("Engine", statusOK, "ffmpeg "+handle.Version, colorize))
				}
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					problems++
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			lines = append(lines, "")
			if problems == 0 {
				lines = append(lines, "All checks passed")
			} else {
				lines = append(lines, fmt.Sprintf("%d problem(s) found", problems))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}
