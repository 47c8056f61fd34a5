package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"recut/internal/config"
	"recut/internal/pipeline"
	"recut/internal/watch"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Edit a video over several invocations",
	}
	sessionCmd.AddCommand(newSessionStartCommand(ctx))
	sessionCmd.AddCommand(newSessionListCommand(ctx))
	sessionCmd.AddCommand(newSessionShowCommand(ctx))
	sessionCmd.AddCommand(newSessionEditCommand(ctx))
	sessionCmd.AddCommand(newSessionProcessCommand(ctx))
	sessionCmd.AddCommand(newSessionWatchCommand(ctx))
	sessionCmd.AddCommand(newSessionCloseCommand(ctx))
	return sessionCmd
}

func newSessionStartCommand(ctx *commandContext) *cobra.Command {
	var transcriptPath string
	var sessionID string

	cmd := &cobra.Command{
		Use:   "start <video>",
		Short: "Transcribe a video and open an editing session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openSessionEnv(cmd, ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			ref, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			id := strings.TrimSpace(sessionID)
			if id == "" {
				id = uuid.NewString()
			}
			existing, err := env.store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("session %s already exists", id)
			}

			lock, err := env.lock(id)
			if err != nil {
				return err
			}
			defer lock.Release()

			var sess *pipeline.Session
			var startErr error
			if strings.TrimSpace(transcriptPath) != "" {
				text, err := readTextInput(cmd, transcriptPath)
				if err != nil {
					return err
				}
				if sess, err = env.newSession(id, nil, nil); err != nil {
					return err
				}
				startErr = sess.Import(cmd.Context(), ref, text)
			} else {
				transcriber, extractor, err := newTranscription(env.cfg, env.logger)
				if err != nil {
					return err
				}
				if sess, err = env.newSession(id, transcriber, extractor); err != nil {
					return err
				}
				startErr = sess.Start(cmd.Context(), ref)
			}

			if err := env.save(context.WithoutCancel(cmd.Context()), sess); err != nil {
				return err
			}
			if startErr != nil {
				return fmt.Errorf("session %s: %w", id, startErr)
			}
			path, err := env.writeTranscript(id, sess.Original())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s ready\n", id)
			fmt.Fprintf(out, "Transcript: %s\n", path)
			fmt.Fprintf(out, "Edit the transcript, then run: recut session process %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Use this transcript instead of transcribing (- for stdin)")
	cmd.Flags().StringVar(&sessionID, "id", "", "Session identifier (default: random UUID)")
	return cmd
}

func newSessionListCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List editing sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := validateFormat(format)
			if err != nil {
				return err
			}
			env, err := openSessionEnv(cmd, ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			records, err := env.store.List(cmd.Context())
			if err != nil {
				return err
			}
			switch outputFormat {
			case formatJSON:
				return writeJSON(cmd, records)
			case formatYAML:
				return writeYAML(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSessionList(records))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json, or yaml")
	return cmd
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session, its transcripts, and its runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := validateFormat(format)
			if err != nil {
				return err
			}
			env, err := openSessionEnv(cmd, ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			rec, err := env.store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("session %s not found", args[0])
			}
			runs, err := env.store.Runs(cmd.Context(), rec.ID)
			if err != nil {
				return err
			}
			details := sessionDetails{Session: rec, Runs: runs, TranscriptPath: env.transcriptPath(rec.ID)}
			switch outputFormat {
			case formatJSON:
				return writeJSON(cmd, details)
			case formatYAML:
				return writeYAML(cmd, details)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSessionDetails(details))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json, or yaml")
	return cmd
}

func newSessionEditCommand(ctx *commandContext) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a session's edited transcript",
		Long: "Replace a session's edited transcript.\n\n" +
			"Reads --file (- for stdin), defaulting to the session's transcript file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openSessionEnv(cmd, ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			id := args[0]
			path := filePath
			if strings.TrimSpace(path) == "" {
				path = env.transcriptPath(id)
			}
			text, err := readTextInput(cmd, path)
			if err != nil {
				return err
			}
			sess, lock, err := env.open(cmd.Context(), id)
			if err != nil {
				return err
			}
			defer lock.Release()

			if err := sess.UpdateCurrentTranscript(text); err != nil {
				return err
			}
			if err := env.save(cmd.Context(), sess); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated transcript for session %s\n", id)
			rec := sess.Snapshot()
			processor, err := newProcessor(env.cfg, env.logger)
			if err != nil {
				return err
			}
			segments, plan, err := processor.Plan(rec.Original, rec.Current, rec.Duration)
			if err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
				return nil
			}
			report := newPlanReport(segments, plan)
			fmt.Fprintf(out, "Kept %d of %d sentences; %s of %s\n",
				report.KeptSentences, report.TotalSentences,
				formatSeconds(report.OutputDuration), formatSeconds(report.SourceDuration))
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Edited transcript (- for stdin)")
	return cmd
}

func newSessionProcessCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "process <id>",
		Short: "Render a session's edited transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openSessionEnv(cmd, ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			sess, lock, err := env.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer lock.Release()

			result, target, err := env.render(cmd, sess, outputPath)
			if err != nil {
				return err
			}
			printResultSummary(cmd, target, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: previous output or <video>.edited.mp4)")
	return cmd
}

func newSessionWatchCommand(ctx *commandContext) *cobra.Command {
	var filePath string
	var outputPath string
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Re-render whenever the session's transcript file is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openSessionEnv(cmd, ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			id := args[0]
			sess, lock, err := env.open(cmd.Context(), id)
			if err != nil {
				return err
			}
			defer lock.Release()

			path := filePath
			if strings.TrimSpace(path) == "" {
				path = env.transcriptPath(id)
			} else if path, err = config.ExpandPath(path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			handler := func(_ context.Context, text string) error {
				if err := sess.UpdateCurrentTranscript(text); err != nil {
					return err
				}
				fmt.Fprintf(out, "Transcript changed; rendering session %s\n", id)
				result, target, err := env.render(cmd, sess, outputPath)
				if err != nil {
					fmt.Fprintf(out, "Render failed: %v\n", err)
					return err
				}
				printResultSummary(cmd, target, result)
				return nil
			}

			watcher, err := watch.New(path, handler,
				watch.WithDebounce(debounce),
				watch.WithLogger(env.logger),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", watcher.Path())
			return watcher.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Transcript file to watch (default: the session's transcript file)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: previous output or <video>.edited.mp4)")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period after the last write before rendering")
	return cmd
}

func newSessionCloseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Delete a session and its transcript file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openSessionEnv(cmd, ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			id := args[0]
			lock, err := env.lock(id)
			if err != nil {
				return err
			}
			defer lock.Release()

			removed, err := env.store.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("session %s not found", id)
			}
			if err := removeIfExists(env.transcriptPath(id)); err != nil {
				return fmt.Errorf("remove transcript file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed session %s\n", id)
			return nil
		},
	}
}
