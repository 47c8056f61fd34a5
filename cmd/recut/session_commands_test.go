package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recut/internal/session"
	"recut/internal/testsupport"
)

func startTestSession(t *testing.T, env *cliTestEnv, id string) string {
	t.Helper()
	original := env.writeText(t, id+"-original.txt", testOriginal)
	out, _, err := runCLI(t, []string{"session", "start", env.mediaPath, "--transcript", original, "--id", id}, env.configPath)
	if err != nil {
		t.Fatalf("session start: %v", err)
	}
	requireContains(t, out, "Session "+id+" ready")
	return filepath.Join(env.cfg.Paths.StateDir, "transcripts", id+".txt")
}

func TestSessionLifecycleCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	transcriptPath := startTestSession(t, env, "demo")

	if got := string(requireFile(t, transcriptPath)); got != testOriginal {
		t.Fatalf("transcript file = %q, want original", got)
	}

	if err := os.WriteFile(transcriptPath, []byte(testEdited), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{"session", "edit", "demo"}, env.configPath)
	if err != nil {
		t.Fatalf("session edit: %v", err)
	}
	requireContains(t, out, "Updated transcript for session demo")
	requireContains(t, out, "Kept 2 of 3 sentences; 4.00s of 6.00s")

	target := filepath.Join(env.baseDir, "demo.mp4")
	out, _, err = runCLI(t, []string{"session", "process", "demo", "-o", target}, env.configPath)
	if err != nil {
		t.Fatalf("session process: %v", err)
	}
	requireContains(t, out, "Wrote "+target)
	requireFile(t, target)

	out, _, err = runCLI(t, []string{"session", "show", "demo"}, env.configPath)
	if err != nil {
		t.Fatalf("session show: %v", err)
	}
	requireContains(t, out, "done")
	requireContains(t, out, "succeeded")
	requireContains(t, out, target)

	out, _, err = runCLI(t, []string{"session", "show", "demo", "--format", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("session show json: %v", err)
	}
	var details struct {
		Session session.Record `json:"session"`
		Runs    []session.Run  `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &details); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if details.Session.Current != testEdited || details.Session.Original != testOriginal {
		t.Fatalf("unexpected transcripts %+v", details.Session)
	}
	if len(details.Runs) != 1 || details.Runs[0].Status != session.RunStatusSucceeded {
		t.Fatalf("unexpected runs %+v", details.Runs)
	}
	if len(details.Runs[0].KeepIntervals) != 2 {
		t.Fatalf("expected 2 recorded keep intervals, got %+v", details.Runs[0].KeepIntervals)
	}

	out, _, err = runCLI(t, []string{"session", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("session list: %v", err)
	}
	requireContains(t, out, "demo")
	requireContains(t, out, "input.mp4")

	out, _, err = runCLI(t, []string{"session", "close", "demo"}, env.configPath)
	if err != nil {
		t.Fatalf("session close: %v", err)
	}
	requireContains(t, out, "Closed session demo")
	if _, err := os.Stat(transcriptPath); !os.IsNotExist(err) {
		t.Fatalf("expected transcript file removed, stat err = %v", err)
	}
	if _, _, err := runCLI(t, []string{"session", "show", "demo"}, env.configPath); err == nil {
		t.Fatal("expected closed session to be gone")
	}
}

func TestSessionStartTranscribes(t *testing.T) {
	server := newWhisperServer(t, testOriginal)
	env := setupCLITestEnv(t)
	env.cfg.Transcription.BaseURL = server.URL + "/v1"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"session", "start", env.mediaPath, "--id", "spoken"}, env.configPath)
	if err != nil {
		t.Fatalf("session start: %v", err)
	}
	requireContains(t, out, "Session spoken ready")
	transcript := filepath.Join(env.cfg.Paths.StateDir, "transcripts", "spoken.txt")
	if got := string(requireFile(t, transcript)); got != testOriginal {
		t.Fatalf("transcript = %q", got)
	}
}

func TestSessionStartFailureIsPersisted(t *testing.T) {
	env := setupCLITestEnv(t)
	original := env.writeText(t, "original.txt", testOriginal)
	missing := filepath.Join(env.baseDir, "missing.mp4")

	_, _, err := runCLI(t, []string{"session", "start", missing, "--transcript", original, "--id", "broken"}, env.configPath)
	if err == nil {
		t.Fatal("expected start failure")
	}
	out, _, err := runCLI(t, []string{"session", "show", "broken"}, env.configPath)
	if err != nil {
		t.Fatalf("session show: %v", err)
	}
	requireContains(t, out, "failed")
	requireContains(t, out, "extracting")
}

func TestSessionCommandErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	startTestSession(t, env, "dup")

	original := env.writeText(t, "again.txt", testOriginal)
	_, _, err := runCLI(t, []string{"session", "start", env.mediaPath, "--transcript", original, "--id", "dup"}, env.configPath)
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
	requireContains(t, err.Error(), "already exists")

	_, _, err = runCLI(t, []string{"session", "process", "ghost"}, env.configPath)
	if err == nil {
		t.Fatal("expected not found error")
	}
	requireContains(t, err.Error(), "not found")

	lock, err := session.AcquireLock(filepath.Join(env.cfg.Paths.StateDir, "locks"), "dup")
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	_, _, err = runCLIWithInput(t, []string{"session", "edit", "dup", "--file", "-"}, env.configPath, testEdited)
	if err == nil {
		t.Fatal("expected lock contention error")
	}
	requireContains(t, err.Error(), "in use")
	if err := lock.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, _, err := runCLIWithInput(t, []string{"session", "edit", "dup", "--file", "-"}, env.configPath, testEdited); err != nil {
		t.Fatalf("edit after release: %v", err)
	}
}

func TestSessionProcessFailureRecordsRun(t *testing.T) {
	env := setupCLITestEnv(t)
	startTestSession(t, env, "fails")

	_, _, err := runCLIWithInput(t, []string{"session", "edit", "fails", "--file", "-"}, env.configPath, testEdited)
	if err != nil {
		t.Fatalf("session edit: %v", err)
	}
	t.Setenv(testsupport.FakeFFmpegModeEnv, "fail")
	if _, _, err := runCLI(t, []string{"session", "process", "fails"}, env.configPath); err == nil {
		t.Fatal("expected transcode failure")
	}
	out, _, err := runCLI(t, []string{"session", "show", "fails", "-f", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("session show: %v", err)
	}
	var details struct {
		Session session.Record `json:"session"`
		Runs    []session.Run  `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &details); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if details.Session.State != "failed" || details.Session.FailureStage != "transcoding" {
		t.Fatalf("unexpected session %+v", details.Session)
	}
	if len(details.Runs) != 1 || details.Runs[0].Status != session.RunStatusFailed || details.Runs[0].Error == "" {
		t.Fatalf("unexpected runs %+v", details.Runs)
	}
}

func TestSessionWatchRendersOnSave(t *testing.T) {
	env := setupCLITestEnv(t)
	transcriptPath := startTestSession(t, env, "watched")
	target := filepath.Join(env.baseDir, "watched.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var stdout, stderr lockedBuffer
	done := make(chan error, 1)
	go func() {
		done <- executeCLI(ctx, []string{"session", "watch", "watched", "-o", target, "--debounce", "50ms"}, env.configPath, "", &stdout, &stderr)
	}()

	waitFor(t, 5*time.Second, func() bool { return strings.Contains(stdout.String(), "Watching") })
	if err := os.WriteFile(transcriptPath, []byte(testEdited), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 10*time.Second, func() bool { return strings.Contains(stdout.String(), "Wrote "+target) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
	requireFile(t, target)
	requireContains(t, stdout.String(), "Kept 2 of 3 sentences")
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
