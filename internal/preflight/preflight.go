package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recut/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckWorkspace verifies the work directory is usable and has room for the
// engine. It returns an error naming every failed check.
func CheckWorkspace(cfg *config.Config) error {
	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckFreeSpace("Work directory space", cfg.Paths.WorkDir, cfg.Engine.MinFreeMiB),
	}
	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failures) > 0 {
		return errors.New(strings.Join(failures, "; "))
	}
	return nil
}

// RunAll executes every applicable check. OpenAI endpoints are only probed
// when a key is configured and the feature uses them.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckFreeSpace("Work directory space", cfg.Paths.WorkDir, cfg.Engine.MinFreeMiB),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	transcription := cfg.TranscriptionOpenAI()
	if cfg.Transcription.Backend == config.BackendOpenAI && transcription.APIKey != "" {
		results = append(results, CheckOpenAI(ctx, "Transcription API", transcription))
	}
	enhance := cfg.EnhanceOpenAI()
	if enhance.APIKey != "" && enhanceUsesDistinctEndpoint(cfg) {
		results = append(results, CheckOpenAI(ctx, "Enhance API", enhance))
	}
	return results
}

// enhanceUsesDistinctEndpoint reports whether enhancement needs its own
// check because it does not share the transcription endpoint and key.
func enhanceUsesDistinctEndpoint(cfg *config.Config) bool {
	if cfg.Transcription.Backend != config.BackendOpenAI {
		return true
	}
	transcription := cfg.TranscriptionOpenAI()
	enhance := cfg.EnhanceOpenAI()
	return transcription.APIKey != enhance.APIKey || transcription.BaseURL != enhance.BaseURL
}
