// Package preflight provides readiness checks for the binaries, directories,
// and OpenAI endpoints recut depends on.
//
// The processing commands call CheckWorkspace before rendering so a full
// disk fails fast instead of midway through ffmpeg. "recut status" runs
// RunAll and CheckSystemDeps to display overall health.
package preflight
