// Package engine owns the ffmpeg transcoding engine used to render edit plans.
//
// An Adapter lazily loads one Handle (resolved binary, verified capabilities,
// private workspace) and reuses it across jobs. Concurrent EnsureLoaded calls
// share a single load; a failed load caches nothing so the next call starts
// over. RunJob executes one plan at a time, streaming normalized progress to
// a per-call sink, and removes its job directory whether the job succeeds,
// fails, or is cancelled.
package engine
