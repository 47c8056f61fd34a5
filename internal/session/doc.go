// Package session persists editing sessions across CLI invocations.
//
// A session row holds the source reference, the original and current
// transcripts, and the pipeline state; each processing attempt adds a run row
// that is removed together with its session. The store is SQLite (WAL mode)
// at state_dir/sessions.db and prunes idle sessions past the configured
// retention when opened.
//
// AcquireLock takes a per-session advisory file lock so two processes cannot
// process the same session at once.
package session
