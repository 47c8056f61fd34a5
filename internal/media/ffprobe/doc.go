// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe against a file and returns a Result whose helpers
// expose stream counts, container duration, and the primary video frame rate.
package ffprobe
