// Package logging configures slog-based logging for recut.
//
// It provides a compact console handler for terminals, a JSON handler for
// log files and machine consumers, and helpers that stamp session, run, and
// stage identifiers from context onto every record.
package logging
