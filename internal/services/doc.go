// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, run IDs, and stage names for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that tag failures with
//     the originating stage so callers can render precise messages.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
