// Package config loads, normalizes, and validates recut configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and RECUT_FFMPEG. The Config type centralizes every knob the
// CLI and the pipeline need so work directories, engine limits, and external
// service credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
