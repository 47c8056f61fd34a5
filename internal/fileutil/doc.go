// Package fileutil writes rendered output and transcripts to disk without
// exposing partial files.
package fileutil
