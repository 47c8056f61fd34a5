// Package logs reads recut's log file for the "recut logs" command.
//
// Tail returns the last N lines with bounded memory and the offset where the
// file ended; Follow streams lines appended after that offset until the
// context ends, starting over when the file is truncated. Both accept a
// substring filter so a single session or run can be isolated.
package logs
