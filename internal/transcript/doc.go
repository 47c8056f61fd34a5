// Package transcript splits transcript text into sentences and decides which
// sentences of an original transcript survive in an edited one.
//
// Segment is pure and deterministic. Aligners compare sentences by their
// Normalize form, so whitespace and Unicode composition differences do not
// count as edits.
package transcript
