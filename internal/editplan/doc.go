// Package editplan compiles timed keep/drop segments into an ffmpeg filter
// graph plus the argument vector that runs it.
//
// Every plan's filter expression defines exactly one video output labelled
// [vout] and one audio output labelled [aout]; the engine maps its outputs by
// those labels. A plan with no keep intervals is a pass-through: the source
// is re-encoded through null filters without cuts.
package editplan
