// Package whisperx transcribes audio locally by running WhisperX through uvx.
//
// The service writes the audio to a scratch directory, invokes WhisperX with
// sentence-level segmentation, and joins the segment texts of the JSON result
// into one transcript.
package whisperx
