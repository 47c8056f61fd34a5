// Package llm talks to OpenAI-compatible endpoints through go-openai.
//
// NewClient builds the shared API client used by transcript enhancement and
// whisper transcription. Enhancer rewrites a transcript into a tighter
// narrative by removing duplicate sentences and repeated ideas; its output is
// meant to be pasted into an editing session as the edited transcript.
//
// DescribeError maps API failures to short user-facing messages, keeping
// authorization and quota problems distinguishable.
package llm
