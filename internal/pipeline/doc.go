// Package pipeline ties transcript editing to video rendering.
//
// Processor is the stateless processing pipeline: it segments both
// transcripts into sentences, aligns them, maps sentences onto the source
// timeline, compiles an edit plan, and renders it through the engine,
// reporting monotonic progress along the way.
//
// Session is the user-facing state machine around it:
//
//	Idle -> Extracting -> Transcribing -> Editing -> Processing -> Done | Failed
//
// Editing only mutates the in-memory current transcript. Processing may be
// requested again from Done or Failed, and identical transcripts always yield
// identical keep intervals. Every failure carries the stage it happened in
// and is delivered both as the returned error and as a final "failed"
// progress event.
package pipeline
