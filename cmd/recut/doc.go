// Command recut edits videos by editing their transcripts.
//
// One-shot commands (transcribe, enhance, plan, process) read their inputs
// from files and exit. The session commands keep the source reference and
// both transcripts in the state directory so an edit can be revised and
// re-rendered across invocations, or continuously with "session watch".
package main
