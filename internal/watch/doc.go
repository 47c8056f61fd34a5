// Package watch re-runs processing whenever an edited transcript file is
// saved.
//
// The watcher observes the file's directory rather than the file itself so
// editors that save by renaming a temporary file over the original are still
// seen. Bursts of events are debounced, and a save that leaves the content
// unchanged does not trigger the handler. Handlers run one at a time on the
// watcher goroutine; saves made while a handler runs are coalesced into one
// follow-up call.
package watch
