// Package source loads input videos for an editing session.
//
// FileSource reads the video bytes from disk and measures the container
// duration with ffprobe. Videos without both a video and an audio stream are
// rejected up front, because the edit graph always maps one of each.
package source
