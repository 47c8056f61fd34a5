// Package audio extracts speech audio from input videos for transcription.
//
// Extractor shells out to ffmpeg and returns the encoded audio in memory.
// FormatMP3 matches what the hosted whisper API accepts within its upload
// limit; FormatWAV produces the 16 kHz mono PCM WhisperX expects.
package audio
