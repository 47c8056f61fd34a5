// Package language normalizes the transcription language setting to the
// ISO 639-1 codes speech-to-text backends expect. It accepts two- and
// three-letter codes, BCP 47 tags such as "en-US", and English language
// names.
package language
