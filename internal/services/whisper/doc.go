// Package whisper transcribes audio through the OpenAI transcription API.
package whisper
