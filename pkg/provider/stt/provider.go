// Package stt defines the Transcriber interface for speech-to-text backends.
//
// The game records one utterance at a time and only needs its final text, so
// transcription is a single blocking request per clip rather than a stream.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"strings"

	"github.com/MrWong99/guessbot/pkg/audio"
)

// Transcriber converts a recorded clip into text.
type Transcriber interface {
	// Transcribe returns the recognized text of clip. It returns "" with a
	// nil error when the backend heard nothing intelligible.
	Transcribe(ctx context.Context, clip audio.Clip) (string, error)
}

// nonSpeech lists markers whisper-family models emit for audio without words.
var nonSpeech = []string{"[blank_audio]", "[silence]", "(silence)", "[music]", "[noise]", "[inaudible]"}

// CleanText trims whitespace and returns "" for pure non-speech markers.
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	for _, m := range nonSpeech {
		lower = strings.ReplaceAll(lower, m, "")
	}
	if strings.TrimSpace(lower) == "" {
		return ""
	}
	return text
}
