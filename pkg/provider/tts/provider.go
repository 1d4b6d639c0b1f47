// Package tts defines the Synthesizer interface for text-to-speech backends.
//
// The host speaks one finished sentence group at a time and must know when
// playback ends, so synthesis takes a complete text and streams back audio
// frames that carry their own format.
//
// Implementations must be safe for concurrent use. The returned channel must
// be closed when synthesis finishes or ctx is cancelled.
package tts

import (
	"context"

	"github.com/MrWong99/guessbot/pkg/audio"
)

// Voice selects a provider voice for one language.
type Voice struct {
	// ID is the provider-specific voice identifier (ElevenLabs voice ID,
	// Coqui speaker name or speaker wav path).
	ID string

	// Language is the ISO-639-1 code of the text ("en", "nl").
	Language string
}

// Synthesizer converts text to speech.
type Synthesizer interface {
	// Synthesize streams the spoken rendition of text. An error is returned
	// only when synthesis cannot start; late failures close the channel early.
	Synthesize(ctx context.Context, text string, voice Voice) (<-chan audio.AudioFrame, error)
}
