package resilience

import (
	"context"

	"github.com/MrWong99/guessbot/pkg/audio"
	"github.com/MrWong99/guessbot/pkg/provider/tts"
)

// TTSFallback implements [tts.Synthesizer] with automatic failover across
// multiple TTS backends. Each backend has its own circuit breaker.
type TTSFallback struct {
	group *FallbackGroup[tts.Synthesizer]
}

// Compile-time interface assertion.
var _ tts.Synthesizer = (*TTSFallback)(nil)

// NewTTSFallback creates a [TTSFallback] with primary as the preferred backend.
func NewTTSFallback(primary tts.Synthesizer, primaryName string, cfg FallbackConfig) *TTSFallback {
	return &TTSFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional synthesizer as a fallback.
func (f *TTSFallback) AddFallback(name string, s tts.Synthesizer) {
	f.group.AddFallback(name, s)
}

// Synthesize starts synthesis on the first healthy provider. Only the stream
// setup is covered by failover; a stream that ends early is the caller's
// concern.
func (f *TTSFallback) Synthesize(ctx context.Context, text string, voice tts.Voice) (<-chan audio.AudioFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ExecuteWithResult(f.group, func(s tts.Synthesizer) (<-chan audio.AudioFrame, error) {
		return s.Synthesize(ctx, text, voice)
	})
}
