// Package mock provides a test double for tts.Synthesizer.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/guessbot/pkg/audio"
	"github.com/MrWong99/guessbot/pkg/provider/tts"
)

// SynthesizeCall records one Synthesize invocation.
type SynthesizeCall struct {
	Text  string
	Voice tts.Voice
}

// Synthesizer is a mock tts.Synthesizer. Every call emits Frames.
type Synthesizer struct {
	mu sync.Mutex

	// Frames is emitted for every call.
	Frames []audio.AudioFrame

	// Err, if non-nil, is returned by Synthesize.
	Err error

	// Calls records every Synthesize invocation.
	Calls []SynthesizeCall
}

// Synthesize implements tts.Synthesizer.
func (m *Synthesizer) Synthesize(ctx context.Context, text string, voice tts.Voice) (<-chan audio.AudioFrame, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, SynthesizeCall{Text: text, Voice: voice})
	if m.Err != nil {
		m.mu.Unlock()
		return nil, m.Err
	}
	frames := make([]audio.AudioFrame, len(m.Frames))
	copy(frames, m.Frames)
	m.mu.Unlock()

	ch := make(chan audio.AudioFrame, len(frames))
	for _, f := range frames {
		ch <- f
	}
	close(ch)
	return ch, nil
}

// Texts returns the texts passed to Synthesize in order.
func (m *Synthesizer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = c.Text
	}
	return out
}

var _ tts.Synthesizer = (*Synthesizer)(nil)
