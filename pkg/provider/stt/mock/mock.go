// Package mock provides a test double for stt.Transcriber.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/guessbot/pkg/audio"
	"github.com/MrWong99/guessbot/pkg/provider/stt"
)

// Transcriber is a mock stt.Transcriber that serves texts from a queue.
type Transcriber struct {
	mu sync.Mutex

	// Texts is consumed front to back; "" once exhausted.
	Texts []string

	// Err, if non-nil, is returned by Transcribe.
	Err error

	// Clips records every clip passed to Transcribe.
	Clips []audio.Clip
}

// Transcribe implements stt.Transcriber.
func (m *Transcriber) Transcribe(_ context.Context, clip audio.Clip) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Clips = append(m.Clips, clip)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Texts) == 0 {
		return "", nil
	}
	text := m.Texts[0]
	m.Texts = m.Texts[1:]
	return text, nil
}

// Calls returns the number of Transcribe calls.
func (m *Transcriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Clips)
}

var _ stt.Transcriber = (*Transcriber)(nil)
