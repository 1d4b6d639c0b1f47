// Package mock provides a scripted speech.Recognizer.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/MrWong99/guessbot/internal/speech"
)

// ErrExhausted is returned once every scripted utterance was consumed.
var ErrExhausted = errors.New("mock: recognizer script exhausted")

// Recognizer replays Utterances in order. An empty string simulates
// silence.
type Recognizer struct {
	mu sync.Mutex

	// Utterances is consumed front to back, one entry per Recognize call.
	Utterances []string

	// Err, if non-nil, is returned by every call.
	Err error

	calls int
}

// Recognize implements speech.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.Err != nil {
		return "", r.Err
	}
	if len(r.Utterances) == 0 {
		return "", ErrExhausted
	}
	text := r.Utterances[0]
	r.Utterances = r.Utterances[1:]
	return text, nil
}

// Calls returns the number of Recognize invocations.
func (r *Recognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Remaining returns the number of unconsumed utterances.
func (r *Recognizer) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Utterances)
}

var _ speech.Recognizer = (*Recognizer)(nil)
