package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/guessbot/internal/speech"
)

// ErrClosed is returned once the player closed the input (Ctrl-D).
var ErrClosed = errors.New("console: input closed")

type lineResult struct {
	text string
	err  error
}

// Recognizer is a [speech.Recognizer] over typed lines. An empty line, a
// Ctrl-C or waiting longer than the configured patience counts as silence.
type Recognizer struct {
	reader  LineReader
	maxWait time.Duration

	once  sync.Once
	lines chan lineResult
}

// NewRecognizer creates a Recognizer. A positive maxWait makes a read that
// gets no line within that time count as silence.
func NewRecognizer(reader LineReader, maxWait time.Duration) *Recognizer {
	return &Recognizer{reader: reader, maxWait: maxWait, lines: make(chan lineResult)}
}

// Recognize implements [speech.Recognizer].
func (r *Recognizer) Recognize(ctx context.Context) (string, error) {
	r.once.Do(func() { go r.pump() })

	var timeout <-chan time.Time
	if r.maxWait > 0 {
		t := time.NewTimer(r.maxWait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timeout:
		return "", nil
	case res, ok := <-r.lines:
		if !ok {
			return "", ErrClosed
		}
		if res.err != nil {
			return "", fmt.Errorf("console: read: %w", res.err)
		}
		return strings.TrimSpace(res.text), nil
	}
}

// pump reads lines for the lifetime of the process; the unbuffered channel
// holds at most one typed line back until the next Recognize.
func (r *Recognizer) pump() {
	defer close(r.lines)
	for {
		line, err := r.reader.Readline()
		switch {
		case err == nil:
			r.lines <- lineResult{text: line}
		case isInterrupt(err):
			r.lines <- lineResult{}
		case errors.Is(err, io.EOF):
			return
		default:
			r.lines <- lineResult{err: err}
			return
		}
	}
}

var _ speech.Recognizer = (*Recognizer)(nil)
