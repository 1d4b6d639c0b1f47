// Package mock provides a recording present.Presenter.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/guessbot/internal/present"
)

// Line is one recorded Speak call.
type Line struct {
	Text string
	Lang present.Language
}

// Presenter records every line it is asked to speak.
type Presenter struct {
	mu sync.Mutex

	// Err, if non-nil, is returned by Speak after recording the line.
	Err error

	lines []Line
}

// Speak implements present.Presenter.
func (p *Presenter) Speak(_ context.Context, text string, lang present.Language) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if text == "" {
		return nil
	}
	p.lines = append(p.lines, Line{Text: text, Lang: lang})
	return p.Err
}

// Lines returns a copy of every recorded line.
func (p *Presenter) Lines() []Line {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Line, len(p.lines))
	copy(out, p.lines)
	return out
}

// Texts returns the text of every recorded line.
func (p *Presenter) Texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.lines))
	for i, l := range p.lines {
		out[i] = l.Text
	}
	return out
}

// Count returns how often text was spoken.
func (p *Presenter) Count(text string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var n int
	for _, l := range p.lines {
		if l.Text == text {
			n++
		}
	}
	return n
}

var _ present.Presenter = (*Presenter)(nil)
