package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrWong99/guessbot/internal/present"
)

var (
	hostLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	englishBody = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE"))
	dutchBody = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

// Presenter prints host lines. A positive pace per word simulates speaking
// time so the console dialogue keeps the rhythm of the voice version.
type Presenter struct {
	mu    sync.Mutex
	out   io.Writer
	width int
	pace  time.Duration
}

// NewPresenter creates a Presenter writing to out. width wraps long lines
// (0 disables wrapping).
func NewPresenter(out io.Writer, width int, pace time.Duration) *Presenter {
	return &Presenter{out: out, width: width, pace: pace}
}

// Speak implements [present.Presenter].
func (p *Presenter) Speak(ctx context.Context, text string, lang present.Language) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	label := hostLabel.Render("host")
	body := englishBody
	if lang == present.Dutch {
		label = hostLabel.Render("host [nl]")
		body = dutchBody
	}
	if p.width > 0 {
		body = body.Width(max(20, p.width-lipgloss.Width(label)-1))
	}

	p.mu.Lock()
	_, err := fmt.Fprintln(p.out, lipgloss.JoinHorizontal(lipgloss.Top, label, " ", body.Render(text)))
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("console: write: %w", err)
	}

	if p.pace <= 0 {
		return nil
	}
	t := time.NewTimer(time.Duration(len(strings.Fields(text))) * p.pace)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ present.Presenter = (*Presenter)(nil)
