// Package present delivers the host's lines to the player. A [Presenter]
// returns only once the line has been fully played, so the next prompt
// never overlaps the previous one.
package present

import "context"

// Language is the ISO-639-1 code of a spoken line.
type Language string

const (
	English Language = "en"
	Dutch   Language = "nl"
)

// Presenter speaks one line to the player.
type Presenter interface {
	// Speak blocks until text has been delivered in lang. Empty text is a
	// no-op.
	Speak(ctx context.Context, text string, lang Language) error
}
