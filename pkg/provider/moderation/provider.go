// Package moderation defines the Checker interface used to screen generated
// text before it is spoken to a child.
package moderation

import "context"

// Result is the outcome of one moderation check.
type Result struct {
	// Flagged reports whether the text must not be used.
	Flagged bool

	// Matches lists the offending words or phrases when the backend reports
	// them. It may be empty even when Flagged is true.
	Matches []string

	// Categories lists the policy categories that triggered the flag, for
	// backends that classify rather than match words.
	Categories []string
}

// Checker screens text for inappropriate content.
type Checker interface {
	// Check screens text written in lang (ISO-639-1).
	Check(ctx context.Context, text, lang string) (Result, error)
}
