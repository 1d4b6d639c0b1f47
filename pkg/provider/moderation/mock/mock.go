// Package mock provides a test double for moderation.Checker.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/MrWong99/guessbot/pkg/provider/moderation"
)

// Checker is a mock moderation.Checker. Text containing any entry of
// Blocklist (case-insensitive) is flagged with that entry as a match.
type Checker struct {
	mu sync.Mutex

	// Blocklist lists words that cause a flag.
	Blocklist []string

	// Err, if non-nil, is returned by Check.
	Err error

	// Checked records every text passed to Check.
	Checked []string
}

// Check implements moderation.Checker.
func (m *Checker) Check(_ context.Context, text, _ string) (moderation.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Checked = append(m.Checked, text)
	if m.Err != nil {
		return moderation.Result{}, m.Err
	}
	var res moderation.Result
	lower := strings.ToLower(text)
	for _, w := range m.Blocklist {
		if strings.Contains(lower, strings.ToLower(w)) {
			res.Flagged = true
			res.Matches = append(res.Matches, w)
		}
	}
	return res, nil
}

// Calls returns the number of Check invocations.
func (m *Checker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Checked)
}

var _ moderation.Checker = (*Checker)(nil)
