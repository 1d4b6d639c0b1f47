// Package mock provides a deterministic oracle.Oracle for game tests.
//
// Every capability has a default rule simple enough to script a dialogue by
// choosing what the child says:
//
//   - yes/no and intents: the first word decides ("yes", "ja", "bye", "hint")
//   - question vs guess: text ending in "?" or starting with a question verb
//   - correctness: the guess contains the secret word
//
// Each rule can be replaced with a func field.
package mock

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MrWong99/guessbot/internal/oracle"
)

// Call records one oracle invocation.
type Call struct {
	Op   string
	Args []string
}

var (
	affirmatives  = []string{"yes", "ja", "yeah", "yep", "sure", "okay", "ok"}
	quitWords     = []string{"bye", "goodbye", "stop", "stoppen", "quit", "doei"}
	hintWords     = []string{"hint", "help", "hulp"}
	questionVerbs = []string{"is", "are", "does", "do", "can", "has", "have", "was", "will", "could"}
)

// Oracle is a scriptable oracle.Oracle. The zero value is ready to use.
type Oracle struct {
	mu sync.Mutex

	YesNoFunc           func(text string) oracle.YesNo
	QuestionOrGuessFunc func(text, secretWord string) oracle.TurnKind
	CorrectFunc         func(secretWord, guess string) oracle.Verdict
	AnswerFunc          func(secretWord, question string) string
	HintFunc            func(secretWord, focus string) string
	ExplanationFunc     func(secretWord string) string
	QuitIntentFunc      func(text string) oracle.YesNo
	HintIntentFunc      func(text string) oracle.YesNo
	RephraseFunc        func(text string) string
	FreeTextFunc        func(prompt, lang string) string

	// Err, if non-nil, is returned by every call.
	Err error

	// ErrOn maps an operation name to an error returned only by that op.
	ErrOn map[string]error

	calls []Call
}

// Calls returns a copy of every recorded invocation.
func (m *Oracle) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Count returns how often op was invoked.
func (m *Oracle) Count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (m *Oracle) record(op string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: op, Args: args})
	if m.Err != nil {
		return m.Err
	}
	return m.ErrOn[op]
}

func firstWord(text string) string {
	return oracle.NormalizeLabel(text)
}

func hasWord(text string, words []string) bool {
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if slices.Contains(words, strings.Trim(tok, ".,!?'\"")) {
			return true
		}
	}
	return false
}

func (m *Oracle) ClassifyYesNo(_ context.Context, text string) (oracle.YesNo, error) {
	if err := m.record("classify_yes_no", text); err != nil {
		return oracle.No, err
	}
	if m.YesNoFunc != nil {
		return m.YesNoFunc(text), nil
	}
	if slices.Contains(affirmatives, firstWord(text)) {
		return oracle.Yes, nil
	}
	return oracle.No, nil
}

func (m *Oracle) ClassifyQuestionOrGuess(_ context.Context, text, secretWord string) (oracle.TurnKind, error) {
	if err := m.record("classify_question_or_guess", text, secretWord); err != nil {
		return oracle.Guess, err
	}
	if m.QuestionOrGuessFunc != nil {
		return m.QuestionOrGuessFunc(text, secretWord), nil
	}
	if strings.HasSuffix(strings.TrimSpace(text), "?") || slices.Contains(questionVerbs, firstWord(text)) {
		return oracle.Question, nil
	}
	return oracle.Guess, nil
}

func (m *Oracle) ClassifyCorrect(_ context.Context, secretWord, guess string) (oracle.Verdict, error) {
	if err := m.record("classify_correct", secretWord, guess); err != nil {
		return oracle.Incorrect, err
	}
	if m.CorrectFunc != nil {
		return m.CorrectFunc(secretWord, guess), nil
	}
	if hasWord(guess, []string{strings.ToLower(secretWord)}) {
		return oracle.Correct, nil
	}
	return oracle.Incorrect, nil
}

func (m *Oracle) AnswerQuestion(_ context.Context, secretWord, question string) (string, error) {
	if err := m.record("answer_question", secretWord, question); err != nil {
		return "", err
	}
	if m.AnswerFunc != nil {
		return m.AnswerFunc(secretWord, question), nil
	}
	return "Yes, that is right.", nil
}

func (m *Oracle) GenerateHint(_ context.Context, secretWord, focus string) (string, error) {
	if err := m.record("generate_hint", secretWord, focus); err != nil {
		return "", err
	}
	if m.HintFunc != nil {
		return m.HintFunc(secretWord, focus), nil
	}
	return "It is something you know well.", nil
}

func (m *Oracle) GenerateExplanation(_ context.Context, secretWord string) (string, error) {
	if err := m.record("generate_explanation", secretWord); err != nil {
		return "", err
	}
	if m.ExplanationFunc != nil {
		return m.ExplanationFunc(secretWord), nil
	}
	return fmt.Sprintf("A %s is a thing you can learn about.", secretWord), nil
}

func (m *Oracle) ClassifyQuitIntent(_ context.Context, text string) (oracle.YesNo, error) {
	if err := m.record("classify_quit_intent", text); err != nil {
		return oracle.No, err
	}
	if m.QuitIntentFunc != nil {
		return m.QuitIntentFunc(text), nil
	}
	if hasWord(text, quitWords) {
		return oracle.Yes, nil
	}
	return oracle.No, nil
}

func (m *Oracle) ClassifyHintIntent(_ context.Context, text string) (oracle.YesNo, error) {
	if err := m.record("classify_hint_intent", text); err != nil {
		return oracle.No, err
	}
	if m.HintIntentFunc != nil {
		return m.HintIntentFunc(text), nil
	}
	if hasWord(text, hintWords) {
		return oracle.Yes, nil
	}
	return oracle.No, nil
}

func (m *Oracle) RephraseForLearner(_ context.Context, text string) (string, error) {
	if err := m.record("rephrase_for_learner", text); err != nil {
		return "", err
	}
	if m.RephraseFunc != nil {
		return m.RephraseFunc(text), nil
	}
	return "Is it an animal?", nil
}

func (m *Oracle) GenerateFreeText(_ context.Context, prompt, lang string) (string, error) {
	if err := m.record("generate_free_text", prompt, lang); err != nil {
		return "", err
	}
	if m.FreeTextFunc != nil {
		return m.FreeTextFunc(prompt, lang), nil
	}
	return "Great job!", nil
}

var _ oracle.Oracle = (*Oracle)(nil)
