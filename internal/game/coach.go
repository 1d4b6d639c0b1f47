package game

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/MrWong99/guessbot/internal/oracle"
	"github.com/MrWong99/guessbot/internal/present"
)

// Coaching defaults.
const (
	DefaultPraiseThreshold = 70.0
	DefaultPraiseEvery     = 3
)

// Coach scores how much of an utterance is English and reacts to it:
// occasional praise when the player does well, encouragement and a
// corrected example sentence otherwise.
//
// A Coach keeps a praise streak and is not safe for concurrent use. Each
// session owns its own.
type Coach struct {
	words     map[string]struct{}
	oracle    oracle.Oracle
	presenter present.Presenter
	threshold float64
	every     int

	streak int
}

// CoachOption configures a [Coach].
type CoachOption func(*Coach)

// WithPraiseThreshold sets the English percentage at or above which the
// player is doing well.
func WithPraiseThreshold(pct float64) CoachOption {
	return func(c *Coach) { c.threshold = pct }
}

// WithPraiseEvery praises only every n-th consecutive good turn.
func WithPraiseEvery(n int) CoachOption {
	return func(c *Coach) { c.every = n }
}

// NewCoach returns a Coach that treats words as the English vocabulary.
func NewCoach(orc oracle.Oracle, pres present.Presenter, words []string, opts ...CoachOption) (*Coach, error) {
	if orc == nil {
		return nil, errors.New("game: coach: oracle must not be nil")
	}
	if pres == nil {
		return nil, errors.New("game: coach: presenter must not be nil")
	}
	if len(words) == 0 {
		return nil, errors.New("game: coach: word list must not be empty")
	}
	c := &Coach{
		words:     make(map[string]struct{}, len(words)),
		oracle:    orc,
		presenter: pres,
		threshold: DefaultPraiseThreshold,
		every:     DefaultPraiseEvery,
	}
	for _, w := range words {
		c.words[strings.ToLower(w)] = struct{}{}
	}
	for _, o := range opts {
		o(c)
	}
	if c.every < 1 {
		return nil, fmt.Errorf("game: coach: praise interval must be positive, got %d", c.every)
	}
	return c, nil
}

// asciiPunct is every ASCII punctuation and symbol character.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// isWordEdge reports whether r is trimmed from the ends of a word before
// lookup: ASCII punctuation and symbols plus any Unicode punctuation, such
// as curly quotes and ellipses from a transcriber.
func isWordEdge(r rune) bool {
	return strings.ContainsRune(asciiPunct, r) || unicode.IsPunct(r)
}

// Score returns the percentage of words in text found in the vocabulary.
// Punctuation and symbols around each word are ignored. Empty text scores 0.
func (c *Coach) Score(text string) float64 {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return 0
	}
	var known int
	for _, f := range fields {
		if _, ok := c.words[strings.TrimFunc(f, isWordEdge)]; ok {
			known++
		}
	}
	return float64(known) / float64(len(fields)) * 100
}

// Review reacts to text. When the player should practise, it returns a
// corrected example sentence for them to repeat; otherwise it returns "".
func (c *Coach) Review(ctx context.Context, text string) (string, error) {
	if c.Score(text) >= c.threshold {
		if c.streak == c.every {
			c.streak = 0
		}
		if c.streak == 0 {
			if err := c.say(ctx, praisePrompt); err != nil {
				return "", err
			}
		}
		c.streak++
		return "", nil
	}

	c.streak = 0
	if err := c.say(ctx, encouragePrompt); err != nil {
		return "", err
	}
	example, err := c.oracle.RephraseForLearner(ctx, text)
	if err != nil {
		return "", fmt.Errorf("game: rephrase: %w", err)
	}
	return strings.TrimSpace(example), nil
}

func (c *Coach) say(ctx context.Context, prompt string) error {
	msg, err := c.oracle.GenerateFreeText(ctx, prompt, string(present.English))
	if err != nil {
		return fmt.Errorf("game: generate feedback: %w", err)
	}
	if err := c.presenter.Speak(ctx, msg, present.English); err != nil {
		return fmt.Errorf("game: speak: %w", err)
	}
	return nil
}

// ReadWords reads one word per line from r. Blank lines are skipped.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("game: read words: %w", err)
	}
	return words, nil
}

// LoadWords reads and merges the word lists at paths.
func LoadWords(paths ...string) ([]string, error) {
	var all []string
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("game: load words: %w", err)
		}
		words, err := ReadWords(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("game: load words %s: %w", p, err)
		}
		all = append(all, words...)
	}
	return all, nil
}
