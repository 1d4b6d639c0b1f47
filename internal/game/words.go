package game

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/MrWong99/guessbot/internal/oracle"
	"github.com/MrWong99/guessbot/internal/present"
)

// Word is a secret word. Properties, when set, are the aspects of the word
// hints should focus on.
type Word struct {
	Text       string
	Properties []string
}

// WordSource hands out secret words for a session.
type WordSource interface {
	// Next returns the next secret word or an error wrapping [ErrNoWords]
	// when the supply is used up.
	Next(ctx context.Context) (Word, error)

	// Finished reports how the round for w ended.
	Finished(w Word, outcome Outcome)
}

// repeats holds words the player did not find. Each word comes back once.
type repeats struct {
	queue []Word
	seen  map[string]struct{}
}

func (r *repeats) add(w Word) {
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	key := strings.ToLower(w.Text)
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	r.queue = append(r.queue, w)
}

func (r *repeats) pop() (Word, bool) {
	if len(r.queue) == 0 {
		return Word{}, false
	}
	w := r.queue[0]
	r.queue = r.queue[1:]
	return w, true
}

// finished queues w for another round unless the player found it.
func (r *repeats) finished(w Word, outcome Outcome) {
	if outcome != OutcomeWon {
		r.add(w)
	}
}

// WordQueue serves a fixed word list in shuffled order. Words revealed by
// giving up or running out of time are played once more before the
// remaining fresh words.
type WordQueue struct {
	fresh   []Word
	repeats repeats
}

var _ WordSource = (*WordQueue)(nil)

// NewWordQueue shuffles words with rng. Duplicates (ignoring case) and
// blank entries are dropped.
func NewWordQueue(words []Word, rng *rand.Rand) *WordQueue {
	seen := make(map[string]struct{}, len(words))
	fresh := make([]Word, 0, len(words))
	for _, w := range words {
		w.Text = strings.TrimSpace(w.Text)
		key := strings.ToLower(w.Text)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, w)
	}
	rng.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	return &WordQueue{fresh: fresh}
}

// StudyWords converts a word to hint-property map into words in a stable
// order.
func StudyWords(m map[string][]string) []Word {
	words := make([]Word, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		words = append(words, Word{Text: k, Properties: slices.Clone(m[k])})
	}
	return words
}

// PlainWords converts texts into words without properties.
func PlainWords(texts []string) []Word {
	words := make([]Word, len(texts))
	for i, t := range texts {
		words[i] = Word{Text: t}
	}
	return words
}

// Next implements [WordSource].
func (q *WordQueue) Next(context.Context) (Word, error) {
	if w, ok := q.repeats.pop(); ok {
		return w, nil
	}
	if len(q.fresh) == 0 {
		return Word{}, ErrNoWords
	}
	w := q.fresh[0]
	q.fresh = q.fresh[1:]
	return w, nil
}

// Finished implements [WordSource].
func (q *WordQueue) Finished(w Word, outcome Outcome) { q.repeats.finished(w, outcome) }

// Len returns the number of words still to be played.
func (q *WordQueue) Len() int { return len(q.fresh) + len(q.repeats.queue) }

// maxTopicAttempts bounds how often the oracle is asked for an unused word.
const maxTopicAttempts = 3

// TopicSource lets the oracle choose secret words from study topics. Words
// are never chosen twice in a session.
type TopicSource struct {
	oracle  oracle.Oracle
	topics  []string
	rng     *rand.Rand
	used    []string
	repeats repeats
}

var _ WordSource = (*TopicSource)(nil)

// NewTopicSource returns a TopicSource drawing from topics.
func NewTopicSource(orc oracle.Oracle, topics []string, rng *rand.Rand) (*TopicSource, error) {
	if orc == nil {
		return nil, errors.New("game: topic source: oracle must not be nil")
	}
	if len(topics) == 0 {
		return nil, errors.New("game: topic source: no topics")
	}
	return &TopicSource{oracle: orc, topics: slices.Clone(topics), rng: rng}, nil
}

// Next implements [WordSource].
func (s *TopicSource) Next(ctx context.Context) (Word, error) {
	if w, ok := s.repeats.pop(); ok {
		return w, nil
	}
	for range maxTopicAttempts {
		topic := s.topics[s.rng.IntN(len(s.topics))]
		prompt := fmt.Sprintf(topicPrompt, topic)
		if len(s.used) > 0 {
			prompt += fmt.Sprintf(topicAvoidFmt, strings.Join(s.used, ", "))
		}
		text, err := s.oracle.GenerateFreeText(ctx, prompt, string(present.English))
		if err != nil {
			return Word{}, fmt.Errorf("game: choose topic word: %w", err)
		}
		word := oracle.NormalizeLabel(text)
		if word == "" || slices.Contains(s.used, word) {
			continue
		}
		s.used = append(s.used, word)
		return Word{Text: word, Properties: []string{topic}}, nil
	}
	return Word{}, fmt.Errorf("game: no new word after %d attempts: %w", maxTopicAttempts, ErrNoWords)
}

// Finished implements [WordSource].
func (s *TopicSource) Finished(w Word, outcome Outcome) { s.repeats.finished(w, outcome) }
