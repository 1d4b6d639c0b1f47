package game_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/MrWong99/guessbot/internal/game"
	oraclemock "github.com/MrWong99/guessbot/internal/oracle/mock"
)

func seeded() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) }

func drain(t *testing.T, src game.WordSource) []string {
	t.Helper()
	var out []string
	for {
		w, err := src.Next(context.Background())
		if errors.Is(err, game.ErrNoWords) {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, w.Text)
		src.Finished(w, game.OutcomeWon)
	}
}

func TestWordQueue_ShufflesEveryWordOnce(t *testing.T) {
	t.Parallel()
	in := []string{"cat", "dog", "fish", "bird", "cow"}
	got := drain(t, game.NewWordQueue(game.PlainWords(in), seeded()))
	slices.Sort(got)
	want := slices.Clone(in)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("played %q, want %q", got, want)
	}
}

func TestWordQueue_SameSeedSameOrder(t *testing.T) {
	t.Parallel()
	in := game.PlainWords([]string{"cat", "dog", "fish", "bird", "cow", "pig"})
	a := drain(t, game.NewWordQueue(in, seeded()))
	b := drain(t, game.NewWordQueue(in, seeded()))
	if !slices.Equal(a, b) {
		t.Errorf("orders differ: %q vs %q", a, b)
	}
}

func TestWordQueue_RepeatsMissedWordsOnce(t *testing.T) {
	t.Parallel()
	q := game.NewWordQueue(game.PlainWords([]string{"cat", "dog", "fish"}), seeded())
	ctx := context.Background()

	first, err := q.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	q.Finished(first, game.OutcomeTimedOut)
	again, err := q.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.Text != first.Text {
		t.Fatalf("next = %q, want the missed word %q", again.Text, first.Text)
	}
	q.Finished(again, game.OutcomeGaveUp)

	rest := drain(t, q)
	if len(rest) != 2 || slices.Contains(rest, first.Text) {
		t.Errorf("remaining = %q, want the two other words only", rest)
	}
}

func TestStudyWords(t *testing.T) {
	t.Parallel()
	words := game.StudyWords(map[string][]string{
		"dog": {"bark"},
		"cat": {"pet", "whiskers", "paw"},
	})
	if len(words) != 2 || words[0].Text != "cat" || words[1].Text != "dog" {
		t.Fatalf("StudyWords = %+v", words)
	}
	if !slices.Equal(words[0].Properties, []string{"pet", "whiskers", "paw"}) {
		t.Errorf("properties = %q", words[0].Properties)
	}
}

func TestTopicSource(t *testing.T) {
	t.Parallel()
	answers := []string{"Banana.", "banana", "Apple"}
	orc := &oraclemock.Oracle{}
	orc.FreeTextFunc = func(string, string) string {
		a := answers[0]
		answers = answers[1:]
		return a
	}
	src, err := game.NewTopicSource(orc, []string{"fruits"}, seeded())
	if err != nil {
		t.Fatalf("NewTopicSource: %v", err)
	}
	ctx := context.Background()

	w1, err := src.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := src.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if w1.Text != "banana" || w2.Text != "apple" {
		t.Errorf("words = %q, %q, want banana, apple", w1.Text, w2.Text)
	}
	if !slices.Equal(w1.Properties, []string{"fruits"}) {
		t.Errorf("properties = %q", w1.Properties)
	}
	calls := orc.Calls()
	if len(calls) != 3 {
		t.Fatalf("oracle calls = %d, want 3", len(calls))
	}
	if !strings.Contains(calls[0].Args[0], "'fruits'") || strings.Contains(calls[0].Args[0], "Do not choose") {
		t.Errorf("first prompt = %q", calls[0].Args[0])
	}
	if !strings.Contains(calls[2].Args[0], "Do not choose any of these words: banana.") {
		t.Errorf("third prompt = %q", calls[2].Args[0])
	}

	src.Finished(w2, game.OutcomeTimedOut)
	w3, err := src.Next(ctx)
	if err != nil || w3.Text != "apple" {
		t.Errorf("Next after a missed word = %q, %v, want apple", w3.Text, err)
	}
}

func TestTopicSource_GivesUpOnDuplicates(t *testing.T) {
	t.Parallel()
	orc := &oraclemock.Oracle{FreeTextFunc: func(string, string) string { return "apple" }}
	src, err := game.NewTopicSource(orc, []string{"fruits"}, seeded())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Next(context.Background()); !errors.Is(err, game.ErrNoWords) {
		t.Errorf("Next error = %v, want ErrNoWords", err)
	}
	if _, err := game.NewTopicSource(orc, nil, seeded()); err == nil {
		t.Error("no topics: expected error")
	}
}
