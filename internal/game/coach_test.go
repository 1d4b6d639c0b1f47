package game_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/MrWong99/guessbot/internal/game"
	oraclemock "github.com/MrWong99/guessbot/internal/oracle/mock"
	presentmock "github.com/MrWong99/guessbot/internal/present/mock"
)

func TestCoach_Score(t *testing.T) {
	t.Parallel()
	coach, err := game.NewCoach(&oraclemock.Oracle{}, &presentmock.Presenter{}, []string{"Is", "it", "a", "cat"})
	if err != nil {
		t.Fatalf("NewCoach: %v", err)
	}
	tests := []struct {
		text string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"is it a cat", 100},
		{"Is it a CAT?", 100},
		{"\"is\" it... een kat!", 50},
		{"is het een kat", 25},
		{"hallo", 0},
		{"<is> it $a cat~", 100},
		{"|is| +it+ ^a^ `cat`", 100},
		{"“is it a cat…”", 100},
	}
	for _, tt := range tests {
		if got := coach.Score(tt.text); got != tt.want {
			t.Errorf("Score(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestCoach_PraiseStreak(t *testing.T) {
	t.Parallel()
	orc := &oraclemock.Oracle{}
	pres := &presentmock.Presenter{}
	coach, err := game.NewCoach(orc, pres, vocabulary)
	if err != nil {
		t.Fatalf("NewCoach: %v", err)
	}

	var praisedAt []int
	for turn := 1; turn <= 8; turn++ {
		before := orc.Count("generate_free_text")
		example, err := coach.Review(context.Background(), "is it a cat")
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if example != "" {
			t.Fatalf("turn %d: example = %q, want none", turn, example)
		}
		if orc.Count("generate_free_text") > before {
			praisedAt = append(praisedAt, turn)
		}
	}
	if want := []int{1, 4, 7}; !slices.Equal(praisedAt, want) {
		t.Errorf("praised on turns %v, want %v", praisedAt, want)
	}
}

func TestCoach_PoorTurnResetsStreak(t *testing.T) {
	t.Parallel()
	orc := &oraclemock.Oracle{}
	coach, err := game.NewCoach(orc, &presentmock.Presenter{}, vocabulary)
	if err != nil {
		t.Fatalf("NewCoach: %v", err)
	}
	ctx := context.Background()

	if _, err := coach.Review(ctx, "is it a cat"); err != nil { // praise
		t.Fatal(err)
	}
	if _, err := coach.Review(ctx, "is it a dog"); err != nil { // streak 2
		t.Fatal(err)
	}
	example, err := coach.Review(ctx, "het is een hond")
	if err != nil {
		t.Fatal(err)
	}
	if example != "Is it an animal?" {
		t.Errorf("example = %q", example)
	}
	before := orc.Count("generate_free_text")
	if _, err := coach.Review(ctx, "is it big"); err != nil {
		t.Fatal(err)
	}
	if orc.Count("generate_free_text") != before+1 {
		t.Error("good turn after a poor one was not praised")
	}
	var prompts []string
	for _, c := range orc.Calls() {
		if c.Op == "generate_free_text" {
			prompts = append(prompts, c.Args[0])
		}
	}
	if len(prompts) != 3 || !strings.Contains(prompts[1], "room for improvement") {
		t.Errorf("feedback prompts = %q", prompts)
	}
}

func TestCoach_Options(t *testing.T) {
	t.Parallel()
	orc := &oraclemock.Oracle{}
	coach, err := game.NewCoach(orc, &presentmock.Presenter{}, vocabulary,
		game.WithPraiseThreshold(20), game.WithPraiseEvery(1))
	if err != nil {
		t.Fatalf("NewCoach: %v", err)
	}
	for range 3 {
		if ex, err := coach.Review(context.Background(), "is het een hond"); err != nil || ex != "" {
			t.Fatalf("Review = %q, %v", ex, err)
		}
	}
	if n := orc.Count("generate_free_text"); n != 3 {
		t.Errorf("praise count = %d, want 3", n)
	}

	if _, err := game.NewCoach(orc, &presentmock.Presenter{}, vocabulary, game.WithPraiseEvery(0)); err == nil {
		t.Error("zero interval: expected error")
	}
	if _, err := game.NewCoach(orc, &presentmock.Presenter{}, nil); err == nil {
		t.Error("empty vocabulary: expected error")
	}
}

func TestLoadWords(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(a, []byte("cat\n\n dog \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("fish\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := game.LoadWords(a, b)
	if err != nil {
		t.Fatalf("LoadWords: %v", err)
	}
	if want := []string{"cat", "dog", "fish"}; !slices.Equal(got, want) {
		t.Errorf("LoadWords = %q, want %q", got, want)
	}
	if _, err := game.LoadWords(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("missing file: expected error")
	}
}
