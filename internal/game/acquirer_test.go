package game_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/MrWong99/guessbot/internal/game"
	oraclemock "github.com/MrWong99/guessbot/internal/oracle/mock"
	"github.com/MrWong99/guessbot/internal/present"
	presentmock "github.com/MrWong99/guessbot/internal/present/mock"
	speechmock "github.com/MrWong99/guessbot/internal/speech/mock"
)

var vocabulary = []string{"is", "it", "an", "animal", "a", "cat", "dog", "the", "big", "yes", "no"}

func newAcquirer(t *testing.T, utterances []string, withCoach bool, opts ...game.AcquirerOption) (*game.Acquirer, *oraclemock.Oracle, *speechmock.Recognizer, *presentmock.Presenter) {
	t.Helper()
	orc := &oraclemock.Oracle{}
	rec := &speechmock.Recognizer{Utterances: utterances}
	pres := &presentmock.Presenter{}
	intent, err := game.NewIntentClassifier(orc, pres)
	if err != nil {
		t.Fatalf("NewIntentClassifier: %v", err)
	}
	if withCoach {
		coach, err := game.NewCoach(orc, pres, vocabulary)
		if err != nil {
			t.Fatalf("NewCoach: %v", err)
		}
		opts = append(opts, game.WithCoach(coach))
	}
	acq, err := game.NewAcquirer(rec, pres, intent, opts...)
	if err != nil {
		t.Fatalf("NewAcquirer: %v", err)
	}
	return acq, orc, rec, pres
}

func TestAcquire_SilenceRetries(t *testing.T) {
	t.Parallel()
	acq, _, rec, pres := newAcquirer(t, []string{"", "", "is it a dog"}, false)

	got, err := acq.Acquire(context.Background(), "Go!", "Again?", present.English, false)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != "is it a dog" {
		t.Errorf("Acquire = %q", got)
	}
	if want := []string{"Go!", "Again?", "Again?"}; !slices.Equal(pres.Texts(), want) {
		t.Errorf("spoken = %q, want %q", pres.Texts(), want)
	}
	if rec.Calls() != 3 {
		t.Errorf("recognize calls = %d, want 3", rec.Calls())
	}
}

func TestAcquire_EmptyPromptNotSpoken(t *testing.T) {
	t.Parallel()
	acq, _, _, pres := newAcquirer(t, []string{"dog"}, false)

	if _, err := acq.Acquire(context.Background(), "", "Again?", present.English, false); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if n := len(pres.Lines()); n != 0 {
		t.Errorf("spoken %d lines, want 0", n)
	}
}

func TestAcquire_PresenceCheck(t *testing.T) {
	t.Parallel()
	acq, _, _, pres := newAcquirer(t, []string{"", "", "", "ja", "", "", "dog"}, false)

	got, err := acq.Acquire(context.Background(), "", "Again?", present.English, false)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != "dog" {
		t.Errorf("Acquire = %q, want dog", got)
	}
	want := []string{
		"Again?", "Again?",
		"Hallo, ben je er nog?", "Oh leuk, je bent er nog!", "Again?",
		"Again?", "Again?",
	}
	if !slices.Equal(pres.Texts(), want) {
		t.Errorf("spoken = %q, want %q", pres.Texts(), want)
	}
}

func TestAcquire_SilenceThresholdOption(t *testing.T) {
	t.Parallel()
	acq, _, rec, _ := newAcquirer(t, []string{"", ""}, false, game.WithSilenceThreshold(1))

	_, err := acq.Acquire(context.Background(), "", "Again?", present.English, false)
	if !errors.Is(err, game.ErrSessionTerminated) {
		t.Fatalf("Acquire error = %v, want ErrSessionTerminated", err)
	}
	if rec.Calls() != 2 {
		t.Errorf("recognize calls = %d, want 2", rec.Calls())
	}
}

func TestAcquire_RecognizerError(t *testing.T) {
	t.Parallel()
	acq, _, rec, _ := newAcquirer(t, nil, false)
	boom := errors.New("mic unplugged")
	rec.Err = boom

	if _, err := acq.Acquire(context.Background(), "", "", present.English, false); !errors.Is(err, boom) {
		t.Fatalf("Acquire error = %v, want %v", err, boom)
	}
}

func TestAcquire_QuitConfirmationSilence(t *testing.T) {
	t.Parallel()
	acq, _, _, pres := newAcquirer(t, []string{"stop", "", "", "", ""}, false)

	_, err := acq.Acquire(context.Background(), "", "Again?", present.English, false)
	if !errors.Is(err, game.ErrSessionTerminated) {
		t.Fatalf("Acquire error = %v, want ErrSessionTerminated", err)
	}
	if n := pres.Count("Do you want to stop playing? Say 'yes' or 'no'."); n != 2 {
		t.Errorf("confirmation retries = %d, want 2", n)
	}
}

func TestAcquire_QuitAnswerNotCheckedForQuit(t *testing.T) {
	t.Parallel()
	// "quit" as the confirmation answer must not open a second confirmation.
	acq, orc, _, _ := newAcquirer(t, []string{"bye", "quit", "dog"}, false)

	got, err := acq.Acquire(context.Background(), "", "Again?", present.English, false)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != "dog" {
		t.Errorf("Acquire = %q, want dog", got)
	}
	if n := orc.Count("classify_quit_intent"); n != 2 {
		t.Errorf("quit checks = %d, want 2", n)
	}
}

func TestAcquire_FeedbackWithoutCoachIsIgnored(t *testing.T) {
	t.Parallel()
	acq, orc, _, _ := newAcquirer(t, []string{"het is een hond"}, false)

	got, err := acq.Acquire(context.Background(), "", "", present.English, true)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != "het is een hond" {
		t.Errorf("Acquire = %q", got)
	}
	if n := orc.Count("rephrase_for_learner"); n != 0 {
		t.Errorf("rephrase calls = %d, want 0", n)
	}
}

func TestAcquire_RepeatAfterMe(t *testing.T) {
	t.Parallel()
	acq, orc, _, pres := newAcquirer(t, []string{"is het een dier", "", "is it an animal"}, true)
	orc.FreeTextFunc = func(string, string) string { return "You can do it, I will help you." }

	got, err := acq.Acquire(context.Background(), "", "Again?", present.English, true)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != "is it an animal" {
		t.Errorf("Acquire = %q, want the repeated sentence", got)
	}
	want := []string{
		"You can do it, I will help you.",
		"Now, try saying: 'Is it an animal?'.",
		"I couldn't hear you. Please try saying: 'Is it an animal?'.",
	}
	if !slices.Equal(pres.Texts(), want) {
		t.Errorf("spoken = %q, want %q", pres.Texts(), want)
	}
}

func TestAcquire_FeedbackDisabled(t *testing.T) {
	t.Parallel()
	acq, orc, _, _ := newAcquirer(t, []string{"is het een dier"}, true)

	got, err := acq.Acquire(context.Background(), "", "", present.English, false)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != "is het een dier" {
		t.Errorf("Acquire = %q", got)
	}
	if n := orc.Count("generate_free_text"); n != 0 {
		t.Errorf("feedback generated %d times, want 0", n)
	}
}

func TestAskYesNo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		answer string
		want   bool
	}{
		{"yes", true},
		{"ja hoor", true},
		{"no", false},
		{"maybe later", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			t.Parallel()
			acq, _, _, _ := newAcquirer(t, []string{tt.answer}, false)
			got, err := acq.AskYesNo(context.Background(), "Hint?", "Hint? yes or no")
			if err != nil {
				t.Fatalf("AskYesNo: %v", err)
			}
			if got != tt.want {
				t.Errorf("AskYesNo(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestNewAcquirer_Validation(t *testing.T) {
	t.Parallel()
	orc := &oraclemock.Oracle{}
	pres := &presentmock.Presenter{}
	intent, _ := game.NewIntentClassifier(orc, pres)
	rec := &speechmock.Recognizer{}

	if _, err := game.NewAcquirer(nil, pres, intent); err == nil {
		t.Error("nil recognizer: expected error")
	}
	if _, err := game.NewAcquirer(rec, nil, intent); err == nil {
		t.Error("nil presenter: expected error")
	}
	if _, err := game.NewAcquirer(rec, pres, nil); err == nil {
		t.Error("nil intent: expected error")
	}
	if _, err := game.NewAcquirer(rec, pres, intent, game.WithSilenceThreshold(0)); err == nil {
		t.Error("zero threshold: expected error")
	}
	if _, err := game.NewIntentClassifier(nil, pres); err == nil {
		t.Error("nil oracle: expected error")
	}
}
