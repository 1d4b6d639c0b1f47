package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrWong99/guessbot/internal/oracle"
	"github.com/MrWong99/guessbot/internal/present"
)

// IntentClassifier recognizes the two requests a player can make at any
// point of a round: stopping the game and asking for a hint.
//
// Both checks fail open. Only an explicit "yes" from the oracle counts as
// an intent.
type IntentClassifier struct {
	oracle    oracle.Oracle
	presenter present.Presenter
}

// NewIntentClassifier returns an IntentClassifier asking orc and speaking
// through pres.
func NewIntentClassifier(orc oracle.Oracle, pres present.Presenter) (*IntentClassifier, error) {
	if orc == nil {
		return nil, errors.New("game: intent classifier: oracle must not be nil")
	}
	if pres == nil {
		return nil, errors.New("game: intent classifier: presenter must not be nil")
	}
	return &IntentClassifier{oracle: orc, presenter: pres}, nil
}

// IsYes reports whether answer agrees.
func (c *IntentClassifier) IsYes(ctx context.Context, answer string) (bool, error) {
	label, err := c.oracle.ClassifyYesNo(ctx, answer)
	if err != nil {
		return false, fmt.Errorf("game: classify yes/no: %w", err)
	}
	return label == oracle.Yes, nil
}

// CheckQuit asks confirm when text expresses the wish to stop and reports
// whether it did. A confirmed quit says goodbye and returns
// [ErrSessionTerminated].
func (c *IntentClassifier) CheckQuit(ctx context.Context, text string, confirm func(context.Context) (bool, error)) (bool, error) {
	label, err := c.oracle.ClassifyQuitIntent(ctx, text)
	if err != nil {
		return false, fmt.Errorf("game: classify quit intent: %w", err)
	}
	if label != oracle.Yes {
		return false, nil
	}
	ok, err := confirm(ctx)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	if err := c.presenter.Speak(ctx, msgGoodbye, present.English); err != nil {
		return true, fmt.Errorf("game: speak: %w", err)
	}
	return true, ErrSessionTerminated
}

// HandleHint gives a hint when text asks for one and reports whether it
// did. focus steers the hint towards one property of secretWord.
func (c *IntentClassifier) HandleHint(ctx context.Context, text, secretWord, focus string) (bool, error) {
	label, err := c.oracle.ClassifyHintIntent(ctx, text)
	if err != nil {
		return false, fmt.Errorf("game: classify hint intent: %w", err)
	}
	if label != oracle.Yes {
		return false, nil
	}
	if err := c.presenter.Speak(ctx, msgGiveHint, present.English); err != nil {
		return false, fmt.Errorf("game: speak: %w", err)
	}
	if err := c.giveHint(ctx, secretWord, focus); err != nil {
		return false, err
	}
	return true, nil
}

func (c *IntentClassifier) giveHint(ctx context.Context, secretWord, focus string) error {
	hint, err := c.oracle.GenerateHint(ctx, secretWord, focus)
	if err != nil {
		return fmt.Errorf("game: generate hint: %w", err)
	}
	if err := c.presenter.Speak(ctx, hint, present.English); err != nil {
		return fmt.Errorf("game: speak: %w", err)
	}
	return nil
}
