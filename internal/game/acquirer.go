package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/internal/present"
	"github.com/MrWong99/guessbot/internal/speech"
)

// Acquirer elicits one non-empty utterance from the player.
//
// Silence is retried indefinitely. Every silenceThreshold consecutive silent
// listens trigger a presence check in Dutch; a player who stays silent then
// is considered gone and the session ends with [ErrSessionTerminated].
type Acquirer struct {
	recognizer       speech.Recognizer
	presenter        present.Presenter
	intent           *IntentClassifier
	coach            *Coach
	silenceThreshold int
	metrics          *observe.Metrics
}

// AcquirerOption configures an [Acquirer].
type AcquirerOption func(*Acquirer)

// WithCoach routes input through c when feedback is requested. Without a
// coach, feedback requests are ignored.
func WithCoach(c *Coach) AcquirerOption {
	return func(a *Acquirer) { a.coach = c }
}

// WithSilenceThreshold sets the number of silent listens before the
// presence check.
func WithSilenceThreshold(n int) AcquirerOption {
	return func(a *Acquirer) { a.silenceThreshold = n }
}

// WithAcquirerMetrics records presence checks on m.
func WithAcquirerMetrics(m *observe.Metrics) AcquirerOption {
	return func(a *Acquirer) { a.metrics = m }
}

// NewAcquirer returns an Acquirer listening on rec, speaking through pres
// and checking quit requests with intent.
func NewAcquirer(rec speech.Recognizer, pres present.Presenter, intent *IntentClassifier, opts ...AcquirerOption) (*Acquirer, error) {
	if rec == nil {
		return nil, errors.New("game: acquirer: recognizer must not be nil")
	}
	if pres == nil {
		return nil, errors.New("game: acquirer: presenter must not be nil")
	}
	if intent == nil {
		return nil, errors.New("game: acquirer: intent classifier must not be nil")
	}
	a := &Acquirer{
		recognizer:       rec,
		presenter:        pres,
		intent:           intent,
		silenceThreshold: DefaultSilenceThreshold,
	}
	for _, o := range opts {
		o(a)
	}
	if a.silenceThreshold < 1 {
		return nil, fmt.Errorf("game: acquirer: silence threshold must be positive, got %d", a.silenceThreshold)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	return a, nil
}

type acquireMode struct {
	feedback  bool
	checkQuit bool
}

// Acquire speaks prompt (unless empty), then listens until the player says
// something, speaking retry after every silence. The utterance is checked
// for a quit request first; a declined quit is not returned and listening
// resumes. With feedback set and a coach configured, the
// coach reviews it next and a practised example sentence may replace it.
func (a *Acquirer) Acquire(ctx context.Context, prompt, retry string, lang present.Language, feedback bool) (string, error) {
	return a.acquire(ctx, prompt, retry, lang, acquireMode{feedback: feedback, checkQuit: true})
}

// AskYesNo asks question until the player answers and reports whether the
// answer agrees.
func (a *Acquirer) AskYesNo(ctx context.Context, question, retry string) (bool, error) {
	return a.askYesNo(ctx, question, retry, acquireMode{checkQuit: true})
}

func (a *Acquirer) askYesNo(ctx context.Context, question, retry string, mode acquireMode) (bool, error) {
	answer, err := a.acquire(ctx, question, retry, present.English, mode)
	if err != nil {
		return false, err
	}
	return a.intent.IsYes(ctx, answer)
}

func (a *Acquirer) confirmQuit(ctx context.Context) (bool, error) {
	return a.askYesNo(ctx, msgConfirmQuit, msgConfirmQuitRe, acquireMode{})
}

func (a *Acquirer) acquire(ctx context.Context, prompt, retry string, lang present.Language, mode acquireMode) (string, error) {
	if err := a.say(ctx, prompt, lang); err != nil {
		return "", err
	}
	var silent int
	for {
		text, err := a.recognizer.Recognize(ctx)
		if err != nil {
			return "", fmt.Errorf("game: recognize: %w", err)
		}
		if text != "" {
			observe.Logger(ctx).Debug("heard player", "text", text)
			quit := false
			if mode.checkQuit {
				if quit, err = a.intent.CheckQuit(ctx, text, a.confirmQuit); err != nil {
					return "", err
				}
			}
			if !quit {
				if mode.feedback && a.coach != nil {
					return a.practise(ctx, text)
				}
				return text, nil
			}
			// Declined quit: keep listening.
			silent = 0
			if err := a.say(ctx, retry, lang); err != nil {
				return "", err
			}
			continue
		}

		silent++
		if silent >= a.silenceThreshold {
			if err := a.checkPresence(ctx); err != nil {
				return "", err
			}
			silent = 0
		}
		if err := a.say(ctx, retry, lang); err != nil {
			return "", err
		}
	}
}

// practise lets the coach review text and, when it hands out an example
// sentence, has the player repeat it. The repetition replaces text.
func (a *Acquirer) practise(ctx context.Context, text string) (string, error) {
	example, err := a.coach.Review(ctx, text)
	if err != nil {
		return "", err
	}
	if example == "" {
		return text, nil
	}
	return a.acquire(ctx,
		fmt.Sprintf(msgRepeatFmt, example),
		fmt.Sprintf(msgRepeatRetryFmt, example),
		present.English, acquireMode{})
}

func (a *Acquirer) checkPresence(ctx context.Context) error {
	log := observe.Logger(ctx)
	if err := a.say(ctx, msgStillThere, present.Dutch); err != nil {
		return err
	}
	text, err := a.recognizer.Recognize(ctx)
	if err != nil {
		return fmt.Errorf("game: recognize: %w", err)
	}
	if text == "" {
		a.metrics.RecordPresenceCheck(ctx, false)
		log.Info("player did not answer presence check")
		if err := a.say(ctx, msgGone, present.Dutch); err != nil {
			log.Warn("failed to say farewell", "err", err)
		}
		return ErrSessionTerminated
	}
	a.metrics.RecordPresenceCheck(ctx, true)
	return a.say(ctx, msgStillHere, present.Dutch)
}

func (a *Acquirer) say(ctx context.Context, text string, lang present.Language) error {
	if text == "" {
		return nil
	}
	if err := a.presenter.Speak(ctx, text, lang); err != nil {
		return fmt.Errorf("game: speak: %w", err)
	}
	return nil
}
