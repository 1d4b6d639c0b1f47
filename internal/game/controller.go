package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/internal/oracle"
	"github.com/MrWong99/guessbot/internal/present"
)

// RoundController plays one round at a time: it listens for questions and
// guesses, answers them, offers hints and the reveal, and enforces the time
// limit. It is the only writer of a [Round].
type RoundController struct {
	acquirer  *Acquirer
	intent    *IntentClassifier
	oracle    oracle.Oracle
	presenter present.Presenter
	version   Version
	opts      Options
	now       func() time.Time
	rng       *rand.Rand
	metrics   *observe.Metrics
}

// ControllerConfig holds the dependencies of a [RoundController]. Every
// field except Clock, Rand and Metrics is required.
type ControllerConfig struct {
	Acquirer  *Acquirer
	Intent    *IntentClassifier
	Oracle    oracle.Oracle
	Presenter present.Presenter

	// Version is recorded on every round.
	Version Version

	// Options are the round rules, usually from [OptionsFor].
	Options Options

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// Rand picks the hint focus of study words. Defaults to an unseeded
	// source.
	Rand *rand.Rand

	// Metrics defaults to observe.DefaultMetrics.
	Metrics *observe.Metrics
}

// NewRoundController validates cfg and returns a RoundController.
func NewRoundController(cfg ControllerConfig) (*RoundController, error) {
	switch {
	case cfg.Acquirer == nil:
		return nil, errors.New("game: controller: acquirer must not be nil")
	case cfg.Intent == nil:
		return nil, errors.New("game: controller: intent classifier must not be nil")
	case cfg.Oracle == nil:
		return nil, errors.New("game: controller: oracle must not be nil")
	case cfg.Presenter == nil:
		return nil, errors.New("game: controller: presenter must not be nil")
	case !cfg.Version.Valid():
		return nil, fmt.Errorf("game: controller: unknown version %q", cfg.Version)
	}
	o := cfg.Options
	if o.MaxWrongGuesses < 1 || o.MaxQuestionsNo < 1 || o.GiveUpAfterGuesses < 1 {
		return nil, errors.New("game: controller: thresholds must be positive")
	}
	if o.TimeLimit < 0 {
		return nil, errors.New("game: controller: time limit must not be negative")
	}
	c := &RoundController{
		acquirer:  cfg.Acquirer,
		intent:    cfg.Intent,
		oracle:    cfg.Oracle,
		presenter: cfg.Presenter,
		version:   cfg.Version,
		opts:      o,
		now:       cfg.Clock,
		rng:       cfg.Rand,
		metrics:   cfg.Metrics,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.metrics == nil {
		c.metrics = observe.DefaultMetrics()
	}
	return c, nil
}

// turn carries the per-round state that is not part of the record.
type turn struct {
	round         *Round
	word          Word
	giveUpOffered bool
}

// Play runs a round for word until the player guesses it, accepts the
// reveal or runs out of time. Errors from collaborators abort the round
// without a summary; [ErrSessionTerminated] is returned unchanged.
func (c *RoundController) Play(ctx context.Context, word Word) (RoundSummary, error) {
	t := &turn{
		round: &Round{
			ID:         uuid.NewString(),
			SecretWord: word.Text,
			Version:    c.version,
			StartTime:  c.now(),
		},
		word: word,
	}
	r := t.round
	ctx, span := observe.StartSpan(ctx, "game.round", trace.WithAttributes(
		attribute.String("guessbot.round_id", r.ID),
		attribute.String("guessbot.version", string(r.Version)),
	))
	defer span.End()
	log := observe.Logger(ctx).With("round_id", r.ID)
	log.Debug("round started", "secret_word", r.SecretWord, "version", r.Version)
	c.metrics.RecordRoundStart(ctx, string(r.Version))

	prompt, retry := msgRoundStart, msgRoundStart
	for {
		if c.opts.TimeLimit > 0 && c.now().Sub(r.StartTime) >= c.opts.TimeLimit {
			return c.timeUp(ctx, t)
		}

		text, err := c.acquirer.Acquire(ctx, prompt, retry, present.English, c.opts.FeedbackEnabled)
		if err != nil {
			return RoundSummary{}, err
		}
		prompt, retry = "", msgAskOrGuess

		if c.opts.HintsEnabled {
			text, err = c.hintRequests(ctx, t, text)
			if err != nil {
				return RoundSummary{}, err
			}
		}

		kind, err := c.oracle.ClassifyQuestionOrGuess(ctx, text, r.SecretWord)
		if err != nil {
			return RoundSummary{}, fmt.Errorf("game: classify turn: %w", err)
		}
		if kind == oracle.Question {
			err = c.question(ctx, t, text)
		} else {
			var done bool
			var outcome Outcome
			done, outcome, err = c.guess(ctx, t, text)
			if err == nil && done {
				return c.finish(ctx, t, outcome), nil
			}
		}
		if err != nil {
			return RoundSummary{}, err
		}
	}
}

// hintRequests answers hint requests until the player says something
// else, which it returns.
func (c *RoundController) hintRequests(ctx context.Context, t *turn, text string) (string, error) {
	for {
		gave, err := c.intent.HandleHint(ctx, text, t.round.SecretWord, c.focus(t.word))
		if err != nil {
			return "", err
		}
		if !gave {
			return text, nil
		}
		t.round.HintsGiven++
		text, err = c.acquirer.Acquire(ctx, "", msgUseTheHint, present.English, c.opts.FeedbackEnabled)
		if err != nil {
			return "", err
		}
	}
}

func (c *RoundController) question(ctx context.Context, t *turn, text string) error {
	r := t.round
	r.Questions++
	answer, err := c.oracle.AnswerQuestion(ctx, r.SecretWord, text)
	if err != nil {
		return fmt.Errorf("game: answer question: %w", err)
	}
	if err := c.say(ctx, answer); err != nil {
		return err
	}
	yes, err := c.intent.IsYes(ctx, answer)
	if err != nil {
		return err
	}
	if !yes {
		r.QuestionsAnsweredNo++
	}
	if c.opts.HintsEnabled && r.QuestionsAnsweredNo >= c.opts.MaxQuestionsNo {
		r.QuestionsAnsweredNo = 0
		return c.offerHint(ctx, t)
	}
	return nil
}

func (c *RoundController) guess(ctx context.Context, t *turn, text string) (bool, Outcome, error) {
	r := t.round
	r.Guesses++
	verdict, err := c.oracle.ClassifyCorrect(ctx, r.SecretWord, text)
	if err != nil {
		return false, "", fmt.Errorf("game: classify guess: %w", err)
	}
	if verdict == oracle.Correct {
		r.GuessedWord = true
		return true, OutcomeWon, c.say(ctx, msgCorrect)
	}

	r.IncorrectGuesses++
	switch {
	case c.opts.HintsEnabled && r.IncorrectGuesses >= c.opts.MaxWrongGuesses:
		r.IncorrectGuesses = 0
		return false, "", c.offerHint(ctx, t)

	case c.opts.GiveUpOfferEnabled && !t.giveUpOffered && r.Guesses >= c.opts.GiveUpAfterGuesses:
		t.giveUpOffered = true
		yes, err := c.acquirer.AskYesNo(ctx, msgOfferReveal, msgOfferRevealRe)
		if err != nil {
			return false, "", err
		}
		if !yes {
			return false, "", c.say(ctx, msgKeepTrying)
		}
		r.GaveUp = true
		explanation, err := c.explain(ctx, r.SecretWord)
		if err != nil {
			return false, "", err
		}
		return true, OutcomeGaveUp, c.say(ctx, fmt.Sprintf(msgRevealFmt, r.SecretWord, explanation))

	default:
		return false, "", c.say(ctx, msgNotQuite)
	}
}

func (c *RoundController) offerHint(ctx context.Context, t *turn) error {
	yes, err := c.acquirer.AskYesNo(ctx, msgOfferHint, msgOfferHintRetry)
	if err != nil || !yes {
		return err
	}
	t.round.HintsGiven++
	return c.intent.giveHint(ctx, t.round.SecretWord, c.focus(t.word))
}

func (c *RoundController) timeUp(ctx context.Context, t *turn) (RoundSummary, error) {
	explanation, err := c.explain(ctx, t.round.SecretWord)
	if err != nil {
		return RoundSummary{}, err
	}
	if err := c.say(ctx, fmt.Sprintf(msgTimeUpFmt, t.round.SecretWord, explanation)); err != nil {
		return RoundSummary{}, err
	}
	return c.finish(ctx, t, OutcomeTimedOut), nil
}

func (c *RoundController) finish(ctx context.Context, t *turn, outcome Outcome) RoundSummary {
	s := t.round.freeze(outcome, c.now())
	c.metrics.RecordRoundEnd(ctx, string(outcome), s.Duration)
	observe.Logger(ctx).Info("round finished",
		"round_id", s.RoundID,
		"outcome", s.Outcome,
		"questions", s.Questions,
		"guesses", s.Guesses,
		"hints", s.HintsGiven,
		"duration", s.Duration,
	)
	return s
}

func (c *RoundController) explain(ctx context.Context, secretWord string) (string, error) {
	explanation, err := c.oracle.GenerateExplanation(ctx, secretWord)
	if err != nil {
		return "", fmt.Errorf("game: generate explanation: %w", err)
	}
	return explanation, nil
}

// focus picks one study property of w for the next hint, or "" when w has
// none.
func (c *RoundController) focus(w Word) string {
	if len(w.Properties) == 0 {
		return ""
	}
	return w.Properties[c.rng.IntN(len(w.Properties))]
}

func (c *RoundController) say(ctx context.Context, text string) error {
	if err := c.presenter.Speak(ctx, text, present.English); err != nil {
		return fmt.Errorf("game: speak: %w", err)
	}
	return nil
}
