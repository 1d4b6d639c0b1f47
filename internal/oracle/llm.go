package oracle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/pkg/provider/llm"
	"github.com/MrWong99/guessbot/pkg/provider/moderation"
)

const (
	defaultMaxRegenerations = 5
	defaultLeakSimilarity   = 0.92
)

// Option is a functional option for [New].
type Option func(*LLM)

// WithModeration screens every generated sentence with c before it is
// returned.
func WithModeration(c moderation.Checker) Option {
	return func(o *LLM) { o.checker = c }
}

// WithSystemPrompt replaces [DefaultSystemPrompt].
func WithSystemPrompt(p string) Option {
	return func(o *LLM) { o.systemPrompt = p }
}

// WithLearnerProfile replaces [DefaultLearnerProfile].
func WithLearnerProfile(p string) Option {
	return func(o *LLM) { o.learnerProfile = p }
}

// WithMaxRegenerations bounds how often a rejected text is regenerated.
func WithMaxRegenerations(n int) Option {
	return func(o *LLM) { o.maxRegenerations = n }
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(o *LLM) { o.timeout = d }
}

// WithLeakSimilarity sets the Jaro-Winkler score at which a word counts as a
// spelling variant of the secret word. Zero disables the similarity check.
func WithLeakSimilarity(s float64) Option {
	return func(o *LLM) { o.leakSimilarity = s }
}

// WithMetrics records call latency and regenerations on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *LLM) { o.metrics = m }
}

// LLM implements [Oracle] on top of a chat-completion provider.
//
// Classifications are single calls whose answer is normalized. Generated
// text runs through a regeneration loop: when moderation flags it or it
// leaks the secret word, the offending words are added to an exclusion list
// appended to the prompt and the text is generated again.
type LLM struct {
	provider         llm.Provider
	checker          moderation.Checker
	metrics          *observe.Metrics
	systemPrompt     string
	learnerProfile   string
	maxRegenerations int
	timeout          time.Duration
	leakSimilarity   float64
}

// New creates an LLM oracle backed by p.
func New(p llm.Provider, opts ...Option) (*LLM, error) {
	if p == nil {
		return nil, errors.New("oracle: provider must not be nil")
	}
	o := &LLM{
		provider:         p,
		systemPrompt:     DefaultSystemPrompt,
		learnerProfile:   DefaultLearnerProfile,
		maxRegenerations: defaultMaxRegenerations,
		leakSimilarity:   defaultLeakSimilarity,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxRegenerations < 0 {
		return nil, fmt.Errorf("oracle: max regenerations must be >= 0, got %d", o.maxRegenerations)
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	return o, nil
}

// ClassifyYesNo implements [Oracle].
func (o *LLM) ClassifyYesNo(ctx context.Context, text string) (YesNo, error) {
	out, err := o.complete(ctx, "classify_yes_no", yesNoPrompt(text))
	if err != nil {
		return No, err
	}
	return ParseYesNo(out), nil
}

// ClassifyQuestionOrGuess implements [Oracle].
func (o *LLM) ClassifyQuestionOrGuess(ctx context.Context, text, secretWord string) (TurnKind, error) {
	out, err := o.complete(ctx, "classify_question_or_guess", questionOrGuessPrompt(text, secretWord))
	if err != nil {
		return Guess, err
	}
	kind := ParseTurnKind(out)
	if kind == Guess && NormalizeLabel(out) != string(Guess) {
		observe.Logger(ctx).Debug("oracle: unrecognized turn label, treating as guess", "label", out)
	}
	return kind, nil
}

// ClassifyCorrect implements [Oracle].
func (o *LLM) ClassifyCorrect(ctx context.Context, secretWord, guess string) (Verdict, error) {
	out, err := o.complete(ctx, "classify_correct", correctPrompt(secretWord, guess))
	if err != nil {
		return Incorrect, err
	}
	return ParseVerdict(out), nil
}

// AnswerQuestion implements [Oracle].
func (o *LLM) AnswerQuestion(ctx context.Context, secretWord, question string) (string, error) {
	return o.generate(ctx, "answer_question", answerPrompt(secretWord, question)+" "+o.learnerProfile, secretWord, "en")
}

// GenerateHint implements [Oracle].
func (o *LLM) GenerateHint(ctx context.Context, secretWord, focus string) (string, error) {
	return o.generate(ctx, "generate_hint", hintPrompt(secretWord, focus)+" "+o.learnerProfile, secretWord, "en")
}

// GenerateExplanation implements [Oracle]. The word is revealed alongside the
// explanation so the leak guard does not apply.
func (o *LLM) GenerateExplanation(ctx context.Context, secretWord string) (string, error) {
	return o.generate(ctx, "generate_explanation", explanationPrompt(secretWord)+" "+o.learnerProfile, "", "en")
}

// ClassifyQuitIntent implements [Oracle].
func (o *LLM) ClassifyQuitIntent(ctx context.Context, text string) (YesNo, error) {
	out, err := o.complete(ctx, "classify_quit_intent", quitIntentPrompt(text))
	if err != nil {
		return No, err
	}
	return ParseYesNo(out), nil
}

// ClassifyHintIntent implements [Oracle].
func (o *LLM) ClassifyHintIntent(ctx context.Context, text string) (YesNo, error) {
	out, err := o.complete(ctx, "classify_hint_intent", hintIntentPrompt(text))
	if err != nil {
		return No, err
	}
	return ParseYesNo(out), nil
}

// RephraseForLearner implements [Oracle].
func (o *LLM) RephraseForLearner(ctx context.Context, text string) (string, error) {
	return o.generate(ctx, "rephrase_for_learner", rephrasePrompt(text), "", "en")
}

// GenerateFreeText implements [Oracle].
func (o *LLM) GenerateFreeText(ctx context.Context, prompt, lang string) (string, error) {
	return o.generate(ctx, "generate_free_text", prompt, "", lang)
}

// generate runs the regeneration loop for spoken text. A non-empty secret
// enables the leak guard.
func (o *LLM) generate(ctx context.Context, op, basePrompt, secret, lang string) (string, error) {
	var avoided []string
	prompt := basePrompt
	for attempt := 0; ; attempt++ {
		text, err := o.complete(ctx, op, prompt)
		if err != nil {
			return "", err
		}
		rejected, words, err := o.screen(ctx, text, secret, lang)
		if err != nil {
			return "", fmt.Errorf("oracle: %s: %w", op, err)
		}
		if !rejected {
			return text, nil
		}

		o.metrics.Regenerations.Add(ctx, 1)
		observe.Logger(ctx).Info("oracle: generated text rejected, regenerating",
			"op", op, "attempt", attempt+1, "avoid", words)
		if attempt >= o.maxRegenerations {
			return "", fmt.Errorf("oracle: %s: %w", op, ErrRegenerationExhausted)
		}

		var added bool
		for _, w := range words {
			if !slices.Contains(avoided, w) {
				avoided = append(avoided, w)
				added = true
			}
		}
		if added {
			prompt = basePrompt + avoidSuffix(strings.Join(avoided, ", "))
		}
	}
}

// screen reports whether text must be regenerated and which words caused it.
func (o *LLM) screen(ctx context.Context, text, secret, lang string) (bool, []string, error) {
	var (
		rejected bool
		words    []string
	)
	if secret != "" {
		if leaks := leakedTokens(text, secret, o.leakSimilarity); len(leaks) > 0 {
			rejected = true
			words = append(words, leaks...)
		}
	}
	if o.checker != nil {
		if lang != "nl" {
			lang = "en"
		}
		res, err := o.checker.Check(ctx, text, lang)
		if err != nil {
			return false, nil, fmt.Errorf("moderation: %w", err)
		}
		if res.Flagged {
			rejected = true
			words = append(words, res.Matches...)
		}
	}
	return rejected, words, nil
}

// complete performs one model call bounded by the configured timeout.
func (o *LLM) complete(ctx context.Context, op, prompt string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := o.provider.Complete(ctx, llm.UserPrompt(o.systemPrompt, prompt))
	o.metrics.RecordOracleCall(ctx, op, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("oracle: %s: %w", op, err)
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("oracle: %s: empty model response", op)
	}
	return text, nil
}

var _ Oracle = (*LLM)(nil)
