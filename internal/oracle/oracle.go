// Package oracle is the language-understanding boundary of the game. Every
// classification and every generated sentence the host speaks comes from an
// [Oracle]. Calls are independent requests; no conversation state is kept.
//
// Labels returned by a model are untrusted. They are normalized here and
// unexpected values collapse onto a fixed safe default: [No] for yes/no
// decisions, [Guess] for turn classification and [Incorrect] for guesses.
package oracle

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

// ErrRegenerationExhausted is returned when every regeneration attempt of a
// generated text was rejected by moderation or the secret-word leak guard.
var ErrRegenerationExhausted = errors.New("oracle: regeneration attempts exhausted")

// YesNo is a binary decision label.
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

// TurnKind distinguishes a question about the secret word from a guess.
type TurnKind string

const (
	Question TurnKind = "question"
	Guess    TurnKind = "guess"
)

// Verdict is the result of judging a guess.
type Verdict string

const (
	Correct   Verdict = "correct"
	Incorrect Verdict = "incorrect"
)

// Oracle is the capability set the game needs from a language model.
type Oracle interface {
	// ClassifyYesNo decides whether text is an affirmative answer.
	ClassifyYesNo(ctx context.Context, text string) (YesNo, error)

	// ClassifyQuestionOrGuess decides whether text asks about secretWord or
	// guesses it.
	ClassifyQuestionOrGuess(ctx context.Context, text, secretWord string) (TurnKind, error)

	// ClassifyCorrect judges guess against secretWord.
	ClassifyCorrect(ctx context.Context, secretWord, guess string) (Verdict, error)

	// AnswerQuestion answers question about secretWord without disclosing
	// the word or any part of it.
	AnswerQuestion(ctx context.Context, secretWord, question string) (string, error)

	// GenerateHint produces a one or two sentence hint for secretWord that
	// never contains the word or any part of it. A non-empty focus steers the
	// hint towards one property of the word.
	GenerateHint(ctx context.Context, secretWord, focus string) (string, error)

	// GenerateExplanation explains secretWord in one short sentence.
	GenerateExplanation(ctx context.Context, secretWord string) (string, error)

	// ClassifyQuitIntent decides whether text asks to stop playing.
	ClassifyQuitIntent(ctx context.Context, text string) (YesNo, error)

	// ClassifyHintIntent decides whether text asks for a hint.
	ClassifyHintIntent(ctx context.Context, text string) (YesNo, error)

	// RephraseForLearner rewrites text into simple, correct English.
	RephraseForLearner(ctx context.Context, text string) (string, error)

	// GenerateFreeText answers an arbitrary prompt with moderated text in
	// lang (ISO-639-1).
	GenerateFreeText(ctx context.Context, prompt, lang string) (string, error)
}

// NormalizeLabel reduces a model answer to its first word, lowercased and
// stripped of quotes and punctuation.
func NormalizeLabel(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '-')
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ParseYesNo maps a model answer to [Yes] only when it says exactly "yes".
func ParseYesNo(s string) YesNo {
	if NormalizeLabel(s) == string(Yes) {
		return Yes
	}
	return No
}

// ParseTurnKind maps a model answer to [Question] only when it says
// "question"; everything else is handled as a guess.
func ParseTurnKind(s string) TurnKind {
	if NormalizeLabel(s) == string(Question) {
		return Question
	}
	return Guess
}

// ParseVerdict maps a model answer to [Correct] only when it says "correct".
func ParseVerdict(s string) Verdict {
	if NormalizeLabel(s) == string(Correct) {
		return Correct
	}
	return Incorrect
}
