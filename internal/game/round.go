package game

import (
	"fmt"
	"time"
)

// Version selects which learning aids a session offers.
type Version string

const (
	// VersionNormal plays random secret words with every aid enabled.
	VersionNormal Version = "normal"

	// VersionStudyWords draws secret words from the study vocabulary and
	// focuses hints on one of the word's study properties.
	VersionStudyWords Version = "study_words"

	// VersionStudyTopics lets the oracle pick a secret word from a study
	// topic.
	VersionStudyTopics Version = "study_topics"

	// VersionControl disables hints and language feedback.
	VersionControl Version = "control"

	// VersionExperiment enables every aid.
	VersionExperiment Version = "experiment"
)

// Valid reports whether v is a known version.
func (v Version) Valid() bool {
	switch v {
	case VersionNormal, VersionStudyWords, VersionStudyTopics, VersionControl, VersionExperiment:
		return true
	}
	return false
}

// Options are the per-round rules of the RoundController.
type Options struct {
	// HintsEnabled allows hint requests and hint offers.
	HintsEnabled bool

	// MaxWrongGuesses is the number of incorrect guesses that triggers a
	// hint offer.
	MaxWrongGuesses int

	// MaxQuestionsNo is the number of questions answered "no" that triggers
	// a hint offer.
	MaxQuestionsNo int

	// GiveUpOfferEnabled allows the offer to reveal the secret word.
	GiveUpOfferEnabled bool

	// GiveUpAfterGuesses is the total number of guesses after which the
	// reveal is offered.
	GiveUpAfterGuesses int

	// TimeLimit ends the round once exceeded. Zero disables the limit.
	TimeLimit time.Duration

	// FeedbackEnabled routes player input through the language coach.
	FeedbackEnabled bool
}

// Default thresholds.
const (
	DefaultMaxWrongGuesses    = 3
	DefaultMaxQuestionsNo     = 3
	DefaultGiveUpAfterGuesses = 5
	DefaultTimeLimit          = 120 * time.Second
	DefaultSilenceThreshold   = 3
)

// OptionsFor returns the rules of version v with the default thresholds.
func OptionsFor(v Version) (Options, error) {
	o := Options{
		HintsEnabled:       true,
		MaxWrongGuesses:    DefaultMaxWrongGuesses,
		MaxQuestionsNo:     DefaultMaxQuestionsNo,
		GiveUpOfferEnabled: true,
		GiveUpAfterGuesses: DefaultGiveUpAfterGuesses,
		TimeLimit:          DefaultTimeLimit,
		FeedbackEnabled:    true,
	}
	switch v {
	case VersionNormal, VersionStudyWords, VersionStudyTopics, VersionExperiment:
	case VersionControl:
		o.HintsEnabled = false
		o.FeedbackEnabled = false
	default:
		return Options{}, fmt.Errorf("game: unknown version %q", v)
	}
	return o, nil
}

// Outcome is how a round ended.
type Outcome string

const (
	OutcomeWon      Outcome = "won"
	OutcomeGaveUp   Outcome = "gave_up"
	OutcomeTimedOut Outcome = "timed_out"
)

// Round is the mutable state of the round in play. Only the RoundController
// changes it.
type Round struct {
	ID         string
	SecretWord string
	Version    Version
	StartTime  time.Time

	Questions           int
	Guesses             int
	IncorrectGuesses    int
	QuestionsAnsweredNo int
	HintsGiven          int

	GuessedWord bool
	GaveUp      bool
}

// RoundSummary is the frozen record of a finished round.
type RoundSummary struct {
	RoundID    string        `json:"round_id"`
	SecretWord string        `json:"secret_word"`
	Version    Version       `json:"version"`
	Outcome    Outcome       `json:"outcome"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`

	Questions           int `json:"questions"`
	Guesses             int `json:"guesses"`
	IncorrectGuesses    int `json:"incorrect_guesses"`
	QuestionsAnsweredNo int `json:"questions_answered_no"`
	HintsGiven          int `json:"hints_given"`

	GuessedWord bool `json:"guessed_word"`
	GaveUp      bool `json:"gave_up"`
}

func (r *Round) freeze(outcome Outcome, end time.Time) RoundSummary {
	return RoundSummary{
		RoundID:             r.ID,
		SecretWord:          r.SecretWord,
		Version:             r.Version,
		Outcome:             outcome,
		StartTime:           r.StartTime,
		Duration:            end.Sub(r.StartTime),
		Questions:           r.Questions,
		Guesses:             r.Guesses,
		IncorrectGuesses:    r.IncorrectGuesses,
		QuestionsAnsweredNo: r.QuestionsAnsweredNo,
		HintsGiven:          r.HintsGiven,
		GuessedWord:         r.GuessedWord,
		GaveUp:              r.GaveUp,
	}
}
