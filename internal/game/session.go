package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/internal/oracle"
	"github.com/MrWong99/guessbot/internal/present"
)

// RoundRecorder persists finished rounds.
type RoundRecorder interface {
	RecordRound(ctx context.Context, rec RoundRecord) error
}

// RoundRecord is a finished round together with the session it belongs to.
type RoundRecord struct {
	SessionID   string       `json:"session_id"`
	Participant string       `json:"participant"`
	Summary     RoundSummary `json:"summary"`
}

// Wave is filler played between rounds: Line is spoken Count times with
// Delay in between. An empty Line only waits.
type Wave struct {
	Count int
	Delay time.Duration
	Line  string
	Lang  present.Language
}

// SessionConfig holds everything a [Session] needs. Controller, Words,
// Oracle and Presenter are required.
type SessionConfig struct {
	// ID identifies the session. A random UUID is used when empty.
	ID string

	// Participant is an opaque label stored with every round.
	Participant string

	Controller *RoundController
	Words      WordSource
	Oracle     oracle.Oracle
	Presenter  present.Presenter

	// Recorder, if set, receives every finished round. Failures are logged
	// and do not end the session.
	Recorder RoundRecorder

	// Rounds is the number of rounds to play. Zero plays until the player
	// quits or the words run out.
	Rounds int

	// Intro welcomes the player and explains the game in Dutch before the
	// first round. IntroScript replaces the generated lines.
	Intro       bool
	IntroScript []string

	// Outro thanks the player after the last round. OutroScript replaces
	// the generated line.
	Outro       bool
	OutroScript []string

	// Wave is played between rounds.
	Wave Wave

	// Metrics defaults to observe.DefaultMetrics.
	Metrics *observe.Metrics
}

// Session plays consecutive rounds with one player.
type Session struct {
	cfg SessionConfig
}

// NewSession validates cfg and returns a Session.
func NewSession(cfg SessionConfig) (*Session, error) {
	switch {
	case cfg.Controller == nil:
		return nil, errors.New("game: session: controller must not be nil")
	case cfg.Words == nil:
		return nil, errors.New("game: session: word source must not be nil")
	case cfg.Oracle == nil:
		return nil, errors.New("game: session: oracle must not be nil")
	case cfg.Presenter == nil:
		return nil, errors.New("game: session: presenter must not be nil")
	case cfg.Rounds < 0:
		return nil, fmt.Errorf("game: session: rounds must not be negative, got %d", cfg.Rounds)
	case cfg.Wave.Count < 0 || cfg.Wave.Delay < 0:
		return nil, errors.New("game: session: wave count and delay must not be negative")
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Wave.Lang == "" {
		cfg.Wave.Lang = present.Dutch
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	return &Session{cfg: cfg}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.cfg.ID }

// Run plays the session and returns the summaries of every completed round
// in play order. When the player quits or leaves, the completed rounds are
// returned together with [ErrSessionTerminated].
func (s *Session) Run(ctx context.Context) ([]RoundSummary, error) {
	ctx, span := observe.StartSpan(ctx, "game.session",
		trace.WithAttributes(attribute.String("guessbot.session_id", s.cfg.ID)))
	defer span.End()
	log := observe.Logger(ctx).With("session_id", s.cfg.ID)

	s.cfg.Metrics.ActiveSessions.Add(ctx, 1)
	defer s.cfg.Metrics.ActiveSessions.Add(context.WithoutCancel(ctx), -1)

	log.Info("session started", "participant", s.cfg.Participant, "rounds", s.cfg.Rounds)
	if s.cfg.Intro {
		if err := s.narrate(ctx, s.cfg.IntroScript, welcomePrompt, explainPrompt); err != nil {
			return nil, err
		}
	}

	var summaries []RoundSummary
	for i := 0; s.cfg.Rounds == 0 || i < s.cfg.Rounds; i++ {
		word, err := s.cfg.Words.Next(ctx)
		if errors.Is(err, ErrNoWords) && len(summaries) > 0 {
			log.Info("no secret words left", "played", len(summaries))
			break
		}
		if err != nil {
			return summaries, err
		}
		if i > 0 {
			if err := s.wave(ctx); err != nil {
				return summaries, err
			}
		}

		summary, err := s.cfg.Controller.Play(ctx, word)
		if err != nil {
			if errors.Is(err, ErrSessionTerminated) {
				log.Info("session terminated by player", "played", len(summaries))
				return summaries, err
			}
			log.Error("round aborted", "err", err)
			if ctx.Err() == nil {
				if serr := s.cfg.Presenter.Speak(ctx, msgSorry, present.English); serr != nil {
					log.Warn("failed to say farewell", "err", serr)
				}
			}
			return summaries, err
		}
		s.cfg.Words.Finished(word, summary.Outcome)
		summaries = append(summaries, summary)

		if s.cfg.Recorder != nil {
			rec := RoundRecord{SessionID: s.cfg.ID, Participant: s.cfg.Participant, Summary: summary}
			if err := s.cfg.Recorder.RecordRound(ctx, rec); err != nil {
				log.Warn("failed to record round", "round_id", summary.RoundID, "err", err)
			}
		}
	}

	if s.cfg.Outro {
		if err := s.narrate(ctx, s.cfg.OutroScript, outroPrompt); err != nil {
			return summaries, err
		}
	}
	log.Info("session finished", "played", len(summaries))
	return summaries, nil
}

// narrate speaks script in Dutch, or generates one line per prompt when
// script is empty.
func (s *Session) narrate(ctx context.Context, script []string, prompts ...string) error {
	lines := script
	if len(lines) == 0 {
		for _, p := range prompts {
			line, err := s.cfg.Oracle.GenerateFreeText(ctx, p, string(present.Dutch))
			if err != nil {
				return fmt.Errorf("game: generate narration: %w", err)
			}
			lines = append(lines, line)
		}
	}
	for _, l := range lines {
		if err := s.cfg.Presenter.Speak(ctx, l, present.Dutch); err != nil {
			return fmt.Errorf("game: speak: %w", err)
		}
	}
	return nil
}

func (s *Session) wave(ctx context.Context) error {
	w := s.cfg.Wave
	for i := range w.Count {
		if i > 0 && w.Delay > 0 {
			t := time.NewTimer(w.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if w.Line == "" {
			continue
		}
		if err := s.cfg.Presenter.Speak(ctx, w.Line, w.Lang); err != nil {
			return fmt.Errorf("game: speak: %w", err)
		}
	}
	return nil
}
