package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrWong99/guessbot/internal/config"
	"github.com/MrWong99/guessbot/internal/game"
	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/internal/oracle"
	"github.com/MrWong99/guessbot/internal/present"
)

// SessionInfo holds metadata about the active session.
type SessionInfo struct {
	SessionID   string
	Participant string
	Version     game.Version
	StartedAt   time.Time
}

// SessionManager builds and runs game sessions one at a time. Settings
// passed to [SessionManager.Reload] apply from the next session on.
// All exported methods are safe for concurrent use.
type SessionManager struct {
	mu     sync.Mutex
	active bool
	info   SessionInfo
	cancel context.CancelFunc
	count  uint64

	cfg      *config.Config
	oracle   oracle.Oracle
	newOrc   func(*config.Config) (oracle.Oracle, error)
	recorder game.RoundRecorder
	metrics  *observe.Metrics
}

// SessionManagerConfig holds the dependencies of a [SessionManager].
type SessionManagerConfig struct {
	Config *config.Config

	// Oracle, if set, is used for every session. Otherwise NewOracle builds
	// one per session from the current config.
	Oracle    oracle.Oracle
	NewOracle func(*config.Config) (oracle.Oracle, error)

	// Recorder receives finished rounds. It may be nil.
	Recorder game.RoundRecorder

	Metrics *observe.Metrics
}

// NewSessionManager creates a SessionManager with the given dependencies.
func NewSessionManager(cfg SessionManagerConfig) (*SessionManager, error) {
	switch {
	case cfg.Config == nil:
		return nil, errors.New("app: session manager: config must not be nil")
	case cfg.Oracle == nil && cfg.NewOracle == nil:
		return nil, errors.New("app: session manager: oracle or oracle factory must be set")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	return &SessionManager{
		cfg:      cfg.Config,
		oracle:   cfg.Oracle,
		newOrc:   cfg.NewOracle,
		recorder: cfg.Recorder,
		metrics:  cfg.Metrics,
	}, nil
}

// Run builds a session on surface and plays it to the end. It returns an
// error if a session is already active.
func (sm *SessionManager) Run(ctx context.Context, surface *Surface) ([]game.RoundSummary, error) {
	sm.mu.Lock()
	if sm.active {
		sm.mu.Unlock()
		return nil, fmt.Errorf("app: a session is already active (id=%s)", sm.info.SessionID)
	}
	cfg := sm.cfg
	sm.count++
	n := sm.count
	sess, err := sm.build(cfg, surface, n)
	if err != nil {
		sm.mu.Unlock()
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	sm.active = true
	sm.cancel = cancel
	sm.info = SessionInfo{
		SessionID:   sess.ID(),
		Participant: cfg.Game.Participant,
		Version:     game.Version(cfg.Game.Version),
		StartedAt:   time.Now().UTC(),
	}
	sm.mu.Unlock()

	defer func() {
		cancel()
		sm.mu.Lock()
		sm.active = false
		sm.cancel = nil
		sm.info = SessionInfo{}
		sm.mu.Unlock()
	}()

	return sess.Run(ctx)
}

// Stop cancels the active session, if any.
func (sm *SessionManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.cancel != nil {
		sm.cancel()
	}
}

// IsActive reports whether a session is running.
func (sm *SessionManager) IsActive() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.active
}

// Info returns the active session's metadata. The zero value is returned
// when no session is running.
func (sm *SessionManager) Info() SessionInfo {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.info
}

// Reload swaps the config used for the next session.
func (sm *SessionManager) Reload(cfg *config.Config) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.cfg = cfg
	slog.Info("session settings reloaded", "version", cfg.Game.Version, "applies", "next session")
}

// build wires one session from cfg. n numbers the session for the seeded
// random source.
func (sm *SessionManager) build(cfg *config.Config, surface *Surface, n uint64) (*game.Session, error) {
	orc := sm.oracle
	if orc == nil {
		var err error
		if orc, err = sm.newOrc(cfg); err != nil {
			return nil, fmt.Errorf("app: build oracle: %w", err)
		}
	}

	opts, err := cfg.GameOptions()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	version := game.Version(cfg.Game.Version)
	rng := sessionRand(cfg.Game.Seed, n)

	intent, err := game.NewIntentClassifier(orc, surface.Presenter)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	acqOpts := []game.AcquirerOption{
		game.WithSilenceThreshold(cfg.Game.SilenceThreshold),
		game.WithAcquirerMetrics(sm.metrics),
	}
	if opts.FeedbackEnabled && len(cfg.Coach.WordListPaths) > 0 {
		words, err := game.LoadWords(cfg.Coach.WordListPaths...)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		coach, err := game.NewCoach(orc, surface.Presenter, words,
			game.WithPraiseThreshold(cfg.Coach.PraiseThreshold),
			game.WithPraiseEvery(cfg.Coach.PraiseEvery),
		)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		acqOpts = append(acqOpts, game.WithCoach(coach))
	}
	acq, err := game.NewAcquirer(surface.Recognizer, surface.Presenter, intent, acqOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	ctrl, err := game.NewRoundController(game.ControllerConfig{
		Acquirer:  acq,
		Intent:    intent,
		Oracle:    orc,
		Presenter: surface.Presenter,
		Version:   version,
		Options:   opts,
		Rand:      rng,
		Metrics:   sm.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	words, err := wordSource(cfg.Game, version, orc, rng)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	return game.NewSession(game.SessionConfig{
		ID:          uuid.NewString(),
		Participant: cfg.Game.Participant,
		Controller:  ctrl,
		Words:       words,
		Oracle:      orc,
		Presenter:   surface.Presenter,
		Recorder:    sm.recorder,
		Rounds:      cfg.Game.Rounds,
		Intro:       cfg.Game.Intro.Enabled,
		IntroScript: cfg.Game.Intro.Script,
		Outro:       cfg.Game.Outro.Enabled,
		OutroScript: cfg.Game.Outro.Script,
		Wave: game.Wave{
			Count: cfg.Game.Wave.Count,
			Delay: cfg.Game.Wave.Delay,
			Line:  cfg.Game.Wave.Line,
			Lang:  present.Dutch,
		},
		Metrics: sm.metrics,
	})
}

// wordSource picks where secret words come from for version.
func wordSource(g config.GameConfig, version game.Version, orc oracle.Oracle, rng *rand.Rand) (game.WordSource, error) {
	switch version {
	case game.VersionStudyWords:
		return game.NewWordQueue(game.StudyWords(g.StudyWords), rng), nil
	case game.VersionStudyTopics:
		return game.NewTopicSource(orc, g.StudyTopics, rng)
	default:
		return game.NewWordQueue(game.PlainWords(g.Words), rng), nil
	}
}

// sessionRand returns the random source of session n. A zero seed gives an
// unpredictable source; any other seed makes play order reproducible.
func sessionRand(seed, n uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, n))
}
