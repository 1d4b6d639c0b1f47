// Package app wires the guessing game host into a running application.
//
// New builds the store, oracle factory, transport and HTTP endpoints from
// the config; Run serves health and metrics while sessions are played; and
// Shutdown releases everything in reverse order.
//
// For testing, inject doubles via functional options (WithTransport,
// WithOracle, WithStore). When an option is not provided, New creates the
// real implementation from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/guessbot/internal/config"
	"github.com/MrWong99/guessbot/internal/console"
	"github.com/MrWong99/guessbot/internal/discord"
	"github.com/MrWong99/guessbot/internal/game"
	"github.com/MrWong99/guessbot/internal/health"
	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/internal/oracle"
	"github.com/MrWong99/guessbot/internal/store"
	"github.com/MrWong99/guessbot/pkg/provider/llm"
	"github.com/MrWong99/guessbot/pkg/provider/moderation"
	"github.com/MrWong99/guessbot/pkg/provider/stt"
	"github.com/MrWong99/guessbot/pkg/provider/tts"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured. Populated by main.go via the config registry.
type Providers struct {
	LLM        llm.Provider
	STT        stt.Transcriber
	TTS        tts.Synthesizer
	Moderation moderation.Checker
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	transport Transport
	store     store.Store
	oracle    oracle.Oracle
	metrics   *observe.Metrics
	health    *health.Handler
	sessions  *SessionManager

	// ready is set while a surface is open.
	ready atomic.Bool

	// closers are called in reverse order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithTransport injects the surface transport instead of building one from
// the transport config.
func WithTransport(t Transport) Option {
	return func(a *App) { a.transport = t }
}

// WithStore injects the round store instead of opening the configured one.
func WithStore(s store.Store) Option {
	return func(a *App) { a.store = s }
}

// WithOracle injects the oracle used for every session.
func WithOracle(o oracle.Oracle) Option {
	return func(a *App) { a.oracle = o }
}

// WithMetrics sets the metrics instruments. Defaults to
// observe.DefaultMetrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry).
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config must not be nil")
	}
	if providers == nil {
		providers = &Providers{}
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	if err := a.initStore(ctx); err != nil {
		return nil, fmt.Errorf("app: init store: %w", err)
	}
	if a.oracle == nil && providers.LLM == nil {
		a.closeAll()
		return nil, errors.New("app: an LLM provider or an oracle is required")
	}

	var recorder game.RoundRecorder
	if a.store != nil {
		recorder = a.store
	}
	sm, err := NewSessionManager(SessionManagerConfig{
		Config:    cfg,
		Oracle:    a.oracle,
		NewOracle: a.newOracle,
		Recorder:  recorder,
		Metrics:   a.metrics,
	})
	if err != nil {
		a.closeAll()
		return nil, err
	}
	a.sessions = sm

	if err := a.initTransport(); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init transport: %w", err)
	}

	a.health = health.New(health.Checker{Name: "surface", Check: a.checkSurface})
	if a.store != nil {
		a.health.Add(health.Checker{Name: "store", Check: a.store.Ping})
	}
	return a, nil
}

// initStore opens the configured round store unless one was injected.
func (a *App) initStore(ctx context.Context) error {
	if a.store == nil {
		s, err := store.Open(ctx, store.Config{
			Backend: a.cfg.Store.Backend,
			Path:    a.cfg.Store.Path,
			DSN:     a.cfg.Store.DSN,
		})
		if err != nil {
			return err
		}
		if s == nil {
			return nil
		}
		a.store = s
		slog.Info("round store opened", "backend", a.cfg.Store.Backend)
	}
	a.closers = append(a.closers, a.store.Close)
	return nil
}

// initTransport builds the transport for the configured mode unless one
// was injected.
func (a *App) initTransport() error {
	if a.transport != nil {
		return nil
	}
	switch a.cfg.Transport.Mode {
	case config.TransportDiscord:
		a.transport = &DiscordTransport{
			Config:      a.cfg.Transport.Discord,
			Recorder:    recorderConfig(a.cfg.Recorder),
			Voices:      voiceMap(a.cfg.Transport.Voices),
			Transcriber: a.providers.STT,
			Synthesizer: a.providers.TTS,
			Metrics:     a.metrics,
			Control:     sessionControl{a.sessions},
		}
	case config.TransportConsole, "":
		a.transport = &ConsoleTransport{Config: a.cfg.Transport.Console}
	default:
		return fmt.Errorf("unknown transport mode %q", a.cfg.Transport.Mode)
	}
	return nil
}

// newOracle builds the LLM oracle from the oracle section of cfg.
func (a *App) newOracle(cfg *config.Config) (oracle.Oracle, error) {
	o := cfg.Oracle
	opts := []oracle.Option{
		oracle.WithMaxRegenerations(o.MaxRegenerations),
		oracle.WithLeakSimilarity(o.LeakSimilarity),
		oracle.WithMetrics(a.metrics),
	}
	if a.providers.Moderation != nil {
		opts = append(opts, oracle.WithModeration(a.providers.Moderation))
	}
	if o.SystemPrompt != "" {
		opts = append(opts, oracle.WithSystemPrompt(o.SystemPrompt))
	}
	if o.LearnerProfile != "" {
		opts = append(opts, oracle.WithLearnerProfile(o.LearnerProfile))
	}
	if o.Timeout > 0 {
		opts = append(opts, oracle.WithTimeout(o.Timeout))
	}
	return oracle.New(a.providers.LLM, opts...)
}

// sessionControl exposes the session manager to the Discord operator
// commands.
type sessionControl struct{ sm *SessionManager }

func (c sessionControl) Status() (discord.SessionStatus, bool) {
	info := c.sm.Info()
	if info.SessionID == "" {
		return discord.SessionStatus{}, false
	}
	return discord.SessionStatus{
		SessionID:   info.SessionID,
		Participant: info.Participant,
		Version:     string(info.Version),
		StartedAt:   info.StartedAt,
	}, true
}

func (c sessionControl) Stop() { c.sm.Stop() }

func (a *App) checkSurface(context.Context) error {
	if !a.ready.Load() {
		return errors.New("no player surface open")
	}
	return nil
}

// Sessions returns the session manager, for config reloads.
func (a *App) Sessions() *SessionManager { return a.sessions }

// Health returns the health handler.
func (a *App) Health() *health.Handler { return a.health }

// Handler returns the HTTP handler serving health probes and Prometheus
// metrics.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	a.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	return observe.Middleware(a.metrics)(mux)
}

// Run serves the HTTP endpoints and plays sessions until play ends or ctx
// is cancelled. Console play ends after one session; Discord play runs
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	playCtx, stopPlay := context.WithCancel(ctx)
	defer stopPlay()

	if addr := a.cfg.Server.ListenAddr; addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           a.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			slog.Info("observability server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("app: http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-playCtx.Done()
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	g.Go(func() error {
		defer stopPlay()
		return a.play(playCtx)
	})
	return g.Wait()
}

// play opens the surface and runs sessions on it.
func (a *App) play(ctx context.Context) error {
	surface, err := a.transport.Open(ctx)
	if err != nil {
		return err
	}
	a.ready.Store(true)
	defer func() {
		a.ready.Store(false)
		if surface.Close != nil {
			if err := surface.Close(); err != nil {
				slog.Warn("failed to close surface", "err", err)
			}
		}
	}()

	for {
		summaries, err := a.sessions.Run(ctx, surface)
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, console.ErrClosed):
			slog.Info("console closed", "rounds", len(summaries))
			return nil
		case errors.Is(err, game.ErrSessionTerminated):
			slog.Info("session ended by player", "rounds", len(summaries))
		case errors.Is(err, context.Canceled):
			slog.Info("session stopped by operator", "rounds", len(summaries))
		case err != nil:
			if surface.Await == nil {
				return fmt.Errorf("app: session: %w", err)
			}
			slog.Error("session failed", "rounds", len(summaries), "err", err)
		default:
			slog.Info("session complete", "rounds", len(summaries))
		}

		if surface.Await == nil {
			return nil
		}
		if err := surface.Await(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Shutdown stops the active session and releases every subsystem in
// reverse-init order. If ctx expires first, remaining closers are skipped
// and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))
		if a.sessions != nil {
			a.sessions.Stop()
		}
		for i := len(a.closers) - 1; i >= 0; i-- {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", i+1)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := a.closers[i](); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}
		slog.Info("shutdown complete")
	})
	return shutdownErr
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
