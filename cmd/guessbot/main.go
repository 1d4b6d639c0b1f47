// Command guessbot hosts the spoken word-guessing game, either in a Discord
// voice channel or in the local terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/guessbot/internal/app"
	"github.com/MrWong99/guessbot/internal/config"
	"github.com/MrWong99/guessbot/internal/game"
	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/internal/resilience"
	"github.com/MrWong99/guessbot/pkg/provider/llm"
	"github.com/MrWong99/guessbot/pkg/provider/llm/anyllm"
	oallm "github.com/MrWong99/guessbot/pkg/provider/llm/openai"
	"github.com/MrWong99/guessbot/pkg/provider/moderation"
	oamod "github.com/MrWong99/guessbot/pkg/provider/moderation/openai"
	"github.com/MrWong99/guessbot/pkg/provider/moderation/sightengine"
	"github.com/MrWong99/guessbot/pkg/provider/stt"
	oastt "github.com/MrWong99/guessbot/pkg/provider/stt/openai"
	"github.com/MrWong99/guessbot/pkg/provider/stt/whisper"
	"github.com/MrWong99/guessbot/pkg/provider/tts"
	"github.com/MrWong99/guessbot/pkg/provider/tts/coqui"
	"github.com/MrWong99/guessbot/pkg/provider/tts/elevenlabs"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	watch := flag.Bool("watch", true, "reload game settings when the config file changes")
	flag.Parse()

	// Variables already set in the environment win over the dotenv file.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "guessbot: load %s: %v\n", *envFile, err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "guessbot: config file %q not found; copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "guessbot: %v\n", err)
		}
		return 1
	}

	level := new(slog.LevelVar)
	level.Set(slogLevel(cfg.Server.LogLevel))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("guessbot starting",
		"version", version,
		"config", *configPath,
		"transport", cfg.Transport.Mode,
		"game_version", cfg.Game.Version,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg, observe.DefaultMetrics())
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	application, err := app.New(ctx, cfg, providers)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	if *watch {
		w, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
			applyReload(level, application.Sessions(), config.Diff(old, new), new)
		})
		if err != nil {
			slog.Warn("config watcher disabled", "err", err)
		} else {
			defer w.Stop()
		}
	}

	if cfg.Transport.Mode != config.TransportConsole {
		printStartupSummary(cfg)
	}

	runErr := application.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("run error", "err", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// applyReload applies what can change while running and reports what
// cannot.
func applyReload(level *slog.LevelVar, sessions *app.SessionManager, d config.ConfigDiff, cfg *config.Config) {
	if d.Empty() {
		return
	}
	if d.LogLevelChanged {
		level.Set(slogLevel(d.NewLogLevel))
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if d.GameChanged || d.CoachChanged || d.OracleChanged {
		sessions.Reload(cfg)
	}
	if len(d.RestartRequired) > 0 {
		slog.Warn("config sections changed that only apply after a restart", "sections", d.RestartRequired)
	}
}

// builtinProviders maps provider kinds to the implementations that ship
// with guessbot. Used for startup logging.
var builtinProviders = map[string][]string{
	"llm":        config.ValidProviderNames["llm"],
	"stt":        {"openai", "whisper"},
	"tts":        {"elevenlabs", "coqui"},
	"moderation": {"openai", "sightengine"},
}

// anyllmBackends are served through any-llm-go. They share the same
// pattern: optional APIKey + optional BaseURL.
var anyllmBackends = []string{"anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"}

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oallm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oallm.WithBaseURL(entry.BaseURL))
		}
		if org := optString(entry.Options, "organization"); org != "" {
			opts = append(opts, oallm.WithOrganization(org))
		}
		if d := optDuration(entry.Options, "timeout"); d > 0 {
			opts = append(opts, oallm.WithTimeout(d))
		}
		return oallm.New(entry.APIKey, entry.Model, opts...)
	})
	for _, backend := range anyllmBackends {
		reg.RegisterLLM(backend, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(backend, entry.Model, opts...)
		})
	}

	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		var opts []oastt.Option
		if entry.BaseURL != "" {
			opts = append(opts, oastt.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, oastt.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, oastt.WithLanguage(lang))
		}
		if prompt := optString(entry.Options, "prompt"); prompt != "" {
			opts = append(opts, oastt.WithPrompt(prompt))
		}
		return oastt.New(entry.APIKey, opts...)
	})
	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		if prompt := optString(entry.Options, "prompt"); prompt != "" {
			opts = append(opts, whisper.WithPrompt(prompt))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Synthesizer, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, elevenlabs.WithEndpoint(entry.BaseURL))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})
	reg.RegisterTTS("coqui", func(entry config.ProviderEntry) (tts.Synthesizer, error) {
		var opts []coqui.Option
		if mode := optString(entry.Options, "api_mode"); mode != "" {
			opts = append(opts, coqui.WithAPIMode(coqui.APIMode(mode)))
		}
		return coqui.New(entry.BaseURL, opts...)
	})

	reg.RegisterModeration("openai", func(entry config.ProviderEntry) (moderation.Checker, error) {
		var opts []oamod.Option
		if entry.BaseURL != "" {
			opts = append(opts, oamod.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, oamod.WithModel(entry.Model))
		}
		return oamod.New(entry.APIKey, opts...)
	})
	reg.RegisterModeration("sightengine", func(entry config.ProviderEntry) (moderation.Checker, error) {
		user := optString(entry.Options, "api_user")
		secret := optString(entry.Options, "api_secret")
		if secret == "" {
			secret = entry.APIKey
		}
		var opts []sightengine.Option
		if entry.BaseURL != "" {
			opts = append(opts, sightengine.WithEndpoint(entry.BaseURL))
		}
		return sightengine.New(user, secret, opts...)
	})

	for kind, names := range builtinProviders {
		for _, name := range names {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// buildProviders instantiates all providers named in cfg using the registry
// and returns them in an [app.Providers] struct. A named fallback wraps its
// primary in a circuit-breaking failover group.
func buildProviders(cfg *config.Config, reg *config.Registry, m *observe.Metrics) (*app.Providers, error) {
	ps := &app.Providers{}
	pc := cfg.Providers

	if pc.LLM.Name != "" {
		p, err := reg.CreateLLM(pc.LLM)
		if err != nil {
			return nil, fmt.Errorf("create llm provider %q: %w", pc.LLM.Name, err)
		}
		slog.Info("provider created", "kind", "llm", "name", pc.LLM.Name)
		ps.LLM = p
		if pc.LLMFallback.Name != "" {
			fb, err := reg.CreateLLM(pc.LLMFallback)
			if err != nil {
				return nil, fmt.Errorf("create llm fallback %q: %w", pc.LLMFallback.Name, err)
			}
			group := resilience.NewLLMFallback(p, pc.LLM.Name, fallbackConfig("llm", m))
			group.AddFallback(pc.LLMFallback.Name, fb)
			ps.LLM = group
			slog.Info("provider fallback enabled", "kind", "llm", "name", pc.LLMFallback.Name)
		}
	}

	if pc.STT.Name != "" {
		entry := sttEntry(pc.STT, cfg)
		p, err := reg.CreateSTT(entry)
		if err != nil {
			return nil, fmt.Errorf("create stt provider %q: %w", pc.STT.Name, err)
		}
		slog.Info("provider created", "kind", "stt", "name", pc.STT.Name)
		ps.STT = p
		if pc.STTFallback.Name != "" {
			fb, err := reg.CreateSTT(sttEntry(pc.STTFallback, cfg))
			if err != nil {
				return nil, fmt.Errorf("create stt fallback %q: %w", pc.STTFallback.Name, err)
			}
			group := resilience.NewSTTFallback(p, pc.STT.Name, fallbackConfig("stt", m))
			group.AddFallback(pc.STTFallback.Name, fb)
			ps.STT = group
			slog.Info("provider fallback enabled", "kind", "stt", "name", pc.STTFallback.Name)
		}
	}

	if pc.TTS.Name != "" {
		p, err := reg.CreateTTS(pc.TTS)
		if err != nil {
			return nil, fmt.Errorf("create tts provider %q: %w", pc.TTS.Name, err)
		}
		slog.Info("provider created", "kind", "tts", "name", pc.TTS.Name)
		ps.TTS = p
		if pc.TTSFallback.Name != "" {
			fb, err := reg.CreateTTS(pc.TTSFallback)
			if err != nil {
				return nil, fmt.Errorf("create tts fallback %q: %w", pc.TTSFallback.Name, err)
			}
			group := resilience.NewTTSFallback(p, pc.TTS.Name, fallbackConfig("tts", m))
			group.AddFallback(pc.TTSFallback.Name, fb)
			ps.TTS = group
			slog.Info("provider fallback enabled", "kind", "tts", "name", pc.TTSFallback.Name)
		}
	}

	if pc.Moderation.Name != "" {
		p, err := reg.CreateModeration(pc.Moderation)
		if err != nil {
			return nil, fmt.Errorf("create moderation provider %q: %w", pc.Moderation.Name, err)
		}
		slog.Info("provider created", "kind", "moderation", "name", pc.Moderation.Name)
		ps.Moderation = p
	}

	return ps, nil
}

func fallbackConfig(kind string, m *observe.Metrics) resilience.FallbackConfig {
	return resilience.FallbackConfig{Kind: kind, Metrics: m}
}

// sttEntry pins the transcription language to English for the control
// version unless the entry sets one, since that version never expects
// Dutch input.
func sttEntry(entry config.ProviderEntry, cfg *config.Config) config.ProviderEntry {
	if game.Version(cfg.Game.Version) != game.VersionControl || optString(entry.Options, "language") != "" {
		return entry
	}
	opts := make(map[string]any, len(entry.Options)+1)
	for k, v := range entry.Options {
		opts[k] = v
	}
	opts["language"] = "en"
	entry.Options = opts
	return entry
}

var (
	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
	summaryTitle = lipgloss.NewStyle().Bold(true)
	summaryKey   = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("#888888"))
)

func printStartupSummary(cfg *config.Config) {
	rows := []string{summaryTitle.Render("guessbot: startup summary"), ""}
	row := func(k, v string) {
		rows = append(rows, summaryKey.Render(k)+" "+v)
	}
	row("LLM", providerLabel(cfg.Providers.LLM))
	row("STT", providerLabel(cfg.Providers.STT))
	row("TTS", providerLabel(cfg.Providers.TTS))
	row("Moderation", providerLabel(cfg.Providers.Moderation))
	row("Transport", string(cfg.Transport.Mode))
	row("Version", cfg.Game.Version)
	rounds := "until the player stops"
	if cfg.Game.Rounds > 0 {
		rounds = fmt.Sprintf("%d", cfg.Game.Rounds)
	}
	row("Rounds", rounds)
	row("Store", cfg.Store.Backend)
	if cfg.Server.ListenAddr != "" {
		row("Listen addr", cfg.Server.ListenAddr)
	}
	fmt.Println(summaryBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func providerLabel(e config.ProviderEntry) string {
	switch {
	case e.Name == "":
		return "(not configured)"
	case e.Model != "":
		return e.Name + " / " + e.Model
	default:
		return e.Name
	}
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	s, _ := opts[key].(string)
	return s
}

// optDuration parses a duration string such as "30s" from provider options.
func optDuration(opts map[string]any, key string) time.Duration {
	d, err := time.ParseDuration(optString(opts, key))
	if err != nil {
		return 0
	}
	return d
}
