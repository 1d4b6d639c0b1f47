package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/MrWong99/guessbot/internal/game"
	"github.com/MrWong99/guessbot/internal/store"
	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"stt":        {"openai", "whisper"},
	"tts":        {"elevenlabs", "coqui"},
	"moderation": {"openai", "sightengine"},
}

// envRef matches ${NAME} references.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, expands ${ENV} references,
// applies defaults and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	raw = ExpandEnv(raw)

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExpandEnv replaces ${NAME} references with the value of the environment
// variable. Unset variables expand to the empty string.
func ExpandEnv(raw []byte) []byte {
	return envRef.ReplaceAllFunc(raw, func(m []byte) []byte {
		name := envRef.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// ApplyDefaults fills zero values with the documented defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Transport.Mode == "" {
		cfg.Transport.Mode = TransportConsole
	}

	g := &cfg.Game
	if g.Version == "" {
		g.Version = string(game.VersionNormal)
	}
	if g.TimeLimit == 0 {
		g.TimeLimit = game.DefaultTimeLimit
	}
	if g.SilenceThreshold == 0 {
		g.SilenceThreshold = game.DefaultSilenceThreshold
	}
	if g.MaxWrongGuesses == 0 {
		g.MaxWrongGuesses = game.DefaultMaxWrongGuesses
	}
	if g.MaxQuestionsNo == 0 {
		g.MaxQuestionsNo = game.DefaultMaxQuestionsNo
	}
	if g.GiveUpAfterGuesses == 0 {
		g.GiveUpAfterGuesses = game.DefaultGiveUpAfterGuesses
	}
	if g.Wave.Count > 0 && g.Wave.Delay == 0 {
		g.Wave.Delay = time.Second
	}

	if cfg.Coach.PraiseThreshold == 0 {
		cfg.Coach.PraiseThreshold = game.DefaultPraiseThreshold
	}
	if cfg.Coach.PraiseEvery == 0 {
		cfg.Coach.PraiseEvery = game.DefaultPraiseEvery
	}

	if cfg.Oracle.MaxRegenerations == 0 {
		cfg.Oracle.MaxRegenerations = 5
	}
	if cfg.Oracle.LeakSimilarity == 0 {
		cfg.Oracle.LeakSimilarity = 0.92
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = store.BackendNone
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Providers
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("llm", cfg.Providers.LLMFallback.Name)
	validateProviderName("stt", cfg.Providers.STTFallback.Name)
	validateProviderName("tts", cfg.Providers.TTSFallback.Name)
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("moderation", cfg.Providers.Moderation.Name)

	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm is required"))
	}
	if cfg.Providers.Moderation.Name == "" {
		slog.Warn("providers.moderation is not configured; generated text is only checked for secret-word leaks")
	}

	// Transport
	switch cfg.Transport.Mode {
	case TransportDiscord:
		d := cfg.Transport.Discord
		if d.Token == "" {
			errs = append(errs, errors.New("transport.discord.token is required when transport.mode is discord"))
		}
		if d.GuildID == "" {
			errs = append(errs, errors.New("transport.discord.guild_id is required when transport.mode is discord"))
		}
		if d.ChannelID == "" {
			errs = append(errs, errors.New("transport.discord.channel_id is required when transport.mode is discord"))
		}
		if cfg.Providers.STT.Name == "" {
			errs = append(errs, errors.New("transport.mode discord requires providers.stt"))
		}
		if cfg.Providers.TTS.Name == "" {
			errs = append(errs, errors.New("transport.mode discord requires providers.tts"))
		}
	case TransportConsole:
	default:
		errs = append(errs, fmt.Errorf("transport.mode %q is invalid; valid values: discord, console", cfg.Transport.Mode))
	}

	// Game
	g := cfg.Game
	version := game.Version(g.Version)
	if !version.Valid() {
		errs = append(errs, fmt.Errorf("game.version %q is invalid; valid values: normal, study_words, study_topics, control, experiment", g.Version))
	}
	switch version {
	case game.VersionStudyWords:
		if len(g.StudyWords) == 0 {
			errs = append(errs, errors.New("game.study_words is required for version study_words"))
		}
	case game.VersionStudyTopics:
		if len(g.StudyTopics) == 0 {
			errs = append(errs, errors.New("game.study_topics is required for version study_topics"))
		}
	default:
		if version.Valid() && len(g.Words) == 0 {
			errs = append(errs, fmt.Errorf("game.words is required for version %s", version))
		}
	}
	if g.Rounds < 0 {
		errs = append(errs, fmt.Errorf("game.rounds %d must not be negative", g.Rounds))
	}
	if g.TimeLimit < 0 {
		errs = append(errs, fmt.Errorf("game.time_limit %s must not be negative", g.TimeLimit))
	}
	for name, v := range map[string]int{
		"game.silence_threshold":     g.SilenceThreshold,
		"game.max_wrong_guesses":     g.MaxWrongGuesses,
		"game.max_questions_no":      g.MaxQuestionsNo,
		"game.give_up_after_guesses": g.GiveUpAfterGuesses,
		"coach.praise_every":         cfg.Coach.PraiseEvery,
	} {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s %d must be at least 1", name, v))
		}
	}
	if g.Wave.Count < 0 || g.Wave.Delay < 0 {
		errs = append(errs, errors.New("game.wave count and delay must not be negative"))
	}

	// Coach
	if cfg.Coach.PraiseThreshold < 0 || cfg.Coach.PraiseThreshold > 100 {
		errs = append(errs, fmt.Errorf("coach.praise_threshold %.1f is out of range [0, 100]", cfg.Coach.PraiseThreshold))
	}
	if feedbackWanted(cfg) && len(cfg.Coach.WordListPaths) == 0 {
		slog.Warn("feedback is enabled but coach.word_list_paths is empty; language feedback is disabled")
	}

	// Oracle
	if cfg.Oracle.MaxRegenerations < 1 {
		errs = append(errs, fmt.Errorf("oracle.max_regenerations %d must be at least 1", cfg.Oracle.MaxRegenerations))
	}
	if cfg.Oracle.LeakSimilarity <= 0 || cfg.Oracle.LeakSimilarity > 1 {
		errs = append(errs, fmt.Errorf("oracle.leak_similarity %.2f is out of range (0, 1]", cfg.Oracle.LeakSimilarity))
	}
	if cfg.Oracle.Timeout < 0 {
		errs = append(errs, fmt.Errorf("oracle.timeout %s must not be negative", cfg.Oracle.Timeout))
	}

	// Store
	switch cfg.Store.Backend {
	case store.BackendNone:
	case store.BackendFile, store.BackendSQLite:
		if cfg.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for backend %s", cfg.Store.Backend))
		}
	case store.BackendPostgres:
		if cfg.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for backend postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is invalid; valid values: file, postgres, sqlite, none", cfg.Store.Backend))
	}

	return errors.Join(errs...)
}

// GameOptions resolves the round options for the configured version with
// the explicit overrides applied.
func (c *Config) GameOptions() (game.Options, error) {
	g := c.Game
	opts, err := game.OptionsFor(game.Version(g.Version))
	if err != nil {
		return game.Options{}, fmt.Errorf("config: %w", err)
	}
	opts.TimeLimit = g.TimeLimit
	opts.MaxWrongGuesses = g.MaxWrongGuesses
	opts.MaxQuestionsNo = g.MaxQuestionsNo
	opts.GiveUpAfterGuesses = g.GiveUpAfterGuesses
	if g.HintsEnabled != nil {
		opts.HintsEnabled = *g.HintsEnabled
	}
	if g.GiveUpOfferEnabled != nil {
		opts.GiveUpOfferEnabled = *g.GiveUpOfferEnabled
	}
	if g.FeedbackEnabled != nil {
		opts.FeedbackEnabled = *g.FeedbackEnabled
	}
	return opts, nil
}

func feedbackWanted(cfg *Config) bool {
	opts, err := cfg.GameOptions()
	return err == nil && opts.FeedbackEnabled
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
