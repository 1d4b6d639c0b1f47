// Package config provides the configuration schema, loader, and provider
// registry for guessbot.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// TransportMode selects how the host talks to the player.
type TransportMode string

const (
	// TransportDiscord joins a Discord voice channel.
	TransportDiscord TransportMode = "discord"

	// TransportConsole plays in the local terminal with typed input.
	TransportConsole TransportMode = "console"
)

// IsValid reports whether m is a recognised transport mode.
func (m TransportMode) IsValid() bool {
	return m == TransportDiscord || m == TransportConsole
}

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Transport TransportConfig `yaml:"transport"`
	Game      GameConfig      `yaml:"game"`
	Coach     CoachConfig     `yaml:"coach"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Recorder  RecorderConfig  `yaml:"recorder"`
	Store     StoreConfig     `yaml:"store"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address serving /healthz, /readyz and /metrics
	// (e.g., ":9090"). Empty disables the HTTP server.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares which provider implementation to use for each
// external capability. Each field selects a named provider registered in
// the [Registry].
type ProvidersConfig struct {
	LLM ProviderEntry `yaml:"llm"`

	// LLMFallback, if named, takes over when the primary LLM fails.
	LLMFallback ProviderEntry `yaml:"llm_fallback"`

	STT         ProviderEntry `yaml:"stt"`
	STTFallback ProviderEntry `yaml:"stt_fallback"`
	TTS         ProviderEntry `yaml:"tts"`
	TTSFallback ProviderEntry `yaml:"tts_fallback"`
	Moderation  ProviderEntry `yaml:"moderation"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "whisper").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	// ${ENV} references are expanded when the file is loaded.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// TransportConfig selects the player-facing surface.
type TransportConfig struct {
	Mode    TransportMode          `yaml:"mode"`
	Discord DiscordConfig          `yaml:"discord"`
	Console ConsoleConfig          `yaml:"console"`
	Voices  map[string]VoiceConfig `yaml:"voices"`
}

// DiscordConfig locates the voice channel the bot joins.
type DiscordConfig struct {
	Token     string `yaml:"token"`
	GuildID   string `yaml:"guild_id"`
	ChannelID string `yaml:"channel_id"`

	// SupervisorRoleID may use /guess stop. Empty allows everybody.
	SupervisorRoleID string `yaml:"supervisor_role_id"`
}

// ConsoleConfig tunes the terminal surface.
type ConsoleConfig struct {
	// HistoryFile keeps typed lines across runs. Empty disables history.
	HistoryFile string `yaml:"history_file"`

	// Pace delays each printed word to mimic speech. Zero prints at once.
	Pace time.Duration `yaml:"pace"`

	// MaxWait is how long the console waits for a typed line before it
	// counts as silence. Zero waits forever.
	MaxWait time.Duration `yaml:"max_wait"`
}

// VoiceConfig picks the TTS voice for one language, keyed by ISO-639-1
// code in [TransportConfig.Voices].
type VoiceConfig struct {
	ID string `yaml:"id"`
}

// GameConfig holds the rules of a session.
type GameConfig struct {
	// Version selects the learning aids: normal, study_words, study_topics,
	// control or experiment.
	Version string `yaml:"version"`

	// Participant is stored with every recorded round.
	Participant string `yaml:"participant"`

	// Rounds per session. Zero plays until the player quits or the words
	// run out.
	Rounds int `yaml:"rounds"`

	// Words are the secret words of the normal, control and experiment
	// versions.
	Words []string `yaml:"words"`

	// StudyWords maps secret words to hint properties for study_words.
	StudyWords map[string][]string `yaml:"study_words"`

	// StudyTopics are the topics study_topics draws words from.
	StudyTopics []string `yaml:"study_topics"`

	TimeLimit          time.Duration `yaml:"time_limit"`
	SilenceThreshold   int           `yaml:"silence_threshold"`
	MaxWrongGuesses    int           `yaml:"max_wrong_guesses"`
	MaxQuestionsNo     int           `yaml:"max_questions_no"`
	GiveUpAfterGuesses int           `yaml:"give_up_after_guesses"`

	// HintsEnabled, GiveUpOfferEnabled and FeedbackEnabled override the
	// version's defaults when set.
	HintsEnabled       *bool `yaml:"hints_enabled"`
	GiveUpOfferEnabled *bool `yaml:"give_up_offer_enabled"`
	FeedbackEnabled    *bool `yaml:"feedback_enabled"`

	Intro NarrationConfig `yaml:"intro"`
	Outro NarrationConfig `yaml:"outro"`
	Wave  WaveConfig      `yaml:"wave"`

	// Seed makes word order reproducible. Zero picks a random seed.
	Seed uint64 `yaml:"seed"`
}

// NarrationConfig enables the Dutch intro or outro. Script replaces the
// generated lines.
type NarrationConfig struct {
	Enabled bool     `yaml:"enabled"`
	Script  []string `yaml:"script"`
}

// WaveConfig is the filler played between rounds.
type WaveConfig struct {
	Count int           `yaml:"count"`
	Delay time.Duration `yaml:"delay"`
	Line  string        `yaml:"line"`
}

// CoachConfig configures language feedback.
type CoachConfig struct {
	// WordListPaths are files with one English word per line.
	WordListPaths   []string `yaml:"word_list_paths"`
	PraiseThreshold float64  `yaml:"praise_threshold"`
	PraiseEvery     int      `yaml:"praise_every"`
}

// OracleConfig tunes the language oracle.
type OracleConfig struct {
	MaxRegenerations int           `yaml:"max_regenerations"`
	Timeout          time.Duration `yaml:"timeout"`
	SystemPrompt     string        `yaml:"system_prompt"`
	LearnerProfile   string        `yaml:"learner_profile"`
	LeakSimilarity   float64       `yaml:"leak_similarity"`
}

// RecorderConfig tunes utterance capture from the voice channel.
type RecorderConfig struct {
	SilenceRMS      float64       `yaml:"silence_rms"`
	TrailingSilence time.Duration `yaml:"trailing_silence"`
	MaxWait         time.Duration `yaml:"max_wait"`
	MaxDuration     time.Duration `yaml:"max_duration"`
	TrimRMS         float64       `yaml:"trim_rms"`
	MinSpeech       time.Duration `yaml:"min_speech"`
}

// StoreConfig selects where finished rounds are persisted.
type StoreConfig struct {
	// Backend is file, postgres, sqlite or none.
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}
