package config_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrWong99/guessbot/internal/config"
	"github.com/MrWong99/guessbot/internal/game"
	oraclemock "github.com/MrWong99/guessbot/internal/oracle/mock"
	presentmock "github.com/MrWong99/guessbot/internal/present/mock"
)

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantSub []string
	}{
		{
			name:    "invalid log level",
			yaml:    validYAML("server:\n  log_level: verbose\n"),
			wantSub: []string{"log_level"},
		},
		{
			name:    "missing llm",
			yaml:    "game:\n  words: [cat]\n",
			wantSub: []string{"providers.llm is required"},
		},
		{
			name:    "invalid version",
			yaml:    validYAML("  version: hard\n"),
			wantSub: []string{"game.version"},
		},
		{
			name:    "normal needs words",
			yaml:    "providers:\n  llm:\n    name: openai\n",
			wantSub: []string{"game.words is required"},
		},
		{
			name:    "study words need map",
			yaml:    validYAML("  version: study_words\n"),
			wantSub: []string{"game.study_words is required"},
		},
		{
			name:    "study topics need topics",
			yaml:    validYAML("  version: study_topics\n"),
			wantSub: []string{"game.study_topics is required"},
		},
		{
			name:    "negative rounds",
			yaml:    validYAML("  rounds: -1\n"),
			wantSub: []string{"game.rounds"},
		},
		{
			name:    "negative threshold",
			yaml:    validYAML("  max_wrong_guesses: -2\n"),
			wantSub: []string{"game.max_wrong_guesses"},
		},
		{
			name:    "invalid transport",
			yaml:    validYAML("transport:\n  mode: telepathy\n"),
			wantSub: []string{"transport.mode"},
		},
		{
			name: "discord needs credentials and speech",
			yaml: validYAML("transport:\n  mode: discord\n"),
			wantSub: []string{
				"transport.discord.token",
				"transport.discord.guild_id",
				"transport.discord.channel_id",
				"providers.stt",
				"providers.tts",
			},
		},
		{
			name:    "praise threshold range",
			yaml:    validYAML("coach:\n  praise_threshold: 120\n"),
			wantSub: []string{"coach.praise_threshold"},
		},
		{
			name:    "leak similarity range",
			yaml:    validYAML("oracle:\n  leak_similarity: 1.5\n"),
			wantSub: []string{"oracle.leak_similarity"},
		},
		{
			name:    "file store needs path",
			yaml:    validYAML("store:\n  backend: file\n"),
			wantSub: []string{"store.path"},
		},
		{
			name:    "postgres store needs dsn",
			yaml:    validYAML("store:\n  backend: postgres\n"),
			wantSub: []string{"store.dsn"},
		},
		{
			name:    "unknown store",
			yaml:    validYAML("store:\n  backend: redis\n"),
			wantSub: []string{"store.backend"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			for _, sub := range tt.wantSub {
				if !strings.Contains(err.Error(), sub) {
					t.Errorf("error should mention %q, got: %v", sub, err)
				}
			}
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: "loud"},
		Game:   config.GameConfig{Version: "normal"},
	}
	config.ApplyDefaults(cfg)
	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, sub := range []string{"log_level", "providers.llm", "game.words"} {
		if !strings.Contains(err.Error(), sub) {
			t.Errorf("joined error should mention %q, got: %v", sub, err)
		}
	}
}

func TestValidate_DiscordComplete(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  llm:
    name: openai
  stt:
    name: whisper
  tts:
    name: coqui
transport:
  mode: discord
  discord:
    token: t
    guild_id: g
    channel_id: c
game:
  words: [cat]
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidProviderNames(t *testing.T) {
	t.Parallel()
	for _, kind := range []string{"llm", "stt", "tts", "moderation"} {
		if len(config.ValidProviderNames[kind]) == 0 {
			t.Errorf("ValidProviderNames[%q] is empty", kind)
		}
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "example-token")
	t.Setenv("OPENAI_API_KEY", "sk-example")

	cfg, err := config.Load("../../configs/example.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport.Mode != config.TransportDiscord {
		t.Errorf("transport.mode = %q, want discord", cfg.Transport.Mode)
	}
	if cfg.Transport.Discord.Token != "example-token" {
		t.Errorf("discord token = %q, want it expanded from the environment", cfg.Transport.Discord.Token)
	}
	if cfg.Providers.STTFallback.Name != "whisper" {
		t.Errorf("providers.stt_fallback = %q, want whisper", cfg.Providers.STTFallback.Name)
	}
	if _, err := cfg.GameOptions(); err != nil {
		t.Errorf("GameOptions: %v", err)
	}
}

func TestExampleConfig_WordListCoversPlay(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "example-token")

	cfg, err := config.Load("../../configs/example.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var paths []string
	for _, p := range cfg.Coach.WordListPaths {
		paths = append(paths, filepath.Join("..", "..", p))
	}
	words, err := game.LoadWords(paths...)
	if err != nil {
		t.Fatalf("LoadWords: %v", err)
	}
	coach, err := game.NewCoach(&oraclemock.Oracle{}, &presentmock.Presenter{}, words)
	if err != nil {
		t.Fatalf("NewCoach: %v", err)
	}

	utterances := append([]string{}, cfg.Game.Words...)
	for w := range cfg.Game.StudyWords {
		utterances = append(utterances, w)
	}
	utterances = append(utterances,
		"can you fly",
		"is it an animal?",
		"Does it have four legs?",
		"is it bigger than a car",
		"Can I eat it?",
		"Is it red or green?",
		"I think it is a bicycle.",
		"Does it live in the water?",
		"Can I have a hint please?",
		"I don't know.",
	)
	for _, u := range utterances {
		if got := coach.Score(u); got < cfg.Coach.PraiseThreshold {
			t.Errorf("Score(%q) = %.0f, want at least %.0f", u, got, cfg.Coach.PraiseThreshold)
		}
	}
}
