package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrWong99/guessbot/internal/config"
	"github.com/MrWong99/guessbot/internal/console"
	"github.com/MrWong99/guessbot/internal/discord"
	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/internal/present"
	"github.com/MrWong99/guessbot/internal/speech"
	"github.com/MrWong99/guessbot/pkg/audio"
	"github.com/MrWong99/guessbot/pkg/provider/stt"
	"github.com/MrWong99/guessbot/pkg/provider/tts"
)

// Surface is the player-facing side of a game: how the host hears and how
// it speaks.
type Surface struct {
	Recognizer speech.Recognizer
	Presenter  present.Presenter

	// Await blocks until a player is ready for another session. Nil means
	// the surface hosts a single session.
	Await func(ctx context.Context) error

	// Close releases the surface. It may be nil.
	Close func() error
}

// Transport opens the surface sessions are played on.
type Transport interface {
	Open(ctx context.Context) (*Surface, error)
}

// ConsoleTransport plays in the local terminal.
type ConsoleTransport struct {
	Config config.ConsoleConfig
}

// Open attaches to stdin and stdout.
func (t *ConsoleTransport) Open(_ context.Context) (*Surface, error) {
	term, err := console.Open(t.Config.HistoryFile)
	if err != nil {
		return nil, fmt.Errorf("app: open console: %w", err)
	}
	return &Surface{
		Recognizer: console.NewRecognizer(term.Reader(), t.Config.MaxWait),
		Presenter:  console.NewPresenter(term.Writer(), term.Width(), t.Config.Pace),
		Close:      term.Close,
	}, nil
}

// DiscordTransport joins a Discord voice channel. The bot stays in the
// channel between sessions and starts the next one when somebody speaks.
type DiscordTransport struct {
	Config      config.DiscordConfig
	Recorder    speech.RecorderConfig
	Voices      map[present.Language]tts.Voice
	Transcriber stt.Transcriber
	Synthesizer tts.Synthesizer
	Metrics     *observe.Metrics

	// Control, if set, is exposed through the /guess slash commands.
	Control discord.SessionControl

	// Platform overrides the Discord bot.
	Platform audio.Platform
}

// Open connects the bot and joins the configured channel.
func (t *DiscordTransport) Open(ctx context.Context) (*Surface, error) {
	if t.Transcriber == nil || t.Synthesizer == nil {
		return nil, errors.New("app: discord transport needs a transcriber and a synthesizer")
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	platform := t.Platform
	if platform == nil {
		bot, err := discord.New(ctx, discord.Config{
			Token:            t.Config.Token,
			GuildID:          t.Config.GuildID,
			SupervisorRoleID: t.Config.SupervisorRoleID,
		})
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		closers = append(closers, bot.Close)
		if t.Control != nil {
			discord.NewGameCommands(bot.Router(), t.Control, bot.Permissions())
		}
		botCtx, stopBot := context.WithCancel(context.WithoutCancel(ctx))
		go func() {
			if err := bot.Run(botCtx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("discord bot stopped", "err", err)
			}
		}()
		closers = append(closers, func() error { stopBot(); return nil })
		platform = bot.Platform()
	}

	conn, err := platform.Connect(ctx, t.Config.ChannelID)
	if err != nil {
		_ = closeAll()
		return nil, fmt.Errorf("app: join voice channel: %w", err)
	}
	closers = append(closers, conn.Disconnect)
	slog.Info("joined voice channel", "guild_id", t.Config.GuildID, "channel_id", t.Config.ChannelID)

	rec := speech.NewRecorder(conn.Input(), t.Recorder)
	voice, err := present.NewVoice(t.Synthesizer, conn.Output(),
		present.WithVoices(t.Voices),
		present.WithMetrics(t.Metrics),
	)
	if err != nil {
		_ = closeAll()
		return nil, fmt.Errorf("app: %w", err)
	}

	return &Surface{
		Recognizer: speech.NewPipeline(rec, t.Transcriber, speech.WithMetrics(t.Metrics)),
		Presenter:  voice,
		Await:      func(ctx context.Context) error { return awaitSpeech(ctx, rec) },
		Close:      closeAll,
	}, nil
}

// awaitSpeech blocks until the recorder captures an utterance. The
// utterance itself only wakes the host and is discarded.
func awaitSpeech(ctx context.Context, src speech.ClipSource) error {
	slog.Info("waiting for a player to speak")
	for {
		clip, err := src.Record(ctx)
		if err != nil {
			return fmt.Errorf("app: await player: %w", err)
		}
		if clip != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idlePause):
		}
	}
}

// idlePause spaces out silent recordings while the channel is empty.
const idlePause = 200 * time.Millisecond

// voiceMap converts configured voices to presenter voices.
func voiceMap(voices map[string]config.VoiceConfig) map[present.Language]tts.Voice {
	out := make(map[present.Language]tts.Voice, len(voices))
	for lang, v := range voices {
		out[present.Language(lang)] = tts.Voice{ID: v.ID, Language: lang}
	}
	return out
}

// recorderConfig converts the recorder section.
func recorderConfig(c config.RecorderConfig) speech.RecorderConfig {
	return speech.RecorderConfig{
		SilenceRMS:      c.SilenceRMS,
		TrailingSilence: c.TrailingSilence,
		MaxWait:         c.MaxWait,
		MaxDuration:     c.MaxDuration,
		TrimRMS:         c.TrimRMS,
		MinSpeech:       c.MinSpeech,
	}
}
