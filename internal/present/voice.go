package present

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/pkg/audio"
	"github.com/MrWong99/guessbot/pkg/provider/tts"
)

// VoiceOption configures a [Voice] presenter.
type VoiceOption func(*Voice)

// WithVoices sets the synthesizer voice per language. Languages without an
// entry fall back to the English voice.
func WithVoices(voices map[Language]tts.Voice) VoiceOption {
	return func(v *Voice) {
		for lang, tv := range voices {
			if tv.Language == "" {
				tv.Language = string(lang)
			}
			v.voices[lang] = tv
		}
	}
}

// WithTrailingPause adds a pause after each line.
func WithTrailingPause(d time.Duration) VoiceOption {
	return func(v *Voice) { v.pause = d }
}

// WithMetrics records time-to-first-audio on m.
func WithMetrics(m *observe.Metrics) VoiceOption {
	return func(v *Voice) { v.metrics = m }
}

// Voice speaks lines through a synthesizer into an audio output, typically
// a voice channel connection.
type Voice struct {
	synth   tts.Synthesizer
	out     chan<- audio.AudioFrame
	voices  map[Language]tts.Voice
	pause   time.Duration
	metrics *observe.Metrics
}

// NewVoice creates a Voice presenter writing to out.
func NewVoice(synth tts.Synthesizer, out chan<- audio.AudioFrame, opts ...VoiceOption) (*Voice, error) {
	if synth == nil {
		return nil, errors.New("present: synthesizer must not be nil")
	}
	if out == nil {
		return nil, errors.New("present: output must not be nil")
	}
	v := &Voice{
		synth:  synth,
		out:    out,
		voices: make(map[Language]tts.Voice),
		pause:  250 * time.Millisecond,
	}
	for _, o := range opts {
		o(v)
	}
	if v.metrics == nil {
		v.metrics = observe.DefaultMetrics()
	}
	return v, nil
}

func (v *Voice) voiceFor(lang Language) tts.Voice {
	if tv, ok := v.voices[lang]; ok {
		return tv
	}
	tv := v.voices[English]
	tv.Language = string(lang)
	return tv
}

// Speak implements [Presenter]. It returns once the last frame has had time
// to play out, measured from the first frame handed to the output.
func (v *Voice) Speak(ctx context.Context, text string, lang Language) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	observe.Logger(ctx).Debug("present: speaking", "lang", lang, "text", text)

	start := time.Now()
	frames, err := v.synth.Synthesize(ctx, text, v.voiceFor(lang))
	if err != nil {
		return fmt.Errorf("present: synthesize: %w", err)
	}

	var (
		first time.Time
		total time.Duration
	)
	for f := range frames {
		if first.IsZero() {
			first = time.Now()
			v.metrics.TTSDuration.Record(ctx, first.Sub(start).Seconds())
		}
		select {
		case v.out <- f:
		case <-ctx.Done():
			return ctx.Err()
		}
		total += f.Duration()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if first.IsZero() {
		return nil
	}

	wait := time.Until(first.Add(total + v.pause))
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Presenter = (*Voice)(nil)
