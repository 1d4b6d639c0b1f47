package speech

import (
	"context"
	"errors"
	"time"

	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/pkg/audio"
)

// ErrInputClosed is returned when the audio input closes before any speech
// was captured.
var ErrInputClosed = errors.New("speech: audio input closed")

// trimWindow is the analysis window used to cut leading and trailing silence.
const trimWindow = 20 * time.Millisecond

// RecorderConfig tunes utterance detection. Zero fields take the defaults
// applied by [NewRecorder]; a negative PreRoll or MinSpeech disables it.
type RecorderConfig struct {
	// SilenceRMS is the frame RMS at or above which a frame counts as speech.
	SilenceRMS float64

	// TrailingSilence ends the recording once no speech was heard for this
	// long after the player started speaking.
	TrailingSilence time.Duration

	// MaxWait ends the recording as silence when the player does not start
	// speaking within this time.
	MaxWait time.Duration

	// MaxDuration caps a single utterance.
	MaxDuration time.Duration

	// PreRoll is the audio kept from before speech onset so the first
	// syllable is not clipped.
	PreRoll time.Duration

	// TrimRMS is the threshold used to trim leading and trailing silence.
	TrimRMS float64

	// MinSpeech is the shortest trimmed clip that is still transcribed.
	MinSpeech time.Duration
}

// DefaultRecorderConfig returns the defaults: -40 dBFS trimming and a five
// second patience window for children who speak slowly.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		SilenceRMS:      300,
		TrailingSilence: 5 * time.Second,
		MaxWait:         5 * time.Second,
		MaxDuration:     30 * time.Second,
		PreRoll:         300 * time.Millisecond,
		TrimRMS:         audio.DBFSToRMS(-40),
		MinSpeech:       200 * time.Millisecond,
	}
}

func (c RecorderConfig) withDefaults() RecorderConfig {
	d := DefaultRecorderConfig()
	if c.SilenceRMS <= 0 {
		c.SilenceRMS = d.SilenceRMS
	}
	if c.TrailingSilence <= 0 {
		c.TrailingSilence = d.TrailingSilence
	}
	if c.MaxWait <= 0 {
		c.MaxWait = d.MaxWait
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = d.MaxDuration
	}
	switch {
	case c.PreRoll == 0:
		c.PreRoll = d.PreRoll
	case c.PreRoll < 0:
		c.PreRoll = 0
	}
	if c.TrimRMS <= 0 {
		c.TrimRMS = d.TrimRMS
	}
	switch {
	case c.MinSpeech == 0:
		c.MinSpeech = d.MinSpeech
	case c.MinSpeech < 0:
		c.MinSpeech = 0
	}
	return c
}

// Recorder cuts single utterances out of a live frame stream.
//
// Silence is measured on the wall clock rather than by counting quiet frames:
// voice transports such as Discord stop sending packets entirely while
// nobody talks.
type Recorder struct {
	input <-chan audio.AudioFrame
	cfg   RecorderConfig
}

// NewRecorder creates a Recorder reading from input.
func NewRecorder(input <-chan audio.AudioFrame, cfg RecorderConfig) *Recorder {
	return &Recorder{input: input, cfg: cfg.withDefaults()}
}

// Flush drops every frame currently buffered on the input and reports how
// many were dropped.
func (r *Recorder) Flush() int {
	var n int
	for {
		select {
		case _, ok := <-r.input:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// Record blocks until an utterance ends, the player stays silent for
// MaxWait, or ctx is done. It returns nil for silence and for clips that
// are shorter than MinSpeech after trimming.
func (r *Recorder) Record(ctx context.Context) (*audio.Clip, error) {
	var (
		pcm        []byte
		preroll    []audio.AudioFrame
		prerollDur time.Duration
		speaking   bool
		capC       <-chan time.Time
	)

	idle := time.NewTimer(r.cfg.MaxWait)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-idle.C:
			return r.finish(pcm), nil

		case <-capC:
			observe.Logger(ctx).Debug("speech: utterance reached max duration", "max", r.cfg.MaxDuration)
			return r.finish(pcm), nil

		case f, ok := <-r.input:
			if !ok {
				if speaking {
					return r.finish(pcm), nil
				}
				return nil, ErrInputClosed
			}
			f = audio.Convert(f, audio.SpeechFormat)
			if len(f.Data) == 0 {
				continue
			}
			loud := audio.RMS(f.Data) >= r.cfg.SilenceRMS

			if !speaking {
				if !loud {
					preroll = append(preroll, f)
					prerollDur += f.Duration()
					for len(preroll) > 0 && prerollDur > r.cfg.PreRoll {
						prerollDur -= preroll[0].Duration()
						preroll = preroll[1:]
					}
					continue
				}
				speaking = true
				for _, p := range preroll {
					pcm = append(pcm, p.Data...)
				}
				preroll = nil
				capTimer := time.NewTimer(r.cfg.MaxDuration)
				defer capTimer.Stop()
				capC = capTimer.C
			}

			pcm = append(pcm, f.Data...)
			if loud {
				idle.Reset(r.cfg.TrailingSilence)
			}
		}
	}
}

func (r *Recorder) finish(pcm []byte) *audio.Clip {
	if len(pcm) == 0 {
		return nil
	}
	clip := audio.TrimSilence(&audio.Clip{PCM: pcm, Format: audio.SpeechFormat}, r.cfg.TrimRMS, trimWindow)
	if clip == nil || clip.Duration() < r.cfg.MinSpeech {
		return nil
	}
	return clip
}

var _ ClipSource = (*Recorder)(nil)
