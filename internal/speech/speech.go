// Package speech turns the player's voice into text, one utterance at a
// time. A [Recorder] cuts an utterance out of the live audio stream and a
// [Pipeline] hands it to a transcriber.
package speech

import (
	"context"
	"fmt"
	"time"

	"github.com/MrWong99/guessbot/internal/observe"
	"github.com/MrWong99/guessbot/pkg/audio"
	"github.com/MrWong99/guessbot/pkg/provider/stt"
)

// Recognizer listens for one utterance. It returns "" with a nil error when
// the player stayed silent or said nothing intelligible.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// ClipSource records one utterance. A nil clip with a nil error means
// silence.
type ClipSource interface {
	Record(ctx context.Context) (*audio.Clip, error)
}

// flusher is implemented by sources that buffer audio between recordings.
type flusher interface {
	Flush() int
}

// PipelineOption configures a [Pipeline].
type PipelineOption func(*Pipeline)

// WithMetrics records recognition and transcription latency on m.
func WithMetrics(m *observe.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// Pipeline is a [Recognizer] that records a clip and transcribes it.
type Pipeline struct {
	source      ClipSource
	transcriber stt.Transcriber
	metrics     *observe.Metrics
}

// NewPipeline creates a Pipeline reading from source.
func NewPipeline(source ClipSource, transcriber stt.Transcriber, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{source: source, transcriber: transcriber}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p
}

// Recognize implements [Recognizer]. Audio buffered before the call, such as
// speech overlapping the host's own prompt, is discarded first.
func (p *Pipeline) Recognize(ctx context.Context) (string, error) {
	start := time.Now()
	if f, ok := p.source.(flusher); ok {
		if n := f.Flush(); n > 0 {
			observe.Logger(ctx).Debug("speech: discarded stale frames", "frames", n)
		}
	}

	clip, err := p.source.Record(ctx)
	if err != nil {
		return "", fmt.Errorf("speech: record: %w", err)
	}
	if clip == nil {
		p.metrics.RecognitionDuration.Record(ctx, time.Since(start).Seconds())
		return "", nil
	}

	sttStart := time.Now()
	text, err := p.transcriber.Transcribe(ctx, *clip)
	p.metrics.STTDuration.Record(ctx, time.Since(sttStart).Seconds())
	if err != nil {
		return "", fmt.Errorf("speech: transcribe: %w", err)
	}
	p.metrics.RecognitionDuration.Record(ctx, time.Since(start).Seconds())

	text = stt.CleanText(text)
	observe.Logger(ctx).Debug("speech: recognized", "text", text, "clip", clip.Duration())
	return text, nil
}

var _ Recognizer = (*Pipeline)(nil)
