// Package elevenlabs provides a tts.Synthesizer backed by the ElevenLabs
// streaming WebSocket API.
package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/coder/websocket"

	"github.com/MrWong99/guessbot/pkg/audio"
	"github.com/MrWong99/guessbot/pkg/provider/tts"
)

const (
	defaultEndpoint = "wss://api.elevenlabs.io"
	defaultModel    = "eleven_flash_v2_5"
	outputFormat    = "pcm_16000"
	outputRate      = 16000
)

// Option is a functional option for configuring the Synthesizer.
type Option func(*Synthesizer)

// WithModel sets the ElevenLabs model ID. Multilingual models are required
// for Dutch narration.
func WithModel(model string) Option {
	return func(s *Synthesizer) { s.model = model }
}

// WithEndpoint overrides the websocket origin (used by tests).
func WithEndpoint(endpoint string) Option {
	return func(s *Synthesizer) { s.endpoint = strings.TrimRight(endpoint, "/") }
}

// Synthesizer implements tts.Synthesizer.
type Synthesizer struct {
	apiKey   string
	model    string
	endpoint string
}

// New creates a Synthesizer. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Synthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: apiKey must not be empty")
	}
	s := &Synthesizer{apiKey: apiKey, model: defaultModel, endpoint: defaultEndpoint}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// textMessage is the JSON payload for the opening, body and flush messages.
type textMessage struct {
	Text          string         `json:"text"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
	XiAPIKey      string         `json:"xi_api_key,omitempty"`
	Flush         bool           `json:"flush,omitempty"`
}

type audioResponse struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
	Message string `json:"message,omitempty"`
}

func (s *Synthesizer) streamURL(voice tts.Voice) string {
	q := url.Values{}
	q.Set("model_id", s.model)
	q.Set("output_format", outputFormat)
	if voice.Language != "" {
		q.Set("language_code", voice.Language)
	}
	return fmt.Sprintf("%s/v1/text-to-speech/%s/stream-input?%s", s.endpoint, url.PathEscape(voice.ID), q.Encode())
}

// Synthesize sends text as a single flush-terminated message and streams
// back 16 kHz mono PCM frames.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice tts.Voice) (<-chan audio.AudioFrame, error) {
	if voice.ID == "" {
		return nil, errors.New("elevenlabs: voice ID must not be empty")
	}
	if strings.TrimSpace(text) == "" {
		ch := make(chan audio.AudioFrame)
		close(ch)
		return ch, nil
	}

	conn, _, err := websocket.Dial(ctx, s.streamURL(voice), nil)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: dial: %w", err)
	}
	conn.SetReadLimit(1 << 22)

	messages := []textMessage{
		{Text: " ", VoiceSettings: &voiceSettings{Stability: 0.5, SimilarityBoost: 0.75}, XiAPIKey: s.apiKey},
		{Text: text + " ", Flush: true},
		{Text: ""},
	}
	for _, m := range messages {
		payload, _ := json.Marshal(m)
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			conn.Close(websocket.StatusInternalError, "write failed")
			return nil, fmt.Errorf("elevenlabs: send text: %w", err)
		}
	}

	out := make(chan audio.AudioFrame, 64)
	go func() {
		defer close(out)
		defer conn.Close(websocket.StatusNormalClosure, "done")

		var chunk int
		for {
			_, msg, err := conn.Read(ctx)
			if err != nil {
				if websocket.CloseStatus(err) != websocket.StatusNormalClosure && ctx.Err() == nil {
					slog.Warn("elevenlabs: stream ended early", "err", err)
				}
				return
			}
			var resp audioResponse
			if err := json.Unmarshal(msg, &resp); err != nil {
				continue
			}
			if resp.Message != "" && resp.Audio == "" {
				slog.Warn("elevenlabs: server message", "message", resp.Message)
			}
			if resp.Audio != "" {
				pcm, err := base64.StdEncoding.DecodeString(resp.Audio)
				if err == nil && len(pcm) > 0 {
					frame := audio.AudioFrame{Data: pcm, SampleRate: outputRate, Channels: 1}
					select {
					case out <- frame:
					case <-ctx.Done():
						return
					}
					chunk++
				}
			}
			if resp.IsFinal {
				slog.Debug("elevenlabs: synthesis complete", "chunks", chunk)
				return
			}
		}
	}()
	return out, nil
}

var _ tts.Synthesizer = (*Synthesizer)(nil)
