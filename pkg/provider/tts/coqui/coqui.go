// Package coqui provides a tts.Synthesizer backed by a self-hosted Coqui TTS
// server.
//
// Two server flavours are supported:
//
//   - [APIStandard]: the stock "tts-server" (GET /api/tts) that selects a
//     speaker by name and a language by ID.
//   - [APIXTTS]: the XTTS API server (POST /tts_to_audio/) that clones the
//     voice from a reference wav path on the server.
//
// Both return a complete WAV file which is decoded and split into frames.
package coqui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrWong99/guessbot/pkg/audio"
	"github.com/MrWong99/guessbot/pkg/provider/tts"
)

// APIMode selects the Coqui server flavour.
type APIMode string

const (
	APIStandard APIMode = "standard"
	APIXTTS     APIMode = "xtts"
)

const frameLength = 100 * time.Millisecond

// Option is a functional option for configuring the Synthesizer.
type Option func(*Synthesizer)

// WithAPIMode selects the server flavour. Default is [APIStandard].
func WithAPIMode(mode APIMode) Option {
	return func(s *Synthesizer) { s.mode = mode }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Synthesizer) { s.client = c }
}

// Synthesizer implements tts.Synthesizer.
type Synthesizer struct {
	serverURL string
	mode      APIMode
	client    *http.Client
}

// New creates a Synthesizer for the server at serverURL.
func New(serverURL string, opts ...Option) (*Synthesizer, error) {
	if serverURL == "" {
		return nil, errors.New("coqui: serverURL must not be empty")
	}
	s := &Synthesizer{
		serverURL: strings.TrimRight(serverURL, "/"),
		mode:      APIStandard,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	if s.mode != APIStandard && s.mode != APIXTTS {
		return nil, fmt.Errorf("coqui: unknown api mode %q", s.mode)
	}
	return s, nil
}

// Synthesize renders text in one request and streams the decoded audio in
// 100 ms frames.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice tts.Voice) (<-chan audio.AudioFrame, error) {
	if s.mode == APIXTTS && voice.ID == "" {
		return nil, errors.New("coqui: xtts mode requires a speaker wav as voice ID")
	}
	if strings.TrimSpace(text) == "" {
		ch := make(chan audio.AudioFrame)
		close(ch)
		return ch, nil
	}

	req, err := s.newRequest(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coqui: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coqui: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coqui: server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	clip, err := audio.DecodeWAV(body)
	if err != nil {
		return nil, fmt.Errorf("coqui: %w", err)
	}

	frames := audio.Frames(clip.PCM, clip.Format, frameLength)
	out := make(chan audio.AudioFrame, len(frames))
	for _, f := range frames {
		out <- f
	}
	close(out)
	return out, nil
}

func (s *Synthesizer) newRequest(ctx context.Context, text string, voice tts.Voice) (*http.Request, error) {
	switch s.mode {
	case APIXTTS:
		payload, err := json.Marshal(map[string]string{
			"text":        text,
			"speaker_wav": voice.ID,
			"language":    voice.Language,
		})
		if err != nil {
			return nil, fmt.Errorf("coqui: encode request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/tts_to_audio/", bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("coqui: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	default:
		q := url.Values{}
		q.Set("text", text)
		if voice.ID != "" {
			q.Set("speaker_id", voice.ID)
		}
		if voice.Language != "" {
			q.Set("language_id", voice.Language)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.serverURL+"/api/tts?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("coqui: build request: %w", err)
		}
		return req, nil
	}
}

var _ tts.Synthesizer = (*Synthesizer)(nil)
