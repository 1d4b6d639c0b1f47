package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/coder/websocket"

	"github.com/MrWong99/guessbot/pkg/provider/tts"
)

func TestNew_EmptyAPIKey(t *testing.T) {
	t.Parallel()
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestStreamURL(t *testing.T) {
	t.Parallel()

	s, _ := New("key", WithModel("eleven_multilingual_v2"))
	raw := s.streamURL(tts.Voice{ID: "voice123", Language: "nl"})
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Path != "/v1/text-to-speech/voice123/stream-input" {
		t.Errorf("path = %q", u.Path)
	}
	q := u.Query()
	if q.Get("model_id") != "eleven_multilingual_v2" {
		t.Errorf("model_id = %q", q.Get("model_id"))
	}
	if q.Get("output_format") != "pcm_16000" {
		t.Errorf("output_format = %q", q.Get("output_format"))
	}
	if q.Get("language_code") != "nl" {
		t.Errorf("language_code = %q", q.Get("language_code"))
	}
}

func TestSynthesize_RoundTrip(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		received []textMessage
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		ctx := r.Context()
		for range 3 {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var m textMessage
			json.Unmarshal(data, &m)
			mu.Lock()
			received = append(received, m)
			mu.Unlock()
		}
		for _, chunk := range [][]byte{make([]byte, 3200), make([]byte, 1600)} {
			msg, _ := json.Marshal(audioResponse{Audio: base64.StdEncoding.EncodeToString(chunk)})
			conn.Write(ctx, websocket.MessageText, msg)
		}
		final, _ := json.Marshal(audioResponse{IsFinal: true})
		conn.Write(ctx, websocket.MessageText, final)
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	s, _ := New("secret", WithEndpoint("ws://"+strings.TrimPrefix(srv.URL, "http://")))
	ch, err := s.Synthesize(context.Background(), "You got it! Well done!", tts.Voice{ID: "v1", Language: "en"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	var total int
	for f := range ch {
		if f.SampleRate != 16000 || f.Channels != 1 {
			t.Errorf("frame format = %d/%d", f.SampleRate, f.Channels)
		}
		total += len(f.Data)
	}
	if total != 4800 {
		t.Errorf("total bytes = %d, want 4800", total)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 3 {
		t.Fatalf("received %d messages, want 3", len(received))
	}
	if received[0].XiAPIKey != "secret" || received[0].VoiceSettings == nil {
		t.Errorf("opening message = %+v", received[0])
	}
	if received[1].Text != "You got it! Well done! " || !received[1].Flush {
		t.Errorf("body message = %+v", received[1])
	}
	if received[2].Text != "" {
		t.Errorf("closing message text = %q", received[2].Text)
	}
}

func TestSynthesize_EmptyVoice(t *testing.T) {
	t.Parallel()
	s, _ := New("key")
	if _, err := s.Synthesize(context.Background(), "hi", tts.Voice{}); err == nil {
		t.Fatal("expected error for empty voice ID")
	}
}
