package coqui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrWong99/guessbot/pkg/audio"
	"github.com/MrWong99/guessbot/pkg/provider/tts"
)

func testWAV(d time.Duration) []byte {
	n := int(d.Seconds() * float64(audio.SpeechFormat.BytesPerSecond()))
	return audio.EncodeWAV(audio.Clip{PCM: make([]byte, n), Format: audio.SpeechFormat})
}

func collect(ch <-chan audio.AudioFrame) (frames int, total time.Duration) {
	for f := range ch {
		frames++
		total += f.Duration()
	}
	return frames, total
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		opts    []Option
		wantErr bool
	}{
		{name: "standard default", url: "http://localhost:5002"},
		{name: "xtts", url: "http://localhost:8020", opts: []Option{WithAPIMode(APIXTTS)}},
		{name: "empty url", url: "", wantErr: true},
		{name: "bad mode", url: "http://x", opts: []Option{WithAPIMode("vits")}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tc.url, tc.opts...)
			if (err != nil) != tc.wantErr {
				t.Fatalf("New() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSynthesize_Standard(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tts" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		gotQuery = map[string]string{"text": q.Get("text"), "speaker_id": q.Get("speaker_id"), "language_id": q.Get("language_id")}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(testWAV(250 * time.Millisecond))
	}))
	defer srv.Close()

	s, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	ch, err := s.Synthesize(context.Background(), "Not quite! Keep guessing.", tts.Voice{ID: "p225", Language: "en"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	frames, total := collect(ch)
	if frames != 3 {
		t.Errorf("frames = %d, want 3", frames)
	}
	if total != 250*time.Millisecond {
		t.Errorf("total = %v, want 250ms", total)
	}
	if gotQuery["text"] != "Not quite! Keep guessing." || gotQuery["speaker_id"] != "p225" || gotQuery["language_id"] != "en" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestSynthesize_XTTS(t *testing.T) {
	t.Parallel()

	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tts_to_audio/" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write(testWAV(100 * time.Millisecond))
	}))
	defer srv.Close()

	s, _ := New(srv.URL, WithAPIMode(APIXTTS))
	ch, err := s.Synthesize(context.Background(), "Hallo, ben je er nog?", tts.Voice{ID: "robot.wav", Language: "nl"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if frames, _ := collect(ch); frames != 1 {
		t.Errorf("frames = %d, want 1", frames)
	}
	if body["speaker_wav"] != "robot.wav" || body["language"] != "nl" || body["text"] != "Hallo, ben je er nog?" {
		t.Errorf("body = %v", body)
	}
}

func TestSynthesize_XTTSRequiresVoice(t *testing.T) {
	t.Parallel()

	s, _ := New("http://localhost", WithAPIMode(APIXTTS))
	if _, err := s.Synthesize(context.Background(), "hi", tts.Voice{}); err == nil {
		t.Fatal("expected error for empty voice ID")
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	t.Parallel()

	s, _ := New("http://127.0.0.1:1")
	ch, err := s.Synthesize(context.Background(), "   ", tts.Voice{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if frames, _ := collect(ch); frames != 0 {
		t.Errorf("frames = %d, want 0", frames)
	}
}

func TestSynthesize_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, _ := New(srv.URL)
	if _, err := s.Synthesize(context.Background(), "hello", tts.Voice{}); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestSynthesize_NotWAV(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ID3 mp3 data"))
	}))
	defer srv.Close()

	s, _ := New(srv.URL)
	if _, err := s.Synthesize(context.Background(), "hello", tts.Voice{}); err == nil {
		t.Fatal("expected decode error")
	}
}
