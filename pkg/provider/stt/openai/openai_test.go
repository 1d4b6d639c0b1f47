package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrWong99/guessbot/pkg/audio"
)

func TestNew_RequiresKey(t *testing.T) {
	t.Parallel()
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form = r.MultipartForm.Value
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text": "The word is cat."}`)
	}))
	defer srv.Close()

	tr, err := New("sk-test",
		WithBaseURL(srv.URL+"/"),
		WithLanguage("en"),
		WithPrompt("A 12 year old Dutch child learning English."),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := tr.Transcribe(context.Background(), audio.Clip{PCM: make([]byte, 640), Format: audio.SpeechFormat})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "The word is cat." {
		t.Errorf("text = %q", got)
	}
	if v := form["model"]; len(v) != 1 || v[0] != DefaultModel {
		t.Errorf("model = %v, want %s", v, DefaultModel)
	}
	if v := form["language"]; len(v) != 1 || v[0] != "en" {
		t.Errorf("language = %v, want en", v)
	}
	if v := form["prompt"]; len(v) != 1 || !strings.Contains(v[0], "Dutch child") {
		t.Errorf("prompt = %v", v)
	}
}

func TestTranscribe_EmptyClip(t *testing.T) {
	t.Parallel()
	tr, _ := New("sk-test", WithBaseURL("http://127.0.0.1:1/"))
	got, err := tr.Transcribe(context.Background(), audio.Clip{})
	if err != nil || got != "" {
		t.Fatalf("Transcribe = (%q, %v), want empty and nil", got, err)
	}
}
