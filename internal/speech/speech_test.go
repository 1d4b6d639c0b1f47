package speech

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrWong99/guessbot/pkg/audio"
	sttmock "github.com/MrWong99/guessbot/pkg/provider/stt/mock"
)

type fakeSource struct {
	clips   []*audio.Clip
	err     error
	flushed int
}

func (f *fakeSource) Record(context.Context) (*audio.Clip, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.clips) == 0 {
		return nil, nil
	}
	c := f.clips[0]
	f.clips = f.clips[1:]
	return c, nil
}

func (f *fakeSource) Flush() int {
	f.flushed++
	return 0
}

func speechClip(d time.Duration) *audio.Clip {
	n := int(d.Seconds() * float64(audio.SpeechFormat.BytesPerSecond()))
	return &audio.Clip{PCM: make([]byte, n), Format: audio.SpeechFormat}
}

func TestPipeline_Recognize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		source    *fakeSource
		texts     []string
		want      string
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "transcribes clip",
			source:    &fakeSource{clips: []*audio.Clip{speechClip(time.Second)}},
			texts:     []string{"  is it an animal  "},
			want:      "is it an animal",
			wantCalls: 1,
		},
		{
			name:   "silence skips transcription",
			source: &fakeSource{},
			want:   "",
		},
		{
			name:      "non-speech marker is silence",
			source:    &fakeSource{clips: []*audio.Clip{speechClip(time.Second)}},
			texts:     []string{"[BLANK_AUDIO]"},
			want:      "",
			wantCalls: 1,
		},
		{
			name:    "record error",
			source:  &fakeSource{err: ErrInputClosed},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr := &sttmock.Transcriber{Texts: tc.texts}
			p := NewPipeline(tc.source, tr)

			got, err := p.Recognize(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("Recognize() err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Recognize() = %q, want %q", got, tc.want)
			}
			if tr.Calls() != tc.wantCalls {
				t.Errorf("transcriber calls = %d, want %d", tr.Calls(), tc.wantCalls)
			}
			if tc.source.flushed != 1 {
				t.Errorf("flushed = %d, want 1", tc.source.flushed)
			}
		})
	}
}

func TestPipeline_TranscribeError(t *testing.T) {
	t.Parallel()

	boom := errors.New("whisper down")
	p := NewPipeline(&fakeSource{clips: []*audio.Clip{speechClip(time.Second)}}, &sttmock.Transcriber{Err: boom})
	if _, err := p.Recognize(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
