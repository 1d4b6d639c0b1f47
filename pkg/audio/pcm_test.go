package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

// tone returns n mono samples of a 440 Hz sine at the given amplitude.
func tone(n int, amplitude float64, rate int) []byte {
	buf := make([]byte, n*2)
	for i := range n {
		v := int16(amplitude * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	return buf
}

func TestRMS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pcm     []byte
		wantMin float64
		wantMax float64
	}{
		{name: "empty", pcm: nil, wantMin: 0, wantMax: 0},
		{name: "single byte", pcm: []byte{1}, wantMin: 0, wantMax: 0},
		{name: "silence", pcm: make([]byte, 640), wantMin: 0, wantMax: 0},
		{name: "sine", pcm: tone(1600, 10_000, 16000), wantMin: 6_900, wantMax: 7_200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RMS(tt.pcm)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("RMS = %f, want in [%f, %f]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestDBFSToRMS(t *testing.T) {
	t.Parallel()

	if got := DBFSToRMS(0); math.Abs(got-fullScale) > 0.01 {
		t.Errorf("0 dBFS = %f, want %f", got, fullScale)
	}
	if got := DBFSToRMS(-40); math.Abs(got-327.67) > 0.01 {
		t.Errorf("-40 dBFS = %f, want 327.67", got)
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	// 20 ms of 48 kHz stereo.
	stereo := make([]byte, 960*4)
	for i := range 960 {
		binary.LittleEndian.PutUint16(stereo[i*4:], uint16(int16(1000)))
		binary.LittleEndian.PutUint16(stereo[i*4+2:], uint16(int16(3000)))
	}
	in := AudioFrame{Data: stereo, SampleRate: 48000, Channels: 2, Timestamp: time.Second}

	t.Run("down to speech format", func(t *testing.T) {
		t.Parallel()
		got := Convert(in, SpeechFormat)
		if got.Format() != SpeechFormat {
			t.Fatalf("format = %v, want %v", got.Format(), SpeechFormat)
		}
		if len(got.Data) != 320*2 {
			t.Errorf("len = %d, want %d", len(got.Data), 320*2)
		}
		if v := int16(binary.LittleEndian.Uint16(got.Data)); v != 2000 {
			t.Errorf("first sample = %d, want channel average 2000", v)
		}
		if got.Timestamp != time.Second {
			t.Errorf("timestamp not preserved: %v", got.Timestamp)
		}
	})

	t.Run("up to wire format", func(t *testing.T) {
		t.Parallel()
		mono := AudioFrame{Data: tone(320, 5000, 16000), SampleRate: 16000, Channels: 1}
		got := Convert(mono, Format{SampleRate: 48000, Channels: 2})
		if len(got.Data) != 960*4 {
			t.Errorf("len = %d, want %d", len(got.Data), 960*4)
		}
	})

	t.Run("same format passthrough", func(t *testing.T) {
		t.Parallel()
		got := Convert(in, in.Format())
		if &got.Data[0] != &in.Data[0] {
			t.Error("expected the original buffer to be returned")
		}
	})

	t.Run("torn sample", func(t *testing.T) {
		t.Parallel()
		got := Convert(AudioFrame{Data: []byte{1, 2, 3}, SampleRate: 48000, Channels: 1}, SpeechFormat)
		if len(got.Data) != 0 {
			t.Errorf("expected empty data, got %d bytes", len(got.Data))
		}
	})
}

func TestFrames(t *testing.T) {
	t.Parallel()

	pcm := make([]byte, SpeechFormat.BytesPerSecond()/10*3+100) // 300 ms + a bit
	frames := Frames(pcm, SpeechFormat, 100*time.Millisecond)
	if len(frames) != 4 {
		t.Fatalf("frames = %d, want 4", len(frames))
	}
	if frames[3].Timestamp != 300*time.Millisecond {
		t.Errorf("last timestamp = %v, want 300ms", frames[3].Timestamp)
	}
	if len(frames[3].Data) != 100 {
		t.Errorf("last frame = %d bytes, want 100", len(frames[3].Data))
	}
}

func TestWAV_RoundTrip(t *testing.T) {
	t.Parallel()

	clip := Clip{PCM: tone(800, 8000, 16000), Format: SpeechFormat}
	wav := EncodeWAV(clip)
	if len(wav) != 44+len(clip.PCM) {
		t.Fatalf("wav size = %d, want %d", len(wav), 44+len(clip.PCM))
	}

	got, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if got.Format != clip.Format {
		t.Errorf("format = %v, want %v", got.Format, clip.Format)
	}
	if len(got.PCM) != len(clip.PCM) {
		t.Errorf("pcm = %d bytes, want %d", len(got.PCM), len(clip.PCM))
	}
}

func TestDecodeWAV_Errors(t *testing.T) {
	t.Parallel()

	if _, err := DecodeWAV([]byte("not a wav file at all")); !errors.Is(err, ErrNotWAV) {
		t.Errorf("err = %v, want ErrNotWAV", err)
	}

	wav := EncodeWAV(Clip{PCM: make([]byte, 8), Format: SpeechFormat})
	binary.LittleEndian.PutUint16(wav[34:36], 8)
	if _, err := DecodeWAV(wav); err == nil {
		t.Error("expected error for 8-bit audio")
	}
}

func TestDecodeWAV_StreamingDataSize(t *testing.T) {
	t.Parallel()

	wav := EncodeWAV(Clip{PCM: make([]byte, 64), Format: SpeechFormat})
	binary.LittleEndian.PutUint32(wav[40:44], 0xFFFFFFFF)
	got, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if len(got.PCM) != 64 {
		t.Errorf("pcm = %d bytes, want 64", len(got.PCM))
	}
}

func TestTrimSilence(t *testing.T) {
	t.Parallel()

	window := 50 * time.Millisecond
	silence := make([]byte, SpeechFormat.BytesPerSecond()/2) // 500 ms
	speech := tone(8000, 8000, 16000)                          // 500 ms

	t.Run("trims both ends", func(t *testing.T) {
		t.Parallel()
		pcm := append(append(append([]byte{}, silence...), speech...), silence...)
		got := TrimSilence(&Clip{PCM: pcm, Format: SpeechFormat}, DBFSToRMS(-40), window)
		if got == nil {
			t.Fatal("expected speech to survive trimming")
		}
		if d := got.Duration(); d < 450*time.Millisecond || d > 550*time.Millisecond {
			t.Errorf("trimmed duration = %v, want ~500ms", d)
		}
	})

	t.Run("all silence", func(t *testing.T) {
		t.Parallel()
		if got := TrimSilence(&Clip{PCM: silence, Format: SpeechFormat}, DBFSToRMS(-40), window); got != nil {
			t.Errorf("expected nil, got %v", got.Duration())
		}
	})

	t.Run("nil clip", func(t *testing.T) {
		t.Parallel()
		if TrimSilence(nil, 1, window) != nil {
			t.Error("expected nil")
		}
	})
}
