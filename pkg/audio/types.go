// Package audio holds the PCM primitives shared by the voice transport, the
// speech recorder and the speech providers. All PCM is 16-bit signed
// little-endian, interleaved when multi-channel.
package audio

import "time"

// Format describes the sample rate and channel count of an audio stream.
type Format struct {
	SampleRate int
	Channels   int
}

// SpeechFormat is what the recorder hands to transcription: 16 kHz mono.
var SpeechFormat = Format{SampleRate: 16000, Channels: 1}

// BytesPerSecond returns the PCM byte rate of f.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * 2
}

// AudioFrame is a single frame of audio flowing through a voice connection.
type AudioFrame struct {
	// Data is the PCM payload.
	Data []byte

	// SampleRate in Hz (48000 for Discord Opus, 16000 for speech recognition).
	SampleRate int

	// Channels is 1 for mono, 2 for stereo.
	Channels int

	// Timestamp marks when this frame was captured, relative to stream start.
	Timestamp time.Duration
}

// Format returns the frame's format.
func (f AudioFrame) Format() Format {
	return Format{SampleRate: f.SampleRate, Channels: f.Channels}
}

// Duration returns the playback length of the frame.
func (f AudioFrame) Duration() time.Duration {
	return Duration(len(f.Data), f.Format())
}

// Clip is a finished recording: one utterance captured by the recorder.
type Clip struct {
	PCM    []byte
	Format Format
}

// Duration returns the playback length of the clip.
func (c *Clip) Duration() time.Duration {
	if c == nil {
		return 0
	}
	return Duration(len(c.PCM), c.Format)
}

// Duration converts a PCM byte count in format f into a playback duration.
// Invalid formats yield zero.
func Duration(n int, f Format) time.Duration {
	bps := f.BytesPerSecond()
	if bps <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(bps)
}
