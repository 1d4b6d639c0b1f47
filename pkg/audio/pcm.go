package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// fullScale is the largest magnitude of a 16-bit sample.
const fullScale = 32767.0

// RMS returns the root-mean-square energy of a 16-bit PCM buffer in sample
// units (0 to 32767). Buffers shorter than one sample yield 0.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := range n {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// DBFSToRMS converts a level in dBFS (e.g. -40) into the RMS sample value
// RMS compares against.
func DBFSToRMS(dbfs float64) float64 {
	return fullScale * math.Pow(10, dbfs/20)
}

// Convert resamples and remixes frame into target. Frames already in the
// target format are returned unchanged. Frames with a torn sample are
// returned with empty Data.
func Convert(frame AudioFrame, target Format) AudioFrame {
	out := AudioFrame{SampleRate: target.SampleRate, Channels: target.Channels, Timestamp: frame.Timestamp}
	if frame.Channels <= 0 || len(frame.Data)%(2*frame.Channels) != 0 {
		return out
	}
	if frame.Format() == target {
		return frame
	}

	samples := toSamples(frame.Data)
	// Down-mix before resampling so that fewer channels are interpolated.
	if target.Channels < frame.Channels {
		samples = remix(samples, frame.Channels, target.Channels)
		samples = resample(samples, target.Channels, frame.SampleRate, target.SampleRate)
	} else {
		samples = resample(samples, frame.Channels, frame.SampleRate, target.SampleRate)
		samples = remix(samples, frame.Channels, target.Channels)
	}
	out.Data = fromSamples(samples)
	return out
}

// Frames slices pcm in format f into frames of the given length. The last
// frame may be shorter.
func Frames(pcm []byte, f Format, length time.Duration) []AudioFrame {
	size := int(int64(f.BytesPerSecond()) * int64(length) / int64(time.Second))
	size -= size % (2 * max(f.Channels, 1))
	if size <= 0 {
		return nil
	}
	var (
		frames []AudioFrame
		ts     time.Duration
	)
	for start := 0; start < len(pcm); start += size {
		end := min(start+size, len(pcm))
		frames = append(frames, AudioFrame{
			Data:       pcm[start:end],
			SampleRate: f.SampleRate,
			Channels:   f.Channels,
			Timestamp:  ts,
		})
		ts += Duration(end-start, f)
	}
	return frames
}

func toSamples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func fromSamples(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// remix converts interleaved samples between channel counts. Down-mixing
// averages all source channels; up-mixing duplicates the mono signal.
func remix(samples []int16, from, to int) []int16 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}
	frames := len(samples) / from
	out := make([]int16, frames*to)
	for i := range frames {
		var sum int32
		for ch := range from {
			sum += int32(samples[i*from+ch])
		}
		v := int16(sum / int32(from))
		for ch := range to {
			out[i*to+ch] = v
		}
	}
	return out
}

// resample converts interleaved samples between rates with linear
// interpolation per channel.
func resample(samples []int16, channels, from, to int) []int16 {
	if from == to || from <= 0 || to <= 0 || channels <= 0 {
		return samples
	}
	srcFrames := len(samples) / channels
	dstFrames := int(int64(srcFrames) * int64(to) / int64(from))
	out := make([]int16, dstFrames*channels)
	ratio := float64(from) / float64(to)
	for i := range dstFrames {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)
		next := min(idx+1, srcFrames-1)
		for ch := range channels {
			s0 := float64(samples[idx*channels+ch])
			s1 := float64(samples[next*channels+ch])
			out[i*channels+ch] = int16(s0*(1-frac) + s1*frac)
		}
	}
	return out
}
