package audio

import "time"

// TrimSilence drops leading and trailing windows whose RMS is below
// threshold. Windows of the given length are evaluated; a trailing partial
// window counts as its own window. It returns nil when no window reaches the
// threshold.
func TrimSilence(c *Clip, threshold float64, window time.Duration) *Clip {
	if c == nil || len(c.PCM) == 0 {
		return nil
	}
	size := int(int64(c.Format.BytesPerSecond()) * int64(window) / int64(time.Second))
	size -= size % (2 * max(c.Format.Channels, 1))
	if size <= 0 {
		return c
	}

	first, last := -1, -1
	for start := 0; start < len(c.PCM); start += size {
		end := min(start+size, len(c.PCM))
		if RMS(c.PCM[start:end]) >= threshold {
			if first < 0 {
				first = start
			}
			last = end
		}
	}
	if first < 0 {
		return nil
	}
	return &Clip{PCM: c.PCM[first:last], Format: c.Format}
}
