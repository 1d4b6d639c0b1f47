package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// EncodeWAV wraps the clip's PCM in a canonical 44-byte RIFF/WAV header.
func EncodeWAV(c Clip) []byte {
	const bitsPerSample = 16
	dataSize := len(c.PCM)
	blockAlign := c.Format.Channels * bitsPerSample / 8

	buf := make([]byte, 44+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(c.Format.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(c.Format.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(c.Format.BytesPerSecond()))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], c.PCM)
	return buf
}

// ErrNotWAV is returned by DecodeWAV for data without a RIFF/WAVE header.
var ErrNotWAV = errors.New("audio: not a RIFF/WAVE stream")

// DecodeWAV extracts 16-bit PCM from a RIFF/WAV byte stream. Unknown chunks
// (LIST, fact, ...) are skipped. Streaming servers often write 0 or
// 0xFFFFFFFF as the data size; the remainder of the buffer is used then.
func DecodeWAV(data []byte) (Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, ErrNotWAV
	}

	var (
		format    Format
		haveFmt   bool
		bitsDepth uint16
	)
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if body+16 > len(data) {
				return Clip{}, fmt.Errorf("audio: truncated fmt chunk")
			}
			if tag := binary.LittleEndian.Uint16(data[body:]); tag != 1 {
				return Clip{}, fmt.Errorf("audio: unsupported wav encoding %d", tag)
			}
			format.Channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			format.SampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bitsDepth = binary.LittleEndian.Uint16(data[body+14:])
			haveFmt = true
		case "data":
			if !haveFmt {
				return Clip{}, fmt.Errorf("audio: data chunk before fmt chunk")
			}
			if bitsDepth != 16 {
				return Clip{}, fmt.Errorf("audio: unsupported bit depth %d", bitsDepth)
			}
			end := body + size
			if size <= 0 || end > len(data) {
				end = len(data)
			}
			pcm := data[body:end]
			pcm = pcm[:len(pcm)-len(pcm)%2]
			return Clip{PCM: pcm, Format: format}, nil
		}

		pos = body + size + size%2
	}
	return Clip{}, fmt.Errorf("audio: wav stream has no data chunk")
}
