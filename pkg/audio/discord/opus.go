package discord

import (
	"fmt"

	"layeh.com/gopus"

	"github.com/MrWong99/guessbot/pkg/audio"
)

// Discord voice is 48 kHz stereo Opus in 20 ms frames.
const (
	opusSampleRate = 48000
	opusChannels   = 2
	opusFrameSize  = opusSampleRate * 20 / 1000 // samples per channel
	opusFrameBytes = opusFrameSize * opusChannels * 2
	maxOpusPacket  = 4000
)

var wireFormat = audio.Format{SampleRate: opusSampleRate, Channels: opusChannels}

// decoderSet keeps one Opus decoder per SSRC; decoder state must not be
// shared between speakers.
type decoderSet struct {
	decoders map[uint32]*gopus.Decoder
}

func newDecoderSet() *decoderSet {
	return &decoderSet{decoders: make(map[uint32]*gopus.Decoder)}
}

// decode turns one Opus packet from ssrc into little-endian PCM.
func (d *decoderSet) decode(ssrc uint32, packet []byte) ([]byte, error) {
	dec, ok := d.decoders[ssrc]
	if !ok {
		var err error
		dec, err = gopus.NewDecoder(opusSampleRate, opusChannels)
		if err != nil {
			return nil, fmt.Errorf("discord: create opus decoder: %w", err)
		}
		d.decoders[ssrc] = dec
	}
	pcm, err := dec.Decode(packet, opusFrameSize, false)
	if err != nil {
		return nil, fmt.Errorf("discord: opus decode: %w", err)
	}
	out := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out, nil
}

// encoder packs exactly-sized PCM frames into Opus packets.
type encoder struct {
	enc *gopus.Encoder
}

func newEncoder() (*encoder, error) {
	enc, err := gopus.NewEncoder(opusSampleRate, opusChannels, gopus.Voip)
	if err != nil {
		return nil, fmt.Errorf("discord: create opus encoder: %w", err)
	}
	return &encoder{enc: enc}, nil
}

// encode expects exactly opusFrameBytes of wire-format PCM.
func (e *encoder) encode(frame []byte) ([]byte, error) {
	pcm := make([]int16, len(frame)/2)
	for i := range pcm {
		pcm[i] = int16(frame[i*2]) | int16(frame[i*2+1])<<8
	}
	packet, err := e.enc.Encode(pcm, opusFrameSize, maxOpusPacket)
	if err != nil {
		return nil, fmt.Errorf("discord: opus encode: %w", err)
	}
	return packet, nil
}
