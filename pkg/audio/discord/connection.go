package discord

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/guessbot/pkg/audio"
)

const (
	inputBuffer  = 128
	outputBuffer = 64
)

// Connection adapts a discordgo.VoiceConnection to [audio.Connection].
// Packets from every SSRC in the channel are decoded and merged into a
// single input stream; the game talks to one child at a time.
//
// Connection is safe for concurrent use.
type Connection struct {
	vc *discordgo.VoiceConnection

	input  chan audio.AudioFrame
	output chan audio.AudioFrame

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	// disconnectVC defaults to vc.Disconnect; replaced in tests.
	disconnectVC func() error
}

func newConnection(vc *discordgo.VoiceConnection) *Connection {
	c := &Connection{
		vc:           vc,
		input:        make(chan audio.AudioFrame, inputBuffer),
		output:       make(chan audio.AudioFrame, outputBuffer),
		done:         make(chan struct{}),
		disconnectVC: vc.Disconnect,
	}
	c.start()
	return c
}

func (c *Connection) start() {
	c.wg.Add(2)
	go c.recvLoop()
	go c.sendLoop()
}

// Input implements [audio.Connection].
func (c *Connection) Input() <-chan audio.AudioFrame { return c.input }

// Output implements [audio.Connection].
func (c *Connection) Output() chan<- audio.AudioFrame { return c.output }

// Disconnect stops both loops, leaves the voice channel and closes Input.
// Subsequent calls return nil.
func (c *Connection) Disconnect() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
		if c.disconnectVC != nil {
			err = c.disconnectVC()
		}
		close(c.input)
	})
	return err
}

// recvLoop decodes incoming Opus and forwards PCM. Frames are dropped
// rather than blocking the voice websocket when the consumer lags.
func (c *Connection) recvLoop() {
	defer c.wg.Done()
	decoders := newDecoderSet()
	for {
		select {
		case <-c.done:
			return
		case pkt, ok := <-c.vc.OpusRecv:
			if !ok {
				return
			}
			if pkt == nil || len(pkt.Opus) == 0 {
				continue
			}
			pcm, err := decoders.decode(pkt.SSRC, pkt.Opus)
			if err != nil {
				slog.Warn("discord: dropping undecodable packet", "ssrc", pkt.SSRC, "err", err)
				continue
			}
			frame := audio.AudioFrame{
				Data:       pcm,
				SampleRate: opusSampleRate,
				Channels:   opusChannels,
				Timestamp:  time.Duration(pkt.Timestamp) * time.Second / opusSampleRate,
			}
			select {
			case c.input <- frame:
			default:
			}
		}
	}
}

// sendLoop converts queued frames to the wire format, cuts them into 20 ms
// Opus frames and hands them to discordgo, which paces transmission.
func (c *Connection) sendLoop() {
	defer c.wg.Done()
	enc, err := newEncoder()
	if err != nil {
		slog.Error("discord: audio output disabled", "err", err)
		return
	}

	var (
		buf      []byte
		speaking bool
	)
	setSpeaking := func(on bool) {
		if speaking == on {
			return
		}
		speaking = on
		if err := c.vc.Speaking(on); err != nil {
			slog.Warn("discord: speaking notification failed", "speaking", on, "err", err)
		}
	}
	defer setSpeaking(false)

	idle := time.NewTimer(time.Hour)
	defer idle.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-idle.C:
			// Pad the tail of an utterance with silence so the last
			// partial Opus frame is not lost.
			if len(buf) > 0 {
				buf = append(buf, make([]byte, opusFrameBytes-len(buf))...)
				if !c.flush(enc, &buf) {
					return
				}
			}
			setSpeaking(false)
		case frame := <-c.output:
			frame = audio.Convert(frame, wireFormat)
			if len(frame.Data) == 0 {
				continue
			}
			setSpeaking(true)
			buf = append(buf, frame.Data...)
			if !c.flush(enc, &buf) {
				return
			}
			idle.Reset(100 * time.Millisecond)
		}
	}
}

// flush encodes every complete frame in buf. It reports false when the
// connection is shutting down.
func (c *Connection) flush(enc *encoder, buf *[]byte) bool {
	for len(*buf) >= opusFrameBytes {
		packet, err := enc.encode((*buf)[:opusFrameBytes])
		*buf = (*buf)[opusFrameBytes:]
		if err != nil {
			slog.Warn("discord: opus encode failed", "err", err)
			continue
		}
		select {
		case c.vc.OpusSend <- packet:
		case <-c.done:
			return false
		}
	}
	return true
}

var _ audio.Connection = (*Connection)(nil)
