// Package mock provides in-memory implementations of [audio.Platform] and
// [audio.Connection] for unit tests.
//
//	conn := mock.NewConnection(16)
//	conn.Feed(frames...)            // becomes the player's input
//	played := conn.Played()         // everything written to Output
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/guessbot/pkg/audio"
)

// Connection is a mock [audio.Connection] backed by buffered channels.
// Frames written to Output are collected in the background and can be read
// back with Played.
type Connection struct {
	in  chan audio.AudioFrame
	out chan audio.AudioFrame

	mu              sync.Mutex
	played          []audio.AudioFrame
	disconnectCalls int

	// DisconnectError is returned by Disconnect.
	DisconnectError error

	once      sync.Once
	collected chan struct{}
}

// NewConnection returns a Connection whose channels have the given buffer size.
func NewConnection(buffer int) *Connection {
	c := &Connection{
		in:        make(chan audio.AudioFrame, buffer),
		out:       make(chan audio.AudioFrame, buffer),
		collected: make(chan struct{}),
	}
	go c.collect()
	return c
}

func (c *Connection) collect() {
	defer close(c.collected)
	for f := range c.out {
		c.mu.Lock()
		c.played = append(c.played, f)
		c.mu.Unlock()
	}
}

// Feed queues frames as player input. It blocks when the buffer is full.
func (c *Connection) Feed(frames ...audio.AudioFrame) {
	for _, f := range frames {
		c.in <- f
	}
}

// Input implements [audio.Connection].
func (c *Connection) Input() <-chan audio.AudioFrame { return c.in }

// Output implements [audio.Connection].
func (c *Connection) Output() chan<- audio.AudioFrame { return c.out }

// Disconnect implements [audio.Connection]. Channels are closed on the first
// call only.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	c.disconnectCalls++
	c.mu.Unlock()
	c.once.Do(func() {
		close(c.in)
		close(c.out)
		<-c.collected
	})
	return c.DisconnectError
}

// Played returns a copy of every frame written to Output so far.
func (c *Connection) Played() []audio.AudioFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]audio.AudioFrame, len(c.played))
	copy(out, c.played)
	return out
}

// DisconnectCalls returns how many times Disconnect was called.
func (c *Connection) DisconnectCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnectCalls
}

// Platform is a mock [audio.Platform].
type Platform struct {
	mu sync.Mutex

	// ConnectResult is returned by Connect.
	ConnectResult audio.Connection

	// ConnectError, if non-nil, is returned by Connect.
	ConnectError error

	// ConnectCalls records the channel IDs passed to Connect.
	ConnectCalls []string
}

// Connect implements [audio.Platform].
func (p *Platform) Connect(_ context.Context, channelID string) (audio.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ConnectCalls = append(p.ConnectCalls, channelID)
	if p.ConnectError != nil {
		return nil, p.ConnectError
	}
	return p.ConnectResult, nil
}

var (
	_ audio.Connection = (*Connection)(nil)
	_ audio.Platform   = (*Platform)(nil)
)
