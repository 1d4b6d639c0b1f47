package audio

import "context"

// Connection is a live, bidirectional voice link to the player.
//
// Implementations must be safe for concurrent use: the recorder reads Input
// while the presenter writes Output.
type Connection interface {
	// Input returns the player's audio. Frames from every speaking
	// participant other than the bot itself are merged. The channel is
	// closed on Disconnect.
	Input() <-chan AudioFrame

	// Output accepts PCM frames for playback. Any format is accepted; the
	// connection converts to its wire format.
	Output() chan<- AudioFrame

	// Disconnect tears the connection down. It is safe to call more than once.
	Disconnect() error
}

// Platform opens voice connections.
type Platform interface {
	// Connect joins the voice channel identified by channelID. ctx governs
	// the setup phase only.
	Connect(ctx context.Context, channelID string) (Connection, error)
}
