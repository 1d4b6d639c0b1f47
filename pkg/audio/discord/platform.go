// Package discord provides an [audio.Platform] backed by Discord voice
// channels via bwmarrin/discordgo. The bot joins the child's voice channel,
// decodes everything spoken there into one PCM input stream and plays the
// host's speech back through Opus.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/guessbot/pkg/audio"
)

// Platform implements [audio.Platform] using a discordgo session.
// Platform is safe for concurrent use.
type Platform struct {
	session *discordgo.Session
	guildID string
}

// New creates a Discord Platform for the given session and guild. The
// session must already be open.
func New(session *discordgo.Session, guildID string) *Platform {
	return &Platform{session: session, guildID: guildID}
}

// Connect joins the voice channel identified by channelID. The bot joins
// unmuted and undeafened because it both listens and speaks.
func (p *Platform) Connect(ctx context.Context, channelID string) (audio.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discord: connect: %w", err)
	}
	vc, err := p.session.ChannelVoiceJoin(p.guildID, channelID, false, false)
	if err != nil {
		return nil, fmt.Errorf("discord: join voice channel %q: %w", channelID, err)
	}
	return newConnection(vc), nil
}

var _ audio.Platform = (*Platform)(nil)
