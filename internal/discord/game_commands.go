package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// SessionStatus describes the game session in progress.
type SessionStatus struct {
	SessionID   string
	Participant string
	Version     string
	StartedAt   time.Time
}

// SessionControl exposes the running game to operators.
type SessionControl interface {
	// Status reports the active session, if any.
	Status() (SessionStatus, bool)

	// Stop ends the active session.
	Stop()
}

// GameCommands serves the /guess command group.
type GameCommands struct {
	control SessionControl
	perms   *PermissionChecker
	now     func() time.Time
}

// NewGameCommands creates GameCommands and registers its handlers with
// router.
func NewGameCommands(router *CommandRouter, control SessionControl, perms *PermissionChecker) *GameCommands {
	gc := &GameCommands{control: control, perms: perms, now: time.Now}
	gc.Register(router)
	return gc
}

// Register registers the /guess command group with the router.
func (gc *GameCommands) Register(router *CommandRouter) {
	router.RegisterCommand("guess", gc.Definition(), func(r Responder, i *discordgo.InteractionCreate) {
		RespondEphemeral(r, i, "Please use a subcommand: `/guess status` or `/guess stop`.")
	})
	router.RegisterHandler("guess/status", gc.handleStatus)
	router.RegisterHandler("guess/stop", gc.handleStop)
}

// Definition returns the ApplicationCommand definition for Discord.
func (gc *GameCommands) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "guess",
		Description: "Supervise the guessing game",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "status",
				Description: "Show the game session in progress",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "stop",
				Description: "End the game session in progress",
			},
		},
	}
}

func (gc *GameCommands) handleStatus(r Responder, i *discordgo.InteractionCreate) {
	st, ok := gc.control.Status()
	if !ok {
		RespondEphemeral(r, i, "No game is running. The next one starts when somebody speaks in the voice channel.")
		return
	}
	RespondEmbed(r, i, &discordgo.MessageEmbed{
		Title: "Game in progress",
		Color: 0x5B8DEF,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Session", Value: "`" + st.SessionID + "`"},
			{Name: "Participant", Value: orDash(st.Participant), Inline: true},
			{Name: "Version", Value: orDash(st.Version), Inline: true},
			{Name: "Running for", Value: gc.now().Sub(st.StartedAt).Round(time.Second).String(), Inline: true},
		},
	})
}

func (gc *GameCommands) handleStop(r Responder, i *discordgo.InteractionCreate) {
	if !gc.perms.IsSupervisor(i) {
		RespondEphemeral(r, i, "You need the supervisor role to stop a game.")
		return
	}
	st, ok := gc.control.Status()
	if !ok {
		RespondEphemeral(r, i, "No game is running.")
		return
	}
	gc.control.Stop()
	RespondEphemeral(r, i, fmt.Sprintf("Stopped session `%s`.", st.SessionID))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
