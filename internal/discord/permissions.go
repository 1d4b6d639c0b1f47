package discord

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// PermissionChecker validates that a Discord user has the supervisor role
// before executing privileged slash commands.
type PermissionChecker struct {
	roleID string
}

// NewPermissionChecker creates a PermissionChecker with the given role ID.
func NewPermissionChecker(roleID string) *PermissionChecker {
	return &PermissionChecker{roleID: roleID}
}

// IsSupervisor checks whether the interaction author has the supervisor
// role. If the role ID is empty, all users are supervisors. Returns false
// if the interaction has no Member (e.g., direct message interactions).
func (p *PermissionChecker) IsSupervisor(i *discordgo.InteractionCreate) bool {
	if p.roleID == "" {
		return true
	}
	if i.Member == nil {
		return false
	}
	return slices.Contains(i.Member.Roles, p.roleID)
}
