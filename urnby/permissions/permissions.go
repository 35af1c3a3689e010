// Package permissions decides who may run which command where.
package permissions

import (
	"errors"
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/guildconfig"
)

var (
	ErrNoGuild              = errors.New("this command only works inside a server")
	ErrNotAdmin             = errors.New("you need an admin role to use this command")
	ErrNotMember            = errors.New("you need a member role to use this command")
	ErrNotCommandChannel    = errors.New("commands are not enabled in this channel")
	ErrNotVisibleToMembers  = errors.New("this channel must be readable by every member role")
	errRequirementUnhandled = errors.New("unknown requirement")
)

// IsPermissionError reports whether err is a rejection from this package.
func IsPermissionError(err error) bool {
	for _, target := range []error{ErrNoGuild, ErrNotAdmin, ErrNotMember, ErrNotCommandChannel, ErrNotVisibleToMembers} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type Requirement int

const (
	Member Requirement = iota
	Admin
	CommandChannel
	VisibleToMembers
)

// Common requirement sets.
var (
	MemberCommand = []Requirement{Member, CommandChannel, VisibleToMembers}
	AdminCommand  = []Requirement{Admin}
)

// Subject is the invoking member as seen from one interaction.
type Subject struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	RoleIDs   []snowflake.ID
	// Permissions are the member's resolved permissions in the channel.
	Permissions discord.Permissions
}

// GuildState answers the role and channel lookups needed for visibility
// checks.
type GuildState interface {
	Role(guildID, roleID snowflake.ID) (discord.Role, bool)
	Overwrites(channelID snowflake.ID) (discord.PermissionOverwrites, bool)
}

type Oracle struct {
	configs guildconfig.Provider
	state   GuildState
}

func NewOracle(configs guildconfig.Provider, state GuildState) *Oracle {
	return &Oracle{configs: configs, state: state}
}

func hasAny(have, want []snowflake.ID) bool {
	for _, id := range have {
		if slices.Contains(want, id) {
			return true
		}
	}
	return false
}

func (o *Oracle) IsAdmin(s Subject) bool {
	if s.Permissions.Has(discord.PermissionAdministrator) {
		return true
	}
	cfg, _ := o.configs.Get(s.GuildID)
	return hasAny(s.RoleIDs, cfg.AdminRoles)
}

func (o *Oracle) IsMember(s Subject) bool {
	cfg, _ := o.configs.Get(s.GuildID)
	return hasAny(s.RoleIDs, cfg.MemberRoles)
}

func (o *Oracle) IsCommandChannel(s Subject) bool {
	cfg, _ := o.configs.Get(s.GuildID)
	return slices.Contains(cfg.CommandChannels, s.ChannelID)
}

// IsChannelVisibleToMembers reports whether every configured member role can
// view the channel and read its history.
func (o *Oracle) IsChannelVisibleToMembers(guildID, channelID snowflake.ID) bool {
	cfg, _ := o.configs.Get(guildID)
	if len(cfg.MemberRoles) == 0 {
		return true
	}
	overwrites, ok := o.state.Overwrites(channelID)
	if !ok {
		return false
	}
	everyone, ok := o.state.Role(guildID, guildID)
	if !ok {
		return false
	}
	for _, roleID := range cfg.MemberRoles {
		role, ok := o.state.Role(guildID, roleID)
		if !ok {
			return false
		}
		perms := RolePermissionsIn(guildID, everyone, role, overwrites)
		if !perms.Has(discord.PermissionViewChannel, discord.PermissionReadMessageHistory) {
			return false
		}
	}
	return true
}

// RolePermissionsIn computes what a holder of only role (plus @everyone) may
// do in a channel with the given overwrites.
func RolePermissionsIn(guildID snowflake.ID, everyone, role discord.Role, overwrites discord.PermissionOverwrites) discord.Permissions {
	perms := everyone.Permissions | role.Permissions
	if perms.Has(discord.PermissionAdministrator) {
		return discord.PermissionsAll
	}

	apply := func(id snowflake.ID) {
		for _, ow := range overwrites {
			rw, ok := ow.(discord.RolePermissionOverwrite)
			if !ok || rw.RoleID != id {
				continue
			}
			perms = perms.Remove(rw.Deny).Add(rw.Allow)
		}
	}
	apply(guildID)
	if role.ID != guildID {
		apply(role.ID)
	}
	return perms
}

// Check returns the first unmet requirement as a typed error.
func (o *Oracle) Check(s Subject, reqs ...Requirement) error {
	if s.GuildID == 0 {
		return ErrNoGuild
	}
	for _, r := range reqs {
		var ok bool
		var fail error
		switch r {
		case Member:
			ok, fail = o.IsMember(s), ErrNotMember
		case Admin:
			ok, fail = o.IsAdmin(s), ErrNotAdmin
		case CommandChannel:
			ok, fail = o.IsCommandChannel(s), ErrNotCommandChannel
		case VisibleToMembers:
			ok, fail = o.IsChannelVisibleToMembers(s.GuildID, s.ChannelID), ErrNotVisibleToMembers
		default:
			ok, fail = false, errRequirementUnhandled
		}
		if !ok {
			return fail
		}
	}
	return nil
}
