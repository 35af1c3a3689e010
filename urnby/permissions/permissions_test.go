package permissions

import (
	"errors"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/guildconfig"
)

const (
	guild      = snowflake.ID(1000)
	memberRole = snowflake.ID(20)
	adminRole  = snowflake.ID(21)
	cmdChannel = snowflake.ID(30)
	hidden     = snowflake.ID(31)
)

type staticConfigs map[snowflake.ID]guildconfig.GuildConfig

func (s staticConfigs) Get(id snowflake.ID) (guildconfig.GuildConfig, bool) {
	cfg, ok := s[id]
	return cfg, ok
}

type fakeState struct {
	roles      map[snowflake.ID]discord.Role
	overwrites map[snowflake.ID]discord.PermissionOverwrites
}

func (f fakeState) Role(_ snowflake.ID, roleID snowflake.ID) (discord.Role, bool) {
	r, ok := f.roles[roleID]
	return r, ok
}

func (f fakeState) Overwrites(channelID snowflake.ID) (discord.PermissionOverwrites, bool) {
	o, ok := f.overwrites[channelID]
	return o, ok
}

func newOracle() *Oracle {
	configs := staticConfigs{guild: {
		MemberRoles:     []snowflake.ID{memberRole},
		AdminRoles:      []snowflake.ID{adminRole},
		CommandChannels: []snowflake.ID{cmdChannel, hidden},
	}}
	state := fakeState{
		roles: map[snowflake.ID]discord.Role{
			guild:      {ID: guild, Permissions: discord.PermissionViewChannel | discord.PermissionReadMessageHistory},
			memberRole: {ID: memberRole},
		},
		overwrites: map[snowflake.ID]discord.PermissionOverwrites{
			cmdChannel: {},
			hidden: {
				discord.RolePermissionOverwrite{RoleID: guild, Deny: discord.PermissionViewChannel},
			},
		},
	}
	return NewOracle(configs, state)
}

func TestCheck(t *testing.T) {
	o := newOracle()

	tests := []struct {
		name    string
		subject Subject
		reqs    []Requirement
		wantErr error
	}{
		{
			name:    "member in command channel",
			subject: Subject{GuildID: guild, ChannelID: cmdChannel, RoleIDs: []snowflake.ID{memberRole}},
			reqs:    MemberCommand,
		},
		{
			name:    "direct message",
			subject: Subject{ChannelID: cmdChannel},
			reqs:    MemberCommand,
			wantErr: ErrNoGuild,
		},
		{
			name:    "not a member",
			subject: Subject{GuildID: guild, ChannelID: cmdChannel},
			reqs:    MemberCommand,
			wantErr: ErrNotMember,
		},
		{
			name:    "wrong channel",
			subject: Subject{GuildID: guild, ChannelID: 99, RoleIDs: []snowflake.ID{memberRole}},
			reqs:    MemberCommand,
			wantErr: ErrNotCommandChannel,
		},
		{
			name:    "channel hidden from members",
			subject: Subject{GuildID: guild, ChannelID: hidden, RoleIDs: []snowflake.ID{memberRole}},
			reqs:    MemberCommand,
			wantErr: ErrNotVisibleToMembers,
		},
		{
			name:    "admin by role",
			subject: Subject{GuildID: guild, RoleIDs: []snowflake.ID{adminRole}},
			reqs:    AdminCommand,
		},
		{
			name:    "admin by permission",
			subject: Subject{GuildID: guild, Permissions: discord.PermissionAdministrator},
			reqs:    AdminCommand,
		},
		{
			name:    "member is not admin",
			subject: Subject{GuildID: guild, RoleIDs: []snowflake.ID{memberRole}},
			reqs:    AdminCommand,
			wantErr: ErrNotAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := o.Check(tt.subject, tt.reqs...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Check() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil && !IsPermissionError(err) {
				t.Errorf("IsPermissionError(%v) = false", err)
			}
		})
	}
}

func TestRolePermissionsIn(t *testing.T) {
	everyone := discord.Role{ID: guild, Permissions: discord.PermissionViewChannel}
	role := discord.Role{ID: memberRole}

	overwrites := discord.PermissionOverwrites{
		discord.RolePermissionOverwrite{RoleID: guild, Deny: discord.PermissionViewChannel},
		discord.RolePermissionOverwrite{RoleID: memberRole, Allow: discord.PermissionViewChannel | discord.PermissionReadMessageHistory},
	}
	got := RolePermissionsIn(guild, everyone, role, overwrites)
	if !got.Has(discord.PermissionViewChannel, discord.PermissionReadMessageHistory) {
		t.Errorf("role allow should win over @everyone deny, got %v", got)
	}

	got = RolePermissionsIn(guild, everyone, role, overwrites[:1])
	if got.Has(discord.PermissionViewChannel) {
		t.Errorf("@everyone deny should hide the channel, got %v", got)
	}

	admin := discord.Role{ID: adminRole, Permissions: discord.PermissionAdministrator}
	if got := RolePermissionsIn(guild, everyone, admin, overwrites[:1]); got != discord.PermissionsAll {
		t.Errorf("administrator should bypass overwrites, got %v", got)
	}
}
