package services

import (
	"context"
	"errors"
	"sync"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

var ErrNoClient = errors.New("discord client not ready")

// Discord adapts the disgo client to the narrow interfaces the dashboard,
// channel stats and permission checks depend on. The client is set once the
// gateway is configured.
type Discord struct {
	mu     sync.RWMutex
	client bot.Client
}

func NewDiscord() *Discord {
	return &Discord{}
}

func (d *Discord) SetClient(client bot.Client) {
	d.mu.Lock()
	d.client = client
	d.mu.Unlock()
}

func (d *Discord) get() (bot.Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.client == nil {
		return nil, ErrNoClient
	}
	return d.client, nil
}

func (d *Discord) Role(guildID, roleID snowflake.ID) (discord.Role, bool) {
	client, err := d.get()
	if err != nil {
		return discord.Role{}, false
	}
	return client.Caches().Role(guildID, roleID)
}

func (d *Discord) Overwrites(channelID snowflake.ID) (discord.PermissionOverwrites, bool) {
	client, err := d.get()
	if err != nil {
		return nil, false
	}
	ch, ok := client.Caches().Channel(channelID)
	if !ok {
		return nil, false
	}
	return ch.PermissionOverwrites(), true
}

// ChannelName is the cached name of a channel, or its id.
func (d *Discord) ChannelName(channelID snowflake.ID) string {
	client, err := d.get()
	if err != nil {
		return channelID.String()
	}
	if ch, ok := client.Caches().Channel(channelID); ok {
		return ch.Name()
	}
	return channelID.String()
}

// DisplayName resolves a member's guild name, cache first.
func (d *Discord) DisplayName(ctx context.Context, guildID, userID snowflake.ID) (string, error) {
	client, err := d.get()
	if err != nil {
		return "", err
	}
	if m, ok := client.Caches().Member(guildID, userID); ok {
		return m.EffectiveName(), nil
	}
	m, err := client.Rest().GetMember(guildID, userID, rest.WithCtx(ctx))
	if err != nil {
		return "", err
	}
	return m.EffectiveName(), nil
}

// Rename sets a channel name. Stat channels are usually voice channels.
func (d *Discord) Rename(ctx context.Context, channelID snowflake.ID, name string) error {
	client, err := d.get()
	if err != nil {
		return err
	}

	var update discord.ChannelUpdate = discord.GuildVoiceChannelUpdate{Name: &name}
	if ch, ok := client.Caches().Channel(channelID); ok && ch.Type() == discord.ChannelTypeGuildText {
		update = discord.GuildTextChannelUpdate{Name: &name}
	}
	_, err = client.Rest().UpdateChannel(channelID, update, rest.WithCtx(ctx))
	return err
}
