package handlers

import (
	"context"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/config"
)

// NoMentions keeps replies from pinging the users they name.
var NoMentions = &discord.AllowedMentions{}

func QueryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
}

// GuildID of the interaction. Guild-only commands never see zero.
func GuildID(e *handler.CommandEvent) snowflake.ID {
	if g := e.GuildID(); g != nil {
		return *g
	}
	return 0
}

// Flags picks ephemeral unless public is set.
func Flags(public bool) discord.MessageFlags {
	if public {
		return 0
	}
	return discord.MessageFlagEphemeral
}

// PublicOption reads the optional "public" switch.
func PublicOption(e *handler.CommandEvent) bool {
	public, _ := e.SlashCommandInteractionData().OptBool("public")
	return public
}

// ParseUserID parses a user id typed as text.
func ParseUserID(s string) (snowflake.ID, error) {
	id, err := snowflake.Parse(strings.Trim(strings.TrimSpace(s), "<@!>"))
	if err != nil || id == 0 {
		return 0, Invalid("User id must be a valid number.")
	}
	return id, nil
}

// SendChunks answers with the first message and follows up with the rest.
func SendChunks(e *handler.CommandEvent, msgs []string, flags discord.MessageFlags) error {
	for i, content := range msgs {
		msg := discord.MessageCreate{Content: content, Flags: flags, AllowedMentions: NoMentions}
		if i == 0 {
			if err := e.CreateMessage(msg); err != nil {
				return err
			}
			continue
		}
		if _, err := e.CreateFollowupMessage(msg); err != nil {
			return err
		}
	}
	return nil
}
