package reps

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/handlers"
)

var userIDOption = discord.ApplicationCommandOptionString{
	Name:        "userid",
	Description: "Act on behalf of another member",
	Required:    false,
}

var Rep = discord.SlashCommandCreate{
	Name:        "rep",
	Description: "Add yourself to the replacement list (FIFO)",
	Options:     []discord.ApplicationCommandOption{userIDOption},
}

var Unrep = discord.SlashCommandCreate{
	Name:        "unrep",
	Description: "Remove yourself from the replacement list",
	Options:     []discord.ApplicationCommandOption{userIDOption},
}

// target resolves the optional userid option to an id and display name,
// falling back to the invoking member.
func target(ctx context.Context, b *urnby.Bot, e *handler.CommandEvent) (snowflake.ID, string, error) {
	raw, ok := e.SlashCommandInteractionData().OptString("userid")
	if !ok || raw == "" {
		return e.User().ID, handlers.DisplayName(e.Member(), e.User()), nil
	}
	userID, err := handlers.ParseUserID(raw)
	if err != nil {
		return 0, "", err
	}
	name, err := b.Discord.DisplayName(ctx, handlers.GuildID(e), userID)
	if err != nil {
		return 0, "", handlers.Invalid("Invalid User ID")
	}
	return userID, name, nil
}

func RepHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		userID, name, err := target(ctx, b, e)
		if err != nil {
			return err
		}
		if _, err := b.Queue.Enqueue(ctx, handlers.GuildID(e), userID, name); err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("%s Successfully added to replacement queue", name),
		})
	}
}

func UnrepHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		userID, name, err := target(ctx, b, e)
		if err != nil {
			return err
		}
		if _, err := b.Queue.Dequeue(ctx, handlers.GuildID(e), userID); err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("%s Successfully removed from replacement queue", name),
		})
	}
}
