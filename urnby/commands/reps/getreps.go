package reps

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/handlers"
)

var GetReps = discord.SlashCommandCreate{
	Name:        "getreps",
	Description: "Display current list of replacements",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionBool{
			Name:        "public",
			Description: "Show the list to everyone",
		},
	},
}

func GetRepsHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		entries, err := b.Queue.List(ctx, handlers.GuildID(e))
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(entries))
		for _, entry := range entries {
			ids = append(ids, entry.UserID)
		}
		return e.CreateMessage(discord.MessageCreate{
			Content:         format.QueueLine(ids),
			Flags:           handlers.Flags(handlers.PublicOption(e)),
			AllowedMentions: handlers.NoMentions,
		})
	}
}
