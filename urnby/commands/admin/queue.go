package admin

import (
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/handlers"
)

var AdminRep = discord.SlashCommandCreate{
	Name:        "admin_rep",
	Description: "Admin command to place a member in the replacement queue",
	Options: []discord.ApplicationCommandOption{
		stringOption("userid", "Id of the member", true),
		discord.ApplicationCommandOptionInt{
			Name:        "intime",
			Description: "Unix time of the queue entry, now by default",
		},
	},
}

var AdminUnrep = discord.SlashCommandCreate{
	Name:        "admin_unrep",
	Description: "Admin command to remove a member from the replacement queue",
	Options: []discord.ApplicationCommandOption{
		stringOption("userid", "Id of the member", true),
	},
}

var AdminClearReps = discord.SlashCommandCreate{
	Name:        "admin_clearreps",
	Description: "Admin command to empty the replacement queue",
}

func AdminRepHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		userID, err := handlers.ParseUserID(data.String("userid"))
		if err != nil {
			return err
		}
		var at time.Time
		if in, ok := data.OptInt("intime"); ok && in > 0 {
			at = time.Unix(int64(in), 0)
		}

		guildID := handlers.GuildID(e)
		name := b.Names.Name(ctx, guildID, userID)
		if _, err := b.Queue.AdminEnqueue(ctx, guildID, userID, name, at); err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{Content: "Added."})
	}
}

func AdminUnrepHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		userID, err := handlers.ParseUserID(e.SlashCommandInteractionData().String("userid"))
		if err != nil {
			return err
		}
		if _, err := b.Queue.AdminDequeue(ctx, handlers.GuildID(e), userID); err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{Content: "Removed."})
	}
}

func AdminClearRepsHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		if _, err := b.Queue.Clear(ctx, handlers.GuildID(e)); err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{Content: "Queue cleared."})
	}
}
