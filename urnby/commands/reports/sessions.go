package reports

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/handlers"
)

var GetUserSessions = discord.SlashCommandCreate{
	Name:        "getusersessions",
	Description: "Ephemeral - Get list of user's historical sessions",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "user_id",
			Description: "Member to look up, yourself by default",
		},
		discord.ApplicationCommandOptionString{
			Name:        "timetype",
			Description: "Unit of the listed durations",
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Hours", Value: string(format.UnitHours)},
				{Name: "Seconds", Value: string(format.UnitSeconds)},
			},
		},
		discord.ApplicationCommandOptionBool{
			Name:        "public",
			Description: "Show the listing to everyone",
		},
	},
}

var GetUserSessionsUser = discord.UserCommandCreate{
	Name: "Get User Sessions",
}

var GetUserSeconds = discord.SlashCommandCreate{
	Name:        "getuserseconds",
	Description: "Get total number of seconds that a user has accrued",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "user_id",
			Description: "Member to look up, yourself by default",
		},
	},
}

var GetUserTime = discord.UserCommandCreate{
	Name: "Get User Time",
}

// optionalUser reads the user_id option, defaulting to the invoker.
func optionalUser(e *handler.CommandEvent) (snowflake.ID, error) {
	raw, ok := e.SlashCommandInteractionData().OptString("user_id")
	if !ok || raw == "" {
		return e.User().ID, nil
	}
	return handlers.ParseUserID(raw)
}

func userSessions(b *urnby.Bot, e *handler.CommandEvent, userID snowflake.ID, name string, unit format.TimeUnit, public bool) error {
	ctx, cancel := handlers.QueryContext()
	defer cancel()

	guildID := handlers.GuildID(e)
	recs, err := b.Shifts.UserHistory(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("%s has no recorded sessions", name),
			Flags:   discord.MessageFlagEphemeral,
		})
	}
	total, err := b.Shifts.UserSeconds(ctx, guildID, userID)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("_ _\n<@%s> Sessions:\n", userID)
	tail := fmt.Sprintf("\n<@%s> has accrued %s hours", userID, format.Hours(total))
	msgs := format.SessionListing(title, tail, recs, b.Location, unit, config.SessionListChunk)
	return handlers.SendChunks(e, msgs, handlers.Flags(public))
}

func GetUserSessionsHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		userID, err := optionalUser(e)
		if err != nil {
			return err
		}
		unit := format.UnitHours
		if v, ok := e.SlashCommandInteractionData().OptString("timetype"); ok && v == string(format.UnitSeconds) {
			unit = format.UnitSeconds
		}
		name := fmt.Sprintf("<@%s>", userID)
		return userSessions(b, e, userID, name, unit, handlers.PublicOption(e))
	}
}

func GetUserSessionsUserHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		target := e.UserCommandInteractionData().TargetUser()
		return userSessions(b, e, target.ID, target.EffectiveName(), format.UnitHours, false)
	}
}

func GetUserSecondsHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		userID, err := optionalUser(e)
		if err != nil {
			return err
		}
		secs, err := b.Shifts.UserSeconds(ctx, handlers.GuildID(e), userID)
		if err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{
			Content:         fmt.Sprintf("<@%s> has %d seconds", userID, secs),
			AllowedMentions: handlers.NoMentions,
		})
	}
}

func GetUserTimeHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		guildID := handlers.GuildID(e)
		target := e.UserCommandInteractionData().TargetUser()
		secs, err := b.Shifts.UserSeconds(ctx, guildID, target.ID)
		if err != nil {
			return err
		}
		name := b.Names.NameOr(ctx, guildID, target.ID.String(), target.EffectiveName())
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("%s has accrued %s hours", name, format.Hours(secs)),
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}
