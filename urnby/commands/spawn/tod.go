package spawn

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/timeutil"
	"github.com/urnby/campbot/urnby/tod"
)

var Tod = discord.SlashCommandCreate{
	Name:        "tod",
	Description: "Entered tod must be todays date, or using the optional daybefore parameter, yesterday",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "tod",
			Description: "Use when time is not 'now' - 24 hour clock time (ex 14:49)",
		},
		discord.ApplicationCommandOptionString{
			Name:        "mobname",
			Description: "Mob that died, " + config.DefaultMob + " by default",
		},
		discord.ApplicationCommandOptionBool{
			Name:        "daybefore",
			Description: "Use if the tod was actually yesterday",
		},
	},
}

var GetTod = discord.SlashCommandCreate{
	Name:        "gettod",
	Description: "Ephemeral - Get the latest time of death and the expected spawn",
}

func TodHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		value, ok := data.OptString("tod")
		if !ok {
			value = "now"
		}
		rec, err := b.Tod.Submit(ctx, handlers.GuildID(e), e.User().ID, value, data.Bool("daybefore"), data.String("mobname"))
		if err != nil {
			return err
		}
		loc := b.Tod.Location()
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("Set tod at %s, spawn will happen at %s",
				timeutil.FromUnix(rec.TodTimestamp, loc).Format(time.RFC3339),
				tod.Spawn(rec, loc).Format(time.RFC3339)),
		})
	}
}

// TodStatus describes a marker and the hours left until its spawn.
func TodStatus(rec *models.TimeOfDeath, now time.Time, loc *time.Location) string {
	spawn := tod.Spawn(rec, loc)
	return fmt.Sprintf("ToD was %s %s will spawn in %.2f hours",
		timeutil.FromUnix(rec.TodTimestamp, loc).Format(time.RFC3339), rec.Mob,
		timeutil.SignedHours(spawn.Unix()-now.Unix()))
}

func GetTodHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		rec, err := b.Tod.Current(ctx, handlers.GuildID(e), config.DefaultMob)
		if err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: TodStatus(rec, b.Tod.Now(), b.Tod.Location()),
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}
