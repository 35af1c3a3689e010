package camp

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/timeutil"
)

var GetActive = discord.SlashCommandCreate{
	Name:        "getactive",
	Description: "Ephemeral optional - Get a list of users that are currently clocked in",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionBool{
			Name:        "public",
			Description: "Show the list to everyone",
		},
	},
}

type activeLine struct {
	Name    string
	Elapsed int64
}

// ActiveRoster renders the clocked in users with their elapsed hours.
func ActiveRoster(lines []activeLine) string {
	if len(lines) == 0 {
		return "There are no active users at this time"
	}
	var b strings.Builder
	b.WriteString("_ _\nActive Users:\n```")
	for _, l := range lines {
		name := []rune(l.Name)
		if len(name) > 19 {
			name = name[:19]
		}
		fmt.Fprintf(&b, "\n%-20s%.2f hours active", string(name), timeutil.HoursFromSecs(l.Elapsed))
	}
	b.WriteString("```")
	return b.String()
}

func GetActiveHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		guildID := handlers.GuildID(e)
		actives, err := b.Shifts.Actives(ctx, guildID)
		if err != nil {
			return err
		}

		now := b.Clock.Now()
		lines := make([]activeLine, 0, len(actives))
		for _, a := range actives {
			lines = append(lines, activeLine{
				Name:    b.Names.NameOr(ctx, guildID, a.UserID, a.UserName),
				Elapsed: now.Sub(time.Unix(a.InTimestamp, 0)).Milliseconds() / 1000,
			})
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: ActiveRoster(lines),
			Flags:   handlers.Flags(handlers.PublicOption(e)),
		})
	}
}
