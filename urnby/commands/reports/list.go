package reports

import (
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/shifts"
)

var List = discord.SlashCommandCreate{
	Name:        "list",
	Description: "Ephemeral optional - Gets list of users that have accrued time, ordered by highest hours urned",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionBool{
			Name:        "public",
			Description: "Show the list to everyone",
		},
	},
}

// leaderboardPage renders one page of ranked users.
func leaderboardPage(entries []shifts.LeaderboardEntry, page, perPage int) string {
	start := page * perPage
	end := min(start+perPage, len(entries))
	var b strings.Builder
	for i := start; i < end; i++ {
		fmt.Fprintf(&b, "`#%-3d` <@%s> has %s\n", i+1, entries[i].UserID, format.Hours(entries[i].Seconds))
	}
	return b.String()
}

func ListHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		entries, err := b.Shifts.Leaderboard(ctx, handlers.GuildID(e), 0, false)
		if err != nil {
			return err
		}
		public := handlers.PublicOption(e)
		if len(entries) == 0 {
			return e.CreateMessage(discord.MessageCreate{
				Content: "Nobody has accrued time yet.",
				Flags:   handlers.Flags(public),
			})
		}

		totalPages := int(math.Ceil(float64(len(entries)) / float64(config.LeaderboardPerPage)))
		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				embed.
					SetTitle("Users sorted by total time").
					SetDescription(leaderboardPage(entries, page, config.LeaderboardPerPage)).
					SetColor(config.InfoColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Users: %d", page+1, totalPages, len(entries)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, !public)
	}
}
