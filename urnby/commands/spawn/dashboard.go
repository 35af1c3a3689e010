package spawn

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/handlers"
)

var DashboardRefresh = discord.SlashCommandCreate{
	Name:        "dashboardrefresh",
	Description: "Recreate the dashboard on its next update",
}

var DashboardTimeLeft = discord.SlashCommandCreate{
	Name:        "dashboardtimeleft",
	Description: "Time until the next dashboard update",
}

func DashboardRefreshHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		b.Dashboard.RequestRefresh(handlers.GuildID(e))
		return e.CreateMessage(discord.MessageCreate{Content: "Enabling refresh for the next dashboard update"})
	}
}

// TimeLeft describes the wait until next, or that no update is scheduled.
func TimeLeft(next, now time.Time) string {
	if next.IsZero() {
		return "Dashboard updates are not scheduled"
	}
	left := next.Sub(now)
	if left < 0 {
		left = 0
	}
	return fmt.Sprintf("Time till dashboard refresh check %s", left.Round(time.Second))
}

func DashboardTimeLeftHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return e.CreateMessage(discord.MessageCreate{Content: TimeLeft(b.Dashboard.NextTick(), b.Clock.Now())})
	}
}
