package camp

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/shifts"
)

var Urn = discord.SlashCommandCreate{
	Name:        "urn",
	Description: "For use when you have obtained an urn",
}

func UrnHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		guildID := handlers.GuildID(e)
		user := e.User()
		name := handlers.DisplayName(e.Member(), user)

		actives, err := b.Shifts.Actives(ctx, guildID)
		if err != nil {
			return err
		}
		for _, a := range actives {
			if a.UserID == user.ID.String() {
				return handlers.Invalid("Please clock out before attempting to claim your urn.")
			}
		}
		total, err := b.Shifts.UserSeconds(ctx, guildID, user.ID)
		if err != nil {
			return err
		}
		if total <= 0 {
			return shifts.ErrNothingToZero
		}

		question := fmt.Sprintf("Did you really get an URN!?! Are you ready to clear out your %s hours to 0?", format.Hours(total))
		return prompt(b, e, kindUrn, question, func(ctx context.Context) ([]string, error) {
			rec, err := b.Shifts.ZeroOut(ctx, guildID, user.ID, name)
			if err != nil {
				return nil, err
			}
			return []string{fmt.Sprintf("Ooooh, yes! :urn: :tada: %s hours well spent!", format.Hours(-rec.Seconds()))}, nil
		})
	}
}
