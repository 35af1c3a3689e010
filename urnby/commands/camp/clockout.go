package camp

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/shifts"
)

var ClockOut = discord.SlashCommandCreate{
	Name:        "clockout",
	Description: "Clock out of the active session",
}

// ClockOutMessages describes a clock out: the closed record, then one line
// per bonus record with the running total.
func ClockOutMessages(name string, res *shifts.ClockOutResult) []string {
	running := res.TotalSeconds
	for _, bonus := range res.Bonuses {
		running -= bonus.Seconds()
	}

	rec := res.Record
	msgs := []string{fmt.Sprintf("%s Successfully clocked out at <t:%d:f>, stored record #%d for %s hours. Your total is at %s",
		name, rec.OutTimestamp, rec.ID, format.Hours(rec.Seconds()), format.Hours(running))}
	for _, bonus := range res.Bonuses {
		running += bonus.Seconds()
		msgs = append(msgs, fmt.Sprintf("%s Obtained bonus hours, stored record #%d for %s hours. Your total is at %s",
			name, bonus.ID, format.Hours(bonus.Seconds()), format.Hours(running)))
	}
	return msgs
}

func ClockOutHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		user := e.User()
		res, err := b.Shifts.ClockOut(ctx, handlers.GuildID(e), user.ID)
		if err != nil && (res == nil || res.Record == nil) {
			return err
		}

		msgs := ClockOutMessages(handlers.DisplayName(e.Member(), user), res)
		if err := e.CreateMessage(discord.MessageCreate{Content: msgs[0]}); err != nil {
			return err
		}
		for _, m := range msgs[1:] {
			if _, ferr := e.CreateFollowupMessage(discord.MessageCreate{Content: m}); ferr != nil {
				return ferr
			}
		}
		// the shift is closed; a bonus or total failure is still reported
		return err
	}
}
