package camp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/queue"
	"github.com/urnby/campbot/urnby/shifts"
)

var ClockIn = discord.SlashCommandCreate{
	Name:        "clockin",
	Description: "Clock into the active session",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "character",
			Description: "Character you are camping on",
			Required:    false,
		},
	},
}

func mentions(entries []*models.Replacement) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("<@%s>", e.UserID))
	}
	return strings.Join(parts, ", ")
}

// OverCapNotice is the advisory sent when a clock in goes past max_active.
func OverCapNotice(res *shifts.ClockInResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Max number of active users is %d, we are at %d currently", res.MaxActive, res.ActiveCount)
	for _, a := range res.Actives {
		fmt.Fprintf(&b, ", <@%s>", a.UserID)
	}
	b.WriteString(" please reduce active users")
	return b.String()
}

func clockIn(ctx context.Context, b *urnby.Bot, guildID, userID snowflake.ID, name, character string) ([]string, error) {
	res, err := b.Shifts.ClockIn(ctx, guildID, userID, name, character)
	if err != nil {
		return nil, err
	}
	// clocked in users leave the replacement queue
	if _, err := b.Queue.Dequeue(ctx, guildID, userID); err != nil && !errors.Is(err, queue.ErrNotQueued) {
		slog.Warn("Failed to drop clocked in user from queue",
			slog.String("type", "cmd"),
			slog.String("user_id", userID.String()),
			slog.Any("error", err))
	}

	msgs := []string{fmt.Sprintf("%s Successfully clocked in at <t:%d:f>", name, res.Record.InTimestamp)}
	if res.OverCap() {
		msgs = append(msgs, OverCapNotice(res))
	}
	return msgs, nil
}

func ClockInHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		guildID := handlers.GuildID(e)
		user := e.User()
		name := handlers.DisplayName(e.Member(), user)
		character, _ := e.SlashCommandInteractionData().OptString("character")

		if _, err := b.Shifts.Session(ctx, guildID); err != nil {
			return err
		}
		ahead, err := b.Queue.PeekBefore(ctx, guildID, user.ID)
		if err != nil {
			return err
		}

		if len(ahead) > 0 {
			question := fmt.Sprintf("There are %d members in the replacement queue ahead of you: %s. Clock in anyway?",
				len(ahead), mentions(ahead))
			return prompt(b, e, kindClockIn, question, func(ctx context.Context) ([]string, error) {
				return clockIn(ctx, b, guildID, user.ID, name, character)
			})
		}

		msgs, err := clockIn(ctx, b, guildID, user.ID, name, character)
		if err != nil {
			return err
		}
		if err := e.CreateMessage(discord.MessageCreate{Content: msgs[0]}); err != nil {
			return err
		}
		for _, m := range msgs[1:] {
			if _, err := e.CreateFollowupMessage(discord.MessageCreate{Content: m}); err != nil {
				return err
			}
		}
		return nil
	}
}
