package camp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/shifts"
)

var SessionStart = discord.SlashCommandCreate{
	Name:        "sessionstart",
	Description: "Start a session, only one session is allowed at a time",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "session_name",
			Description: "Unique name of the session",
			Required:    true,
			MaxLength:   intPtr(100),
		},
	},
}

var SessionEnd = discord.SlashCommandCreate{
	Name:        "sessionend",
	Description: "Ends the active session, clocking out all active users in the process",
}

var GetSession = discord.SlashCommandCreate{
	Name:        "getsession",
	Description: "Ephemeral - Get information about the active session",
}

func intPtr(i int) *int { return &i }

func SessionStartHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		name := strings.TrimSpace(e.SlashCommandInteractionData().String("session_name"))
		if name == "" {
			return handlers.Invalid("Session name can not be empty.")
		}
		sess, err := b.Shifts.StartSession(ctx, handlers.GuildID(e), e.User().ID.String(), name)
		if err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("Session %s started at <t:%d:f>", sess.Name, sess.StartTimestamp),
		})
	}
}

// SessionEndReport summarizes an ended session and everyone it clocked out.
func SessionEndReport(res *shifts.EndSessionResult) string {
	var b strings.Builder
	h := res.History
	fmt.Fprintf(&b, "Session, %s ended and lasted %s hours", h.Name, format.Hours(h.EndTimestamp-h.StartTimestamp))

	var closed []string
	for _, out := range res.ClockedOut {
		closed = append(closed, fmt.Sprintf("%s (%s)", out.Record.UserName, format.Hours(out.Record.Seconds())))
		for _, bonus := range out.Bonuses {
			closed = append(closed, fmt.Sprintf("%s (bonus #%d, %s)", bonus.UserName, bonus.ID, format.Hours(bonus.Seconds())))
		}
	}
	if len(closed) > 0 {
		b.WriteString("\nAutomatically closed out: ")
		b.WriteString(strings.Join(closed, ", "))
	}

	if len(res.Failures) > 0 {
		failed := make([]string, 0, len(res.Failures))
		for _, f := range res.Failures {
			failed = append(failed, fmt.Sprintf("%s <@%s>", f.UserName, f.UserID))
		}
		b.WriteString("\nFailed to close out ")
		b.WriteString(strings.Join(failed, ", "))
		b.WriteString(", contact an administrator")
	}
	return b.String()
}

func SessionEndHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		res, err := b.Shifts.EndSession(ctx, handlers.GuildID(e), e.User().ID.String())
		if err != nil {
			return err
		}
		return handlers.SendChunks(e, format.ChunkLines(SessionEndReport(res), config.MaxMessageLength), 0)
	}
}

func GetSessionHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		content := "There is no active session right now."
		sess, err := b.Shifts.Session(ctx, handlers.GuildID(e))
		switch {
		case err == nil:
			content = fmt.Sprintf("Session \"%s\" started at <t:%d:f> local", sess.Name, sess.StartTimestamp)
		case !errors.Is(err, shifts.ErrNoActiveSession):
			return err
		}
		return e.CreateMessage(discord.MessageCreate{Content: content, Flags: discord.MessageFlagEphemeral})
	}
}
