package reports

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/handlers"
)

var GetCommands = discord.SlashCommandCreate{
	Name:        "getcommands",
	Description: "Ephemeral - Get a list of historical commands submitted to the bot by a user",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "user_id",
			Description: "Member to look up, yourself by default",
		},
		discord.ApplicationCommandOptionInt{
			Name:        "start_at",
			Description: "Skip this many of the most recent commands",
			MinValue:    intPtr(0),
		},
		discord.ApplicationCommandOptionInt{
			Name:        "count",
			Description: "How many commands to show",
			MinValue:    intPtr(1),
			MaxValue:    intPtr(50),
		},
	},
}

var GetUserCommands = discord.UserCommandCreate{
	Name: "Get User Commands",
}

func intPtr(i int) *int { return &i }

// CommandHistory renders audit rows newest first, clipped to one message.
func CommandHistory(userID snowflake.ID, recs []*models.CommandRecord, startAt int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<@%s>'s last %d commands", userID, len(recs))
	if startAt > 0 {
		fmt.Fprintf(&b, ", starting at user's %d'th most recent command", startAt)
	}
	if len(recs) == 0 {
		return b.String()
	}

	var body strings.Builder
	for _, r := range recs {
		fmt.Fprintf(&body, "\n#%d <t:%d:f> /%s", r.ID, r.Timestamp, r.Name)
		if r.Options != "" {
			fmt.Fprintf(&body, " %s", r.Options)
		}
		if r.ChannelName != "" {
			fmt.Fprintf(&body, " in #%s", r.ChannelName)
		}
		if r.Level == models.CommandLevelError {
			fmt.Fprintf(&body, " [error: %s]", r.Error)
		}
	}

	room := config.MaxMessageLength - b.Len() - 10
	text := body.String()
	if len(text) > room {
		text = text[:room]
		if i := strings.LastIndexByte(text, '\n'); i > 0 {
			text = text[:i]
		}
	}
	b.WriteString("```")
	b.WriteString(text)
	b.WriteString("```")
	return b.String()
}

func commandHistory(b *urnby.Bot, e *handler.CommandEvent, userID snowflake.ID, startAt, count int) error {
	ctx, cancel := handlers.QueryContext()
	defer cancel()

	recs, err := b.CommandRepo.UserCommands(ctx, handlers.GuildID(e).String(), userID.String(), startAt, count)
	if err != nil {
		return err
	}
	return e.CreateMessage(discord.MessageCreate{
		Content:         CommandHistory(userID, recs, startAt),
		Flags:           discord.MessageFlagEphemeral,
		AllowedMentions: handlers.NoMentions,
	})
}

func GetCommandsHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		userID, err := optionalUser(e)
		if err != nil {
			return err
		}
		data := e.SlashCommandInteractionData()
		startAt, _ := data.OptInt("start_at")
		count, ok := data.OptInt("count")
		if !ok {
			count = config.CommandsPerPage
		}
		return commandHistory(b, e, userID, startAt, count)
	}
}

func GetUserCommandsHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		target := e.UserCommandInteractionData().TargetUser()
		return commandHistory(b, e, target.ID, 0, config.CommandsPerPage)
	}
}
