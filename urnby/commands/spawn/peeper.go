package spawn

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/handlers"
)

var IPeeped = discord.SlashCommandCreate{
	Name:        "ipeeped",
	Description: "Ephemeral - Mark yourself as the last one to check the spawn",
}

var WhoPeeped = discord.SlashCommandCreate{
	Name:        "whopeeped",
	Description: "Ephemeral - Who checked the spawn last",
}

func IPeepedHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		p := b.Peeper.Mark(handlers.GuildID(e), e.User().ID)
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("Got it, you're the last peeper at <t:%d:f> local time", p.At.Unix()),
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}

func WhoPeepedHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		content := "Sorry I cant remember who peeped last"
		if p, ok := b.Peeper.Last(handlers.GuildID(e)); ok {
			content = fmt.Sprintf("<@%s> last peeped at <t:%d:f> local, that was %.2f mins ago",
				p.UserID, p.At.Unix(), b.Peeper.MinutesAgo(p))
		}
		return e.CreateMessage(discord.MessageCreate{
			Content:         content,
			Flags:           discord.MessageFlagEphemeral,
			AllowedMentions: handlers.NoMentions,
		})
	}
}
