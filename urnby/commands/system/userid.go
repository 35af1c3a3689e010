package system

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/handlers"
)

var GetUserID = discord.UserCommandCreate{
	Name: "Get User ID",
}

func GetUserIDHandler(_ *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		id := e.UserCommandInteractionData().TargetID()
		return e.CreateMessage(discord.MessageCreate{
			Content:         fmt.Sprintf("<@%s> is ID - %s", id, id),
			Flags:           discord.MessageFlagEphemeral,
			AllowedMentions: handlers.NoMentions,
		})
	}
}
