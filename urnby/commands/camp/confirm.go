package camp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/confirm"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/logger"
)

// Confirmation kinds, part of the button custom ids.
const (
	kindClockIn = "clockin"
	kindUrn     = "urn"
)

var declinedText = map[string]string{
	kindClockIn: "Clock in cancelled.",
	kindUrn:     "Urn cancelled, your time is untouched.",
}

var expiredText = map[string]string{
	kindClockIn: "You took too long to respond, clock in reset.",
	kindUrn:     "You took too long to respond, urn cancelled.",
}

func confirmButtons(kind, token string) []discord.ContainerComponent {
	return []discord.ContainerComponent{
		discord.NewActionRow(
			discord.NewPrimaryButton("Yes", fmt.Sprintf("/confirm/%s/yes/%s", kind, token)),
			discord.NewDangerButton("No", fmt.Sprintf("/confirm/%s/no/%s", kind, token)),
		),
	}
}

// prompt posts a yes/no question and resolves it in the background. The
// command returns right away; onAccept runs once the owner says yes. Its
// first message replaces the prompt, the rest are sent as followups.
func prompt(b *urnby.Bot, e *handler.CommandEvent, kind, question string, onAccept func(ctx context.Context) ([]string, error)) error {
	token := b.Confirms.Issue(e.User().ID)
	if err := e.CreateMessage(discord.MessageCreate{
		Content:         question,
		Components:      confirmButtons(kind, token),
		AllowedMentions: handlers.NoMentions,
	}); err != nil {
		b.Confirms.Cancel(token)
		return err
	}

	go func() {
		var msgs []string
		switch b.Confirms.Await(context.Background(), token) {
		case confirm.Declined:
			return
		case confirm.Cancelled:
			msgs = []string{expiredText[kind]}
		case confirm.Accepted:
			ctx, cancel := handlers.QueryContext()
			defer cancel()
			var err error
			if msgs, err = onAccept(ctx); err != nil {
				text, unexpected := handlers.MapError(err)
				if unexpected {
					logger.LogError("Confirmed action failed", err, slog.String("kind", kind))
				}
				msgs = []string{text}
			}
		}
		finishPrompt(e, kind, msgs)
	}()
	return nil
}

func finishPrompt(e *handler.CommandEvent, kind string, msgs []string) {
	if len(msgs) == 0 {
		return
	}
	if _, err := e.UpdateInteractionResponse(discord.MessageUpdate{
		Content:         &msgs[0],
		Components:      &[]discord.ContainerComponent{},
		AllowedMentions: handlers.NoMentions,
	}); err != nil {
		logger.LogError("Failed to update confirmation prompt", err, slog.String("kind", kind))
	}
	for _, m := range msgs[1:] {
		if _, err := e.CreateFollowupMessage(discord.MessageCreate{Content: m}); err != nil {
			logger.LogError("Failed to send followup", err, slog.String("kind", kind))
		}
	}
}

// ConfirmComponentHandler answers the yes/no buttons of a prompt.
func ConfirmComponentHandler(b *urnby.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		kind, answer, token := e.Vars["kind"], e.Vars["answer"], e.Vars["token"]
		accept := answer == "yes"
		if err := b.Confirms.Resolve(token, e.User().ID, accept); err != nil {
			return err
		}
		if accept {
			return e.DeferUpdateMessage()
		}
		text := declinedText[kind]
		return e.UpdateMessage(discord.MessageUpdate{
			Content:    &text,
			Components: &[]discord.ContainerComponent{},
		})
	}
}
