package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// purgeScan is how many recent messages a purge looks at.
const purgeScan = 100

// Send posts a dashboard message without pinging anyone.
func (d *Discord) Send(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error) {
	client, err := d.get()
	if err != nil {
		return 0, err
	}
	msg, err := client.Rest().CreateMessage(channelID, discord.MessageCreate{
		Content:         content,
		Flags:           discord.MessageFlagSuppressNotifications,
		AllowedMentions: &discord.AllowedMentions{},
	}, rest.WithCtx(ctx))
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (d *Discord) Edit(ctx context.Context, channelID, messageID snowflake.ID, content string) error {
	client, err := d.get()
	if err != nil {
		return err
	}
	_, err = client.Rest().UpdateMessage(channelID, messageID, discord.MessageUpdate{
		Content:         &content,
		AllowedMentions: &discord.AllowedMentions{},
	}, rest.WithCtx(ctx))
	return err
}

// Purge deletes the bot's own messages among the channel's recent history.
func (d *Discord) Purge(ctx context.Context, channelID snowflake.ID) error {
	client, err := d.get()
	if err != nil {
		return err
	}
	msgs, err := client.Rest().GetMessages(channelID, 0, 0, 0, purgeScan, rest.WithCtx(ctx))
	if err != nil {
		return err
	}

	self := client.ID()
	var errs []error
	deleted := 0
	for _, m := range msgs {
		if m.Author.ID != self {
			continue
		}
		if err := client.Rest().DeleteMessage(channelID, m.ID, rest.WithCtx(ctx)); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	slog.Debug("Purged dashboard channel",
		slog.String("type", "dash"),
		slog.String("channel_id", channelID.String()),
		slog.Int("deleted", deleted))
	return errors.Join(errs...)
}
