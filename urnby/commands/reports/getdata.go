package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/export"
	"github.com/urnby/campbot/urnby/handlers"
)

func datasetChoices() []discord.ApplicationCommandOptionChoiceString {
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(export.Datasets))
	for _, d := range export.Datasets {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{Name: string(d), Value: string(d)})
	}
	return choices
}

var GetData = discord.SlashCommandCreate{
	Name:        "getdata",
	Description: "Command to retrieve all data of a table",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "datatype",
			Description: "Table to export, historical by default",
			Choices:     datasetChoices(),
		},
	},
}

// exportSummary is the text posted with the exported file.
func exportSummary(res *export.Result) string {
	content := fmt.Sprintf("Here's the data! %d %s rows", res.Rows, res.Dataset)
	if res.Location != "" {
		content += fmt.Sprintf("\nA copy was stored at `%s`", res.Location)
	}
	return content
}

func GetDataHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		dataset := export.Historical
		if v, ok := e.SlashCommandInteractionData().OptString("datatype"); ok && v != "" {
			dataset = export.Dataset(v)
		}

		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.ExportTimeout)
		defer cancel()

		res, err := b.Exporter.Export(ctx, handlers.GuildID(e), dataset)
		if err != nil {
			return err
		}
		content := exportSummary(res)
		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Content: &content,
			Files:   []*discord.File{discord.NewFile(res.Filename, "", bytes.NewReader(res.Data))},
		})
		return err
	}
}
