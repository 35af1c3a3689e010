package admin

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/handlers"
)

func keyChoices(skip ...string) []discord.ApplicationCommandOptionChoiceString {
	var choices []discord.ApplicationCommandOptionChoiceString
	for _, k := range guildconfig.Keys {
		skipped := false
		for _, s := range skip {
			skipped = skipped || s == k
		}
		if !skipped {
			choices = append(choices, discord.ApplicationCommandOptionChoiceString{Name: k, Value: k})
		}
	}
	return choices
}

var ConfigAdd = discord.SlashCommandCreate{
	Name:        "configadd",
	Description: "Add configuration item (not bonus hours)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "key",
			Description: "Configuration key",
			Required:    true,
			Choices:     keyChoices(guildconfig.KeyBonusHours),
		},
		stringOption("value", "Role or channel id, or a number for max_active", true),
	},
}

var ConfigAddBonusHours = discord.SlashCommandCreate{
	Name:        "configaddbonushours",
	Description: "Add a set of bonus hours",
	Options: []discord.ApplicationCommandOption{
		stringOption("start", "Start of the window, HH:MM", true),
		stringOption("end", "End of the window, HH:MM, may pass midnight", true),
		discord.ApplicationCommandOptionInt{
			Name:        "pct",
			Description: "Extra credit in percent",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

var ConfigClearItem = discord.SlashCommandCreate{
	Name:        "configclearitem",
	Description: "Clear a configuration item, will need to set values again",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "key",
			Description: "Configuration key",
			Required:    true,
			Choices:     keyChoices(),
		},
	},
}

var GetConfig = discord.SlashCommandCreate{
	Name:        "getconfig",
	Description: "Ephemeral optional - Get bot configuration",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionBool{
			Name:        "public",
			Description: "Show the configuration to everyone",
		},
	},
}

func intPtr(i int) *int { return &i }

// dashboardKeys change where dashboards are posted.
var dashboardKeys = map[string]bool{
	guildconfig.KeyDashboardChannel:  true,
	guildconfig.KeyMobileDashChannel: true,
}

func configReply(e *handler.CommandEvent, verb, key string, cfg guildconfig.GuildConfig) error {
	rendered, err := guildconfig.Render(cfg)
	if err != nil {
		return err
	}
	return e.CreateMessage(discord.MessageCreate{
		Content: fmt.Sprintf("Config item %s - %s\n```toml\n%s```", verb, key, rendered),
	})
}

func ConfigAddHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		key := data.String("key")
		value, err := snowflake.Parse(strings.TrimSpace(data.String("value")))
		if err != nil {
			return handlers.Invalid("Value must be a number, role id or channel id.")
		}

		guildID := handlers.GuildID(e)
		cfg, err := b.Configs.Add(guildID, key, value)
		if err != nil {
			return err
		}
		if dashboardKeys[key] {
			b.Dashboard.RequestRefresh(guildID)
		}
		return configReply(e, "set", key, cfg)
	}
}

func ConfigAddBonusHoursHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		cfg, err := b.Configs.AddBonusWindow(handlers.GuildID(e), guildconfig.BonusWindow{
			Start: data.String("start"),
			End:   data.String("end"),
			Pct:   data.Int("pct"),
		})
		if err != nil {
			return err
		}
		return configReply(e, "set", guildconfig.KeyBonusHours, cfg)
	}
}

func ConfigClearItemHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		key := e.SlashCommandInteractionData().String("key")
		guildID := handlers.GuildID(e)
		if dashboardKeys[key] {
			ctx, cancel := handlers.QueryContext()
			b.Dashboard.Purge(ctx, guildID)
			cancel()
		}
		cfg, err := b.Configs.Clear(guildID, key)
		if err != nil {
			return err
		}
		return configReply(e, "cleared", key, cfg)
	}
}

func GetConfigHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		cfg, _ := b.Configs.Get(handlers.GuildID(e))
		rendered, err := guildconfig.Render(cfg)
		if err != nil {
			return err
		}
		if strings.TrimSpace(rendered) == "" {
			rendered = "# nothing configured\n"
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("```toml\n%s```", rendered),
			Flags:   handlers.Flags(handlers.PublicOption(e)),
		})
	}
}
