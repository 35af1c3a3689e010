package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/shifts"
)

var SessionHistory = discord.SlashCommandCreate{
	Name:        "sessionhistory",
	Description: "Ephemeral optional - Summary of an ended session",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "session_name",
			Description:  "Name of the ended session",
			Required:     true,
			Autocomplete: true,
		},
		discord.ApplicationCommandOptionBool{
			Name:        "public",
			Description: "Show the summary to everyone",
		},
	},
}

// MatchSessions ranks names against a partial query. An empty query keeps
// the stored order.
func MatchSessions(query string, names []string, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		if len(names) > limit {
			return names[:limit]
		}
		return names
	}
	matches := fuzzy.Find(query, names)
	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

func SessionHistoryAutocomplete(b *urnby.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()
		if focused.Name != "session_name" {
			return nil
		}

		query := ""
		if focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err != nil {
				slog.Error("Failed to unmarshal focused.Value",
					slog.String("type", "cmd"),
					slog.String("error", err.Error()))
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
			query = s
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.NameLookupTimeout)
		defer cancel()

		var guildID = e.GuildID()
		if guildID == nil {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}
		names, err := b.Shifts.SessionNames(ctx, *guildID)
		if err != nil {
			slog.Error("Failed to list session names",
				slog.String("type", "cmd"),
				slog.String("error", err.Error()))
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		matched := MatchSessions(query, names, config.AutocompleteMax)
		choices := make([]discord.AutocompleteChoice, 0, len(matched))
		for _, name := range matched {
			choices = append(choices, discord.AutocompleteChoiceString{Name: name, Value: name})
		}
		return e.AutocompleteResult(choices)
	}
}

// SessionReport lists an ended session and its participants by time spent.
func SessionReport(sum *shifts.SessionSummary) string {
	h := sum.History
	var b strings.Builder
	fmt.Fprintf(&b, "Session \"%s\" ran from <t:%d:f> to <t:%d:f> and lasted %s hours",
		h.Name, h.StartTimestamp, h.EndTimestamp, format.Hours(h.EndTimestamp-h.StartTimestamp))
	fmt.Fprintf(&b, "\nStarted by <@%s>, ended by <@%s>", h.CreatedBy, h.EndedBy)

	users := make([]string, 0, len(sum.Seconds))
	for id := range sum.Seconds {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool {
		if sum.Seconds[users[i]] != sum.Seconds[users[j]] {
			return sum.Seconds[users[i]] > sum.Seconds[users[j]]
		}
		return users[i] < users[j]
	})
	if len(users) == 0 {
		b.WriteString("\nNobody clocked time in this session")
		return b.String()
	}
	fmt.Fprintf(&b, "\n%d members, %d records:", len(users), len(sum.Records))
	for _, id := range users {
		fmt.Fprintf(&b, "\n<@%s> %s hours", id, format.Hours(sum.Seconds[id]))
	}
	return b.String()
}

func SessionHistoryHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		name := strings.TrimSpace(e.SlashCommandInteractionData().String("session_name"))
		sum, err := b.Shifts.SessionSummary(ctx, handlers.GuildID(e), name)
		if repositories.IsNotFound(err) {
			return handlers.Invalid(fmt.Sprintf("No ended session is named \"%s\".", name))
		}
		if err != nil {
			return err
		}
		msgs := format.ChunkLines(SessionReport(sum), config.MaxMessageLength)
		return handlers.SendChunks(e, msgs, handlers.Flags(handlers.PublicOption(e)))
	}
}
