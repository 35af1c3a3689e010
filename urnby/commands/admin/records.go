package admin

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/shifts"
	"github.com/urnby/campbot/urnby/timeutil"
)

var AdminDirectUrn = discord.SlashCommandCreate{
	Name:        "admindirecturn",
	Description: "Admin command to directly urn a user",
	Options: []discord.ApplicationCommandOption{
		stringOption("sessionname", "Session the urn belongs to", true),
		stringOption("userid", "Id of the member", true),
		stringOption("username", "Name to store with the record", true),
		stringOption("killdate", "Form YYYY-MM-DD", true),
		stringOption("killtime", "Form HH:MM, 24 hour clock", true),
	},
}

var AdminChangeHistory = discord.SlashCommandCreate{
	Name:        "adminchangehistory",
	Description: "Admin command to change a historical record of a user",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "recordnumber",
			Description: "Record number shown in session listings",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "type",
			Description: "Which end of the record to change",
			Required:    true,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Clock in time", Value: string(shifts.FieldClockIn)},
				{Name: "Clock out time", Value: string(shifts.FieldClockOut)},
			},
		},
		stringOption("date", "Form YYYY-MM-DD", true),
		stringOption("time", "24 hour clock, midnight is 00:00", true),
	},
}

var AdminDirectRecord = discord.SlashCommandCreate{
	Name:        "admindirectrecord",
	Description: "Admin command to add a historical record of a user",
	Options: []discord.ApplicationCommandOption{
		stringOption("sessionname", "Session the record belongs to", true),
		stringOption("userid", "Id of the member", true),
		stringOption("username", "Name to store with the record", true),
		stringOption("startdate", "Form YYYY-MM-DD", true),
		stringOption("intime", "Form HH:MM, 24 hour clock", true),
		stringOption("outtime", "Form HH:MM, 24 hour clock", true),
		stringOption("character", "Character the time was spent on", false),
		discord.ApplicationCommandOptionBool{
			Name:        "dayafter",
			Description: "Did clock out occur the day after clock in?",
		},
	},
}

func stringOption(name, description string, required bool) discord.ApplicationCommandOptionString {
	return discord.ApplicationCommandOptionString{
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// dayClock combines a YYYY-MM-DD date and an HH:MM clock in loc, shifted by
// days.
func dayClock(date, clock string, days int, loc *time.Location) (time.Time, error) {
	day, err := timeutil.ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return timeutil.Combine(day.AddDate(0, 0, days), clock, loc)
}

func AdminDirectUrnHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		userID, err := handlers.ParseUserID(data.String("userid"))
		if err != nil {
			return err
		}
		at, err := dayClock(data.String("killdate"), data.String("killtime"), 0, b.Location)
		if err != nil {
			return err
		}

		guildID := handlers.GuildID(e)
		username := data.String("username")
		rec, err := b.Shifts.AdminZeroOut(ctx, guildID, userID, username, data.String("sessionname"), at)
		if err != nil {
			return err
		}
		total, err := b.Shifts.UserSeconds(ctx, guildID, userID)
		if err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("%s - <@%s> Successfully URNed and stored record #%d for %.2f hours. Total is at %s",
				username, userID, rec.ID, timeutil.SignedHours(rec.Seconds()), format.Hours(total)),
			AllowedMentions: handlers.NoMentions,
		})
	}
}

func AdminChangeHistoryHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		field := shifts.HistoryField(data.String("type"))
		at, err := dayClock(data.String("date"), data.String("time"), 0, b.Location)
		if err != nil {
			return err
		}

		row := data.Int("recordnumber")
		res, err := b.Shifts.AdminChangeHistory(ctx, handlers.GuildID(e), int64(row), field, at)
		if err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{
			Content:         ChangeSummary(int64(row), field, res, b.Location),
			AllowedMentions: handlers.NoMentions,
		})
	}
}

// ChangeSummary describes an edited record. The replacement row gets a new
// number, which is reported too.
func ChangeSummary(row int64, field shifts.HistoryField, res *shifts.ChangeResult, loc *time.Location) string {
	label, was, now := "Clock in time", res.Previous.InTimestamp, res.Current.InTimestamp
	if field == shifts.FieldClockOut {
		label, was, now = "Clock out time", res.Previous.OutTimestamp, res.Current.OutTimestamp
	}
	return fmt.Sprintf("Updated record #%d, %s from %s to %s for user <@%s>, now record #%d",
		row, label,
		timeutil.FromUnix(was, loc).Format(time.RFC3339),
		timeutil.FromUnix(now, loc).Format(time.RFC3339),
		res.Current.UserID, res.Current.ID)
}

func AdminDirectRecordHandler(b *urnby.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := handlers.QueryContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		userID, err := handlers.ParseUserID(data.String("userid"))
		if err != nil {
			return err
		}
		in, err := dayClock(data.String("startdate"), data.String("intime"), 0, b.Location)
		if err != nil {
			return err
		}
		outDays := 0
		if data.Bool("dayafter") {
			outDays = 1
		}
		out, err := dayClock(data.String("startdate"), data.String("outtime"), outDays, b.Location)
		if err != nil {
			return err
		}

		username := data.String("username")
		rec, total, err := b.Shifts.AdminRecord(ctx, handlers.GuildID(e), shifts.DirectRecord{
			UserID:    userID,
			UserName:  username,
			Session:   data.String("sessionname"),
			Character: data.String("character"),
			In:        in,
			Out:       out,
		})
		if err != nil {
			return err
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("%s - <@%s> Successfully clocked out and stored record #%d for %s hours. Total is at %s",
				username, userID, rec.ID, format.Hours(rec.Seconds()), format.Hours(total)),
			AllowedMentions: handlers.NoMentions,
		})
	}
}
