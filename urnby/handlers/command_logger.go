// Package handlers is the command invocation boundary: audit, permission
// checks, logging and error replies.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/logger"
	"github.com/urnby/campbot/urnby/permissions"
)

// ChannelNamer resolves a channel id for the audit log.
type ChannelNamer func(channelID snowflake.ID) string

type Middleware struct {
	audit       repositories.CommandRepository
	oracle      *permissions.Oracle
	channelName ChannelNamer
	timeout     time.Duration
}

func NewMiddleware(audit repositories.CommandRepository, oracle *permissions.Oracle, channelName ChannelNamer) *Middleware {
	if channelName == nil {
		channelName = func(id snowflake.ID) string { return id.String() }
	}
	return &Middleware{
		audit:       audit,
		oracle:      oracle,
		channelName: channelName,
		timeout:     config.CommandExecutionTimeout,
	}
}

// WithTimeout returns a middleware sharing m's audit and oracle that waits
// d before logging a command as still running.
func (m *Middleware) WithTimeout(d time.Duration) *Middleware {
	c := *m
	c.timeout = d
	return &c
}

// Subject builds the permission subject of an interaction.
func Subject(guildID *snowflake.ID, channelID snowflake.ID, member *discord.ResolvedMember) permissions.Subject {
	s := permissions.Subject{ChannelID: channelID}
	if guildID != nil {
		s.GuildID = *guildID
	}
	if member != nil {
		s.RoleIDs = member.RoleIDs
		s.Permissions = member.Permissions
	}
	return s
}

// DisplayName is the member's name in the guild, or the user's global name.
func DisplayName(member *discord.ResolvedMember, user discord.User) string {
	if member != nil {
		return member.EffectiveName()
	}
	return user.EffectiveName()
}

// FormatOptions renders slash command options as "name=value" pairs sorted by
// name.
func FormatOptions(opts map[string]discord.SlashCommandOption) string {
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, strings.Trim(string(opts[name].Value), `"`)))
	}
	return strings.Join(parts, " ")
}

func commandOptions(e *handler.CommandEvent) string {
	switch d := e.Data.(type) {
	case discord.SlashCommandInteractionData:
		return FormatOptions(d.Options)
	case discord.UserCommandInteractionData:
		return "target=" + d.TargetID().String()
	default:
		return ""
	}
}

func (m *Middleware) record(name string, e *handler.CommandEvent) *models.CommandRecord {
	rec := &models.CommandRecord{
		Name:        name,
		Options:     commandOptions(e),
		Timestamp:   time.Now().Unix(),
		UserID:      e.User().ID.String(),
		UserName:    DisplayName(e.Member(), e.User()),
		ChannelName: m.channelName(e.ChannelID()),
		Level:       models.CommandLevelInfo,
	}
	if g := e.GuildID(); g != nil {
		rec.GuildID = g.String()
	}
	return rec
}

func (m *Middleware) store(rec *models.CommandRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()
	if _, err := m.audit.RecordCommand(ctx, rec); err != nil {
		logger.LogError("Failed to record command", err, slog.String("name", rec.Name))
	}
}

// Reply answers the interaction, or follows up when it was already answered.
func Reply(e *handler.CommandEvent, msg discord.MessageCreate) error {
	if err := e.CreateMessage(msg); err != nil {
		_, err = e.CreateFollowupMessage(msg)
		return err
	}
	return nil
}

func (m *Middleware) fail(e *handler.CommandEvent, rec *models.CommandRecord, err error) {
	text, _ := MapError(err)
	failed := *rec
	failed.ID = 0
	failed.Level = models.CommandLevelError
	failed.Error = err.Error()
	m.store(&failed)

	if rerr := Reply(e, discord.MessageCreate{Content: text, Flags: discord.MessageFlagEphemeral}); rerr != nil {
		logger.LogError("Failed to send error reply", rerr, slog.String("name", rec.Name))
	}
}

// Command wraps a command handler: the invocation is audited, requirements
// are checked, and any returned error is mapped to a reply.
func (m *Middleware) Command(name string, reqs []permissions.Requirement, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()
		rec := m.record(name, e)
		m.store(rec)

		sub := Subject(e.GuildID(), e.ChannelID(), e.Member())
		if err := m.oracle.Check(sub, reqs...); err != nil {
			slog.Info("Command rejected",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_name", rec.UserName),
				slog.String("reason", err.Error()))
			m.fail(e, rec, err)
			return nil
		}

		m.await(name, func() error { return h(e) }, func(err error) {
			m.finish(e, rec, start, err)
		})
		return nil
	}
}

// await runs fn and hands its result to done. Past the middleware timeout
// the command is logged as still running and done is called whenever fn
// returns, so the reply always matches what the handler did.
func (m *Middleware) await(name string, fn func() error, done func(error)) {
	result := make(chan error, 1)
	go func() {
		result <- fn()
	}()

	select {
	case err := <-result:
		done(err)
	case <-time.After(m.timeout):
		slog.Warn("Command still running",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("status", "timeout"),
			slog.Duration("timeout", m.timeout))
		go func() {
			done(<-result)
		}()
	}
}

func (m *Middleware) finish(e *handler.CommandEvent, rec *models.CommandRecord, start time.Time, err error) {
	took := time.Since(start)
	if err != nil {
		if _, unexpected := MapError(err); unexpected {
			logger.LogCommand(rec.Name, rec.UserName, took, err)
		} else {
			slog.Info("Command refused",
				slog.String("type", "cmd"),
				slog.String("name", rec.Name),
				slog.String("user_name", rec.UserName),
				slog.String("reason", err.Error()))
		}
		m.fail(e, rec, err)
		return
	}
	if took > 2*time.Second {
		slog.Warn("Command executed slowly",
			slog.String("type", "cmd"),
			slog.String("name", rec.Name),
			slog.Duration("took", took))
		return
	}
	logger.LogCommand(rec.Name, rec.UserName, took, nil)
}

// Component wraps a component handler with logging and error replies.
func (m *Middleware) Component(name string, h handler.ComponentHandler) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		start := time.Now()
		err := h(e)
		took := time.Since(start)
		if err == nil {
			slog.Info("Component interaction completed",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.Duration("took", took))
			return nil
		}

		text, unexpected := MapError(err)
		if unexpected {
			logger.LogError("Component interaction failed", err, slog.String("name", name))
		}
		if rerr := e.CreateMessage(discord.MessageCreate{Content: text, Flags: discord.MessageFlagEphemeral}); rerr != nil {
			_, _ = e.CreateFollowupMessage(discord.MessageCreate{Content: text, Flags: discord.MessageFlagEphemeral})
		}
		return nil
	}
}
