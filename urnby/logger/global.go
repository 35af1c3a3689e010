package logger

import (
	"log/slog"
	"time"
)

// LogCommand logs a finished slash command.
func LogCommand(name string, userName string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "cmd"),
		slog.String("name", name),
		slog.String("user_name", userName),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Command failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Command executed", attrs...)
	}
}

// LogQuery reports one statement: failures at error level, the rest at
// debug.
func LogQuery(operation, query string, took time.Duration, err error, attrs ...any) {
	base := []any{
		slog.String("type", "db"),
		slog.String("operation", operation),
		slog.String("query", query),
		slog.Duration("took", took),
	}
	if err != nil {
		slog.Error("Query failed", append(append(base, attrs...), slog.Any("error", err))...)
		return
	}
	slog.Debug("Query executed", append(base, attrs...)...)
}

// LogDashboard logs renderer transitions for a guild.
func LogDashboard(msg string, guildID string, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "dash"),
		slog.String("guild_id", guildID),
	}
	slog.Debug(msg, append(baseAttrs, attrs...)...)
}

// LogSystem reports process lifecycle events such as startup, command
// sync and shutdown.
func LogSystem(msg string, attrs ...any) {
	slog.Info(msg, append([]any{slog.String("type", "sys")}, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
