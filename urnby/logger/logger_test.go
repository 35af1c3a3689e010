package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHandlerFormatsTypes(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *slog.Logger)
		wants []string
	}{
		{
			name: "command with user",
			log: func(l *slog.Logger) {
				l.Info("Command executed", slog.String("type", "cmd"), slog.String("name", "clockin"), slog.String("user_name", "kez"))
			},
			wants: []string{"[Urnby]", "[INFO]", "[CMD]", "Command executed [clockin by kez]"},
		},
		{
			name: "error carries detail",
			log: func(l *slog.Logger) {
				l.Error("Query failed", slog.String("type", "db"), slog.Any("error", errors.New("locked")))
			},
			wants: []string{"[ERROR]", "[DB]", "locked"},
		},
		{
			name: "dashboard type with extra attrs",
			log: func(l *slog.Logger) {
				l.Warn("render skipped", slog.String("type", "dash"), slog.String("guild_id", "42"))
			},
			wants: []string{"[WARN]", "[DASH]", "guild_id=42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(NewHandler(slog.LevelDebug, &buf)))
			out := buf.String()
			for _, want := range tt.wants {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
		})
	}
}

func TestHandlerSkipsGatewayNoise(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(slog.LevelDebug, &buf))
	l.Debug("sending heartbeat")
	l.Debug("received gateway message")
	if buf.Len() != 0 {
		t.Errorf("expected noise to be filtered, got %q", buf.String())
	}
}

func TestHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(slog.LevelWarn, &buf))
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	slog.SetDefault(slog.New(NewHandler(slog.LevelDebug, &buf)))
	return &buf
}

func TestLogQuery(t *testing.T) {
	t.Run("success at debug", func(t *testing.T) {
		buf := captureDefault(t)
		LogQuery("exec", "CREATE INDEX x", 3*time.Millisecond, nil, slog.Int64("affected_rows", 0))
		out := buf.String()
		for _, want := range []string{"[DEBUG]", "[DB]", "Query executed", "operation=exec", "query=CREATE INDEX x", "affected_rows=0"} {
			if !strings.Contains(out, want) {
				t.Errorf("output %q missing %q", out, want)
			}
		}
	})

	t.Run("failure at error", func(t *testing.T) {
		buf := captureDefault(t)
		LogQuery("exec", "DELETE FROM active", time.Millisecond, errors.New("database is locked"))
		out := buf.String()
		for _, want := range []string{"[ERROR]", "[DB]", "Query failed", ": database is locked", "operation=exec"} {
			if !strings.Contains(out, want) {
				t.Errorf("output %q missing %q", out, want)
			}
		}
	})
}

func TestLogSystem(t *testing.T) {
	buf := captureDefault(t)
	LogSystem("Shutting down", slog.String("reason", "signal"))
	out := buf.String()
	for _, want := range []string{"[INFO]", "[SYS]", "Shutting down", "reason=signal"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
