package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/disgoorg/disgo/discord"

	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/permissions"
	"github.com/urnby/campbot/urnby/queue"
	"github.com/urnby/campbot/urnby/shifts"
	"github.com/urnby/campbot/urnby/timeutil"
)

func TestMapError(t *testing.T) {
	_, _, clockErr := timeutil.ParseClock("25:99")

	tests := []struct {
		name           string
		err            error
		wantMsg        string
		wantUnexpected bool
	}{
		{
			name:    "domain error",
			err:     fmt.Errorf("clock out: %w", shifts.ErrNotActive),
			wantMsg: "You are not clocked in.",
		},
		{
			name:    "queue error",
			err:     queue.ErrAlreadyQueued,
			wantMsg: "You are already in the replacement queue.",
		},
		{
			name:    "user error",
			err:     Invalid("Pick a date in the past."),
			wantMsg: "Pick a date in the past.",
		},
		{
			name:    "permission error",
			err:     permissions.ErrNotAdmin,
			wantMsg: "You need an admin role to use this command.",
		},
		{
			name:    "bad clock input",
			err:     clockErr,
			wantMsg: `Invalid input: clock time "25:99", expected HH:MM.`,
		},
		{
			name:           "consistency",
			err:            &repositories.ConsistencyError{Entity: "session", Detail: "2 live rows"},
			wantMsg:        msgConsistency,
			wantUnexpected: true,
		},
		{
			name:           "storage",
			err:            &repositories.RepositoryError{Operation: "get", Entity: "active", Err: errors.New("disk I/O error")},
			wantMsg:        msgStorage,
			wantUnexpected: true,
		},
		{
			name:           "timeout",
			err:            fmt.Errorf("slow: %w", context.DeadlineExceeded),
			wantMsg:        msgTimeout,
			wantUnexpected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, unexpected := MapError(tt.err)
			if msg != tt.wantMsg {
				t.Errorf("MapError() msg = %q, want %q", msg, tt.wantMsg)
			}
			if unexpected != tt.wantUnexpected {
				t.Errorf("MapError() unexpected = %v, want %v", unexpected, tt.wantUnexpected)
			}
		})
	}
}

func TestFormatOptions(t *testing.T) {
	opts := map[string]discord.SlashCommandOption{
		"userid": {Name: "userid", Value: json.RawMessage(`"123"`)},
		"public": {Name: "public", Value: json.RawMessage(`true`)},
	}
	if got, want := FormatOptions(opts), "public=true userid=123"; got != want {
		t.Errorf("FormatOptions() = %q, want %q", got, want)
	}
	if got := FormatOptions(nil); got != "" {
		t.Errorf("FormatOptions(nil) = %q", got)
	}
}
