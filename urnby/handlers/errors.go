package handlers

import (
	"context"
	"errors"

	"github.com/urnby/campbot/urnby/confirm"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/export"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/permissions"
	"github.com/urnby/campbot/urnby/queue"
	"github.com/urnby/campbot/urnby/shifts"
	"github.com/urnby/campbot/urnby/timeutil"
	"github.com/urnby/campbot/urnby/tod"
)

// UserError carries a message meant for the invoking user verbatim.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string { return e.Msg }

func Invalid(msg string) error {
	return &UserError{Msg: msg}
}

const (
	msgConsistency = "The records for this server are inconsistent, please contact an administrator."
	msgStorage     = "Something went wrong while saving or reading records, please try again."
	msgTimeout     = "That took too long, please try again."
)

var domainMessages = []struct {
	err error
	msg string
}{
	{shifts.ErrNoActiveSession, "There is no active session. An admin can start one with /sessionstart."},
	{shifts.ErrAlreadyActive, "You are already clocked in."},
	{shifts.ErrNotActive, "You are not clocked in."},
	{shifts.ErrSessionAlreadyActive, "A session is already running, end it before starting a new one."},
	{shifts.ErrDuplicateSessionName, "That session name was already used, pick another one."},
	{shifts.ErrNothingToZero, "There is no time to zero out."},
	{queue.ErrAlreadyQueued, "You are already in the replacement queue."},
	{queue.ErrNotQueued, "You are not in the replacement queue."},
	{queue.ErrAlreadyActive, "You are clocked in, clock out before joining the replacement queue."},
	{tod.ErrNoTod, "No time of death has been recorded yet."},
	{confirm.ErrUnknownToken, "This confirmation has expired."},
	{confirm.ErrNotOwner, "Only the person who asked can answer this."},
	{guildconfig.ErrUnknownKey, "Unknown config key."},
	{export.ErrUnknownDataset, "Option not available yet."},
}

// MapError turns err into the reply shown to the user. unexpected is false
// for ordinary outcomes such as "not clocked in".
func MapError(err error) (msg string, unexpected bool) {
	if err == nil {
		return "", false
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Msg, false
	}
	for _, d := range domainMessages {
		if errors.Is(err, d.err) {
			return d.msg, false
		}
	}
	switch {
	case permissions.IsPermissionError(err),
		errors.Is(err, shifts.ErrInvalidRecord),
		errors.Is(err, guildconfig.ErrInvalidValue),
		errors.Is(err, timeutil.ErrInvalidInput):
		return capitalize(err.Error()) + ".", false
	case repositories.IsConsistency(err):
		return msgConsistency, true
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout, true
	default:
		return msgStorage, true
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
