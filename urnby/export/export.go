// Package export dumps a guild's tables as JSON, optionally keeping a copy in
// an object store.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/timeutil"
)

type Dataset string

const (
	Actives        Dataset = "actives"
	Historical     Dataset = "historical"
	Session        Dataset = "session"
	SessionHistory Dataset = "sessionhistory"
	Commands       Dataset = "commands"
)

var Datasets = []Dataset{Actives, Historical, Session, SessionHistory, Commands}

var ErrUnknownDataset = errors.New("unknown dataset")

// Archive keeps export blobs and returns where they were stored.
type Archive interface {
	Put(ctx context.Context, key string, body []byte) (string, error)
}

type Exporter struct {
	shifts   repositories.ShiftRepository
	sessions repositories.SessionRepository
	commands repositories.CommandRepository
	archive  Archive
	clock    timeutil.Clock
}

// NewExporter builds an exporter. archive may be nil.
func NewExporter(
	shifts repositories.ShiftRepository,
	sessions repositories.SessionRepository,
	commands repositories.CommandRepository,
	archive Archive,
	clock timeutil.Clock,
) *Exporter {
	return &Exporter{
		shifts:   shifts,
		sessions: sessions,
		commands: commands,
		archive:  archive,
		clock:    clock,
	}
}

type Result struct {
	Dataset  Dataset
	Rows     int
	Filename string
	Data     []byte
	// Location is set when the archive copy succeeded.
	Location string
}

func (x *Exporter) rows(ctx context.Context, guildID snowflake.ID, d Dataset) (any, int, error) {
	g := guildID.String()
	switch d {
	case Actives:
		recs, err := x.shifts.GetActive(ctx, g)
		return recs, len(recs), err
	case Historical:
		recs, err := x.shifts.GetHistorical(ctx, g)
		return recs, len(recs), err
	case Session:
		sess, err := x.sessions.GetSession(ctx, g)
		if err != nil || sess == nil {
			return []*models.Session{}, 0, err
		}
		return []*models.Session{sess}, 1, nil
	case SessionHistory:
		recs, err := x.sessions.LastSessions(ctx, g, 0)
		return recs, len(recs), err
	case Commands:
		recs, err := x.commands.AllCommands(ctx, g)
		return recs, len(recs), err
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownDataset, d)
	}
}

// Export serializes one dataset of a guild. An archive failure is logged and
// leaves Location empty.
func (x *Exporter) Export(ctx context.Context, guildID snowflake.ID, d Dataset) (*Result, error) {
	rows, n, err := x.rows(ctx, guildID, d)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(rows, "", " ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", d, err)
	}

	res := &Result{
		Dataset:  d,
		Rows:     n,
		Filename: fmt.Sprintf("%s-%s.json", d, x.clock.Now().Format("20060102-150405")),
		Data:     data,
	}
	if x.archive == nil {
		return res, nil
	}

	key := fmt.Sprintf("%s/%s", guildID, res.Filename)
	loc, err := x.archive.Put(ctx, key, data)
	if err != nil {
		slog.Warn("Failed to archive export",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID.String()),
			slog.String("key", key),
			slog.Any("error", err))
		return res, nil
	}
	res.Location = loc
	return res, nil
}
