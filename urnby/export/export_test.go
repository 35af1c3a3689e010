package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urnby/campbot/urnby/database/dbtest"
	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/timeutil"
)

type memArchive struct {
	puts map[string][]byte
	err  error
}

func (m *memArchive) Put(_ context.Context, key string, body []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.puts == nil {
		m.puts = map[string][]byte{}
	}
	m.puts[key] = body
	return "mem://" + key, nil
}

func newExporter(t *testing.T, archive Archive) (*Exporter, repositories.ShiftRepository) {
	t.Helper()
	db := dbtest.Bun(t)
	clock := timeutil.NewFixedClock(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))
	shifts := repositories.NewShiftRepository(db)
	x := NewExporter(shifts, repositories.NewSessionRepository(db), repositories.NewCommandRepository(db), archive, clock)
	return x, shifts
}

func TestExportHistorical(t *testing.T) {
	ctx := context.Background()
	archive := &memArchive{}
	x, shifts := newExporter(t, archive)

	_, err := shifts.StoreHistorical(ctx, &models.HistoricalShift{
		GuildID: "7", UserID: "1", UserName: "kez", Session: "s1",
		InTimestamp: 100, OutTimestamp: 3700,
	})
	require.NoError(t, err)

	res, err := x.Export(ctx, 7, Historical)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, "historical-20240203-040506.json", res.Filename)
	assert.Equal(t, "mem://7/historical-20240203-040506.json", res.Location)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(res.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "kez", rows[0]["user_name"])
	assert.EqualValues(t, 3700, rows[0]["out_timestamp"])
}

func TestExportWithoutSession(t *testing.T) {
	x, _ := newExporter(t, nil)

	res, err := x.Export(context.Background(), 7, Session)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)
	assert.JSONEq(t, "[]", string(res.Data))
	assert.Empty(t, res.Location)
}

func TestArchiveFailureStillExports(t *testing.T) {
	x, _ := newExporter(t, &memArchive{err: errors.New("bucket gone")})

	res, err := x.Export(context.Background(), 7, Commands)
	require.NoError(t, err)
	assert.Empty(t, res.Location)
	assert.NotEmpty(t, res.Data)
}

func TestUnknownDataset(t *testing.T) {
	x, _ := newExporter(t, nil)
	_, err := x.Export(context.Background(), 7, Dataset("errors"))
	assert.ErrorIs(t, err, ErrUnknownDataset)
}
