package queue

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urnby/campbot/urnby/database/dbtest"
	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/timeutil"
)

const guild = snowflake.ID(77)

func newManager(t *testing.T) (*Manager, *timeutil.FixedClock, repositories.ShiftRepository) {
	t.Helper()
	db := dbtest.Bun(t)
	clock := timeutil.NewFixedClock(time.Unix(1_700_000_000, 0))
	return NewManager(repositories.NewQueueRepository(db), clock), clock, repositories.NewShiftRepository(db)
}

func ids(entries []*models.Replacement) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.UserName)
	}
	return out
}

func TestPeekBeforeIsFIFO(t *testing.T) {
	ctx := context.Background()
	m, clock, _ := newManager(t)

	for i, name := range []string{"A", "B", "C"} {
		_, err := m.Enqueue(ctx, guild, snowflake.ID(i+1), name)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	before, err := m.PeekBefore(ctx, guild, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids(before))

	before, err = m.PeekBefore(ctx, guild, 1)
	require.NoError(t, err)
	assert.Empty(t, before)

	// not queued compares as now
	before, err = m.PeekBefore(ctx, guild, 99)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids(before))
}

func TestPeekBeforeSameSecond(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newManager(t)

	for i, name := range []string{"A", "B", "C"} {
		_, err := m.Enqueue(ctx, guild, snowflake.ID(i+1), name)
		require.NoError(t, err)
	}
	before, err := m.PeekBefore(ctx, guild, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids(before))
}

func TestEnqueueErrors(t *testing.T) {
	ctx := context.Background()
	m, clock, shifts := newManager(t)

	_, err := m.Enqueue(ctx, guild, 1, "A")
	require.NoError(t, err)
	_, err = m.Enqueue(ctx, guild, 1, "A")
	assert.ErrorIs(t, err, ErrAlreadyQueued)

	_, err = shifts.StoreActive(ctx, &models.ActiveShift{GuildID: guild.String(), UserID: "2", InTimestamp: clock.Now().Unix()})
	require.NoError(t, err)
	_, err = m.Enqueue(ctx, guild, 2, "B")
	assert.ErrorIs(t, err, ErrAlreadyActive)

	_, err = m.Dequeue(ctx, guild, 2)
	assert.ErrorIs(t, err, ErrNotQueued)
}

func TestAdminOperations(t *testing.T) {
	ctx := context.Background()
	m, clock, _ := newManager(t)

	_, err := m.Enqueue(ctx, guild, 1, "A")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = m.AdminEnqueue(ctx, guild, 2, "B", clock.Now().Add(-time.Hour))
	require.NoError(t, err)

	list, err := m.List(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, ids(list))
	assert.Equal(t, int64(60), m.WaitMinutes(list[0]))

	_, err = m.AdminDequeue(ctx, guild, 2)
	require.NoError(t, err)

	n, err := m.Clear(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err = m.List(ctx, guild)
	require.NoError(t, err)
	assert.Empty(t, list)
}
