package shifts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urnby/campbot/urnby/database/dbtest"
	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/timeutil"
)

const (
	guild = snowflake.ID(1000)
	u1    = snowflake.ID(1)
	u2    = snowflake.ID(2)
)

type staticConfigs map[snowflake.ID]guildconfig.GuildConfig

func (s staticConfigs) Get(id snowflake.ID) (guildconfig.GuildConfig, bool) {
	cfg, ok := s[id]
	return cfg, ok
}

type fixture struct {
	svc     *Service
	clock   *timeutil.FixedClock
	configs staticConfigs
	shifts  repositories.ShiftRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Bun(t)
	clock := timeutil.NewFixedClock(time.Date(2024, 1, 1, 12, 0, 0, 0, timeutil.DefaultLocation))
	configs := staticConfigs{}
	shifts := repositories.NewShiftRepository(db)
	svc := NewService(shifts, repositories.NewSessionRepository(db), configs, clock, timeutil.DefaultLocation)
	return &fixture{svc: svc, clock: clock, configs: configs, shifts: shifts}
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, guild, u1, "kez", "Kez")
	require.ErrorIs(t, err, ErrNoActiveSession)

	_, err = f.svc.StartSession(ctx, guild, "admin", "night1")
	require.NoError(t, err)

	in, err := f.svc.ClockIn(ctx, guild, u1, "kez", "Kez")
	require.NoError(t, err)
	assert.Equal(t, 1, in.ActiveCount)
	assert.Equal(t, "night1", in.Record.Session)

	f.clock.Advance(time.Hour)
	out, err := f.svc.ClockOut(ctx, guild, u1)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), out.Record.Seconds())
	assert.Equal(t, 1.0, timeutil.HoursFromSecs(out.TotalSeconds))

	end, err := f.svc.EndSession(ctx, guild, "admin")
	require.NoError(t, err)
	assert.Equal(t, "night1", end.History.Name)
	assert.Empty(t, end.Failures)

	actives, err := f.svc.Actives(ctx, guild)
	require.NoError(t, err)
	assert.Empty(t, actives)

	_, err = f.svc.Session(ctx, guild)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestClockTransitions(t *testing.T) {
	tests := []struct {
		name  string
		steps []string
		errs  []error
	}{
		{name: "in out", steps: []string{"in", "out"}, errs: []error{nil, nil}},
		{name: "double in", steps: []string{"in", "in"}, errs: []error{nil, ErrAlreadyActive}},
		{name: "out while idle", steps: []string{"out"}, errs: []error{ErrNotActive}},
		{name: "double out", steps: []string{"in", "out", "out"}, errs: []error{nil, nil, ErrNotActive}},
		{name: "in out in", steps: []string{"in", "out", "in"}, errs: []error{nil, nil, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			_, err := f.svc.StartSession(ctx, guild, "admin", "s")
			require.NoError(t, err)

			active := false
			for i, step := range tt.steps {
				f.clock.Advance(time.Minute)
				switch step {
				case "in":
					_, err = f.svc.ClockIn(ctx, guild, u1, "kez", "")
				case "out":
					_, err = f.svc.ClockOut(ctx, guild, u1)
				}
				if tt.errs[i] == nil {
					require.NoError(t, err, "step %d", i)
					active = step == "in"
				} else {
					require.ErrorIs(t, err, tt.errs[i], "step %d", i)
				}
			}

			_, err = f.shifts.GetActiveForUser(ctx, guild.String(), u1.String())
			assert.Equal(t, active, err == nil)
		})
	}
}

func TestDoubleClockOutLeavesOneRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.StartSession(ctx, guild, "admin", "s")
	require.NoError(t, err)
	_, err = f.svc.ClockIn(ctx, guild, u1, "kez", "")
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	_, err = f.svc.ClockOut(ctx, guild, u1)
	require.NoError(t, err)
	_, err = f.svc.ClockOut(ctx, guild, u1)
	require.ErrorIs(t, err, ErrNotActive)

	recs, err := f.svc.UserHistory(ctx, guild, u1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestConcurrentSessionStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.StartSession(ctx, guild, "admin", "night"+strings.Repeat("x", i))
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
		} else {
			assert.ErrorIs(t, err, ErrSessionAlreadyActive)
		}
	}
	assert.Equal(t, 1, success)
}

func TestDuplicateSessionName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.StartSession(ctx, guild, "admin", "night1")
	require.NoError(t, err)
	_, err = f.svc.EndSession(ctx, guild, "admin")
	require.NoError(t, err)

	_, err = f.svc.StartSession(ctx, guild, "admin", "night1")
	assert.ErrorIs(t, err, ErrDuplicateSessionName)

	_, err = f.svc.EndSession(ctx, guild, "admin")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestEndSessionClocksEveryoneOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.StartSession(ctx, guild, "admin", "s")
	require.NoError(t, err)
	for _, u := range []snowflake.ID{u1, u2} {
		_, err = f.svc.ClockIn(ctx, guild, u, "user", "")
		require.NoError(t, err)
	}
	f.clock.Advance(2 * time.Hour)

	res, err := f.svc.EndSession(ctx, guild, "admin")
	require.NoError(t, err)
	assert.Len(t, res.ClockedOut, 2)
	assert.Empty(t, res.Failures)

	for _, u := range []snowflake.ID{u1, u2} {
		secs, err := f.svc.UserSeconds(ctx, guild, u)
		require.NoError(t, err)
		assert.Equal(t, int64(7200), secs)
	}
}

func TestClockInAdvisory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configs[guild] = guildconfig.GuildConfig{MaxActive: 1}
	_, err := f.svc.StartSession(ctx, guild, "admin", "s")
	require.NoError(t, err)

	first, err := f.svc.ClockIn(ctx, guild, u1, "a", "")
	require.NoError(t, err)
	assert.False(t, first.OverCap())

	second, err := f.svc.ClockIn(ctx, guild, u2, "b", "")
	require.NoError(t, err, "cap is advisory")
	assert.True(t, second.OverCap())
	assert.Len(t, second.Actives, 2)
}

func TestClockOutStoresBonus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configs[guild] = guildconfig.GuildConfig{BonusHours: []guildconfig.BonusWindow{{Start: "21:00", End: "23:00", Pct: 50}}}
	f.clock.Set(time.Date(2024, 1, 1, 22, 0, 0, 0, timeutil.DefaultLocation))

	_, err := f.svc.StartSession(ctx, guild, "admin", "s")
	require.NoError(t, err)
	_, err = f.svc.ClockIn(ctx, guild, u1, "kez", "")
	require.NoError(t, err)
	f.clock.Advance(4 * time.Hour)

	res, err := f.svc.ClockOut(ctx, guild, u1)
	require.NoError(t, err)
	require.Len(t, res.Bonuses, 1)
	assert.Equal(t, int64(1800), res.Bonuses[0].Seconds())
	assert.Equal(t, int64(4*3600+1800), res.TotalSeconds)

	hours, err := f.svc.UserHours(ctx, guild, u1)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), hours.Bonus)
	assert.Equal(t, int64(4*3600), hours.Session)
}

func TestZeroOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.StartSession(ctx, guild, "admin", "s")
	require.NoError(t, err)

	_, err = f.svc.ZeroOut(ctx, guild, u1, "kez")
	require.ErrorIs(t, err, ErrNothingToZero)

	_, err = f.svc.ClockIn(ctx, guild, u1, "kez", "")
	require.NoError(t, err)
	f.clock.Advance(3 * time.Hour)

	_, err = f.svc.ZeroOut(ctx, guild, u1, "kez")
	require.ErrorIs(t, err, ErrAlreadyActive)

	_, err = f.svc.ClockOut(ctx, guild, u1)
	require.NoError(t, err)

	rec, err := f.svc.ZeroOut(ctx, guild, u1, "kez")
	require.NoError(t, err)
	assert.Equal(t, int64(-3*3600), rec.Seconds())
	assert.Equal(t, "URN_ZERO_OUT_EVENT -3.00", rec.Character)

	hours, err := f.svc.UserHours(ctx, guild, u1)
	require.NoError(t, err)
	assert.Zero(t, hours.Total)
	assert.Equal(t, int64(3*3600), hours.Lifetime)
}

func TestHoursRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rows := [][2]int64{{0, 3600}, {5000, 5000 + 7200}, {9000, 9000 - 1800}, {20000, 20030}}
	var want int64
	for _, r := range rows {
		_, err := f.shifts.StoreHistorical(ctx, &models.HistoricalShift{GuildID: guild.String(), UserID: u1.String(), InTimestamp: r[0], OutTimestamp: r[1]})
		require.NoError(t, err)
		want += r[1] - r[0]
	}

	hours, err := f.svc.UserHours(ctx, guild, u1)
	require.NoError(t, err)
	assert.Equal(t, want, hours.Total)
	assert.Equal(t, int64(3600+7200+30), hours.Lifetime)
	assert.Equal(t, int64(20000), hours.LatestIn)
	assert.Equal(t, int64(20030), hours.LatestOut)
}

func TestLeaderboardStaleFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := f.clock.Now().Unix()

	store := func(user snowflake.ID, in, out int64) {
		_, err := f.shifts.StoreHistorical(ctx, &models.HistoricalShift{GuildID: guild.String(), UserID: user.String(), InTimestamp: in, OutTimestamp: out})
		require.NoError(t, err)
	}
	store(u1, now-20*86400, now-20*86400+9000)
	store(u2, now-3600, now)

	all, err := f.svc.Leaderboard(ctx, guild, 0, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, u1.String(), all[0].UserID)

	fresh, err := f.svc.Leaderboard(ctx, guild, 10, true)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, u2.String(), fresh[0].UserID)
}

func TestAdminChangeHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	in := time.Date(2024, 1, 1, 10, 0, 0, 0, timeutil.DefaultLocation)

	rec, total, err := f.svc.AdminRecord(ctx, guild, DirectRecord{UserID: u1, UserName: "kez", Session: "s", In: in, Out: in.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), total)

	_, _, err = f.svc.AdminRecord(ctx, guild, DirectRecord{UserID: u1, In: in, Out: in.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	change, err := f.svc.AdminChangeHistory(ctx, guild, rec.ID, FieldClockOut, in.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3600), change.Previous.Seconds())
	assert.Equal(t, int64(7200), change.Current.Seconds())

	_, err = f.svc.AdminChangeHistory(ctx, guild, rec.ID, FieldClockIn, in)
	assert.True(t, errors.Is(err, ErrInvalidRecord), "old row number is gone")

	urn, err := f.svc.AdminZeroOut(ctx, guild, u1, "kez", "s", in.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(-7200), urn.Seconds())
}
