package dashboard_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/dashboard"
	"github.com/urnby/campbot/urnby/dashboard/mock"
	"github.com/urnby/campbot/urnby/database/dbtest"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/queue"
	"github.com/urnby/campbot/urnby/shifts"
	"github.com/urnby/campbot/urnby/timeutil"
	"github.com/urnby/campbot/urnby/tod"
)

const (
	guild         = snowflake.ID(1000)
	dashChannel   = snowflake.ID(10)
	mobileChannel = snowflake.ID(11)
	u1            = snowflake.ID(1)
	u2            = snowflake.ID(2)
)

type staticConfigs map[snowflake.ID]guildconfig.GuildConfig

func (s staticConfigs) Get(id snowflake.ID) (guildconfig.GuildConfig, bool) {
	cfg, ok := s[id]
	return cfg, ok
}

func (s staticConfigs) Guilds() ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

type fixture struct {
	r       *dashboard.Renderer
	configs staticConfigs
	svc   *shifts.Service
	queue *queue.Manager
	tod   *tod.Tracker
	clock *timeutil.FixedClock
	sink  *mock.MockSink
}

func newFixture(t *testing.T, cfg guildconfig.GuildConfig) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	db := dbtest.Bun(t)
	loc := timeutil.DefaultLocation
	clock := timeutil.NewFixedClock(time.Date(2024, 1, 1, 12, 0, 0, 0, loc))
	configs := staticConfigs{guild: cfg}

	svc := shifts.NewService(repositories.NewShiftRepository(db), repositories.NewSessionRepository(db), configs, clock, loc)
	q := queue.NewManager(repositories.NewQueueRepository(db), clock)
	tr := tod.NewTracker(repositories.NewTodRepository(db), clock, loc)

	resolver := mock.NewMockNameResolver(ctrl)
	resolver.EXPECT().DisplayName(gomock.Any(), gomock.Any(), gomock.Any()).Return("Kez", nil).AnyTimes()
	names := dashboard.NewNames(resolver, 16, time.Minute, clock)

	sink := mock.NewMockSink(ctrl)
	r := dashboard.NewRenderer(svc, q, tr, configs, configs, sink, names, clock, dashboard.Options{ExtraLines: 3, MobileLines: 2})
	return &fixture{r: r, configs: configs, svc: svc, queue: q, tod: tr, clock: clock, sink: sink}
}

func capture(sent *[]string, id snowflake.ID) func(context.Context, snowflake.ID, string) (snowflake.ID, error) {
	return func(_ context.Context, _ snowflake.ID, content string) (snowflake.ID, error) {
		*sent = append(*sent, content)
		return id, nil
	}
}

func TestPauseProtocol(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel})

	var sent []string
	gomock.InOrder(
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 501)),
		f.sink.EXPECT().Purge(gomock.Any(), dashChannel).Return(nil),
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 502)),
		f.sink.EXPECT().Edit(gomock.Any(), dashChannel, snowflake.ID(502), gomock.Any()).Return(nil),
	)

	// no session: one paused render, then silence
	require.NoError(t, f.r.Tick(ctx))
	f.clock.Advance(15 * time.Second)
	require.NoError(t, f.r.Tick(ctx))
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "Paused till session start.")

	// a session start resumes with a fresh message
	_, err := f.svc.StartSession(ctx, guild, "admin", "night1")
	require.NoError(t, err)
	require.NoError(t, f.r.Tick(ctx))
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "night1")
	assert.NotContains(t, sent[1], "Paused")

	// unchanged content is not re-sent
	require.NoError(t, f.r.Tick(ctx))

	// changes are edited in place
	_, err = f.svc.ClockIn(ctx, guild, u1, "kez", "Kez")
	require.NoError(t, err)
	require.NoError(t, f.r.Tick(ctx))
}

func TestCampOpenWhilePaused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel})

	_, err := f.tod.Submit(ctx, guild, u1, "now", false, "")
	require.NoError(t, err)
	// 17 hours to spawn
	f.clock.Advance(7 * time.Hour)

	var sent []string
	gomock.InOrder(
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 501)),
		f.sink.EXPECT().Purge(gomock.Any(), dashChannel).Return(nil),
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 502)),
	)

	for range 3 {
		require.NoError(t, f.r.Tick(ctx))
	}
	require.Len(t, sent, 2)
	assert.NotContains(t, sent[0], "Camp is open!")
	assert.True(t, strings.HasSuffix(sent[1], "Paused till session start. Camp is open!"), sent[1])
	assert.Contains(t, sent[1], "<OPEN>")
}

func TestRequestRefreshLiftsPause(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel})

	var sent []string
	gomock.InOrder(
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 501)),
		f.sink.EXPECT().Purge(gomock.Any(), dashChannel).Return(nil),
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 502)),
	)

	require.NoError(t, f.r.Tick(ctx))
	require.NoError(t, f.r.Tick(ctx))
	f.r.RequestRefresh(guild)
	require.NoError(t, f.r.Tick(ctx))
	require.NoError(t, f.r.Tick(ctx))
	assert.Len(t, sent, 2)
}

func TestEditFailurePostsNewMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel})
	_, err := f.svc.StartSession(ctx, guild, "admin", "night1")
	require.NoError(t, err)

	var sent []string
	gomock.InOrder(
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 501)),
		f.sink.EXPECT().Edit(gomock.Any(), dashChannel, snowflake.ID(501), gomock.Any()).Return(errors.New("unknown message")),
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 502)),
		f.sink.EXPECT().Edit(gomock.Any(), dashChannel, snowflake.ID(502), gomock.Any()).Return(nil),
	)

	require.NoError(t, f.r.Tick(ctx))
	_, err = f.svc.ClockIn(ctx, guild, u1, "kez", "Kez")
	require.NoError(t, err)
	require.NoError(t, f.r.Tick(ctx))
	f.clock.Advance(time.Hour)
	require.NoError(t, f.r.Tick(ctx))
	assert.Len(t, sent, 2)
}

func TestBothLayouts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel, MobileDashChannel: mobileChannel})

	var desktop, mobile []string
	f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&desktop, 501))
	f.sink.EXPECT().Send(gomock.Any(), mobileChannel, gomock.Any()).DoAndReturn(capture(&mobile, 601))

	require.NoError(t, f.r.Tick(ctx))
	require.Len(t, desktop, 1)
	require.Len(t, mobile, 1)
	assert.Contains(t, desktop[0], "Active Session")
	assert.Contains(t, mobile[0], "Session: None")
}

func TestSinkErrorIsReported(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel})

	f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).Return(snowflake.ID(0), errors.New("missing access"))
	assert.Error(t, f.r.Tick(ctx))
}

func TestPausedBannerRetriedAfterSinkFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel})
	_, err := f.svc.StartSession(ctx, guild, "admin", "night1")
	require.NoError(t, err)

	var sent, edited []string
	gomock.InOrder(
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 501)),
		f.sink.EXPECT().Edit(gomock.Any(), dashChannel, snowflake.ID(501), gomock.Any()).Return(errors.New("discord 503")),
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).Return(snowflake.ID(0), errors.New("discord 503")),
		f.sink.EXPECT().Edit(gomock.Any(), dashChannel, snowflake.ID(501), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ snowflake.ID, content string) error {
				edited = append(edited, content)
				return nil
			}),
	)

	require.NoError(t, f.r.Tick(ctx))
	require.Len(t, sent, 1)

	_, err = f.svc.EndSession(ctx, guild, "admin")
	require.NoError(t, err)

	// the paused banner failed to land, so the live roster is still shown
	assert.Error(t, f.r.Tick(ctx))

	f.clock.Advance(15 * time.Second)
	require.NoError(t, f.r.Tick(ctx))
	require.Len(t, edited, 1)
	assert.Contains(t, edited[0], "Paused till session start.")

	// now paused for real
	f.clock.Advance(15 * time.Second)
	require.NoError(t, f.r.Tick(ctx))
	assert.Len(t, edited, 1)
}

func TestDashboardChannelMovePurgesOldChannel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel})
	_, err := f.svc.StartSession(ctx, guild, "admin", "night1")
	require.NoError(t, err)

	moved := snowflake.ID(12)
	var sent []string
	gomock.InOrder(
		f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).DoAndReturn(capture(&sent, 501)),
		f.sink.EXPECT().Purge(gomock.Any(), dashChannel).Return(nil),
		f.sink.EXPECT().Send(gomock.Any(), moved, gomock.Any()).DoAndReturn(capture(&sent, 701)),
	)

	require.NoError(t, f.r.Tick(ctx))
	f.configs[guild] = guildconfig.GuildConfig{DashboardChannel: moved}
	require.NoError(t, f.r.Tick(ctx))
	// unchanged content in the new channel is left alone
	require.NoError(t, f.r.Tick(ctx))
	assert.Len(t, sent, 2)
}

func TestDashboardChannelSwapKeepsSharedChannel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel, MobileDashChannel: mobileChannel})
	_, err := f.svc.StartSession(ctx, guild, "admin", "night1")
	require.NoError(t, err)

	f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).Return(snowflake.ID(501), nil)
	f.sink.EXPECT().Send(gomock.Any(), mobileChannel, gomock.Any()).Return(snowflake.ID(601), nil)
	require.NoError(t, f.r.Tick(ctx))

	// mobile moves onto the desktop channel: its old channel is purged, the
	// shared one is not
	f.configs[guild] = guildconfig.GuildConfig{DashboardChannel: dashChannel, MobileDashChannel: dashChannel}
	f.sink.EXPECT().Purge(gomock.Any(), mobileChannel).Return(nil)
	f.sink.EXPECT().Send(gomock.Any(), dashChannel, gomock.Any()).Return(snowflake.ID(502), nil)
	require.NoError(t, f.r.Tick(ctx))
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, guildconfig.GuildConfig{DashboardChannel: dashChannel})

	_, err := f.svc.StartSession(ctx, guild, "admin", "night1")
	require.NoError(t, err)
	_, err = f.svc.ClockIn(ctx, guild, u1, "kez", "Kez")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.svc.ClockOut(ctx, guild, u1)
	require.NoError(t, err)
	_, err = f.svc.ClockIn(ctx, guild, u1, "kez", "Kez")
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)
	_, err = f.queue.Enqueue(ctx, guild, u2, "ren")
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	v, err := f.r.Snapshot(ctx, guild)
	require.NoError(t, err)

	assert.Equal(t, "night1", v.Session)
	assert.False(t, v.CountdownKnown)
	require.Len(t, v.Actives, 1)
	assert.Equal(t, 0.67, v.Actives[0].Hours)
	assert.Equal(t, 1.67, v.Actives[0].SessionHours)
	require.Len(t, v.Queue, 1)
	assert.Equal(t, int64(10), v.Queue[0].WaitMinutes)
	assert.Equal(t, 5, v.LeaderSlots)
	require.Len(t, v.Leaders, 1)
	assert.Equal(t, 1.0, v.Leaders[0].Hours)
}

func TestNamesFallBackAndCache(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	clock := timeutil.NewFixedClock(time.Unix(1_700_000_000, 0))

	resolver := mock.NewMockNameResolver(ctrl)
	gomock.InOrder(
		resolver.EXPECT().DisplayName(gomock.Any(), guild, u1).Return("", errors.New("unknown member")),
		resolver.EXPECT().DisplayName(gomock.Any(), guild, u1).Return("Kez", nil),
		resolver.EXPECT().DisplayName(gomock.Any(), guild, u1).Return("Kezza", nil),
	)
	names := dashboard.NewNames(resolver, 8, time.Minute, clock)

	assert.Equal(t, config.UnknownMember, names.Name(ctx, guild, u1))
	assert.Equal(t, "Kez", names.Name(ctx, guild, u1))
	// cached
	assert.Equal(t, "Kez", names.Name(ctx, guild, u1))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, "Kezza", names.Name(ctx, guild, u1))

	assert.Equal(t, "stored", names.NameOr(ctx, guild, "not-an-id", "stored"))
}
