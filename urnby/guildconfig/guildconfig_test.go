package guildconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urnby/campbot/urnby/timeutil"
)

const guild = snowflake.ID(42)

func newStore(t *testing.T) (*Store, *timeutil.FixedClock, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guilds.toml")
	clock := timeutil.NewFixedClock(time.Unix(1_700_000_000, 0))
	return NewStore(path, time.Minute, clock), clock, path
}

func TestAddAndClear(t *testing.T) {
	s, _, _ := newStore(t)

	_, ok := s.Get(guild)
	assert.False(t, ok)

	_, err := s.Add(guild, KeyAdminRoles, 7)
	require.NoError(t, err)
	_, err = s.Add(guild, KeyAdminRoles, 7)
	require.NoError(t, err)
	cfg, err := s.Add(guild, KeyMaxActive, 6)
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{7}, cfg.AdminRoles)
	assert.Equal(t, 6, cfg.MaxActive)

	cfg, err = s.AddBonusWindow(guild, BonusWindow{Start: "9:00", End: "11:00", Pct: 50})
	require.NoError(t, err)
	require.Len(t, cfg.BonusHours, 1)
	assert.Equal(t, "09:00", cfg.BonusHours[0].Start)

	_, err = s.AddBonusWindow(guild, BonusWindow{Start: "25:00", End: "11:00", Pct: 50})
	assert.True(t, errors.Is(err, ErrInvalidValue))

	cfg, err = s.Clear(guild, KeyAdminRoles)
	require.NoError(t, err)
	assert.Empty(t, cfg.AdminRoles)

	_, err = s.Add(guild, "nope", 1)
	assert.True(t, errors.Is(err, ErrUnknownKey))

	got, ok := s.Get(guild)
	require.True(t, ok)
	assert.Equal(t, 6, got.MaxActive)
}

func TestCacheHonoursTTL(t *testing.T) {
	s, clock, path := newStore(t)

	_, err := s.Add(guild, KeyMaxActive, 3)
	require.NoError(t, err)

	// hand edit of the file
	require.NoError(t, os.WriteFile(path, []byte("[42]\nmax_active = 9\n"), 0o644))

	cfg, _ := s.Get(guild)
	assert.Equal(t, 3, cfg.MaxActive, "cached value served inside ttl")

	clock.Advance(2 * time.Minute)
	cfg, ok := s.Get(guild)
	require.True(t, ok)
	assert.Equal(t, 9, cfg.MaxActive, "file re-read after ttl")
}

func TestRender(t *testing.T) {
	out, err := Render(GuildConfig{MaxActive: 4, BonusHours: []BonusWindow{{Start: "21:00", End: "23:00", Pct: 50}}})
	require.NoError(t, err)
	assert.Contains(t, out, "max_active = 4")
	assert.Contains(t, out, "21:00")
}

func TestGuilds(t *testing.T) {
	s, _, _ := newStore(t)

	ids, err := s.Guilds()
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = s.Add(99, KeyDashboardChannel, 5)
	require.NoError(t, err)
	_, err = s.Add(guild, KeyDashboardChannel, 6)
	require.NoError(t, err)

	ids, err = s.Guilds()
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{guild, 99}, ids)
}
