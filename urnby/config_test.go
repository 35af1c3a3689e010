package urnby

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urnby/campbot/urnby/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults fill missing tables", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")
		cfg, err := LoadConfig(writeConfig(t, "[bot]\ntoken = \"abc\"\n"))
		require.NoError(t, err)

		assert.Equal(t, "abc", cfg.Bot.Token)
		assert.Equal(t, "EST", cfg.Bot.Timezone)
		assert.Equal(t, database.DriverSQLite, cfg.DB.Driver)
		assert.Equal(t, 15*time.Second, cfg.Dashboard.RefreshInterval.Std())
		assert.Equal(t, 6*time.Minute, cfg.ChannelStats.Interval.Std())
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.False(t, cfg.Export.Enabled())
		assert.False(t, cfg.API.Enabled)
	})

	t.Run("durations and levels decode from text", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")
		cfg, err := LoadConfig(writeConfig(t, `
[log]
level = "DEBUG"

[dashboard]
refresh_interval = "30s"

[export]
bucket = "camp"
`))
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
		assert.Equal(t, 30*time.Second, cfg.Dashboard.RefreshInterval.Std())
		assert.True(t, cfg.Export.Enabled())
	})

	t.Run("environment token wins", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "from-env")
		cfg, err := LoadConfig(writeConfig(t, "[bot]\ntoken = \"file\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Bot.Token)
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "[dashboard]\nrefresh_interval = \"soon\"\n"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}
