package urnby

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/urnby/campbot/urnby/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := defaultConfig()
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// DISCORD_TOKEN from the environment (or .env) wins over the file.
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Log: LogConfig{Level: slog.LevelInfo},
		Bot: BotConfig{Timezone: "EST"},
		DB: database.Config{
			Driver: database.DriverSQLite,
			Path:   "data/urnby.db",
		},
		Dashboard: DashboardConfig{
			RefreshInterval: Duration(15 * time.Second),
			ExtraLines:      7,
			MobileLines:     5,
		},
		ChannelStats: ChannelStatsConfig{
			Interval: Duration(6 * time.Minute),
		},
		Guilds: GuildsConfig{
			Path:     "data/guilds.toml",
			CacheTTL: Duration(time.Minute),
		},
		API: APIConfig{Addr: "127.0.0.1:8089"},
	}
}

type Config struct {
	Log          LogConfig          `toml:"log"`
	Bot          BotConfig          `toml:"bot"`
	DB           database.Config    `toml:"db"`
	Dashboard    DashboardConfig    `toml:"dashboard"`
	ChannelStats ChannelStatsConfig `toml:"channel_stats"`
	Export       ExportConfig       `toml:"export"`
	API          APIConfig          `toml:"api"`
	Guilds       GuildsConfig       `toml:"guilds"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
	Timezone  string         `toml:"timezone"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type DashboardConfig struct {
	RefreshInterval Duration `toml:"refresh_interval"`
	// ExtraLines is how many leaderboard rows are shown beyond the
	// active and queue rows.
	ExtraLines int `toml:"extra_lines"`
	// MobileLines caps the mobile leaderboard.
	MobileLines int `toml:"mobile_lines"`
}

type ChannelStatsConfig struct {
	Interval Duration `toml:"interval"`
}

type ExportConfig struct {
	Bucket   string `toml:"bucket"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Prefix   string `toml:"prefix"`
}

func (c ExportConfig) Enabled() bool {
	return c.Bucket != ""
}

type APIConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type GuildsConfig struct {
	Path     string   `toml:"path"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// Duration decodes TOML strings such as "15s" or "6m".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
