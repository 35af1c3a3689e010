// Package channelstats mirrors the leaderboard and spawn countdown into
// channel names.
package channelstats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"

	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/dashboard"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/logger"
	"github.com/urnby/campbot/urnby/shifts"
	"github.com/urnby/campbot/urnby/timeutil"
	"github.com/urnby/campbot/urnby/tod"
)

// Renamer renames a guild channel.
type Renamer interface {
	Rename(ctx context.Context, channelID snowflake.ID, name string) error
}

type Updater struct {
	shifts  *shifts.Service
	tod     *tod.Tracker
	configs guildconfig.Provider
	guilds  dashboard.GuildLister
	renamer Renamer
	names   *dashboard.Names

	every time.Duration
	burst int

	mu       sync.Mutex
	limiters map[snowflake.ID]*rate.Limiter
	current  map[snowflake.ID]string
}

func NewUpdater(
	shiftService *shifts.Service,
	tracker *tod.Tracker,
	configs guildconfig.Provider,
	guilds dashboard.GuildLister,
	renamer Renamer,
	names *dashboard.Names,
) *Updater {
	return &Updater{
		shifts:   shiftService,
		tod:      tracker,
		configs:  configs,
		guilds:   guilds,
		renamer:  renamer,
		names:    names,
		every:    config.ChannelRenameEvery,
		burst:    config.ChannelRenameBurst,
		limiters: make(map[snowflake.ID]*rate.Limiter),
		current:  make(map[snowflake.ID]string),
	}
}

// Names computes the wanted name per channel for a guild.
func (u *Updater) Names(ctx context.Context, guildID snowflake.ID, cfg guildconfig.GuildConfig) (map[snowflake.ID]string, error) {
	want := make(map[snowflake.ID]string)

	if len(cfg.ChannelStats) > 0 {
		leaders, err := u.shifts.Leaderboard(ctx, guildID, len(cfg.ChannelStats), true)
		if err != nil {
			return nil, err
		}
		for i, ch := range cfg.ChannelStats {
			if i >= len(leaders) {
				break
			}
			name := u.names.NameOr(ctx, guildID, leaders[i].UserID, "")
			want[ch] = format.StatChannelName(i+1, name, timeutil.HoursFromSecs(leaders[i].Seconds))
		}
	}

	if cfg.CountdownStats != 0 || cfg.CampStatusStats != 0 {
		cd, err := u.tod.Countdown(ctx, guildID)
		if err != nil {
			return nil, err
		}
		if cfg.CountdownStats != 0 {
			want[cfg.CountdownStats] = format.CountdownChannelName(cd.Known, cd.Minutes)
		}
		if cfg.CampStatusStats != 0 {
			want[cfg.CampStatusStats] = format.CampStatusChannelName(cd.Open)
		}
	}

	if cfg.ActiveStats != 0 {
		actives, err := u.shifts.Actives(ctx, guildID)
		if err != nil {
			return nil, err
		}
		want[cfg.ActiveStats] = format.ActiveChannelName(len(actives))
	}
	return want, nil
}

func (u *Updater) limiter(channelID snowflake.ID) *rate.Limiter {
	l, ok := u.limiters[channelID]
	if !ok {
		l = rate.NewLimiter(rate.Every(u.every), u.burst)
		u.limiters[channelID] = l
	}
	return l
}

// UpdateGuild renames every channel whose wanted name changed. A channel
// over its rename budget is retried on a later pass.
func (u *Updater) UpdateGuild(ctx context.Context, guildID snowflake.ID) (int, error) {
	cfg, ok := u.configs.Get(guildID)
	if !ok {
		return 0, nil
	}
	want, err := u.Names(ctx, guildID, cfg)
	if err != nil {
		return 0, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	renamed := 0
	for ch, name := range want {
		if u.current[ch] == name {
			continue
		}
		if !u.limiter(ch).Allow() {
			slog.Debug("Channel rename throttled",
				slog.String("type", "sys"),
				slog.String("channel_id", ch.String()),
				slog.String("name", name))
			continue
		}
		if err := u.renamer.Rename(ctx, ch, name); err != nil {
			logger.LogError("Failed to rename stat channel", err,
				slog.String("guild_id", guildID.String()),
				slog.String("channel_id", ch.String()))
			continue
		}
		u.current[ch] = name
		renamed++
	}
	return renamed, nil
}

// Tick updates every guild once.
func (u *Updater) Tick(ctx context.Context) {
	guilds, err := u.guilds.Guilds()
	if err != nil {
		logger.LogError("Failed to list guilds for channel stats", err)
		return
	}
	for _, id := range guilds {
		if _, err := u.UpdateGuild(ctx, id); err != nil {
			logger.LogError("Channel stats update failed", err, slog.String("guild_id", id.String()))
		}
	}
}

// Run ticks until ctx is done.
func (u *Updater) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	u.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.Tick(ctx)
		}
	}
}
