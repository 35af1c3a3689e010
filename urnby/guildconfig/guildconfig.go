// Package guildconfig is the per-guild settings store, one TOML table per
// guild id in a single file.
package guildconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/urnby/campbot/urnby/timeutil"
)

var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// Keys accepted by Add and Clear.
const (
	KeyMemberRoles       = "member_roles"
	KeyAdminRoles        = "admin_roles"
	KeyCommandChannels   = "command_channels"
	KeyMaxActive         = "max_active"
	KeyDashboardChannel  = "dashboard_channel"
	KeyMobileDashChannel = "mobile_dash_channel"
	KeyChannelStats      = "channel_stats"
	KeyCountdownStats    = "countdown_stats"
	KeyCampStatusStats   = "campstatus_stats"
	KeyActiveStats       = "active_stats"
	KeyBonusHours        = "bonus_hours"
)

var Keys = []string{
	KeyMemberRoles, KeyAdminRoles, KeyCommandChannels, KeyMaxActive,
	KeyDashboardChannel, KeyMobileDashChannel, KeyChannelStats,
	KeyCountdownStats, KeyCampStatusStats, KeyActiveStats, KeyBonusHours,
}

// BonusWindow grants Pct percent extra credit for time inside Start-End each
// day. An End not after Start wraps past midnight.
type BonusWindow struct {
	Start string `toml:"start" json:"start"`
	End   string `toml:"end" json:"end"`
	Pct   int    `toml:"pct" json:"pct"`
}

func (b BonusWindow) Validate() error {
	if _, _, err := timeutil.ParseClock(b.Start); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if _, _, err := timeutil.ParseClock(b.End); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if b.Pct <= 0 {
		return fmt.Errorf("%w: bonus pct must be positive", ErrInvalidValue)
	}
	return nil
}

type GuildConfig struct {
	MemberRoles       []snowflake.ID `toml:"member_roles" json:"member_roles"`
	AdminRoles        []snowflake.ID `toml:"admin_roles" json:"admin_roles"`
	CommandChannels   []snowflake.ID `toml:"command_channels" json:"command_channels"`
	MaxActive         int            `toml:"max_active" json:"max_active"`
	DashboardChannel  snowflake.ID   `toml:"dashboard_channel" json:"dashboard_channel"`
	MobileDashChannel snowflake.ID   `toml:"mobile_dash_channel" json:"mobile_dash_channel"`
	// ChannelStats holds one channel per leaderboard rank, index 0 is #1.
	ChannelStats    []snowflake.ID `toml:"channel_stats" json:"channel_stats"`
	CountdownStats  snowflake.ID   `toml:"countdown_stats" json:"countdown_stats"`
	CampStatusStats snowflake.ID   `toml:"campstatus_stats" json:"campstatus_stats"`
	ActiveStats     snowflake.ID   `toml:"active_stats" json:"active_stats"`
	BonusHours      []BonusWindow  `toml:"bonus_hours" json:"bonus_hours"`
}

// Provider is the read side used by the core services.
type Provider interface {
	Get(guildID snowflake.ID) (GuildConfig, bool)
}

type cacheEntry struct {
	cfg      GuildConfig
	ok       bool
	loadedAt time.Time
}

// Store reads and writes the config file. Reads go through a TTL cache so
// hand edits of the file are picked up without a restart.
type Store struct {
	path  string
	ttl   time.Duration
	clock timeutil.Clock

	mu    sync.Mutex
	cache map[snowflake.ID]cacheEntry
}

func NewStore(path string, ttl time.Duration, clock timeutil.Clock) *Store {
	return &Store{
		path:  path,
		ttl:   ttl,
		clock: clock,
		cache: make(map[snowflake.ID]cacheEntry),
	}
}

func (s *Store) readAll() (map[string]GuildConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]GuildConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read guild config: %w", err)
	}
	all := map[string]GuildConfig{}
	if err := toml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to decode guild config: %w", err)
	}
	return all, nil
}

func (s *Store) writeAll(all map[string]GuildConfig) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(all); err != nil {
		return fmt.Errorf("failed to encode guild config: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Get returns the guild's config and whether the guild has any.
func (s *Store) Get(guildID snowflake.ID) (GuildConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if e, ok := s.cache[guildID]; ok && now.Sub(e.loadedAt) < s.ttl {
		return e.cfg, e.ok
	}

	all, err := s.readAll()
	if err != nil {
		// keep serving the last good value
		if e, ok := s.cache[guildID]; ok {
			return e.cfg, e.ok
		}
		return GuildConfig{}, false
	}
	cfg, ok := all[guildID.String()]
	s.cache[guildID] = cacheEntry{cfg: cfg, ok: ok, loadedAt: now}
	return cfg, ok
}

// Guilds lists every guild id present in the file.
func (s *Store) Guilds() ([]snowflake.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	ids := make([]snowflake.ID, 0, len(all))
	for key := range all {
		id, err := snowflake.Parse(key)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Invalidate drops the cached value of one guild.
func (s *Store) Invalidate(guildID snowflake.ID) {
	s.mu.Lock()
	delete(s.cache, guildID)
	s.mu.Unlock()
}

// Update applies fn to the stored config and persists it.
func (s *Store) Update(guildID snowflake.ID, fn func(*GuildConfig) error) (GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return GuildConfig{}, err
	}
	cfg := all[guildID.String()]
	if err := fn(&cfg); err != nil {
		return GuildConfig{}, err
	}
	all[guildID.String()] = cfg
	if err := s.writeAll(all); err != nil {
		return GuildConfig{}, err
	}
	s.cache[guildID] = cacheEntry{cfg: cfg, ok: true, loadedAt: s.clock.Now()}
	return cfg, nil
}

// Add sets a scalar key or appends to a list key. List keys ignore
// duplicates.
func (s *Store) Add(guildID snowflake.ID, key string, value snowflake.ID) (GuildConfig, error) {
	return s.Update(guildID, func(cfg *GuildConfig) error {
		appendID := func(list *[]snowflake.ID) {
			if !slices.Contains(*list, value) {
				*list = append(*list, value)
			}
		}
		switch key {
		case KeyMemberRoles:
			appendID(&cfg.MemberRoles)
		case KeyAdminRoles:
			appendID(&cfg.AdminRoles)
		case KeyCommandChannels:
			appendID(&cfg.CommandChannels)
		case KeyChannelStats:
			appendID(&cfg.ChannelStats)
		case KeyMaxActive:
			if int64(value) < 0 {
				return fmt.Errorf("%w: max_active must not be negative", ErrInvalidValue)
			}
			cfg.MaxActive = int(value)
		case KeyDashboardChannel:
			cfg.DashboardChannel = value
		case KeyMobileDashChannel:
			cfg.MobileDashChannel = value
		case KeyCountdownStats:
			cfg.CountdownStats = value
		case KeyCampStatusStats:
			cfg.CampStatusStats = value
		case KeyActiveStats:
			cfg.ActiveStats = value
		default:
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		return nil
	})
}

func (s *Store) AddBonusWindow(guildID snowflake.ID, w BonusWindow) (GuildConfig, error) {
	if err := w.Validate(); err != nil {
		return GuildConfig{}, err
	}
	w.Start, _ = timeutil.NormalizeClock(w.Start)
	w.End, _ = timeutil.NormalizeClock(w.End)
	return s.Update(guildID, func(cfg *GuildConfig) error {
		cfg.BonusHours = append(cfg.BonusHours, w)
		sort.SliceStable(cfg.BonusHours, func(i, j int) bool {
			return cfg.BonusHours[i].Start < cfg.BonusHours[j].Start
		})
		return nil
	})
}

// Clear resets one key to its zero value.
func (s *Store) Clear(guildID snowflake.ID, key string) (GuildConfig, error) {
	return s.Update(guildID, func(cfg *GuildConfig) error {
		switch key {
		case KeyMemberRoles:
			cfg.MemberRoles = nil
		case KeyAdminRoles:
			cfg.AdminRoles = nil
		case KeyCommandChannels:
			cfg.CommandChannels = nil
		case KeyMaxActive:
			cfg.MaxActive = 0
		case KeyDashboardChannel:
			cfg.DashboardChannel = 0
		case KeyMobileDashChannel:
			cfg.MobileDashChannel = 0
		case KeyChannelStats:
			cfg.ChannelStats = nil
		case KeyCountdownStats:
			cfg.CountdownStats = 0
		case KeyCampStatusStats:
			cfg.CampStatusStats = 0
		case KeyActiveStats:
			cfg.ActiveStats = 0
		case KeyBonusHours:
			cfg.BonusHours = nil
		default:
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		return nil
	})
}

// Render prints the guild's config as TOML for display.
func Render(cfg GuildConfig) (string, error) {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
