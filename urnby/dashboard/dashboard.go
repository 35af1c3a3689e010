// Package dashboard keeps one live text dashboard per guild, polled on a
// fixed interval and edited in place.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"

	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/logger"
	"github.com/urnby/campbot/urnby/queue"
	"github.com/urnby/campbot/urnby/shifts"
	"github.com/urnby/campbot/urnby/timeutil"
	"github.com/urnby/campbot/urnby/tod"
)

//go:generate mockgen -source=dashboard.go -destination=mock/sink.go -package=mock

// Sink publishes the bot's own messages.
type Sink interface {
	Send(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error)
	Edit(ctx context.Context, channelID, messageID snowflake.ID, content string) error
	// Purge deletes every message the bot posted in the channel.
	Purge(ctx context.Context, channelID snowflake.ID) error
}

// GuildLister enumerates guilds that may carry a dashboard.
type GuildLister interface {
	Guilds() ([]snowflake.ID, error)
}

type Layout int

const (
	LayoutDesktop Layout = iota
	LayoutMobile
	layoutCount
)

func (l Layout) String() string {
	if l == LayoutMobile {
		return "mobile"
	}
	return "desktop"
}

type handle struct {
	channel snowflake.ID
	message snowflake.ID
	content string
}

type guildState struct {
	mu sync.Mutex
	// delayed is set once the paused banner went out; renders are then
	// suppressed until a transition.
	delayed          bool
	openTransitioned bool
	purge            bool
	handles          [layoutCount]handle
}

type Options struct {
	// ExtraLines is the leaderboard rows shown beyond the active and queue
	// rows.
	ExtraLines  int
	MobileLines int
	// Parallel bounds concurrent guild renders per tick.
	Parallel int
}

type Renderer struct {
	shifts  *shifts.Service
	queue   *queue.Manager
	tod     *tod.Tracker
	configs guildconfig.Provider
	guilds  GuildLister
	sink    Sink
	names   *Names
	clock   timeutil.Clock
	opts    Options

	mu     sync.Mutex
	states map[snowflake.ID]*guildState
	next   time.Time
}

func NewRenderer(
	shiftService *shifts.Service,
	queueManager *queue.Manager,
	tracker *tod.Tracker,
	configs guildconfig.Provider,
	guilds GuildLister,
	sink Sink,
	names *Names,
	clock timeutil.Clock,
	opts Options,
) *Renderer {
	if opts.Parallel <= 0 {
		opts.Parallel = 4
	}
	return &Renderer{
		shifts:  shiftService,
		queue:   queueManager,
		tod:     tracker,
		configs: configs,
		guilds:  guilds,
		sink:    sink,
		names:   names,
		clock:   clock,
		opts:    opts,
		states:  make(map[snowflake.ID]*guildState),
	}
}

func (r *Renderer) state(guildID snowflake.ID) *guildState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[guildID]
	if !ok {
		st = &guildState{}
		r.states[guildID] = st
	}
	return st
}

// Snapshot computes the guild's current view. Pause flags are left unset.
func (r *Renderer) Snapshot(ctx context.Context, guildID snowflake.ID) (format.View, error) {
	var v format.View
	now := r.clock.Now()

	sess, err := r.shifts.Session(ctx, guildID)
	switch {
	case errors.Is(err, shifts.ErrNoActiveSession):
	case err != nil:
		return v, err
	default:
		v.Session = sess.Name
		v.SessionStart = timeutil.FromUnix(sess.StartTimestamp, r.shifts.Location())
	}

	cd, err := r.tod.Countdown(ctx, guildID)
	if err != nil {
		return v, err
	}
	v.CountdownKnown = cd.Known
	v.CountdownMinutes = cd.Minutes
	v.CampOpen = cd.Open

	actives, err := r.shifts.Actives(ctx, guildID)
	if err != nil {
		return v, err
	}
	sessionSecs := map[string]int64{}
	if v.Session != "" {
		if sessionSecs, err = r.shifts.SessionSeconds(ctx, guildID, v.Session); err != nil {
			return v, err
		}
	}
	for _, a := range actives {
		elapsed := now.Unix() - a.InTimestamp
		v.Actives = append(v.Actives, format.ActiveRow{
			Name:         r.names.NameOr(ctx, guildID, a.UserID, a.UserName),
			Hours:        timeutil.HoursFromSecs(elapsed),
			SessionHours: timeutil.HoursFromSecs(elapsed + sessionSecs[a.UserID]),
		})
	}

	entries, err := r.queue.List(ctx, guildID)
	if err != nil {
		return v, err
	}
	for _, e := range entries {
		v.Queue = append(v.Queue, format.QueueRow{
			Name:        r.names.NameOr(ctx, guildID, e.UserID, e.UserName),
			WaitMinutes: r.queue.WaitMinutes(e),
		})
	}

	v.LeaderSlots = r.opts.ExtraLines + len(v.Actives) + len(v.Queue)
	leaders, err := r.shifts.Leaderboard(ctx, guildID, v.LeaderSlots, true)
	if err != nil {
		return v, err
	}
	for _, l := range leaders {
		v.Leaders = append(v.Leaders, format.LeaderRow{
			Name:  r.names.NameOr(ctx, guildID, l.UserID, ""),
			Hours: timeutil.HoursFromSecs(l.Seconds),
		})
	}
	return v, nil
}

// RenderGuild runs one dashboard pass for a guild.
func (r *Renderer) RenderGuild(ctx context.Context, guildID snowflake.ID) error {
	cfg, ok := r.configs.Get(guildID)
	if !ok || (cfg.DashboardChannel == 0 && cfg.MobileDashChannel == 0) {
		return nil
	}

	st := r.state(guildID)
	st.mu.Lock()
	defer st.mu.Unlock()

	v, err := r.Snapshot(ctx, guildID)
	if err != nil {
		return err
	}
	live := v.Session != ""

	if st.delayed {
		switch {
		case v.CampOpen && !st.openTransitioned:
			logger.LogDashboard("Camp opened while paused", guildID.String())
			st.openTransitioned = true
			st.purge = true
		case live:
			logger.LogDashboard("Session started, resuming", guildID.String())
			st.purge = true
		default:
			return nil
		}
		st.delayed = false
	}

	if !live {
		v.Paused = true
		v.OpenTransitioned = st.openTransitioned
	}

	r.retireMovedLocked(ctx, guildID, cfg, st)
	if st.purge {
		r.purgeLocked(ctx, guildID, cfg, st)
		st.purge = false
	}

	var errs []error
	if err := r.publish(ctx, st, LayoutDesktop, cfg.DashboardChannel, fit(v, format.Desktop)); err != nil {
		errs = append(errs, err)
	}
	mobile := v
	if r.opts.MobileLines > 0 && len(mobile.Leaders) > r.opts.MobileLines {
		mobile.Leaders = mobile.Leaders[:r.opts.MobileLines]
	}
	if err := r.publish(ctx, st, LayoutMobile, cfg.MobileDashChannel, fit(mobile, format.Mobile)); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		// the banner did not land; the next tick tries again
		return errors.Join(errs...)
	}
	if live {
		st.openTransitioned = false
	} else {
		st.delayed = true
		logger.LogDashboard("Paused banner rendered", guildID.String())
	}
	return nil
}

// fit drops leaderboard rows until the rendered text fits one message.
func fit(v format.View, render func(format.View) string) string {
	content := render(v)
	for len(content) > config.MaxMessageLength && len(v.Leaders) > 0 {
		v.Leaders = v.Leaders[:len(v.Leaders)-1]
		if v.LeaderSlots > len(v.Leaders) {
			v.LeaderSlots = len(v.Leaders)
		}
		content = render(v)
	}
	return content
}

func (r *Renderer) publish(ctx context.Context, st *guildState, layout Layout, channelID snowflake.ID, content string) error {
	if channelID == 0 {
		return nil
	}
	h := &st.handles[layout]
	if h.channel != channelID {
		*h = handle{}
	}
	if h.message != 0 && h.content == content {
		return nil
	}

	if h.message != 0 {
		err := r.sink.Edit(ctx, channelID, h.message, content)
		if err == nil {
			h.content = content
			return nil
		}
		slog.Warn("Dashboard edit failed, posting a new message",
			slog.String("type", "dash"),
			slog.String("layout", layout.String()),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}

	id, err := r.sink.Send(ctx, channelID, content)
	if err != nil {
		return err
	}
	*h = handle{channel: channelID, message: id, content: content}
	return nil
}

func (r *Renderer) purgeLocked(ctx context.Context, guildID snowflake.ID, cfg guildconfig.GuildConfig, st *guildState) {
	for _, ch := range []snowflake.ID{cfg.DashboardChannel, cfg.MobileDashChannel} {
		if ch == 0 {
			continue
		}
		if err := r.sink.Purge(ctx, ch); err != nil {
			logger.LogError("Failed to purge dashboard channel", err,
				slog.String("guild_id", guildID.String()),
				slog.String("channel_id", ch.String()))
		}
	}
	st.handles = [layoutCount]handle{}
}

// retireMovedLocked purges channels a layout was posting to before its
// configured channel changed, unless the other layout still uses them.
func (r *Renderer) retireMovedLocked(ctx context.Context, guildID snowflake.ID, cfg guildconfig.GuildConfig, st *guildState) {
	current := [layoutCount]snowflake.ID{LayoutDesktop: cfg.DashboardChannel, LayoutMobile: cfg.MobileDashChannel}
	for layout := range st.handles {
		h := &st.handles[layout]
		old := h.channel
		if old == 0 || old == current[layout] {
			continue
		}
		*h = handle{}
		if slices.Contains(current[:], old) {
			continue
		}
		logger.LogDashboard("Dashboard channel moved, purging the old one", guildID.String(),
			slog.String("channel_id", old.String()))
		if err := r.sink.Purge(ctx, old); err != nil {
			logger.LogError("Failed to purge old dashboard channel", err,
				slog.String("guild_id", guildID.String()),
				slog.String("channel_id", old.String()))
		}
	}
}

// Purge clears the guild's dashboard channels now.
func (r *Renderer) Purge(ctx context.Context, guildID snowflake.ID) {
	cfg, ok := r.configs.Get(guildID)
	if !ok {
		return
	}
	st := r.state(guildID)
	st.mu.Lock()
	defer st.mu.Unlock()
	r.purgeLocked(ctx, guildID, cfg, st)
}

// RequestRefresh lifts the pause and recreates the dashboard on the next
// tick.
func (r *Renderer) RequestRefresh(guildID snowflake.ID) {
	st := r.state(guildID)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.delayed = false
	st.purge = true
}

// Tick renders every guild once. A failing guild does not stop the others.
func (r *Renderer) Tick(ctx context.Context) error {
	guilds, err := r.guilds.Guilds()
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(r.opts.Parallel)
	for _, id := range guilds {
		g.Go(func() error {
			if err := r.RenderGuild(ctx, id); err != nil {
				logger.LogError("Dashboard render failed", err, slog.String("guild_id", id.String()))
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Run ticks until ctx is done.
func (r *Renderer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.mu.Lock()
		r.next = r.clock.Now().Add(interval)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.next = time.Time{}
			r.mu.Unlock()
			return
		case <-ticker.C:
			tickCtx, cancel := context.WithTimeout(ctx, config.DashboardTickTimeout)
			_ = r.Tick(tickCtx)
			cancel()
		}
	}
}

// NextTick is the scheduled time of the next pass, zero when not running.
func (r *Renderer) NextTick() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next
}
