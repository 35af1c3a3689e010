// Package tod tracks time-of-death markers and the spawn countdown derived
// from them.
package tod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/timeutil"
)

var ErrNoTod = errors.New("no time of death recorded")

type Tracker struct {
	repo  repositories.TodRepository
	clock timeutil.Clock
	loc   *time.Location
}

func NewTracker(repo repositories.TodRepository, clock timeutil.Clock, loc *time.Location) *Tracker {
	return &Tracker{repo: repo, clock: clock, loc: loc}
}

// ParseTod resolves "now" or an HH:MM clock on today's date, or yesterday's
// when dayBefore is set.
func ParseTod(value string, dayBefore bool, now time.Time, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" || value == "now" {
		return now, nil
	}
	day := now.In(loc)
	if dayBefore {
		day = day.AddDate(0, 0, -1)
	}
	return timeutil.Combine(day, value, loc)
}

func (t *Tracker) Submit(ctx context.Context, guildID, submittedBy snowflake.ID, value string, dayBefore bool, mob string) (*models.TimeOfDeath, error) {
	if mob == "" {
		mob = config.DefaultMob
	}
	now := t.clock.Now()
	at, err := ParseTod(value, dayBefore, now, t.loc)
	if err != nil {
		return nil, err
	}
	rec := &models.TimeOfDeath{
		GuildID:            guildID.String(),
		Mob:                mob,
		TodTimestamp:       at.Unix(),
		SubmittedTimestamp: now.Unix(),
		SubmittedBy:        submittedBy.String(),
	}
	if _, err := t.repo.StoreTod(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store tod: %w", err)
	}
	return rec, nil
}

// Current returns the latest submitted marker for the mob.
func (t *Tracker) Current(ctx context.Context, guildID snowflake.ID, mob string) (*models.TimeOfDeath, error) {
	if mob == "" {
		mob = config.DefaultMob
	}
	rec, err := t.repo.GetTod(ctx, guildID.String(), mob)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrNoTod
		}
		return nil, err
	}
	return rec, nil
}

// Countdown is the state of the next spawn relative to now.
type Countdown struct {
	Known bool
	Spawn time.Time
	// Minutes until the spawn, target - now.
	Minutes int64
	Open    bool
}

// Spawn predicts the next spawn of a marker.
func Spawn(rec *models.TimeOfDeath, loc *time.Location) time.Time {
	return timeutil.FromUnix(rec.TodTimestamp, loc).Add(config.RespawnOffset)
}

// NewCountdown computes the countdown from a marker. A nil marker or a spawn
// already in the past is unknown.
func NewCountdown(rec *models.TimeOfDeath, now time.Time, loc *time.Location) Countdown {
	if rec == nil {
		return Countdown{}
	}
	spawn := Spawn(rec, loc)
	mins := timeutil.MinutesBetween(now, spawn)
	if mins < 0 {
		return Countdown{Spawn: spawn, Minutes: mins}
	}
	return Countdown{
		Known:   true,
		Spawn:   spawn,
		Minutes: mins,
		Open:    mins <= int64(config.CampOpenWindow/time.Minute),
	}
}

func (t *Tracker) Countdown(ctx context.Context, guildID snowflake.ID) (Countdown, error) {
	rec, err := t.Current(ctx, guildID, config.DefaultMob)
	if errors.Is(err, ErrNoTod) {
		return Countdown{}, nil
	}
	if err != nil {
		return Countdown{}, err
	}
	return NewCountdown(rec, t.clock.Now(), t.loc), nil
}

func (t *Tracker) Location() *time.Location { return t.loc }

func (t *Tracker) Now() time.Time { return t.clock.Now() }
