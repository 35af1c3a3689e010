// Package peeper remembers who last checked on the spawn, per guild. State is
// in memory only and lost on restart.
package peeper

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/timeutil"
)

type Peep struct {
	UserID snowflake.ID
	At     time.Time
}

type Tracker struct {
	clock timeutil.Clock

	mu   sync.RWMutex
	last map[snowflake.ID]Peep
}

func NewTracker(clock timeutil.Clock) *Tracker {
	return &Tracker{
		clock: clock,
		last:  make(map[snowflake.ID]Peep),
	}
}

// Mark records the user as the guild's latest peeper.
func (t *Tracker) Mark(guildID, userID snowflake.ID) Peep {
	p := Peep{UserID: userID, At: t.clock.Now()}
	t.mu.Lock()
	t.last[guildID] = p
	t.mu.Unlock()
	return p
}

func (t *Tracker) Last(guildID snowflake.ID) (Peep, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.last[guildID]
	return p, ok
}

// MinutesAgo is how long ago the peep happened, in fractional minutes.
func (t *Tracker) MinutesAgo(p Peep) float64 {
	return t.clock.Now().Sub(p.At).Minutes()
}
