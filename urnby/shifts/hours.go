package shifts

import (
	"context"
	"sort"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/database/models"
)

// Hours holds a user's aggregates in seconds.
type Hours struct {
	Total    int64
	Bonus    int64
	Session  int64
	Lifetime int64
	// LatestIn and LatestOut are unix seconds, zero without records.
	LatestIn  int64
	LatestOut int64
}

// Aggregate folds historical rows of one user. session scopes the Session
// figure; bonus rows never count toward it.
func Aggregate(recs []*models.HistoricalShift, session string) Hours {
	var h Hours
	for _, r := range recs {
		secs := r.Seconds()
		h.Total += secs
		if secs >= 0 {
			h.Lifetime += secs
		}
		bonus := r.IsBonus()
		if bonus {
			h.Bonus += secs
		}
		if session != "" && r.Session == session && !bonus {
			h.Session += secs
		}
		if r.InTimestamp > h.LatestIn {
			h.LatestIn = r.InTimestamp
		}
		if r.OutTimestamp > h.LatestOut {
			h.LatestOut = r.OutTimestamp
		}
	}
	return h
}

// LatestActivity is the later of LatestIn and LatestOut.
func (h Hours) LatestActivity() int64 {
	if h.LatestOut > h.LatestIn {
		return h.LatestOut
	}
	return h.LatestIn
}

func (s *Service) UserSeconds(ctx context.Context, guildID, userID snowflake.ID) (int64, error) {
	recs, err := s.shifts.GetHistoricalForUser(ctx, guildID.String(), userID.String())
	if err != nil {
		return 0, err
	}
	return Aggregate(recs, "").Total, nil
}

func (s *Service) UserHours(ctx context.Context, guildID, userID snowflake.ID) (Hours, error) {
	recs, err := s.shifts.GetHistoricalForUser(ctx, guildID.String(), userID.String())
	if err != nil {
		return Hours{}, err
	}
	session := ""
	if sess, err := s.sessions.GetSession(ctx, guildID.String()); err != nil {
		return Hours{}, err
	} else if sess != nil {
		session = sess.Name
	}
	return Aggregate(recs, session), nil
}

func (s *Service) UserHistory(ctx context.Context, guildID, userID snowflake.ID) ([]*models.HistoricalShift, error) {
	return s.shifts.GetHistoricalForUser(ctx, guildID.String(), userID.String())
}

// SessionSeconds maps user id to non-bonus seconds recorded in the session.
func (s *Service) SessionSeconds(ctx context.Context, guildID snowflake.ID, session string) (map[string]int64, error) {
	recs, err := s.shifts.HistoricalForSession(ctx, guildID.String(), session)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64)
	for _, r := range recs {
		if r.IsBonus() {
			continue
		}
		out[r.UserID] += r.Seconds()
	}
	return out, nil
}

type LeaderboardEntry struct {
	UserID       string
	Seconds      int64
	LastActivity int64
}

// Leaderboard ranks users by total seconds, highest first. A limit <= 0
// returns everyone. With excludeStale, users whose latest activity is at
// least two weeks old are dropped.
func (s *Service) Leaderboard(ctx context.Context, guildID snowflake.ID, limit int, excludeStale bool) ([]LeaderboardEntry, error) {
	totals, err := s.shifts.UserTotals(ctx, guildID.String())
	if err != nil {
		return nil, err
	}

	cutoff := s.clock.Now().Add(-config.StaleAfter).Unix()
	entries := make([]LeaderboardEntry, 0, len(totals))
	for _, t := range totals {
		last := t.LatestIn
		if t.LatestOut > last {
			last = t.LatestOut
		}
		if excludeStale && last <= cutoff {
			continue
		}
		entries = append(entries, LeaderboardEntry{UserID: t.UserID, Seconds: t.Seconds, LastActivity: last})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Seconds != entries[j].Seconds {
			return entries[i].Seconds > entries[j].Seconds
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// IsStale reports whether a unix activity stamp is two weeks or more ago.
func (s *Service) IsStale(last int64) bool {
	return s.clock.Now().Sub(time.Unix(last, 0)) >= config.StaleAfter
}
