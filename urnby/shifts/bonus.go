package shifts

import (
	"fmt"
	"time"

	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/timeutil"
)

// BonusLabel names a bonus row after its window and the originating row.
func BonusLabel(w guildconfig.BonusWindow, rowID int64) string {
	return fmt.Sprintf("%d%s%s_TO_%s %d", w.Pct, models.BonusLabelMark, w.Start, w.End, rowID)
}

// BonusSessions derives the bonus rows of a closed shift. For every window
// and every calendar day the shift touches, a positive overlap of the shift
// with that day's window yields one row sized overlap*pct/100, anchored at
// the overlap start. The day before the shift is included so windows that
// wrap past midnight are caught.
func BonusSessions(rec *models.HistoricalShift, windows []guildconfig.BonusWindow, loc *time.Location) []*models.HistoricalShift {
	in := timeutil.FromUnix(rec.InTimestamp, loc)
	out := timeutil.FromUnix(rec.OutTimestamp, loc)
	if !out.After(in) {
		return nil
	}

	first := timeutil.StartOfDay(in).AddDate(0, 0, -1)
	last := timeutil.StartOfDay(out)

	var bonuses []*models.HistoricalShift
	for _, w := range windows {
		if w.Pct <= 0 {
			continue
		}
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			bonusIn, err := timeutil.Combine(day, w.Start, loc)
			if err != nil {
				break
			}
			bonusOut, err := timeutil.Combine(day, w.End, loc)
			if err != nil {
				break
			}
			if !bonusOut.After(bonusIn) {
				bonusOut = bonusOut.AddDate(0, 0, 1)
			}

			start := maxTime(in, bonusIn)
			end := minTime(out, bonusOut)
			if !end.After(start) {
				continue
			}

			overlap := int64(end.Sub(start) / time.Second)
			credit := overlap * int64(w.Pct) / 100
			bonuses = append(bonuses, &models.HistoricalShift{
				GuildID:      rec.GuildID,
				UserID:       rec.UserID,
				UserName:     rec.UserName,
				Character:    BonusLabel(w, rec.ID),
				Session:      rec.Session,
				InTimestamp:  start.Unix(),
				OutTimestamp: start.Unix() + credit,
			})
		}
	}
	return bonuses
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
