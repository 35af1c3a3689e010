package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/timeutil"
)

// ChunkLines splits content into pieces of at most max bytes, breaking only
// on newlines. A single line longer than max is split on rune boundaries.
func ChunkLines(content string, max int) []string {
	if content == "" {
		return nil
	}
	if len(content) <= max {
		return []string{content}
	}

	var (
		chunks []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}

	for _, line := range strings.Split(content, "\n") {
		for len(line) > max {
			flush()
			cut := max
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		extra := len(line)
		if cur.Len() > 0 {
			extra++
		}
		if cur.Len()+extra > max {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()
	return chunks
}

// Category marks a historical row in listings.
func Category(rec *models.HistoricalShift) string {
	switch {
	case rec.IsBonus():
		return " +"
	case rec.IsUrn():
		return "⚱️"
	case rec.Character == "SOLO_HOLD_BONUS":
		return " S"
	case rec.Character == "QUAKE_DS_BONUS":
		return " Q"
	default:
		return "  "
	}
}

type TimeUnit string

const (
	UnitHours   TimeUnit = "Hours"
	UnitSeconds TimeUnit = "Seconds"
)

// SessionLine is one row of a user's session listing.
func SessionLine(rec *models.HistoricalShift, loc *time.Location, unit TimeUnit) string {
	in := timeutil.FromUnix(rec.InTimestamp, loc)
	out := timeutil.FromUnix(rec.OutTimestamp, loc)
	zone := in.Format("MST")

	var amount string
	if unit == UnitSeconds {
		amount = fmt.Sprintf("%d", rec.Seconds())
	} else {
		amount = fmt.Sprintf("%.2f", timeutil.SignedHours(rec.Seconds()))
	}
	return fmt.Sprintf("%5d %s - %-50s  %s from %s %s to %s %s for %s %s",
		rec.ID, in.Format("2006-01-02"), truncate(rec.Session, 50), Category(rec),
		in.Format("15:04:05"), zone, out.Format("15:04:05"), zone,
		amount, strings.ToLower(string(unit)),
	)
}

// SessionListing builds the messages of a user's session history. Each chunk
// is fenced; the title opens the first and the tail closes the last.
func SessionListing(title, tail string, recs []*models.HistoricalShift, loc *time.Location, unit TimeUnit, chunkSize int) []string {
	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		lines = append(lines, SessionLine(r, loc, unit))
	}
	chunks := ChunkLines(strings.Join(lines, "\n"), chunkSize)
	if len(chunks) == 0 {
		return []string{title + tail}
	}

	msgs := make([]string, 0, len(chunks))
	for i, c := range chunks {
		msg := codeFence + "\n" + c + codeFence
		if i == 0 {
			msg = title + msg
		}
		if i == len(chunks)-1 {
			msg += tail
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func Hours(secs int64) string {
	return fmt.Sprintf("%.2f", timeutil.HoursFromSecs(secs))
}

// QueueLine lists queue mentions in order.
func QueueLine(userIDs []string) string {
	var b strings.Builder
	b.WriteString("\nCurrent replacements: ")
	for _, id := range userIDs {
		fmt.Fprintf(&b, "<@%s> --> ", id)
	}
	b.WriteString("<END>")
	return b.String()
}

// StatChannelName is the name of a leaderboard rank channel.
func StatChannelName(rank int, name string, hours float64) string {
	return fmt.Sprintf("#%d %s - %.2f", rank, truncate(name, 10), hours)
}

func CountdownChannelName(known bool, minutes int64) string {
	if !known {
		return "DS in: Unknown"
	}
	return fmt.Sprintf("DS in: %dh %02dm", minutes/60, minutes%60)
}

func CampStatusChannelName(open bool) string {
	if open {
		return "Camp: <OPEN>"
	}
	return "Camp: <CLOSED>"
}

func ActiveChannelName(count int) string {
	return fmt.Sprintf("Active: %d", count)
}
