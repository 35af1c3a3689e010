// Package format renders already computed aggregates as Discord message
// text. Nothing here touches storage or the network.
package format

import (
	"fmt"
	"strings"
	"time"
)

const (
	codeFence    = "```"
	leftWidth    = 50
	pausedBanner = "Paused till session start. "
	openBanner   = "Camp is open!"
	sessionStamp = "Jan02 03:04PM"
)

type ActiveRow struct {
	Name         string
	Hours        float64
	SessionHours float64
}

type QueueRow struct {
	Name        string
	WaitMinutes int64
}

type LeaderRow struct {
	Name  string
	Hours float64
}

// View is one guild's dashboard snapshot.
type View struct {
	// Session is empty when the guild has no live session.
	Session      string
	SessionStart time.Time

	CountdownKnown   bool
	CountdownMinutes int64
	CampOpen         bool

	Actives []ActiveRow
	Queue   []QueueRow
	Leaders []LeaderRow
	// LeaderSlots is the number of leaderboard rows reserved, filled or not.
	LeaderSlots int

	Paused           bool
	OpenTransitioned bool
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func countdownText(v View) string {
	if !v.CountdownKnown {
		return "Unknown"
	}
	return fmt.Sprintf("%4dmins", v.CountdownMinutes)
}

func openText(v View) string {
	if v.CountdownKnown && v.CampOpen {
		return "<OPEN>"
	}
	return ""
}

func sessionHeader(v View) (string, string) {
	if v.Session == "" {
		return "None", ""
	}
	return v.Session, v.SessionStart.Format(sessionStamp)
}

func footer(v View) string {
	if !v.Paused {
		return ""
	}
	if v.OpenTransitioned {
		return pausedBanner + openBanner
	}
	return pausedBanner
}

// Desktop renders the wide two column table: session, actives and queue on
// the left, the leaderboard on the right.
func Desktop(v View) string {
	rule := strings.Repeat("-", leftWidth-1)
	name, start := sessionHeader(v)
	zone := v.SessionStart.Format("MST")
	if v.Session == "" {
		zone = ""
	}

	left := []string{
		fmt.Sprintf(" %-20s%-13sDS in: %-8s|", "Active Session", openText(v), countdownText(v)),
		rule + "-",
		fmt.Sprintf(" %-27s @ %-13s %-3s |", truncate(name, 27), start, zone),
		rule + "|",
		fmt.Sprintf(" %-19sHours at camp / Session Total|", "Active Users"),
		rule + "|",
	}
	for _, a := range v.Actives {
		left = append(left, fmt.Sprintf(" %-30s %9.2f / %5.2f|", truncate(a.Name, 29), a.Hours, a.SessionHours))
	}
	left = append(left,
		rule+"|",
		fmt.Sprintf(" %-33s%15s|", "Camp Queue", "Minutes waiting"),
		rule+"|",
	)
	for _, q := range v.Queue {
		left = append(left, fmt.Sprintf(" %-30s %17d|", truncate(q.Name, 29), q.WaitMinutes))
	}
	left = append(left, rule+"|")

	slots := v.LeaderSlots
	if slots < len(v.Leaders) {
		slots = len(v.Leaders)
	}
	right := []string{
		fmt.Sprintf(" Top %d in Hours", slots),
		strings.Repeat("-", leftWidth),
	}
	for i := 0; i < slots; i++ {
		if i >= len(v.Leaders) {
			right = append(right, "")
			continue
		}
		l := v.Leaders[i]
		right = append(right, fmt.Sprintf(" %-42s %6.2f", truncate(l.Name, 42), l.Hours))
	}

	// the right column starts on the first rule line
	const offset = 1
	rows := len(left)
	if len(right)+offset > rows {
		rows = len(right) + offset
	}
	pad := strings.Repeat(" ", leftWidth)

	var b strings.Builder
	b.WriteString(codeFence + "\n")
	for i := 0; i < rows; i++ {
		l := pad
		if i < len(left) {
			l = left[i]
		}
		r := ""
		if j := i - offset; j >= 0 && j < len(right) {
			r = right[j]
		}
		b.WriteString(strings.TrimRight(l+r, " "))
		b.WriteString("\n")
	}
	b.WriteString(codeFence)
	b.WriteString(footer(v))
	return b.String()
}

// Mobile renders a single narrow column.
func Mobile(v View) string {
	name, start := sessionHeader(v)

	var b strings.Builder
	b.WriteString(codeFence + "\n")
	fmt.Fprintf(&b, "Session: %s\n", truncate(name, 20))
	if start != "" {
		fmt.Fprintf(&b, "Started: %s\n", start)
	}
	fmt.Fprintf(&b, "DS in: %s %s\n", strings.TrimSpace(countdownText(v)), openText(v))

	fmt.Fprintf(&b, "%s\n", "-- Active (hrs / session) --")
	for _, a := range v.Actives {
		fmt.Fprintf(&b, "%-16s %6.2f/%5.2f\n", truncate(a.Name, 16), a.Hours, a.SessionHours)
	}
	fmt.Fprintf(&b, "%s\n", "-- Queue (mins waiting) --")
	for _, q := range v.Queue {
		fmt.Fprintf(&b, "%-16s %12d\n", truncate(q.Name, 16), q.WaitMinutes)
	}
	fmt.Fprintf(&b, "-- Top %d in Hours --\n", len(v.Leaders))
	for i, l := range v.Leaders {
		fmt.Fprintf(&b, "%2d %-16s %9.2f\n", i+1, truncate(l.Name, 16), l.Hours)
	}
	b.WriteString(codeFence)
	b.WriteString(footer(v))
	return b.String()
}
