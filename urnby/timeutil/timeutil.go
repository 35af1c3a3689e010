package timeutil

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	SecsInMinute  = 60
	MinutesInHour = 60
	SecsInHour    = SecsInMinute * MinutesInHour
	SecsInDay     = 24 * SecsInHour
)

// ErrInvalidInput wraps every parse failure of user supplied times.
var ErrInvalidInput = errors.New("invalid input")

// Clock is the time source used by every component that stamps or compares
// times. Tests swap it for a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// SystemClock returns a clock reporting wall time in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc).Truncate(time.Second)
}

// FixedClock always reports the same instant until Set or Advance is called.
type FixedClock struct {
	t time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

func (c *FixedClock) Now() time.Time { return c.t }

func (c *FixedClock) Set(t time.Time) { c.t = t }

func (c *FixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// DefaultLocation is the reference zone of the community (US eastern, no DST).
var DefaultLocation = time.FixedZone("EST", -5*SecsInHour)

// LoadLocation resolves a zone name from config. Empty and "EST" map to the
// fixed eastern offset.
func LoadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "EST":
		return DefaultLocation, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// HoursFromSecs converts a second delta to hours rounded to two places.
// Negative deltas report as zero.
func HoursFromSecs(secs int64) float64 {
	res := math.Round(float64(secs)/SecsInHour*100) / 100
	if res > 0 {
		return res
	}
	return 0
}

// SignedHours is HoursFromSecs without the clamp, used for correction rows.
func SignedHours(secs int64) float64 {
	return math.Round(float64(secs)/SecsInHour*100) / 100
}

// MinutesBetween returns whole minutes from a to b, truncated toward zero.
func MinutesBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / time.Minute)
}

// FromUnix converts a stored timestamp to a time in loc.
func FromUnix(ts int64, loc *time.Location) time.Time {
	return time.Unix(ts, 0).In(loc)
}

// ParseClock parses "HH:MM" or "H:MM" (24 hour) into hours and minutes.
func ParseClock(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 {
		s = "0" + s
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: clock time %q, expected HH:MM", ErrInvalidInput, s)
	}
	return t.Hour(), t.Minute(), nil
}

// NormalizeClock returns the zero padded form of a valid clock string.
func NormalizeClock(s string) (string, error) {
	h, m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// Combine places a clock time on the calendar day of date, in loc.
func Combine(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc), nil
}

// ParseDate parses a YYYY-MM-DD day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, expected YYYY-MM-DD", ErrInvalidInput, s)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysSpanned counts calendar days touched by [in, out], inclusive, in loc.
func DaysSpanned(in, out time.Time, loc *time.Location) int {
	a := StartOfDay(in.In(loc))
	b := StartOfDay(out.In(loc))
	if b.Before(a) {
		return 1
	}
	n := 0
	for d := a; !d.After(b); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}
