package streak

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FrequencyKind says which calendar days a habit is expected on.
type FrequencyKind int

const (
	Daily FrequencyKind = iota
	Weekdays
	Weekends
	TimesPerWeek
)

// Frequency is the parsed form of a habit's frequency column
// ("Daily", "Weekdays", "Weekends" or "3x/week").
type Frequency struct {
	Kind  FrequencyKind
	Times int // only set for TimesPerWeek
}

func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "Daily":
		return Frequency{Kind: Daily}, nil
	case "Weekdays":
		return Frequency{Kind: Weekdays}, nil
	case "Weekends":
		return Frequency{Kind: Weekends}, nil
	}

	if idx := strings.Index(s, "x/week"); idx > 0 {
		n, err := strconv.Atoi(s[:idx])
		if err == nil && n >= 1 && n <= 7 {
			return Frequency{Kind: TimesPerWeek, Times: n}, nil
		}
	}

	return Frequency{}, fmt.Errorf("invalid frequency %q", s)
}

// Qualifies reports whether the habit is expected on the given calendar day.
// TimesPerWeek habits have no fixed days, so every day qualifies.
func (f Frequency) Qualifies(d time.Time) bool {
	switch f.Kind {
	case Weekdays:
		wd := d.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case Weekends:
		wd := d.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	default:
		return true
	}
}

// ExpectedOccurrences counts the days a habit is expected in [start, end].
func (f Frequency) ExpectedOccurrences(start, end time.Time) int {
	start = Day(start)
	end = Day(end)
	if end.Before(start) {
		return 0
	}

	totalDays := int(end.Sub(start).Hours()/24) + 1

	if f.Kind == TimesPerWeek {
		return int(math.Round(float64(totalDays) / 7.0 * float64(f.Times)))
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if f.Qualifies(d) {
			count++
		}
	}
	return count
}

// Day truncates a time to its calendar date in UTC. All ledger math runs on
// these normalized values so month/year/DST boundaries cannot skew the walk.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// prevQualifying steps back to the previous day the frequency expects.
func (f Frequency) prevQualifying(d time.Time) time.Time {
	d = d.AddDate(0, 0, -1)
	for !f.Qualifies(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Current recomputes the running streak from the completed dates in the
// ledger. completedDates holds every date with completed = true, in any
// order. The walk anchors on the most recent qualifying day: today if it is
// completed, otherwise the qualifying day just before today (the streak is
// not broken merely because today is still pending). Anything older means
// the streak is over and the result is 0. From the anchor it counts
// consecutive completed qualifying days backward, stopping at the first gap.
func Current(f Frequency, completedDates []time.Time, today time.Time) int {
	if len(completedDates) == 0 {
		return 0
	}

	done := make(map[time.Time]bool, len(completedDates))
	for _, d := range completedDates {
		done[Day(d)] = true
	}

	today = Day(today)
	latest := today
	if !f.Qualifies(latest) {
		latest = f.prevQualifying(latest)
	}

	anchor := latest
	if !done[anchor] {
		anchor = f.prevQualifying(latest)
		if !done[anchor] {
			return 0
		}
	}

	count := 0
	for d := anchor; done[d]; d = f.prevQualifying(d) {
		count++
	}
	return count
}

// CompletionRate returns the integer percentage (0-100) of expected
// occurrences in [start, end] that were completed. A window with zero
// expected occurrences yields 0. Backfilled over-completion of an
// Nx/week habit is clamped at 100.
func CompletionRate(f Frequency, completedDates []time.Time, start, end time.Time) int {
	expected := f.ExpectedOccurrences(start, end)
	if expected == 0 {
		return 0
	}

	start = Day(start)
	end = Day(end)
	completed := 0
	seen := make(map[time.Time]bool, len(completedDates))
	for _, d := range completedDates {
		d = Day(d)
		if seen[d] || d.Before(start) || d.After(end) {
			continue
		}
		seen[d] = true
		completed++
	}

	rate := int(math.Round(float64(completed) / float64(expected) * 100))
	if rate > 100 {
		rate = 100
	}
	return rate
}

// CheckInStreak walks backward from today over the user's check-in dates.
// Offset 0 is today itself; the walk stops at the first missing day, so a
// check-in missed yesterday but present today yields 1, and no check-in
// today yields 0 regardless of older history.
func CheckInStreak(dates []time.Time, today time.Time) int {
	done := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		done[Day(d)] = true
	}

	today = Day(today)
	count := 0
	for i := 0; ; i++ {
		if !done[today.AddDate(0, 0, -i)] {
			break
		}
		count++
	}
	return count
}
