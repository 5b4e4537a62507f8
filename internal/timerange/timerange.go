// Package timerange resolves a view mode and a reference time into the
// concrete date interval a wallpaper visualizes.
//
// All arithmetic happens on calendar days in a fixed UTC+5:30 offset, the
// zone the original wallpaper audience lives in. A [Range] carries the
// inclusive start/end days plus the derived elapsed/total counts used by the
// grid and the progress bar.
package timerange

import (
	"fmt"
	"time"
)

// Zone is the fixed offset all date math is evaluated in (UTC+5:30).
// Using a fixed zone keeps renders deterministic regardless of the
// server's local timezone or DST rules.
var Zone = time.FixedZone("IST", 5*3600+30*60)

// ///////////////////////////////////////////////
// Mode
// ///////////////////////////////////////////////

// Mode selects the granularity of the visualized period.
type Mode int

const (
	ModeYear Mode = iota
	ModeQuarter
	ModeMonth
	ModeFortnight
	ModeSegregatedMonths
)

// ParseMode converts a query-string mode value to a Mode.
// Unrecognized strings fall back to ModeYear.
func ParseMode(s string) Mode {
	switch s {
	case "quarter":
		return ModeQuarter
	case "month":
		return ModeMonth
	case "fortnight":
		return ModeFortnight
	case "segregated_months":
		return ModeSegregatedMonths
	default:
		return ModeYear
	}
}

// String returns the query-string form of the mode.
func (m Mode) String() string {
	switch m {
	case ModeQuarter:
		return "quarter"
	case ModeMonth:
		return "month"
	case ModeFortnight:
		return "fortnight"
	case ModeSegregatedMonths:
		return "segregated_months"
	default:
		return "year"
	}
}

// ///////////////////////////////////////////////
// Range
// ///////////////////////////////////////////////

// Range is the resolved date interval for one render call.
// Start and End are inclusive midnights in [Zone].
type Range struct {
	Start time.Time
	End   time.Time

	// TotalDays is the inclusive day count: daysBetween(Start, End) + 1.
	TotalDays int
	// ElapsedDays counts days from Start through today, clamped to
	// [0, TotalDays]. Today counts as elapsed.
	ElapsedDays int

	// Label is the short period name used in the bottom text
	// ("year", "Q3", "Sep", "period").
	Label string
}

// DaysLeft returns the remaining day count, floored at zero.
func (r Range) DaysLeft() int {
	if left := r.TotalDays - r.ElapsedDays; left > 0 {
		return left
	}
	return 0
}

// Ratio returns the elapsed fraction of the range, clamped to [0, 1].
// A zero-length range yields 0.
func (r Range) Ratio() float64 {
	if r.TotalDays <= 0 {
		return 0
	}
	ratio := float64(r.ElapsedDays) / float64(r.TotalDays)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// ///////////////////////////////////////////////
// Resolution
// ///////////////////////////////////////////////

// Resolve maps a mode and reference time to its Range. The reference time is
// converted to [Zone] before any calendar math.
//
// ModeSegregatedMonths resolves to the full year; the per-month sub-ranges
// are produced separately via [MonthOf].
func Resolve(mode Mode, now time.Time) Range {
	now = now.In(Zone)
	today := Midnight(now)
	year := now.Year()

	var start, end time.Time
	var label string

	switch mode {
	case ModeMonth:
		start = time.Date(year, now.Month(), 1, 0, 0, 0, 0, Zone)
		end = start.AddDate(0, 1, -1)
		label = now.Format("Jan")
	case ModeQuarter:
		q := (int(now.Month())-1)/3 + 1
		firstMonth := time.Month((q-1)*3 + 1)
		start = time.Date(year, firstMonth, 1, 0, 0, 0, 0, Zone)
		end = start.AddDate(0, 3, -1)
		label = fmt.Sprintf("Q%d", q)
	case ModeFortnight:
		// Absolute date arithmetic: the window may legitimately span a
		// year boundary, unlike the year-scoped modes.
		start = today.AddDate(0, 0, -mondayOffset(today))
		end = start.AddDate(0, 0, 13)
		label = "period"
	default: // ModeYear, ModeSegregatedMonths
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, Zone)
		end = time.Date(year, time.December, 31, 0, 0, 0, 0, Zone)
		label = "year"
	}

	return build(start, end, today, label)
}

// MonthOf returns the Range for a single month of the given year, used by the
// segregated-months view. The elapsed count is clamped against the same
// reference time as the parent render.
func MonthOf(year int, month time.Month, now time.Time) Range {
	today := Midnight(now.In(Zone))
	start := time.Date(year, month, 1, 0, 0, 0, 0, Zone)
	end := start.AddDate(0, 1, -1)
	return build(start, end, today, start.Format("Jan"))
}

// build assembles a Range from resolved bounds, clamping elapsed days.
func build(start, end, today time.Time, label string) Range {
	total := daysBetween(start, end) + 1
	elapsed := daysBetween(start, today) + 1
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > total {
		elapsed = total
	}
	return Range{
		Start:       start,
		End:         end,
		TotalDays:   total,
		ElapsedDays: elapsed,
		Label:       label,
	}
}

// ///////////////////////////////////////////////
// Day Helpers
// ///////////////////////////////////////////////

// Midnight truncates t to the start of its calendar day, preserving location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween returns the whole-day distance from a to b. Both are expected
// to be midnights in the same fixed zone, so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// mondayOffset returns how many days t is past the most recent Monday
// (Monday=0 ... Sunday=6).
func mondayOffset(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 { // time.Sunday
		return 6
	}
	return wd - 1
}
