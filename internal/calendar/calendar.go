// Package calendar resolves the most recent valid US trading day.
// Pure computation: no network access, no hidden state.
package calendar

import (
	"time"

	"github.com/foliodash/folio/internal/common"
)

// DateFormat is the normalized trading-day format.
const DateFormat = "2006-01-02"

const (
	// DefaultMaxLookback caps the backward walk. The US market never closes
	// for more than a handful of consecutive days, so hitting the cap means
	// something is wrong with the inputs and the fallback date is safer than
	// walking further.
	DefaultMaxLookback = 15

	// DefaultFallbackDate is the last-known-good trading day returned when
	// the walk is exhausted.
	DefaultFallbackDate = "2025-06-27"
)

// Calendar resolves trading days under the US market calendar, with an
// injectable override table for known upstream data gaps.
type Calendar struct {
	overrides    map[string]string
	fallbackDate string
	maxLookback  int
}

// New creates a Calendar from configuration. Zero-valued fields get the
// package defaults.
func New(cfg common.CalendarConfig) *Calendar {
	c := &Calendar{
		overrides:    cfg.Overrides,
		fallbackDate: cfg.FallbackDate,
		maxLookback:  cfg.MaxLookback,
	}
	if c.fallbackDate == "" {
		c.fallbackDate = DefaultFallbackDate
	}
	if c.maxLookback <= 0 {
		c.maxLookback = DefaultMaxLookback
	}
	return c
}

// FallbackDate returns the configured last-known-good trading day.
func (c *Calendar) FallbackDate() string {
	return c.fallbackDate
}

// ResolveTradingDate walks backward from the day before ref until it finds a
// day that is neither a weekend nor a recognized holiday, normalized to
// YYYY-MM-DD. The walk is capped; on exhaustion the fallback date is
// returned. Never fails.
func (c *Calendar) ResolveTradingDate(ref time.Time) string {
	day := ref.AddDate(0, 0, -1)

	for i := 0; i < c.maxLookback; i++ {
		if IsTradingDay(day) {
			date := day.Format(DateFormat)
			if substitute, ok := c.overrides[date]; ok {
				return substitute
			}
			return date
		}
		day = day.AddDate(0, 0, -1)
	}

	return c.fallbackDate
}

// IsTradingDay reports whether the given day is a weekday that is not an
// observed US market holiday.
func IsTradingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !IsMarketHoliday(t)
}

// fixedHolidays are the fixed-date market holidays, observed on the nearest
// weekday when they fall on a weekend.
var fixedHolidays = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // New Year's Day
	{time.June, 19},     // Juneteenth
	{time.July, 4},      // Independence Day
	{time.November, 11}, // Veterans Day
	{time.December, 25}, // Christmas Day
}

// IsMarketHoliday reports whether the given day is a recognized US market
// holiday, including weekend-observed shifts for fixed-date holidays.
func IsMarketHoliday(t time.Time) bool {
	year, month, day := t.Date()

	// Floating holidays, computed by weekday arithmetic.
	switch month {
	case time.January:
		if day == nthWeekday(year, time.January, time.Monday, 3) {
			return true // MLK Day
		}
	case time.February:
		if day == nthWeekday(year, time.February, time.Monday, 3) {
			return true // Presidents Day
		}
	case time.May:
		if day == lastWeekday(year, time.May, time.Monday) {
			return true // Memorial Day
		}
	case time.September:
		if day == nthWeekday(year, time.September, time.Monday, 1) {
			return true // Labor Day
		}
	case time.October:
		if day == nthWeekday(year, time.October, time.Monday, 2) {
			return true // Columbus Day
		}
	case time.November:
		if day == nthWeekday(year, time.November, time.Thursday, 4) {
			return true // Thanksgiving
		}
	}

	// Fixed-date holidays, observed on the nearest weekday. Checking the
	// adjacent years covers a New Year's Day observed on December 31.
	for _, h := range fixedHolidays {
		for _, y := range []int{year - 1, year, year + 1} {
			obs := observedDate(time.Date(y, h.month, h.day, 0, 0, 0, 0, t.Location()))
			oy, om, od := obs.Date()
			if oy == year && om == month && od == day {
				return true
			}
		}
	}

	return false
}

// observedDate shifts a weekend holiday to its observed weekday:
// Saturday to the preceding Friday, Sunday to the following Monday.
func observedDate(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

// nthWeekday returns the day-of-month of the nth given weekday in a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return 1 + offset + (n-1)*7
}

// lastWeekday returns the day-of-month of the last given weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC) // last day of month
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.Day() - offset
}
