// Package timeutil provides UTC time helpers for Plat Pursuit.
// PSN timestamps arrive in UTC and all milestone windows (calendar-month
// challenges, account age) are computed against UTC boundaries.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a UTC time with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the start of the day (00:00:00) in UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in UTC.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}

// StartOfMonth returns the first instant of the month containing t.
// Used for calendar-month milestone windows (e.g. monthly_platinum).
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last instant of the month containing t.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// MonthKey returns the month of t in "2006-01" form.
// Used as the scope suffix for monthly milestone cache keys.
func MonthKey(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%04d-%02d", u.Year(), int(u.Month()))
}

// SameDay returns true if both times fall on the same UTC day.
func SameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.YearDay() == bu.YearDay()
}

// DaysBetween returns the number of whole UTC days between two times.
// The result is non-negative regardless of argument order.
func DaysBetween(a, b time.Time) int {
	as := StartOfDay(a)
	bs := StartOfDay(b)
	if as.After(bs) {
		as, bs = bs, as
	}
	return int(bs.Sub(as).Hours() / 24)
}

// DaysSince returns the number of whole UTC days elapsed since t.
func DaysSince(t time.Time) int {
	return DaysBetween(t, Now())
}

// FormatDate formats a time as "2006-01-02" in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatDateTime formats a time as RFC3339 in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseDate parses a "2006-01-02" date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
