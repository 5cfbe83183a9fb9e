package utils

import (
	"fmt"
	"time"
)

// DateLayout is the date format used in files, flags and reports.
const DateLayout = time.DateOnly

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTimestamp formats t in UTC for report headers.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("02 Jan 2006, 15:04 UTC")
}

// IsBusinessDay reports whether t falls Monday to Friday. Holidays are not
// excluded: bond market history is simply forward filled across them.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// RollForward returns t, or the next business day if t is a weekend.
func RollForward(t time.Time) time.Time {
	for !IsBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// RollBack returns t, or the previous business day if t is a weekend.
func RollBack(t time.Time) time.Time {
	for !IsBusinessDay(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// BusinessDaysBetween counts business days in [start, end).
func BusinessDaysBetween(start, end time.Time) int {
	count := 0
	for d := Day(start); d.Before(Day(end)); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}
