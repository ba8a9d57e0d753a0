package domain

import (
	"strings"
	"time"
)

// DayLayout is the calendar-date format used for every day key.
const DayLayout = "2006-01-02"

// FormatDay renders t's calendar date in its own location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay accepts "YYYY-MM-DD" or an RFC 3339 timestamp and returns the
// calendar date it names, normalised to midnight UTC. Timestamps are first
// converted into loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DayLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, InvalidArgument("invalid date %q (expected YYYY-MM-DD)", s)
	}
	if loc == nil {
		loc = time.UTC
	}
	ts = ts.In(loc)
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

// NormalizeDay parses s with ParseDay and formats it back as a day key.
func NormalizeDay(s string, loc *time.Location) (string, error) {
	d, err := ParseDay(s, loc)
	if err != nil {
		return "", err
	}
	return FormatDay(d), nil
}

// AddDays shifts a day key by n calendar days.
func AddDays(day string, n int) (string, error) {
	d, err := time.Parse(DayLayout, day)
	if err != nil {
		return "", InvalidArgument("invalid date %q (expected YYYY-MM-DD)", day)
	}
	return FormatDay(d.AddDate(0, 0, n)), nil
}

// DayRange returns every day key in [start, end], inclusive and ascending.
func DayRange(start, end string) ([]string, error) {
	s, err := time.Parse(DayLayout, start)
	if err != nil {
		return nil, InvalidArgument("invalid date %q (expected YYYY-MM-DD)", start)
	}
	e, err := time.Parse(DayLayout, end)
	if err != nil {
		return nil, InvalidArgument("invalid date %q (expected YYYY-MM-DD)", end)
	}
	var out []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, FormatDay(d))
	}
	return out, nil
}

// WeekStart returns the Monday of the ISO week containing day.
func WeekStart(day time.Time) string {
	offset := (int(day.Weekday()) + 6) % 7
	return FormatDay(day.AddDate(0, 0, -offset))
}
