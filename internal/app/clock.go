package app

import (
	"time"

	"planner/internal/domain"
)

// Clock supplies "now" and the location that defines calendar days.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock returns a Clock reading the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

// FixedClock returns a Clock frozen at t, in t's location.
func FixedClock(t time.Time) Clock {
	return Clock{Now: func() time.Time { return t }, Location: t.Location()}
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now().In(c.location())
	}
	return c.Now().In(c.location())
}

// Today returns the current day key.
func (c Clock) Today() string {
	return domain.FormatDay(c.now())
}

// CurrentWeekStart returns the Monday of the current week.
func (c Clock) CurrentWeekStart() string {
	return domain.WeekStart(c.now())
}
