package domain

import "time"

// Window is a report time window. End is inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// WeekStart returns the start of the rolling weekly window: now minus
// seven days, truncated to the start of that day in local time.
func WeekStart(now time.Time) time.Time {
	t := now.AddDate(0, 0, -7)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// LastWeek returns the trailing seven-day window ending at now.
func LastWeek(now time.Time) Window {
	return Window{Start: WeekStart(now), End: now}
}

// InRange reports whether t falls in [start, end], inclusive on both
// ends. Used by the bounded-range report.
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// SinceStart reports whether t falls strictly after start. Used by the
// rolling weekly report, which is open-ended toward "now".
func SinceStart(t, start time.Time) bool {
	return t.After(start)
}

// Contains reports whether t falls inside the window, inclusive.
func (w Window) Contains(t time.Time) bool {
	return InRange(t, w.Start, w.End)
}
