package clock

import "time"

// DayKeyLayout is the YYYY-MM-DD format used for active-day keys.
const DayKeyLayout = "2006-01-02"

// StartOfDay returns 00:00:00.000 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
// Computed from the next midnight so DST transitions stay correct.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
	return next.Add(-time.Millisecond)
}

// InDay reports whether the unix-millisecond timestamp ms falls inside the
// closed interval [StartOfDay(now), EndOfDay(now)].
func InDay(ms int64, now time.Time) bool {
	start := StartOfDay(now).UnixMilli()
	end := EndOfDay(now).UnixMilli()
	return ms >= start && ms <= end
}

// DayKey formats t's calendar day as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}
