package clock

import "time"

// Clock abstracts wall-clock time so calendar-day logic can be tested.
type Clock interface {
	Now() time.Time
}

// LocalClock returns the current time in a fixed location. All quota windows
// and active-day keys are computed from the location of the time it returns.
type LocalClock struct {
	loc *time.Location
}

// NewLocalClock creates a LocalClock. A nil location means time.Local.
func NewLocalClock(loc *time.Location) LocalClock {
	if loc == nil {
		loc = time.Local
	}
	return LocalClock{loc: loc}
}

func (c LocalClock) Now() time.Time { return time.Now().In(c.loc) }

// Location returns the clock's wall-clock location.
func (c LocalClock) Location() *time.Location { return c.loc }

// AnchorClock always returns the same instant. Useful for replaying requests
// deterministically after queue delay.
type AnchorClock struct {
	anchor time.Time
}

// NewAnchorClock creates a new AnchorClock. If t is the zero value, the current
// real time is used.
func NewAnchorClock(t time.Time) AnchorClock {
	if t.IsZero() {
		return AnchorClock{anchor: time.Now()}
	}
	return AnchorClock{anchor: t}
}

func (c AnchorClock) Now() time.Time { return c.anchor }

// FakeClock is a settable clock for tests.
type FakeClock struct {
	NowFn func() time.Time
}

func (f *FakeClock) Now() time.Time {
	if f.NowFn != nil {
		return f.NowFn()
	}
	return time.Now()
}
