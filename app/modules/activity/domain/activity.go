package activitydomain

import (
	"sort"
	"time"
)

// Counter names one of the per-user activity tallies.
type Counter string

const (
	CounterSimulations Counter = "simulations_run"
	CounterReports     Counter = "reports_generated"
	CounterCommunity   Counter = "community_actions"
)

// Valid reports whether c is a known counter.
func (c Counter) Valid() bool {
	switch c {
	case CounterSimulations, CounterReports, CounterCommunity:
		return true
	}
	return false
}

// UserActivityCounters tracks what a user has done. Counters only grow;
// ActiveDays is a set of YYYY-MM-DD keys kept sorted.
type UserActivityCounters struct {
	UserID           string    `json:"user_id"`
	SimulationsRun   int       `json:"simulations_run"`
	ReportsGenerated int       `json:"reports_generated"`
	CommunityActions int       `json:"community_actions"`
	ActiveDays       []string  `json:"active_days"`
	CreatedAt        time.Time `json:"created_at"`
}

// AddActiveDay inserts day into ActiveDays and reports whether it was new.
// Adding an existing day is a no-op.
func (c *UserActivityCounters) AddActiveDay(day string) bool {
	i := sort.SearchStrings(c.ActiveDays, day)
	if i < len(c.ActiveDays) && c.ActiveDays[i] == day {
		return false
	}
	c.ActiveDays = append(c.ActiveDays, "")
	copy(c.ActiveDays[i+1:], c.ActiveDays[i:])
	c.ActiveDays[i] = day
	return true
}

// Increment adds by to the named counter. Unknown counters are ignored.
func (c *UserActivityCounters) Increment(counter Counter, by int) {
	switch counter {
	case CounterSimulations:
		c.SimulationsRun += by
	case CounterReports:
		c.ReportsGenerated += by
	case CounterCommunity:
		c.CommunityActions += by
	}
}

// Clone returns a deep copy.
func (c UserActivityCounters) Clone() UserActivityCounters {
	c.ActiveDays = append([]string(nil), c.ActiveDays...)
	return c
}
