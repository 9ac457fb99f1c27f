package scenariodomain

import (
	"time"

	"github.com/Black-And-White-Club/envsim/app/shared/clock"
)

// DailyRewardCap is the number of reward-eligible registrations a user may
// earn per local calendar day.
const DailyRewardCap = 3

// Quota describes the state of a user's daily reward window.
type Quota struct {
	Exhausted bool `json:"exhausted"`
	Remaining int  `json:"remaining"`
	UsedToday int  `json:"used_today"`
}

// DailyQuota counts reward-eligible records registered during now's calendar
// day. The window is the wall-clock day in now.Location(), so crossing
// midnight resets the quota regardless of how recent the last reward was.
func DailyQuota(history []ScenarioRecord, now time.Time) Quota {
	used := 0
	for _, rec := range history {
		if rec.RewardEligible && clock.InDay(rec.Timestamp, now) {
			used++
		}
	}

	remaining := DailyRewardCap - used
	if remaining < 0 {
		remaining = 0
	}

	return Quota{
		Exhausted: remaining == 0,
		Remaining: remaining,
		UsedToday: used,
	}
}
