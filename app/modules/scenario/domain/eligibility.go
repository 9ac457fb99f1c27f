package scenariodomain

import (
	"time"

	"github.com/google/uuid"
)

// User-facing registration messages, in priority order.
const (
	MessageDuplicate   = "This exact scenario was already simulated; no new impact to credit."
	MessageDailyLimit  = "Daily credit limit reached. You can keep simulating, but this run earns no credit."
	MessageNewScenario = "New scenario registered; credit available."
	MessageTryAgain    = "Something went wrong registering this scenario. Please try again."
)

// Assessment is the outcome of the duplicate and quota checks for one input.
type Assessment struct {
	Fingerprint    string
	Duplicate      bool
	DuplicateOf    *ScenarioRecord
	Quota          Quota
	RewardEligible bool
	Message        string
}

// Assess runs fingerprinting, duplicate detection and the daily quota check.
// It does not modify history.
func Assess(in ScenarioInput, history []ScenarioRecord, now time.Time) (Assessment, error) {
	fp, err := Fingerprint(in)
	if err != nil {
		return Assessment{}, err
	}

	a := Assessment{Fingerprint: fp}
	if prev, ok := FindDuplicate(fp, history); ok {
		a.Duplicate = true
		a.DuplicateOf = &prev
	}
	a.Quota = DailyQuota(history, now)
	a.RewardEligible = !a.Duplicate && !a.Quota.Exhausted
	a.Message = a.message()
	return a, nil
}

func (a Assessment) message() string {
	switch {
	case a.Duplicate:
		return MessageDuplicate
	case !a.RewardEligible:
		return MessageDailyLimit
	default:
		return MessageNewScenario
	}
}

// RemainingAfter is the quota left once this attempt has been recorded.
func (a Assessment) RemainingAfter() int {
	if a.RewardEligible {
		return a.Quota.Remaining - 1
	}
	return a.Quota.Remaining
}

// NewRecord builds the record persisted for this attempt.
func (a Assessment) NewRecord(in ScenarioInput, now time.Time) ScenarioRecord {
	return ScenarioRecord{
		ID:             uuid.New(),
		Fingerprint:    a.Fingerprint,
		Timestamp:      now.UnixMilli(),
		RewardEligible: a.RewardEligible,
		Zone:           trimZone(in.Zone),
		RequestID:      in.RequestID,
		RoundedValues:  in.Rounded(),
	}
}
