package scenariodomain

import "time"

// MaxRequestIDLength bounds client supplied request IDs.
const MaxRequestIDLength = 128

// FindRequest returns the index of the record stored for requestID.
func FindRequest(requestID string, history []ScenarioRecord) (int, bool) {
	if requestID == "" {
		return 0, false
	}
	for i, rec := range history {
		if rec.RequestID == requestID {
			return i, true
		}
	}
	return 0, false
}

// Replay rebuilds the assessment history[idx] received when it was stored.
// Quota reflects history as it is at now, the replayed record included.
func Replay(history []ScenarioRecord, idx int, now time.Time) Assessment {
	rec := history[idx]
	a := Assessment{
		Fingerprint:    rec.Fingerprint,
		Quota:          DailyQuota(history, now),
		RewardEligible: rec.RewardEligible,
	}
	if prev, ok := FindDuplicate(rec.Fingerprint, history[:idx]); ok {
		a.Duplicate = true
		a.DuplicateOf = &prev
	}
	a.Message = a.message()
	return a
}
