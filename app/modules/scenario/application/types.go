package scenarioservice

import (
	"errors"

	scenariodomain "github.com/Black-And-White-Club/envsim/app/modules/scenario/domain"
)

// ErrConcurrentRegistration is returned when the history kept changing under
// a registration for every attempt.
var ErrConcurrentRegistration = errors.New("concurrent registration for user, try again")

// RegistrationResult is the decision bundle returned to callers of Register.
type RegistrationResult struct {
	Duplicate      bool   `json:"is_duplicate"`
	RewardEligible bool   `json:"reward_eligible"`
	RemainingToday int    `json:"remaining_today"`
	Message        string `json:"message"`
	Fingerprint    string `json:"fingerprint"`

	// Replayed is set when the request ID matched an earlier registration and
	// the stored decision was returned.
	Replayed bool `json:"replayed,omitempty"`

	// DuplicateOfTimestamp is the unix-ms timestamp of the earlier record with
	// the same fingerprint, when Duplicate is set.
	DuplicateOfTimestamp *int64                         `json:"duplicate_of_timestamp,omitempty"`
	Record               *scenariodomain.ScenarioRecord `json:"record,omitempty"`
}

// EligibilityResult is the read-only pre-flight answer.
type EligibilityResult struct {
	CreditEligible bool   `json:"credit_eligible"`
	IsDuplicate    bool   `json:"is_duplicate"`
	RemainingToday int    `json:"remaining_today"`
	Fingerprint    string `json:"fingerprint"`
	Message        string `json:"message"`
}

// FailedRegistration is the safe default reported when a registration could
// not be completed. It never claims credit.
func FailedRegistration() RegistrationResult {
	return RegistrationResult{
		RewardEligible: false,
		Message:        scenariodomain.MessageTryAgain,
	}
}

func registrationFromAssessment(a scenariodomain.Assessment, rec scenariodomain.ScenarioRecord) RegistrationResult {
	res := RegistrationResult{
		Duplicate:      a.Duplicate,
		RewardEligible: a.RewardEligible,
		RemainingToday: a.RemainingAfter(),
		Message:        a.Message,
		Fingerprint:    a.Fingerprint,
		Record:         &rec,
	}
	if a.DuplicateOf != nil {
		ts := a.DuplicateOf.Timestamp
		res.DuplicateOfTimestamp = &ts
	}
	return res
}
