package scenariodomain

import (
	"github.com/google/uuid"
)

// ScenarioInput holds the intervention parameters of one "what-if" run.
// Intensities are expected in the 0-100 range and may be fractional.
type ScenarioInput struct {
	Zone    string  `json:"zone"`
	Trees   float64 `json:"trees"`
	Traffic float64 `json:"traffic"`
	Waste   float64 `json:"waste"`
	Cooling float64 `json:"cooling"`

	// RequestID is an optional client key. A retried request carrying the
	// same key gets the stored answer instead of a second record. It is not
	// part of the fingerprint.
	RequestID string `json:"request_id,omitempty"`
}

// RoundedValues are the integer intervention values a fingerprint is built from.
type RoundedValues struct {
	Trees   int `json:"trees"`
	Traffic int `json:"traffic"`
	Waste   int `json:"waste"`
	Cooling int `json:"cooling"`
}

// ScenarioRecord is one registration attempt. Records are appended to a
// user's history and never mutated afterwards.
type ScenarioRecord struct {
	ID             uuid.UUID `json:"id"`
	Fingerprint    string    `json:"fingerprint"`
	Timestamp      int64     `json:"timestamp"` // unix milliseconds
	RewardEligible bool      `json:"reward_eligible"`
	Zone           string    `json:"zone"`
	RequestID      string    `json:"request_id,omitempty"`
	RoundedValues
}
