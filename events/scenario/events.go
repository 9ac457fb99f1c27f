// Package scenarioevents defines the scenario module's event topics and payloads.
package scenarioevents

import "time"

// Topics.
const (
	// ScenarioRegistrationRequestedV1 asks the scenario module to register a run.
	ScenarioRegistrationRequestedV1 = "scenario.registration.requested.v1"

	// ScenarioRegisteredV1 is published after every persisted registration,
	// credited or not.
	ScenarioRegisteredV1 = "scenario.registered.v1"

	// ScenarioRegistrationFailedV1 is published when a requested registration
	// could not be completed.
	ScenarioRegistrationFailedV1 = "scenario.registration.failed.v1"
)

// ScenarioRegistrationRequestedPayloadV1 carries one simulation run.
type ScenarioRegistrationRequestedPayloadV1 struct {
	UserID  string  `json:"user_id"`
	Zone    string  `json:"zone"`
	Trees   float64 `json:"trees"`
	Traffic float64 `json:"traffic"`
	Waste   float64 `json:"waste"`
	Cooling float64 `json:"cooling"`

	// RequestID makes redelivered requests idempotent.
	RequestID string `json:"request_id,omitempty"`
}

// ScenarioRegisteredPayloadV1 describes the decision taken for a run.
type ScenarioRegisteredPayloadV1 struct {
	UserID         string    `json:"user_id"`
	RecordID       string    `json:"record_id"`
	RequestID      string    `json:"request_id,omitempty"`
	Fingerprint    string    `json:"fingerprint"`
	Zone           string    `json:"zone"`
	Duplicate      bool      `json:"is_duplicate"`
	RewardEligible bool      `json:"reward_eligible"`
	RemainingToday int       `json:"remaining_today"`
	Message        string    `json:"message"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// ScenarioRegistrationFailedPayloadV1 reports why a run was not registered.
type ScenarioRegistrationFailedPayloadV1 struct {
	UserID  string `json:"user_id"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}
