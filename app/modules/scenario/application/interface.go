package scenarioservice

import (
	"context"
	"time"

	scenariodomain "github.com/Black-And-White-Club/envsim/app/modules/scenario/domain"
)

// Service defines the contract for scenario registration operations.
type Service interface {
	// Register records one scenario attempt and decides reward eligibility.
	// On any error the returned result is the safe default: not eligible,
	// with a generic retry message.
	Register(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (RegistrationResult, error)

	// CheckEligibility runs the duplicate and quota checks without recording
	// anything. Used for pre-flight feedback.
	CheckEligibility(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (EligibilityResult, error)

	// GetHistory returns the user's records registered at or after since.
	// A zero since returns the whole history.
	GetHistory(ctx context.Context, userID string, since time.Time) ([]scenariodomain.ScenarioRecord, error)

	// ClearHistory wipes the user's history. Test/reset utility.
	ClearHistory(ctx context.Context, userID string) error
}
