package activityservice

import (
	"context"
	"time"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
)

// Service defines the contract for activity tracking operations.
type Service interface {
	IncrementSimulations(ctx context.Context, userID string) error
	IncrementReports(ctx context.Context, userID string) error
	IncrementCommunity(ctx context.Context, userID string) error

	// RecordActiveDay marks the calendar day containing at, in the service's
	// location, as active for userID. Idempotent per day.
	RecordActiveDay(ctx context.Context, userID string, at time.Time) error

	// RecordScenarioRun applies a scenario registration: the day becomes
	// active, and the simulation counter grows when the run earned credit.
	// A recordID already applied is ignored.
	RecordScenarioRun(ctx context.Context, userID, recordID string, rewardEligible bool, at time.Time) error

	// RecordReport and RecordCommunityAction mark the day active and grow the
	// matching counter in one transaction. A reportID already counted only
	// marks the day.
	RecordReport(ctx context.Context, userID, reportID string, at time.Time) error
	RecordCommunityAction(ctx context.Context, userID string, at time.Time) error

	// GetCounters returns the user's counters; a user with no activity gets
	// zero counters.
	GetCounters(ctx context.Context, userID string) (activitydomain.UserActivityCounters, error)

	ListCounters(ctx context.Context) ([]activitydomain.UserActivityCounters, error)
}
