package activitydb

import (
	"context"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for activity counter persistence.
type Repository interface {
	// Increment adds by to counter for userID, creating the row on first use.
	Increment(ctx context.Context, db bun.IDB, userID string, counter activitydomain.Counter, by int) error

	// RecordActiveDay adds day (YYYY-MM-DD) to the user's active days and
	// reports whether it was new. Repeated calls for the same day are no-ops.
	RecordActiveDay(ctx context.Context, db bun.IDB, userID, day string) (bool, error)

	// MarkCounted claims an event key (a scenario record or report ID) for
	// userID and reports whether it was unclaimed. A key is claimed once.
	MarkCounted(ctx context.Context, db bun.IDB, userID, key string) (bool, error)

	// GetCounters returns the user's counters, or ErrNotFound.
	GetCounters(ctx context.Context, db bun.IDB, userID string) (*activitydomain.UserActivityCounters, error)

	// ListCounters returns every user's counters.
	ListCounters(ctx context.Context, db bun.IDB) ([]activitydomain.UserActivityCounters, error)
}
