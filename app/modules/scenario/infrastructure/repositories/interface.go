package scenariodb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for per-user scenario history persistence.
//
// Every method takes an explicit bun.IDB so callers can run several calls in
// one transaction. Implementations fall back to their own handle when db is nil.
type Repository interface {
	// LoadHistory returns the user's history, or ErrNotFound when the user has
	// never registered a scenario.
	LoadHistory(ctx context.Context, db bun.IDB, userID string) (*History, error)

	// SaveHistory replaces the stored history if its version still equals
	// expectedVersion (0 for a user with no stored history). On success the
	// history's Version is advanced. A stale version yields ErrVersionConflict.
	SaveHistory(ctx context.Context, db bun.IDB, history *History, expectedVersion int64) error

	// ClearHistory removes all records for the user.
	ClearHistory(ctx context.Context, db bun.IDB, userID string) error
}
