package leaderboarddb

import (
	"context"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// Repository stores periodic leaderboard snapshots. Snapshots are history for
// charts; the live leaderboard is always recomputed from activity counters.
type Repository interface {
	// SaveSnapshot stores every entry under takenAt.
	SaveSnapshot(ctx context.Context, db bun.IDB, takenAt time.Time, entries []leaderboarddomain.LeaderboardEntry) error

	// RankHistory returns the user's most recent points, oldest first.
	RankHistory(ctx context.Context, db bun.IDB, userID string, limit int) ([]RankPoint, error)

	// PruneBefore deletes snapshots taken before cutoff.
	PruneBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int64, error)
}

// RankPoint is one user's standing in one snapshot.
type RankPoint struct {
	TakenAt    time.Time `json:"taken_at"`
	Rank       int       `json:"rank"`
	TotalScore int       `json:"total_score"`
}
