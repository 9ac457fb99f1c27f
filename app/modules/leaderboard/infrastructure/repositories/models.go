package leaderboarddb

import (
	"time"

	"github.com/uptrace/bun"
)

// Snapshot is one user's row in a leaderboard snapshot.
type Snapshot struct {
	bun.BaseModel `bun:"table:leaderboard_snapshots,alias:ls"`

	ID          int64     `bun:"id,pk,autoincrement"`
	TakenAt     time.Time `bun:"taken_at,notnull"`
	UserID      string    `bun:"user_id,notnull"`
	Rank        int       `bun:"rank,notnull"`
	TotalScore  int       `bun:"total_score,notnull"`
	Reports     int       `bun:"reports,notnull"`
	Community   int       `bun:"community,notnull"`
	Simulations int       `bun:"simulations,notnull"`
}
