package leaderboarddb

import (
	"context"
	"fmt"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new Postgres-backed snapshot repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) SaveSnapshot(ctx context.Context, db bun.IDB, takenAt time.Time, entries []leaderboarddomain.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}
	db = r.resolveDB(db)

	rows := toRows(takenAt, entries)
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to save leaderboard snapshot: %w", err)
	}
	return nil
}

func (r *Impl) RankHistory(ctx context.Context, db bun.IDB, userID string, limit int) ([]RankPoint, error) {
	db = r.resolveDB(db)

	var rows []Snapshot
	q := db.NewSelect().
		Model(&rows).
		Where("ls.user_id = ?", userID).
		Order("ls.taken_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load rank history: %w", err)
	}

	points := make([]RankPoint, len(rows))
	for i, row := range rows {
		points[len(rows)-1-i] = RankPoint{TakenAt: row.TakenAt, Rank: row.Rank, TotalScore: row.TotalScore}
	}
	return points, nil
}

func (r *Impl) PruneBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int64, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Snapshot)(nil)).
		Where("taken_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune leaderboard snapshots: %w", err)
	}
	return res.RowsAffected()
}

func toRows(takenAt time.Time, entries []leaderboarddomain.LeaderboardEntry) []Snapshot {
	rows := make([]Snapshot, len(entries))
	for i, e := range entries {
		rows[i] = Snapshot{
			TakenAt:     takenAt.UTC(),
			UserID:      e.UserID,
			Rank:        e.Rank,
			TotalScore:  e.TotalScore,
			Reports:     e.RawCounts.Reports,
			Community:   e.RawCounts.Community,
			Simulations: e.RawCounts.Simulations,
		}
	}
	return rows
}
