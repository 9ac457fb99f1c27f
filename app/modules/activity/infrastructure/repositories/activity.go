package activitydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new Postgres-backed activity repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) Increment(ctx context.Context, db bun.IDB, userID string, counter activitydomain.Counter, by int) error {
	if !counter.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCounter, counter)
	}
	db = r.resolveDB(db)

	row := &UserActivity{UserID: userID, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	row.apply(counter, by)

	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("? = ac.? + EXCLUDED.?", bun.Ident(string(counter)), bun.Ident(string(counter)), bun.Ident(string(counter))).
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", counter, err)
	}
	return nil
}

func (u *UserActivity) apply(counter activitydomain.Counter, by int) {
	switch counter {
	case activitydomain.CounterSimulations:
		u.SimulationsRun += by
	case activitydomain.CounterReports:
		u.ReportsGenerated += by
	case activitydomain.CounterCommunity:
		u.CommunityActions += by
	}
}

func (r *Impl) RecordActiveDay(ctx context.Context, db bun.IDB, userID, day string) (bool, error) {
	db = r.resolveDB(db)

	// The counters row must exist for ListCounters to see the user.
	_, err := db.NewInsert().
		Model(&UserActivity{UserID: userID}).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to ensure activity row: %w", err)
	}

	res, err := db.NewInsert().
		Model(&ActiveDay{UserID: userID, Day: day}).
		On("CONFLICT (user_id, day) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to record active day: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record active day: %w", err)
	}
	return n > 0, nil
}

func (r *Impl) MarkCounted(ctx context.Context, db bun.IDB, userID, key string) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewInsert().
		Model(&CountedEvent{EventKey: key, UserID: userID, CreatedAt: time.Now().UTC()}).
		On("CONFLICT (event_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to mark event counted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark event counted: %w", err)
	}
	return n > 0, nil
}

func (r *Impl) GetCounters(ctx context.Context, db bun.IDB, userID string) (*activitydomain.UserActivityCounters, error) {
	db = r.resolveDB(db)
	row := new(UserActivity)
	err := db.NewSelect().
		Model(row).
		Relation("ActiveDays").
		Where("ac.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity counters: %w", err)
	}
	out := row.ToDomain()
	return &out, nil
}

func (r *Impl) ListCounters(ctx context.Context, db bun.IDB) ([]activitydomain.UserActivityCounters, error) {
	db = r.resolveDB(db)
	var rows []*UserActivity
	err := db.NewSelect().
		Model(&rows).
		Relation("ActiveDays").
		Order("ac.created_at ASC", "ac.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity counters: %w", err)
	}

	out := make([]activitydomain.UserActivityCounters, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}
