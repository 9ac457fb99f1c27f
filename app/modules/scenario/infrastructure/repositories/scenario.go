package scenariodb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	scenariodomain "github.com/Black-And-White-Club/envsim/app/modules/scenario/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new Postgres-backed scenario repository.
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

// LoadHistory reads the user's history. Inside a transaction the row is locked
// so concurrent registrations for the same user queue behind each other.
func (r *Impl) LoadHistory(ctx context.Context, db bun.IDB, userID string) (*History, error) {
	db = r.resolveDB(db)
	h := new(History)
	q := db.NewSelect().
		Model(h).
		Where("user_id = ?", userID)
	if _, inTx := db.(bun.Tx); inTx {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("load", err)
	}
	return h, nil
}

// SaveHistory writes the history with an optimistic version check.
func (r *Impl) SaveHistory(ctx context.Context, db bun.IDB, history *History, expectedVersion int64) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	next := expectedVersion + 1

	var (
		res sql.Result
		err error
	)
	if history.Records == nil {
		history.Records = []scenariodomain.ScenarioRecord{}
	}

	if expectedVersion == 0 {
		row := &History{
			UserID:    history.UserID,
			Records:   history.Records,
			Version:   next,
			CreatedAt: now,
			UpdatedAt: now,
		}
		res, err = db.NewInsert().
			Model(row).
			On("CONFLICT (user_id) DO NOTHING").
			Exec(ctx)
	} else {
		payload, mErr := json.Marshal(history.Records)
		if mErr != nil {
			return storageErr("encode", mErr)
		}
		res, err = db.NewUpdate().
			Model((*History)(nil)).
			Set("records = ?::jsonb", string(payload)).
			Set("version = ?", next).
			Set("updated_at = ?", now).
			Where("user_id = ?", history.UserID).
			Where("version = ?", expectedVersion).
			Exec(ctx)
	}
	if err != nil {
		return storageErr("save", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return storageErr("save", err)
	}
	if rows == 0 {
		return ErrVersionConflict
	}

	history.Version = next
	history.UpdatedAt = now
	return nil
}

// ClearHistory deletes the user's history row.
func (r *Impl) ClearHistory(ctx context.Context, db bun.IDB, userID string) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*History)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return storageErr("clear", err)
	}
	return nil
}
