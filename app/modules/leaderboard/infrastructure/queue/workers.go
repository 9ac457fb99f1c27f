package leaderboardqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"github.com/riverqueue/river"
)

// Snapshotter stores a leaderboard snapshot.
type Snapshotter interface {
	TakeSnapshot(ctx context.Context) (int, error)
}

// Pruner removes old snapshots.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SnapshotWorker runs SnapshotJob.
type SnapshotWorker struct {
	river.WorkerDefaults[SnapshotJob]
	snapshotter Snapshotter
	logger      *slog.Logger
}

// NewSnapshotWorker creates a SnapshotWorker.
func NewSnapshotWorker(logger *slog.Logger, snapshotter Snapshotter) *SnapshotWorker {
	return &SnapshotWorker{snapshotter: snapshotter, logger: logger}
}

func (w *SnapshotWorker) Work(ctx context.Context, job *river.Job[SnapshotJob]) error {
	n, err := w.snapshotter.TakeSnapshot(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Leaderboard snapshot job failed",
			attr.Int("attempt", job.Attempt),
			attr.Error(err),
		)
		return fmt.Errorf("take snapshot: %w", err)
	}
	w.logger.InfoContext(ctx, "Leaderboard snapshot job completed", attr.Int("entries", n))
	return nil
}

// PruneWorker runs PruneJob.
type PruneWorker struct {
	river.WorkerDefaults[PruneJob]
	pruner Pruner
	logger *slog.Logger
	now    func() time.Time
}

// NewPruneWorker creates a PruneWorker.
func NewPruneWorker(logger *slog.Logger, pruner Pruner) *PruneWorker {
	return &PruneWorker{pruner: pruner, logger: logger, now: time.Now}
}

func (w *PruneWorker) Work(ctx context.Context, job *river.Job[PruneJob]) error {
	if job.Args.RetentionDays <= 0 {
		return nil
	}
	cutoff := w.now().AddDate(0, 0, -job.Args.RetentionDays)
	n, err := w.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	w.logger.InfoContext(ctx, "Pruned leaderboard snapshots",
		attr.Time("cutoff", cutoff),
		attr.Any("deleted", n),
	)
	return nil
}
