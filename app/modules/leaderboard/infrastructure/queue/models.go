package leaderboardqueue

// SnapshotJob stores the current leaderboard ranking.
type SnapshotJob struct{}

// Kind returns the job type identifier for River
func (SnapshotJob) Kind() string { return "leaderboard_snapshot" }

// PruneJob removes snapshots older than the retention window.
type PruneJob struct {
	RetentionDays int `json:"retention_days"`
}

// Kind returns the job type identifier for River
func (PruneJob) Kind() string { return "leaderboard_snapshot_prune" }
