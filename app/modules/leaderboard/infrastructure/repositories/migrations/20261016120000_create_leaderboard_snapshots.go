package leaderboardmigrations

import (
	"context"
	"fmt"

	leaderboarddb "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating leaderboard_snapshots table...")

		if _, err := db.NewCreateTable().Model((*leaderboarddb.Snapshot)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create leaderboard_snapshots: %w", err)
		}

		if _, err := db.NewCreateIndex().
			Model((*leaderboarddb.Snapshot)(nil)).
			Index("idx_leaderboard_snapshots_user_taken").
			Column("user_id", "taken_at").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create snapshot index: %w", err)
		}

		fmt.Println("leaderboard_snapshots table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping leaderboard_snapshots table...")
		_, err := db.NewDropTable().Model((*leaderboarddb.Snapshot)(nil)).IfExists().Exec(ctx)
		return err
	})
}
