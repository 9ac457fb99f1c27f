package activitymigrations

import (
	"context"
	"fmt"

	activitydb "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating activity_counted_events table...")

		if _, err := db.NewCreateTable().Model((*activitydb.CountedEvent)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create activity_counted_events: %w", err)
		}
		if _, err := db.NewCreateIndex().
			Model((*activitydb.CountedEvent)(nil)).
			Index("idx_activity_counted_events_user").
			Column("user_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to index activity_counted_events: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping activity_counted_events table...")

		_, err := db.NewDropTable().Model((*activitydb.CountedEvent)(nil)).IfExists().Exec(ctx)
		return err
	})
}
