package activitymigrations

import (
	"context"
	"fmt"

	activitydb "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating activity tables...")

		if _, err := db.NewCreateTable().Model((*activitydb.UserActivity)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create activity_counters: %w", err)
		}

		if _, err := db.NewCreateTable().
			Model((*activitydb.ActiveDay)(nil)).
			IfNotExists().
			ForeignKey(`("user_id") REFERENCES "activity_counters" ("user_id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create activity_days: %w", err)
		}

		fmt.Println("Activity tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping activity tables...")

		for _, model := range []any{(*activitydb.ActiveDay)(nil), (*activitydb.UserActivity)(nil)} {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
