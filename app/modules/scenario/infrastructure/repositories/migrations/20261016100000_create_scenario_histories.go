package scenariomigrations

import (
	"context"
	"fmt"

	scenariodb "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scenario_histories table...")

		if _, err := db.NewCreateTable().Model((*scenariodb.History)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create scenario_histories: %w", err)
		}

		// Fingerprint lookups for audit queries across users.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_scenario_histories_records ON scenario_histories USING GIN (records jsonb_path_ops)").Exec(ctx); err != nil {
			return fmt.Errorf("failed to create records index: %w", err)
		}

		fmt.Println("scenario_histories table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scenario_histories table...")

		if _, err := db.NewDropTable().Model((*scenariodb.History)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
