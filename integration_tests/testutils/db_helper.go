package testutils

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	activitymigrations "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/repositories/migrations"
	leaderboardmigrations "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/repositories/migrations"
	scenariomigrations "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/repositories/migrations"
)

// appTables lists every table truncated between tests.
var appTables = []string{"scenario_histories", "activity_counted_events", "activity_days", "activity_counters", "leaderboard_snapshots"}

// RunMigrations applies the River schema and every module's migrations.
func RunMigrations(ctx context.Context, db *bun.DB, pgConnStr string) error {
	migrator := migrate.NewMigrator(db, scenariomigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	if err := runRiverMigrations(ctx, pgConnStr); err != nil {
		return err
	}

	orderedModules := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"scenario", scenariomigrations.Migrations},
		{"activity", activitymigrations.Migrations},
		{"leaderboard", leaderboardmigrations.Migrations},
	}
	for _, mod := range orderedModules {
		if err := runModuleMigrations(ctx, db, mod.migrations, mod.name); err != nil {
			return err
		}
	}
	log.Println("All migrations ran successfully")
	return nil
}

func runRiverMigrations(ctx context.Context, pgConnStr string) error {
	pool, err := pgxpool.New(ctx, pgConnStr)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

func runModuleMigrations(ctx context.Context, db *bun.DB, migrations *migrate.Migrations, name string) error {
	group, err := migrate.NewMigrator(db, migrations).Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run %s migrations: %w", name, err)
	}
	if group.IsZero() {
		log.Printf("No %s migrations to run", name)
	} else {
		log.Printf("Ran %s migrations group #%d", name, group.ID)
	}
	return nil
}

// CleanupDatabase truncates the application tables and the River job table.
func CleanupDatabase(ctx context.Context, db *bun.DB) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(appTables, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM river_job"); err != nil {
		return fmt.Errorf("failed to cleanup river jobs: %w", err)
	}
	return nil
}
