package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/Black-And-White-Club/envsim/integration_tests/containers"
)

// TestEnvironment holds the containers and connections shared by the
// integration tests of one package.
type TestEnvironment struct {
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	DSN           string
	NatsURL       string
}

var (
	sharedOnce sync.Once
	shared     *TestEnvironment
	sharedErr  error
)

// GetTestEnv returns the package-wide environment with empty tables, starting
// the containers on first use. It skips the test in -short mode or when no
// container runtime is available.
func GetTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		shared, sharedErr = NewTestEnvironment(ctx)
	})
	require.NoError(t, sharedErr)
	require.NoError(t, CleanupDatabase(t.Context(), shared.DB))
	return shared
}

// Shutdown terminates the shared environment. Call it from TestMain.
func Shutdown() {
	if shared == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	shared.Terminate(ctx)
}

// NewTestEnvironment starts Postgres and NATS and migrates the schema.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env := &TestEnvironment{PgContainer: pgContainer, DSN: dsn}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	env.DB = bun.NewDB(pgdb, pgdialect.New())
	if err := RunMigrations(ctx, env.DB, dsn); err != nil {
		env.Terminate(ctx)
		return nil, err
	}

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer
	env.NatsURL = natsURL

	return env, nil
}

// Terminate closes the database and stops the containers.
func (env *TestEnvironment) Terminate(ctx context.Context) {
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(ctx)
	}
}
