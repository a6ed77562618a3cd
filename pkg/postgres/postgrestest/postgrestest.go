// Package postgrestest starts a throwaway Postgres container with the
// schema applied, for repository integration tests.
package postgrestest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dwikikusuma/nomino/pkg/postgres"
)

const (
	image    = "postgres:16-alpine"
	dbName   = "nomino_test"
	user     = "nomino"
	password = "nomino"
)

// Start returns a pool connected to a migrated database. The container is
// terminated when the test finishes. Skipped in -short mode.
func Start(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx,
		image,
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername(user),
		tcpostgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := ctr.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := postgres.Config{
		Host:    host,
		Port:    port.Int(),
		User:    user,
		Pass:    password,
		DB:      dbName,
		SSLMode: "disable",
	}
	require.NoError(t, postgres.Migrate(cfg))

	pool, err := postgres.Open(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}
