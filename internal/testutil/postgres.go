// Package testutil holds test infrastructure shared by integration tests:
// a pgvector Postgres container with the production schema, and Genkit
// setup for tests that embed real text.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/askdocs/askdocs/db"
)

// TestDBContainer is an isolated Postgres with pgvector, migrated to the
// current schema and ready to query.
type TestDBContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a pgvector/pgvector:pg16 container and applies the
// embedded migrations, the same path production takes at startup. The
// returned cleanup closes the pool and terminates the container.
func SetupTestDB(t *testing.T) (*TestDBContainer, func()) {
	t.Helper()

	ctx := context.Background()

	pgc, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("askdocs_test"),
		postgres.WithUsername("askdocs_test"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	fail := func(format string, args ...any) {
		_ = pgc.Terminate(ctx)
		t.Fatalf(format, args...)
	}

	connStr, err := pgc.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fail("container connection string: %v", err)
	}

	if err := db.Migrate(connStr); err != nil {
		fail("apply migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		fail("create pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		fail("ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		_ = pgc.Terminate(context.Background())
	}
	return &TestDBContainer{Container: pgc, Pool: pool, ConnStr: connStr}, cleanup
}
