// Package pgtest hands integration tests a PostgreSQL server to talk
// to. Tests point it at an existing server through PGDB2_TEST_CONN;
// without that it starts one shared throwaway container for the whole
// test process.
package pgtest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// ConnEnv names the variable that points tests at an existing server
// instead of a container.
const ConnEnv = "PGDB2_TEST_CONN"

var (
	connOnce sync.Once
	connStr  string
	connErr  error
)

// ConnString returns a connection URL for the shared test server,
// starting its container on first use. The container is cleaned up by
// the testcontainers reaper when the test process exits. Tests are
// skipped in short mode and when no server can be had.
func ConnString(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if dsn := os.Getenv(ConnEnv); dsn != "" {
		return dsn
	}

	connOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		ctr, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			connErr = err
			return
		}
		connStr, connErr = ctr.ConnectionString(ctx, "sslmode=disable")
		if connErr != nil {
			_ = testcontainers.TerminateContainer(ctr)
		}
	})
	if connErr != nil {
		t.Skipf("postgres unavailable: %v", connErr)
	}

	return connStr
}
