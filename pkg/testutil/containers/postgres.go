//go:build integration

package containers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the table layout the postgres stores document.
const schema = `
CREATE TABLE IF NOT EXISTS hospital_notifications (
    hospital_id      TEXT PRIMARY KEY,
    child_name       TEXT NOT NULL,
    gender           TEXT NOT NULL,
    date_of_birth    TIMESTAMPTZ NOT NULL,
    time_of_birth    TEXT NOT NULL DEFAULT '',
    weight_kg        DOUBLE PRECISION NOT NULL DEFAULT 0,
    attending_doctor TEXT NOT NULL DEFAULT '',
    hospital_name    TEXT NOT NULL,
    hospital_reg_no  TEXT NOT NULL DEFAULT '',
    upload_date      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS parent_registrations (
    reg_number      TEXT PRIMARY KEY,
    hospital_id     TEXT NOT NULL,
    status          TEXT NOT NULL,
    submission_date TIMESTAMPTZ NOT NULL,
    record          JSONB NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS parent_registrations_hospital_claim
    ON parent_registrations (hospital_id) WHERE status <> 'rejected';

CREATE TABLE IF NOT EXISTS admin_actions (
    seq         BIGSERIAL PRIMARY KEY,
    id          TEXT NOT NULL,
    reg_number  TEXT NOT NULL,
    action      TEXT NOT NULL,
    reason      TEXT NOT NULL DEFAULT '',
    action_date TIMESTAMPTZ NOT NULL,
    admin_id    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS admin_actions_reg_number ON admin_actions (reg_number, seq);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// application schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	Pool      *pgxpool.Pool
}

func newPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("birthregistry_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres pool: %v", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, Pool: pool}
}

// TruncateTables empties the named tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.Pool.Exec(ctx, fmt.Sprintf(
		"TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "),
	))
	return err
}
