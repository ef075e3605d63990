//go:build integration

// Integration tests for the PostgreSQL connection and schema.  They require
// Docker and are gated behind the "integration" build tag.
package postgres_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/database/postgres"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
)

// startPostgres launches a PostgreSQL 16 container and returns its config.
func startPostgres(t *testing.T) postgres.PostgresConfig {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "reviewpulse_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	p, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return postgres.PostgresConfig{
		Host:     host,
		Port:     p,
		Database: "reviewpulse_test",
		Username: "test",
		Password: "test",
		SSLMode:  "disable",
	}
}

func TestMigrator_UpDownStatus(t *testing.T) {
	cfg := startPostgres(t)
	log := logging.NewNopLogger()

	m := postgres.NewMigrator(cfg, log)
	require.NoError(t, m.Up())
	require.NoError(t, m.Up(), "an up-to-date schema is not an error")

	version, dirty, err := m.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	conn, err := postgres.NewConnection(cfg, log)
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	for _, table := range []string{"topics", "reviews", "review_topics"} {
		var exists bool
		err := conn.DB().QueryRowxContext(ctx, `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist after migrations", table)
	}
	require.NoError(t, conn.HealthCheck(ctx))

	require.NoError(t, m.Down(1))
	version, _, err = m.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.Error(t, m.Down(1))
}

//Personal.AI order the ending
