//go:build integration

package dataset_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/ReviewPulse/internal/config"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/dataset"
	"github.com/turtacn/ReviewPulse/internal/testutil"
)

func TestOpen_PostgresRoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
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
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Dataset.Source = config.SourcePostgres
	cfg.Dataset.Topics = []string{"Service", "Preis"}
	cfg.Database.Host = host
	cfg.Database.Port, err = strconv.Atoi(port.Port())
	require.NoError(t, err)
	cfg.Database.User = "test"
	cfg.Database.Password = "test"
	cfg.Database.DBName = "reviewpulse_test"

	src, closeFn, err := dataset.Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer closeFn()

	sqlSrc, ok := src.(*dataset.SQLSource)
	require.True(t, ok)

	want := testutil.ServiceScenario(t)
	n, err := dataset.Store(ctx, sqlSrc.DB(), want, true)
	require.NoError(t, err)
	assert.Equal(t, want.Len(), n)

	got, err := dataset.Load(ctx, src, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, want.Fingerprint(), got.Fingerprint())
}

//Personal.AI order the ending
