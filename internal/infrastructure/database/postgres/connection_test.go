package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ReviewPulse/internal/testutil"
	pkgerrors "github.com/turtacn/ReviewPulse/pkg/errors"
)

// stubOpen makes NewConnection use db instead of dialing.
func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, driverName, driver)
		_, perr := url.Parse(dsn)
		assert.NoError(t, perr)
		return db, err
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  PostgresConfig
		want map[string]string
	}{
		{
			name: "server defaults",
			cfg:  PostgresConfig{Host: "localhost", Port: 5432, Database: "reviewpulse", Username: "rp"},
			want: map[string]string{"sslmode": "disable", "statement_timeout": "30000", "lock_timeout": "10000"},
		},
		{
			name: "explicit timeouts",
			cfg: PostgresConfig{
				Host: "reviews-db", Port: 6432, Database: "reviewpulse", Username: "rp",
				SSLMode: "verify-full", StatementTimeout: 2 * time.Minute, LockTimeout: time.Second,
			},
			want: map[string]string{"sslmode": "verify-full", "statement_timeout": "120000", "lock_timeout": "1000"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(BuildDSN(tt.cfg))
			require.NoError(t, err)
			assert.Equal(t, "postgres", u.Scheme, "golang-migrate selects its driver by scheme")
			assert.Equal(t, "/"+tt.cfg.Database, u.Path)
			for k, v := range tt.want {
				assert.Equal(t, v, u.Query().Get(k), k)
			}
		})
	}
}

func TestBuildDSN_EscapesCredentials(t *testing.T) {
	u, err := url.Parse(BuildDSN(PostgresConfig{Host: "db", Port: 5432, Username: "rp@ops", Password: "p/w:#1"}))
	require.NoError(t, err)
	assert.Equal(t, "rp@ops", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p/w:#1", pw)
	assert.Equal(t, "db:5432", u.Host)
}

func TestNewConnection_PoolSizing(t *testing.T) {
	tests := []struct {
		name    string
		maxOpen int
		want    int
	}{
		{"unset uses ten", 0, 10},
		{"configured", 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer db.Close()
			stubOpen(t, db, nil)
			mock.ExpectPing()

			log := testutil.NewMockLogger()
			conn, err := NewConnection(PostgresConfig{Host: "db", Port: 5432, Database: "reviewpulse", MaxOpenConns: tt.maxOpen}, log)
			require.NoError(t, err)
			assert.Equal(t, tt.want, conn.Stats().MaxOpenConnections)
			assert.True(t, log.HasMessage("info", "Connected to PostgreSQL database"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewConnection_Failures(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		stubOpen(t, nil, errors.New("unknown driver"))
		conn, err := NewConnection(PostgresConfig{}, nil)
		assert.Nil(t, conn)
		assert.Equal(t, pkgerrors.ErrCodeDatabaseError, pkgerrors.GetCode(err))
	})

	t.Run("ping closes the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		conn, err := NewConnection(PostgresConfig{Host: "db"}, nil)
		assert.Nil(t, conn)
		assert.Equal(t, pkgerrors.ErrCodeDatabaseError, pkgerrors.GetCode(err))
		assert.ErrorContains(t, err, "connection refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConnection_RebindsForLibPQ(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conn := NewConnectionWithDB(db, nil)
	assert.Equal(t, driverName, conn.DB().DriverName())
	assert.Equal(t,
		"INSERT INTO review_topics (review_id, topic) VALUES ($1, $2)",
		conn.DB().Rebind("INSERT INTO review_topics (review_id, topic) VALUES (?, ?)"))
}

func TestConnection_ScansReviewRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM topics ORDER BY position").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Service").AddRow("Preis"))

	var topics []string
	conn := NewConnectionWithDB(db, nil)
	require.NoError(t, conn.DB().SelectContext(context.Background(), &topics, "SELECT name FROM topics ORDER BY position"))
	assert.Equal(t, []string{"Service", "Preis"}, topics)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_HealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	conn := NewConnectionWithDB(db, nil)
	mock.ExpectPing()
	assert.NoError(t, conn.HealthCheck(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("timeout"))
	err = conn.HealthCheck(context.Background())
	assert.Equal(t, pkgerrors.ErrCodeDatabaseError, pkgerrors.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_CloseOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	log := testutil.NewMockLogger()
	conn := NewConnectionWithDB(db, log)
	mock.ExpectClose()

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.True(t, log.HasMessage("info", "Closed PostgreSQL database connection"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

//Personal.AI order the ending
