package dataset

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/database/sqlite"
	"github.com/turtacn/ReviewPulse/internal/testutil"
	pkgerrors "github.com/turtacn/ReviewPulse/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestSQLSource_Load(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectTopics)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Service").AddRow("Preis").AddRow("Lieferzeit"))
	mock.ExpectQuery(regexp.QuoteMeta(selectReviews)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "entity", "review_date", "rating", "review_text"}).
			AddRow(int64(7), "A", "2020-01-15T00:00:00Z", int64(5), "Sehr GUT!").
			AddRow(int64(9), "B", "2020-07-20", int64(1), nil))
	mock.ExpectQuery(regexp.QuoteMeta(selectReviewTopics)).
		WillReturnRows(sqlmock.NewRows([]string{"review_id", "topic"}).
			AddRow(int64(7), "Service").
			AddRow(int64(9), "Preis").
			AddRow(int64(9), "Lieferzeit").
			AddRow(int64(99), "Service"))

	src := NewSQLSource("postgres", db, testTaxonomy(t))
	assert.Equal(t, "postgres", src.Name())

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	a := ds.At(0)
	assert.Equal(t, "A", a.Entity)
	assert.Equal(t, "2020-01-15", a.Date.Format("2006-01-02"))
	assert.Equal(t, "Sehr GUT!", a.Text)
	assert.True(t, a.HasTopic(0))
	assert.False(t, a.HasTopic(1))

	b := ds.At(1)
	assert.Empty(t, b.Text, "NULL text is missing text")
	assert.False(t, b.HasTopic(0))
	assert.True(t, b.HasTopic(1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_UnregisteredTopic(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectTopics)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Service"))

	_, err := NewSQLSource("sqlite", db, testTaxonomy(t)).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrCodeMissingColumn, pkgerrors.GetCode(err))
	assert.Contains(t, err.Error(), "Preis")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_QueryFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectTopics)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Service").AddRow("Preis"))
	mock.ExpectQuery(regexp.QuoteMeta(selectReviews)).WillReturnError(stderrors.New("relation \"reviews\" does not exist"))

	_, err := NewSQLSource("postgres", db, testTaxonomy(t)).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrCodeDatasetUnavailable, pkgerrors.GetCode(err))
}

func TestSQLSource_BadRating(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectTopics)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Service").AddRow("Preis"))
	mock.ExpectQuery(regexp.QuoteMeta(selectReviews)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "entity", "review_date", "rating", "review_text"}).
			AddRow(int64(1), "A", "2020-01-15", int64(0), "x"))
	mock.ExpectQuery(regexp.QuoteMeta(selectReviewTopics)).
		WillReturnRows(sqlmock.NewRows([]string{"review_id", "topic"}))

	_, err := NewSQLSource("postgres", db, testTaxonomy(t)).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrCodeMalformedRecord, pkgerrors.GetCode(err))
}

func TestStore_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	ds := testutil.NewDatasetBuilder("Service", "Preis").Add("A", "2020-01-15", 5, "gut", "Service").Build(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO topics (name, position) VALUES ($1, $2)")).
		WithArgs("Service", 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO topics (name, position) VALUES ($1, $2)")).
		WithArgs("Preis", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews (entity, review_date, rating, review_text) VALUES ($1, $2, $3, $4) RETURNING id")).
		WithArgs("A", "2020-01-15", 5, sqlmock.AnyArg()).
		WillReturnError(stderrors.New("disk full"))
	mock.ExpectRollback()

	n, err := Store(context.Background(), db, ds, false)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, pkgerrors.ErrCodeDatabaseError, pkgerrors.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func openSQLite(t *testing.T) *sqlite.Connection {
	t.Helper()
	cfg := sqlite.Config{Path: filepath.Join(t.TempDir(), "reviews.db")}
	require.NoError(t, sqlite.NewMigrator(cfg, nil).Up())
	conn, err := sqlite.Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	conn := openSQLite(t)
	ctx := context.Background()
	want := testutil.ServiceScenario(t)

	n, err := Store(ctx, conn.DB(), want, false)
	require.NoError(t, err)
	assert.Equal(t, want.Len(), n)

	got, err := NewSQLSource("sqlite", conn.DB(), want.Taxonomy()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Fingerprint(), got.Fingerprint())
	assert.Equal(t, want.Entities(), got.Entities())
}

func TestStore_SQLiteReplace(t *testing.T) {
	conn := openSQLite(t)
	ctx := context.Background()
	ds := testutil.ServiceScenario(t)

	_, err := Store(ctx, conn.DB(), ds, false)
	require.NoError(t, err)
	_, err = Store(ctx, conn.DB(), ds, false)
	require.NoError(t, err)

	doubled, err := NewSQLSource("sqlite", conn.DB(), ds.Taxonomy()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*ds.Len(), doubled.Len())

	_, err = Store(ctx, conn.DB(), ds, true)
	require.NoError(t, err)
	replaced, err := NewSQLSource("sqlite", conn.DB(), ds.Taxonomy()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds.Fingerprint(), replaced.Fingerprint())
}

//Personal.AI order the ending
