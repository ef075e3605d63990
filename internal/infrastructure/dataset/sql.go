package dataset

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

const (
	selectTopics       = `SELECT name FROM topics ORDER BY position`
	selectReviews      = `SELECT id, entity, review_date, rating, review_text FROM reviews ORDER BY id`
	selectReviewTopics = `SELECT review_id, topic FROM review_topics`

	insertTopic       = `INSERT INTO topics (name, position) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`
	insertReview      = `INSERT INTO reviews (entity, review_date, rating, review_text) VALUES (?, ?, ?, ?) RETURNING id`
	insertReviewTopic = `INSERT INTO review_topics (review_id, topic) VALUES (?, ?)`
	deleteReviews     = `DELETE FROM reviews`
	deleteTopicLinks  = `DELETE FROM review_topics`
)

type reviewRow struct {
	ID     int64          `db:"id"`
	Entity string         `db:"entity"`
	Date   string         `db:"review_date"`
	Rating int            `db:"rating"`
	Text   sql.NullString `db:"review_text"`
}

type topicLink struct {
	ReviewID int64  `db:"review_id"`
	Topic    string `db:"topic"`
}

// SQLSource loads the dataset from the reviews schema.  The same queries
// serve PostgreSQL and SQLite.
type SQLSource struct {
	name     string
	db       *sqlx.DB
	taxonomy *review.Taxonomy
}

// NewSQLSource returns a Source over db.  name labels the backend in logs
// and metrics.
func NewSQLSource(name string, db *sqlx.DB, taxonomy *review.Taxonomy) *SQLSource {
	return &SQLSource{name: name, db: db, taxonomy: taxonomy}
}

// Name implements Source.
func (s *SQLSource) Name() string { return s.name }

// DB returns the handle the source reads from.
func (s *SQLSource) DB() *sqlx.DB { return s.db }

// Load implements Source.  Every taxonomy topic must be registered in the
// topics table; links to topics outside the taxonomy are ignored.
func (s *SQLSource) Load(ctx context.Context) (*review.Dataset, error) {
	var known []string
	if err := s.db.SelectContext(ctx, &known, selectTopics); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "failed to read topics")
	}
	registered := make(map[string]struct{}, len(known))
	for _, name := range known {
		registered[name] = struct{}{}
	}
	for _, topic := range s.taxonomy.Topics() {
		if _, ok := registered[topic]; !ok {
			return nil, errors.New(errors.ErrCodeMissingColumn, "topic not registered in database").WithDetail(topic)
		}
	}

	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, selectReviews); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "failed to read reviews")
	}
	records := make([]review.Record, len(rows))
	position := make(map[int64]int, len(rows))
	for i, row := range rows {
		date, err := review.ParseDate(row.Date)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMalformedRecord, "invalid review date").WithDetailf("id %d", row.ID)
		}
		records[i] = review.Record{
			Entity: row.Entity,
			Date:   date,
			Rating: row.Rating,
			Text:   row.Text.String,
		}
		position[row.ID] = i
	}

	var links []topicLink
	if err := s.db.SelectContext(ctx, &links, selectReviewTopics); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "failed to read review topics")
	}
	for _, link := range links {
		i, ok := position[link.ReviewID]
		if !ok {
			continue
		}
		if t, ok := s.taxonomy.Index(link.Topic); ok {
			records[i].Topics = records[i].Topics.With(t)
		}
	}

	return review.NewDataset(s.taxonomy, records)
}

// Store writes ds into the reviews schema in one transaction and returns the
// number of reviews written.  With replace set, existing reviews are removed
// first; topics are only ever added.
func Store(ctx context.Context, db *sqlx.DB, ds *review.Dataset, replace bool) (n int, err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin import")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if replace {
		for _, stmt := range []string{deleteTopicLinks, deleteReviews} {
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to clear reviews")
			}
		}
	}

	taxonomy := ds.Taxonomy()
	for i, topic := range taxonomy.Topics() {
		if _, err = tx.ExecContext(ctx, tx.Rebind(insertTopic), topic, i); err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to register topic").WithDetail(topic)
		}
	}

	reviewStmt := tx.Rebind(insertReview)
	linkStmt := tx.Rebind(insertReviewTopic)
	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		var id int64
		text := sql.NullString{String: rec.Text, Valid: rec.Text != ""}
		if err = tx.QueryRowxContext(ctx, reviewStmt, rec.Entity, rec.Date.Format(review.DateLayout), rec.Rating, text).Scan(&id); err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert review").WithDetailf("row %d", i)
		}
		for t := 0; t < taxonomy.Len(); t++ {
			if !rec.HasTopic(t) {
				continue
			}
			if _, err = tx.ExecContext(ctx, linkStmt, id, taxonomy.Topic(t)); err != nil {
				return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to link review topic").WithDetailf("row %d", i)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit import")
	}
	return ds.Len(), nil
}

//Personal.AI order the ending
