package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
)

// DatasetBuilder assembles small review datasets for tests.
type DatasetBuilder struct {
	topics  []string
	records []review.Record
}

// NewDatasetBuilder starts a dataset over topics; no topics means the
// default taxonomy.
func NewDatasetBuilder(topics ...string) *DatasetBuilder {
	if len(topics) == 0 {
		topics = review.DefaultTopics
	}
	return &DatasetBuilder{topics: topics}
}

// Add appends one review.  date is YYYY-MM-DD; topics are flagged by name.
func (b *DatasetBuilder) Add(entity, date string, rating int, text string, topics ...string) *DatasetBuilder {
	rec := review.Record{Entity: entity, Rating: rating, Text: text}
	d, err := review.ParseDate(date)
	if err != nil {
		panic(err)
	}
	rec.Date = d
	for _, name := range topics {
		idx := -1
		for i, t := range b.topics {
			if t == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			panic("testutil: unknown topic " + name)
		}
		rec.Topics = rec.Topics.With(idx)
	}
	b.records = append(b.records, rec)
	return b
}

// Repeat appends n copies of the same review.
func (b *DatasetBuilder) Repeat(n int, entity, date string, rating int, text string, topics ...string) *DatasetBuilder {
	for i := 0; i < n; i++ {
		b.Add(entity, date, rating, text, topics...)
	}
	return b
}

// Build validates and returns the dataset.
func (b *DatasetBuilder) Build(t testing.TB) *review.Dataset {
	t.Helper()
	tax, err := review.NewTaxonomy(b.topics)
	require.NoError(t, err)
	records := make([]review.Record, len(b.records))
	copy(records, b.records)
	ds, err := review.NewDataset(tax, records)
	require.NoError(t, err)
	return ds
}

// ServiceScenario is the two-entity dataset used across analytics tests:
// entity A rates 5 with Service on 3 of 5 rows, entity B rates 1 with
// Service on 1 of 5 rows.
func ServiceScenario(t testing.TB) *review.Dataset {
	t.Helper()
	return NewDatasetBuilder("Service", "Preis").
		Repeat(3, "A", "2020-01-15", 5, "Sehr GUT!", "Service").
		Repeat(2, "A", "2020-04-15", 5, "gut", "Preis").
		Add("B", "2020-01-20", 1, "schlecht", "Service").
		Repeat(4, "B", "2020-07-20", 1, "").
		Build(t)
}

//Personal.AI order the ending
