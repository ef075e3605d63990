package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDefaultTaxonomy(t *testing.T) {
	tax := DefaultTaxonomy()
	assert.Equal(t, 14, tax.Len())
	assert.Equal(t, "Kundenservice", tax.Topic(0))
	i, ok := tax.Index("Auswahl")
	assert.True(t, ok)
	assert.Equal(t, 13, i)
	assert.False(t, tax.Contains("Parkplatz"))
}

func TestNewTaxonomy_Rejects(t *testing.T) {
	_, err := NewTaxonomy(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyTaxonomy))

	_, err = NewTaxonomy([]string{"A", "A"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyTaxonomy))

	_, err = NewTaxonomy([]string{"A", "  "})
	assert.Error(t, err)

	many := make([]string, MaxTopics+1)
	for i := range many {
		many[i] = string(rune('A'+i%26)) + string(rune('a'+i/26))
	}
	_, err = NewTaxonomy(many)
	assert.Error(t, err)
}

func TestTaxonomy_TopicsIsCopy(t *testing.T) {
	tax := DefaultTaxonomy()
	topics := tax.Topics()
	topics[0] = "mutated"
	assert.Equal(t, "Kundenservice", tax.Topic(0))
}

func TestTopicSet(t *testing.T) {
	var s TopicSet
	s = s.With(0).With(13)
	assert.True(t, s.Has(0))
	assert.True(t, s.Has(13))
	assert.False(t, s.Has(1))
}

func TestTaxonomy_Mask(t *testing.T) {
	tax, err := NewTaxonomy([]string{"Service", "Preis"})
	require.NoError(t, err)
	assert.Equal(t, TopicSet(0b11), tax.Mask())
	assert.Equal(t, TopicSet(1)<<14-1, DefaultTaxonomy().Mask())
}

func TestParseDate(t *testing.T) {
	cases := []string{
		"2021-03-15",
		"2021-03-15T10:20:30Z",
		"2021-03-15T23:59:59.123+02:00",
		"2021-03-15 08:00:00",
		"15.03.2021",
	}
	for _, in := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, day(2021, 3, 15), got, in)
	}

	_, err := ParseDate("yesterday")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedRecord))
}

func TestParseRating(t *testing.T) {
	n, err := ParseRating("4")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = ParseRating(" 5.0 ")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for _, bad := range []string{"0", "6", "4.5", "x", ""} {
		_, err := ParseRating(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFlag(t *testing.T) {
	for _, in := range []string{"1", "1.0", "True", "yes"} {
		v, err := ParseFlag(in)
		require.NoError(t, err)
		assert.True(t, v, in)
	}
	for _, in := range []string{"0", "0.0", "false", ""} {
		v, err := ParseFlag(in)
		require.NoError(t, err)
		assert.False(t, v, in)
	}
	_, err := ParseFlag("maybe")
	assert.Error(t, err)
}

func TestNewDataset_IndexesEntities(t *testing.T) {
	tax, err := NewTaxonomy([]string{"Service", "Preis"})
	require.NoError(t, err)

	records := []Record{
		{Entity: "Berlin", Date: time.Date(2020, 5, 3, 14, 0, 0, 0, time.UTC), Rating: 5},
		{Entity: "München", Date: day(2019, 1, 2), Rating: 3},
		{Entity: "Berlin", Date: day(2022, 7, 9), Rating: 1, Topics: TopicSet(0).With(1)},
	}
	ds, err := NewDataset(tax, records)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"Berlin", "München"}, ds.Entities())
	assert.Equal(t, []int{0, 2}, ds.Rows("Berlin"))
	assert.True(t, ds.HasEntity("München"))
	assert.False(t, ds.HasEntity("Hamburg"))
	assert.Equal(t, day(2020, 5, 3), ds.At(0).Date)
	assert.True(t, ds.At(2).HasTopic(1))

	lo, hi := ds.DateRange()
	assert.Equal(t, day(2019, 1, 2), lo)
	assert.Equal(t, day(2022, 7, 9), hi)
	assert.Len(t, ds.Fingerprint(), 32)
}

func TestNewDataset_RejectsBadRows(t *testing.T) {
	tax := DefaultTaxonomy()

	_, err := NewDataset(tax, []Record{{Entity: "", Date: day(2020, 1, 1), Rating: 3}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedRecord))

	_, err = NewDataset(tax, []Record{{Entity: "A", Date: day(2020, 1, 1), Rating: 7}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedRecord))

	small, err := NewTaxonomy([]string{"Service", "Preis"})
	require.NoError(t, err)
	_, err = NewDataset(small, []Record{{Entity: "A", Date: day(2020, 1, 1), Rating: 3, Topics: TopicSet(0).With(2)}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedRecord))

	ds, err := NewDataset(small, []Record{{Entity: "A", Date: day(2020, 1, 1), Rating: 3, Topics: TopicSet(0).With(0).With(1)}})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	_, err = NewDataset(nil, nil)
	assert.Error(t, err)
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	tax := DefaultTaxonomy()
	a, err := NewDataset(tax, []Record{{Entity: "A", Date: day(2020, 1, 1), Rating: 3, Text: "ok"}})
	require.NoError(t, err)
	b, err := NewDataset(tax, []Record{{Entity: "A", Date: day(2020, 1, 1), Rating: 3, Text: "ok"}})
	require.NoError(t, err)
	c, err := NewDataset(tax, []Record{{Entity: "A", Date: day(2020, 1, 1), Rating: 4, Text: "ok"}})
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestEmptyDataset(t *testing.T) {
	ds, err := NewDataset(DefaultTaxonomy(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Empty(t, ds.Entities())
	lo, hi := ds.DateRange()
	assert.True(t, lo.IsZero())
	assert.True(t, hi.IsZero())
}

//Personal.AI order the ending
