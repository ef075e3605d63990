package analytics

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
)

// BoundMode tags the two rating bound shapes of the detail view.
type BoundMode string

const (
	// BoundBelow keeps rows with rating < Upper.
	BoundBelow BoundMode = "below"
	// BoundBetween keeps rows with Lower <= rating <= Upper.
	BoundBetween BoundMode = "between"
)

// RatingBound restricts the detail listing by rating.
type RatingBound struct {
	Mode  BoundMode `json:"mode" yaml:"mode"`
	Lower int       `json:"lower,omitempty" yaml:"lower,omitempty"`
	Upper int       `json:"upper" yaml:"upper"`
}

// Admits reports whether rating satisfies the bound.
func (b RatingBound) Admits(rating int) bool {
	if b.Mode == BoundBetween {
		return rating >= b.Lower && rating <= b.Upper
	}
	return rating < b.Upper
}

// ReviewRow is one projected row of the detail listing.
type ReviewRow struct {
	Date      string `json:"date" yaml:"date"`
	Review    string `json:"review" yaml:"review"`
	Rating    int    `json:"rating" yaml:"rating"`
	TopicFlag bool   `json:"topic_flag" yaml:"topic_flag"`
}

// Detail listing column ids.
const (
	ColumnDate      = "date"
	ColumnReview    = "review"
	ColumnRating    = "rating"
	ColumnTopicFlag = "topic_flag"
)

// ReviewListing is the detail view's result.
type ReviewListing struct {
	Topic   string      `json:"topic,omitempty" yaml:"topic,omitempty"`
	Columns []Column    `json:"columns" yaml:"columns"`
	Rows    []ReviewRow `json:"rows" yaml:"rows"`
}

// reviewCriteria is a validated, parsed detail query.
type reviewCriteria struct {
	entity   string
	from, to time.Time // zero means unbounded
	topic    int
	bound    RatingBound
	needle   string // lower-cased search term
}

func (c reviewCriteria) match(r *review.Record) bool {
	if c.entity != "" && r.Entity != c.entity {
		return false
	}
	if !c.from.IsZero() && r.Date.Before(c.from) {
		return false
	}
	if !c.to.IsZero() && r.Date.After(c.to) {
		return false
	}
	if !r.HasTopic(c.topic) || !c.bound.Admits(r.Rating) {
		return false
	}
	if c.needle != "" {
		if r.Text == "" || !strings.Contains(foldText(r.Text), c.needle) {
			return false
		}
	}
	return true
}

// foldText lowercases s in NFC so composed and decomposed umlauts compare
// equal.
func foldText(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// FilterReviews scans the full dataset in order and projects the matches.
func FilterReviews(ds *review.Dataset, c reviewCriteria) ReviewListing {
	topic := ds.Taxonomy().Topic(c.topic)
	listing := ReviewListing{
		Topic: topic,
		Columns: []Column{
			{ID: ColumnDate, Name: "date"},
			{ID: ColumnReview, Name: "Review"},
			{ID: ColumnRating, Name: "Rating"},
			{ID: ColumnTopicFlag, Name: topic},
		},
		Rows: []ReviewRow{},
	}
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		if !c.match(r) {
			continue
		}
		listing.Rows = append(listing.Rows, ReviewRow{
			Date:      r.Date.Format(review.DateLayout),
			Review:    r.Text,
			Rating:    r.Rating,
			TopicFlag: r.HasTopic(c.topic),
		})
	}
	return listing
}

// emptyListing is returned when the query carries no detail section.
func emptyListing() ReviewListing {
	return ReviewListing{Columns: []Column{}, Rows: []ReviewRow{}}
}

//Personal.AI order the ending
