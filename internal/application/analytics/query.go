package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// Threshold limits accepted at the query boundary.
const (
	MinPercentThreshold = 0
	MaxPercentThreshold = 30
	MinRatingThreshold  = 0.1
	MaxRatingThreshold  = 1.5
)

// Query is the single input of the engine.
type Query struct {
	Groups []GroupSelection `json:"groups" yaml:"groups"`
	// PercentThreshold is an integer 0..30 for the share table.
	PercentThreshold *float64 `json:"percent_threshold,omitempty" yaml:"percent_threshold,omitempty"`
	// RatingThreshold is 0.1..1.5 in steps of 0.1 for the rating table.
	RatingThreshold *float64 `json:"rating_threshold,omitempty" yaml:"rating_threshold,omitempty"`
	// Detail drives the review listing; nil yields an empty listing.
	Detail *DetailQuery `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// DetailQuery selects reviews for the detail view.
type DetailQuery struct {
	// Entity restricts to one entity; empty matches all entities.
	Entity string `json:"entity,omitempty" yaml:"entity,omitempty"`
	// From and To are inclusive YYYY-MM-DD bounds; empty is unbounded.
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"`
	// Topic must be flagged on every returned review.
	Topic string `json:"topic" yaml:"topic"`
	// RatingBound defaults to the configured bound when nil.
	RatingBound *RatingBound `json:"rating_bound,omitempty" yaml:"rating_bound,omitempty"`
	// Search is a case-insensitive literal substring of the review text.
	Search string `json:"search,omitempty" yaml:"search,omitempty"`
}

// Defaults fill the optional query fields.
type Defaults struct {
	PercentThreshold float64
	RatingThreshold  float64
	RatingBound      RatingBound
}

// DefaultDefaults mirrors the dashboard's initial slider positions.
func DefaultDefaults() Defaults {
	return Defaults{
		PercentThreshold: 10,
		RatingThreshold:  1.0,
		RatingBound:      RatingBound{Mode: BoundBelow, Upper: review.MaxRating},
	}
}

// Normalized returns a copy of q with every optional field resolved against
// d.  Two queries that compute the same result normalize identically.
func (q Query) Normalized(d Defaults) Query {
	out := Query{Groups: q.Groups}
	pct, rating := d.PercentThreshold, d.RatingThreshold
	if q.PercentThreshold != nil {
		pct = *q.PercentThreshold
	}
	if q.RatingThreshold != nil {
		rating = *q.RatingThreshold
	}
	out.PercentThreshold, out.RatingThreshold = &pct, &rating

	if q.Detail != nil {
		det := *q.Detail
		det.Entity = strings.TrimSpace(det.Entity)
		det.From = strings.TrimSpace(det.From)
		det.To = strings.TrimSpace(det.To)
		bound := d.RatingBound
		if det.RatingBound != nil {
			bound = *det.RatingBound
		}
		if bound.Mode == "" {
			bound.Mode = BoundBelow
		}
		if bound.Mode == BoundBelow {
			bound.Lower = 0
		}
		det.RatingBound = &bound
		out.Detail = &det
	}
	return out
}

// plan is a validated query ready for the engine.
type plan struct {
	groups           []GroupSelection
	percentThreshold float64
	ratingThreshold  float64
	detail           *reviewCriteria
}

// Validate checks q against tax without running the engine.
func (q Query) Validate(tax *review.Taxonomy, d Defaults) error {
	_, err := q.compile(tax, d)
	return err
}

func (q Query) compile(tax *review.Taxonomy, d Defaults) (*plan, error) {
	n := q.Normalized(d)
	if err := validateSelections(n.Groups); err != nil {
		return nil, err
	}
	p := &plan{
		groups:           n.Groups,
		percentThreshold: *n.PercentThreshold,
		ratingThreshold:  *n.RatingThreshold,
	}
	if err := checkPercentThreshold(p.percentThreshold); err != nil {
		return nil, err
	}
	if err := checkRatingThreshold(p.ratingThreshold); err != nil {
		return nil, err
	}
	if n.Detail != nil {
		c, err := compileDetail(*n.Detail, tax)
		if err != nil {
			return nil, err
		}
		p.detail = c
	}
	return p, nil
}

func checkPercentThreshold(v float64) error {
	if v < MinPercentThreshold || v > MaxPercentThreshold || v != math.Trunc(v) {
		return errors.Newf(errors.ErrCodeInvalidPercentThresh,
			"percentage threshold must be an integer in %d..%d", MinPercentThreshold, MaxPercentThreshold).
			WithDetailf("got %v", v)
	}
	return nil
}

func checkRatingThreshold(v float64) error {
	tenths := v * 10
	if v < MinRatingThreshold-1e-9 || v > MaxRatingThreshold+1e-9 || math.Abs(tenths-math.Round(tenths)) > 1e-9 {
		return errors.Newf(errors.ErrCodeInvalidRatingThresh,
			"rating threshold must be in %.1f..%.1f with one decimal", MinRatingThreshold, MaxRatingThreshold).
			WithDetailf("got %v", v)
	}
	return nil
}

func compileDetail(det DetailQuery, tax *review.Taxonomy) (*reviewCriteria, error) {
	topic, ok := tax.Index(det.Topic)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownTopic, "unknown topic").WithDetail(det.Topic)
	}
	c := &reviewCriteria{
		entity: det.Entity,
		topic:  topic,
		bound:  *det.RatingBound,
		needle: foldText(det.Search),
	}

	var err error
	if c.from, err = parseOptionalDate(det.From); err != nil {
		return nil, err
	}
	if c.to, err = parseOptionalDate(det.To); err != nil {
		return nil, err
	}
	if !c.from.IsZero() && !c.to.IsZero() && c.to.Before(c.from) {
		return nil, errors.New(errors.ErrCodeInvalidDateRange, "end date precedes start date").
			WithDetailf("%s..%s", det.From, det.To)
	}

	if err := checkBound(c.bound); err != nil {
		return nil, err
	}
	return c, nil
}

func checkBound(b RatingBound) error {
	switch b.Mode {
	case BoundBelow:
		if b.Upper < review.MinRating || b.Upper > review.MaxRating+1 {
			return errors.Newf(errors.ErrCodeInvalidRatingBound, "upper bound must be in %d..%d",
				review.MinRating, review.MaxRating+1).WithDetailf("got %d", b.Upper)
		}
	case BoundBetween:
		if b.Lower < review.MinRating || b.Upper > review.MaxRating {
			return errors.Newf(errors.ErrCodeInvalidRatingBound, "range must lie within %d..%d",
				review.MinRating, review.MaxRating).WithDetailf("%d..%d", b.Lower, b.Upper)
		}
		if b.Upper < b.Lower {
			return errors.New(errors.ErrCodeInvalidRatingBound, "upper rating bound below lower").
				WithDetailf("%d..%d", b.Lower, b.Upper)
		}
	default:
		return errors.New(errors.ErrCodeInvalidRatingBound, "unknown rating bound mode").WithDetail(string(b.Mode))
	}
	return nil
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(review.DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.ErrCodeInvalidDateRange, "date must be YYYY-MM-DD").WithDetail(s)
	}
	return t, nil
}

//Personal.AI order the ending
