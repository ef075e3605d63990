// Package analytics is the review analytics aggregation engine.  Given the
// immutable review dataset and a Query it computes the satisfaction summary,
// quarterly trend lines, topic share and topic rating tables with highlight
// maps, the rating distribution and the detail review listing.
//
// Reporting groups may overlap: an entity can appear inside a merge group and
// again as its own competitor row, and the Total column is computed over the
// union of all groups.  Totals therefore do not equal the sum of the group
// columns.
package analytics

import (
	"context"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
)

const tracerName = "github.com/turtacn/ReviewPulse/internal/application/analytics"

// Engine computes QueryResults over one dataset.  It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	ds       *review.Dataset
	axis     *QuarterAxis
	defaults Defaults
	tracer   trace.Tracer
	workers  int
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithQuarterAxis replaces the default 2018Q1..2024Q2 axis.
func WithQuarterAxis(axis *QuarterAxis) EngineOption {
	return func(e *Engine) {
		if axis != nil {
			e.axis = axis
		}
	}
}

// WithDefaults replaces the default thresholds and rating bound.
func WithDefaults(d Defaults) EngineOption {
	return func(e *Engine) { e.defaults = d }
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithWorkers bounds the per-group trend fan-out; values < 1 mean GOMAXPROCS.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) { e.workers = n }
}

// NewEngine binds an engine to ds.
func NewEngine(ds *review.Dataset, opts ...EngineOption) *Engine {
	e := &Engine{
		ds:       ds,
		axis:     DefaultQuarterAxis(),
		defaults: DefaultDefaults(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Dataset returns the dataset the engine is bound to.
func (e *Engine) Dataset() *review.Dataset { return e.ds }

// Defaults returns the defaults applied to optional query fields.
func (e *Engine) Defaults() Defaults { return e.defaults }

// Validate checks q without computing anything.
func (e *Engine) Validate(q Query) error {
	return q.Validate(e.ds.Taxonomy(), e.defaults)
}

// Compute validates q and computes the full result.  Validation failures
// are returned before any aggregation runs.
func (e *Engine) Compute(ctx context.Context, q Query) (*QueryResult, error) {
	p, err := q.compile(e.ds.Taxonomy(), e.defaults)
	if err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "analytics.resolve")
	part := Resolve(e.ds, p.groups)
	span.SetAttributes(
		attribute.Int("groups", len(part.Groups)),
		attribute.Int("filtered_rows", len(part.Filtered)),
	)
	span.End()

	res := &QueryResult{
		Fingerprint: e.ds.Fingerprint(),
		Quarters:    e.axis.Labels(),
		Groups:      part.Labels(),
		Summary:     summarize(e.meanRating(part.Filtered), len(part.Filtered)),
		PerGroup:    make([]GroupSummary, len(part.Groups)),
	}
	for i, g := range part.Groups {
		res.PerGroup[i] = GroupSummary{Group: g.Label, Summary: summarize(e.meanRating(g.Rows), len(g.Rows))}
	}

	trends, err := e.trends(ctx, part)
	if err != nil {
		return nil, err
	}
	res.Trends = trends

	_, span = e.tracer.Start(ctx, "analytics.topics")
	res.TopicShares, res.TopicRatings = BuildTopicTables(e.ds, part, p.percentThreshold, p.ratingThreshold)
	span.End()

	_, span = e.tracer.Start(ctx, "analytics.distribution")
	res.Ratings = SummarizeRatings(e.ds, part.Filtered, e.axis)
	span.End()

	_, span = e.tracer.Start(ctx, "analytics.reviews")
	if p.detail != nil {
		res.Reviews = FilterReviews(e.ds, *p.detail)
	} else {
		res.Reviews = emptyListing()
	}
	span.SetAttributes(attribute.Int("rows", len(res.Reviews.Rows)))
	span.End()

	return res, nil
}

// trends computes one Trend per group concurrently and joins before return.
func (e *Engine) trends(ctx context.Context, part Partition) ([]Trend, error) {
	ctx, span := e.tracer.Start(ctx, "analytics.trends")
	defer span.End()

	out := make([]Trend, len(part.Groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, grp := range part.Groups {
		i, grp := i, grp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = e.trend(grp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

func (e *Engine) trend(grp Group) Trend {
	buckets := Bucket(e.ds, grp.Rows, e.axis)
	counts := make([]int, len(buckets))
	for i, b := range buckets {
		counts[i] = len(b)
	}
	raw := MeanSeries(buckets)
	filled := Interpolate(raw)
	return Trend{
		Group:         grp.Label,
		Counts:        counts,
		Mean:          raw,
		Interpolated:  filled,
		MovingAverage: MovingAverage(filled, DefaultWindow, DefaultMinPeriods),
	}
}

func (e *Engine) meanRating(rows []int) Value {
	if len(rows) == 0 {
		return NA()
	}
	sum := 0
	for _, r := range rows {
		sum += e.ds.At(r).Rating
	}
	return Num(float64(sum) / float64(len(rows)))
}

// Meta describes the dataset and the engine defaults.
func (e *Engine) Meta() Meta {
	m := Meta{
		Fingerprint:             e.ds.Fingerprint(),
		Records:                 e.ds.Len(),
		Entities:                e.ds.Entities(),
		Topics:                  e.ds.Taxonomy().Topics(),
		Quarters:                e.axis.Labels(),
		DefaultPercentThreshold: e.defaults.PercentThreshold,
		DefaultRatingThreshold:  e.defaults.RatingThreshold,
		DefaultRatingBound:      e.defaults.RatingBound,
	}
	if lo, hi := e.ds.DateRange(); !lo.IsZero() {
		m.MinDate = lo.Format(review.DateLayout)
		m.MaxDate = hi.Format(review.DateLayout)
	}
	return m
}

//Personal.AI order the ending
