package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// Quarter is a calendar quarter.
type Quarter struct {
	Year int
	Q    int // 1..4
}

// QuarterOf truncates t to its calendar quarter.
func QuarterOf(t time.Time) Quarter {
	return Quarter{Year: t.Year(), Q: (int(t.Month())-1)/3 + 1}
}

// ParseQuarter parses "2018Q1" (case-insensitive, optional dash: "2018-Q1").
func ParseQuarter(s string) (Quarter, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	i := strings.IndexByte(u, 'Q')
	if i <= 0 || i == len(u)-1 {
		return Quarter{}, fmt.Errorf("analytics: invalid quarter %q", s)
	}
	year, err := strconv.Atoi(strings.TrimSuffix(u[:i], "-"))
	if err != nil {
		return Quarter{}, fmt.Errorf("analytics: invalid quarter year %q: %w", s, err)
	}
	q, err := strconv.Atoi(u[i+1:])
	if err != nil || q < 1 || q > 4 {
		return Quarter{}, fmt.Errorf("analytics: invalid quarter number %q", s)
	}
	return Quarter{Year: year, Q: q}, nil
}

func (q Quarter) String() string { return fmt.Sprintf("%dQ%d", q.Year, q.Q) }

// ordinal is a monotonically increasing quarter index.
func (q Quarter) ordinal() int { return q.Year*4 + q.Q - 1 }

// Start returns the first day of the quarter.
func (q Quarter) Start() time.Time {
	return time.Date(q.Year, time.Month((q.Q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterAxis is the fixed, inclusive quarter range every trend series is
// reindexed onto.  It is read-only after construction.
type QuarterAxis struct {
	first Quarter
	n     int
}

// Default axis bounds.
const (
	DefaultAxisStart = "2018Q1"
	DefaultAxisEnd   = "2024Q2"
)

// NewQuarterAxis builds the axis from start to end inclusive.
func NewQuarterAxis(start, end Quarter) (*QuarterAxis, error) {
	if end.ordinal() < start.ordinal() {
		return nil, errors.New(errors.ErrCodeValidation, "quarter axis end precedes start").
			WithDetailf("%s..%s", start, end)
	}
	return &QuarterAxis{first: start, n: end.ordinal() - start.ordinal() + 1}, nil
}

// ParseQuarterAxis builds an axis from two "YYYYQn" labels.
func ParseQuarterAxis(start, end string) (*QuarterAxis, error) {
	s, err := ParseQuarter(start)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid axis start")
	}
	e, err := ParseQuarter(end)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid axis end")
	}
	return NewQuarterAxis(s, e)
}

// DefaultQuarterAxis spans 2018Q1..2024Q2.
func DefaultQuarterAxis() *QuarterAxis {
	a, err := ParseQuarterAxis(DefaultAxisStart, DefaultAxisEnd)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of quarters on the axis.
func (a *QuarterAxis) Len() int { return a.n }

// At returns the quarter at position i.
func (a *QuarterAxis) At(i int) Quarter {
	o := a.first.ordinal() + i
	return Quarter{Year: o / 4, Q: o%4 + 1}
}

// Position returns q's index on the axis, or false if q lies outside it.
func (a *QuarterAxis) Position(q Quarter) (int, bool) {
	i := q.ordinal() - a.first.ordinal()
	if i < 0 || i >= a.n {
		return 0, false
	}
	return i, true
}

// Labels returns "YYYYQn" labels in axis order.
func (a *QuarterAxis) Labels() []string {
	out := make([]string, a.n)
	for i := range out {
		out[i] = a.At(i).String()
	}
	return out
}

// Bucket groups the ratings of rows by axis quarter.  Every axis position is
// present in the result, possibly empty; rows dated outside the axis are
// dropped.
func Bucket(ds *review.Dataset, rows []int, axis *QuarterAxis) [][]int {
	buckets := make([][]int, axis.Len())
	for _, row := range rows {
		r := ds.At(row)
		if i, ok := axis.Position(QuarterOf(r.Date)); ok {
			buckets[i] = append(buckets[i], r.Rating)
		}
	}
	return buckets
}

// MeanSeries turns rating buckets into per-quarter means.  Empty quarters are
// missing, never zero.
func MeanSeries(buckets [][]int) Series {
	out := make(Series, len(buckets))
	for i, b := range buckets {
		if len(b) == 0 {
			continue
		}
		sum := 0
		for _, r := range b {
			sum += r
		}
		out[i] = Num(float64(sum) / float64(len(b)))
	}
	return out
}

//Personal.AI order the ending
