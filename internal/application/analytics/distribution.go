package analytics

import (
	"github.com/turtacn/ReviewPulse/internal/domain/review"
)

// Momentum is the direction of a rating's recent share.
type Momentum string

const (
	MomentumRising  Momentum = "rising"
	MomentumFalling Momentum = "falling"
)

// Momentum compares the last momentumSpan axis quarters against the
// momentumSpan quarters before them.
const momentumSpan = 2

// RatingBucket is one bar of the rating histogram.
type RatingBucket struct {
	Rating   int      `json:"rating" yaml:"rating"`
	Count    int      `json:"count" yaml:"count"`
	Share    float64  `json:"share" yaml:"share"`
	Momentum Momentum `json:"momentum" yaml:"momentum"`
	// Recent and Prior are the mean quarterly shares momentum is decided on.
	Recent Value `json:"recent_share" yaml:"recent_share"`
	Prior  Value `json:"prior_share" yaml:"prior_share"`
	// QuarterShares is the rating's share within each axis quarter; quarters
	// without reviews are missing.
	QuarterShares Series `json:"quarter_shares" yaml:"quarter_shares"`
}

// RatingDistribution is the 1..5 histogram over the filtered superset.
type RatingDistribution struct {
	Total   int            `json:"total" yaml:"total"`
	Buckets []RatingBucket `json:"buckets" yaml:"buckets"`
}

// SummarizeRatings builds the histogram and momentum indicators for rows.
// All five ratings are always present.
func SummarizeRatings(ds *review.Dataset, rows []int, axis *QuarterAxis) RatingDistribution {
	const k = review.MaxRating - review.MinRating + 1
	var counts [k]int
	perQuarter := make([][k]int, axis.Len())
	quarterTotal := make([]int, axis.Len())

	for _, row := range rows {
		r := ds.At(row)
		idx := r.Rating - review.MinRating
		counts[idx]++
		if q, ok := axis.Position(QuarterOf(r.Date)); ok {
			perQuarter[q][idx]++
			quarterTotal[q]++
		}
	}

	dist := RatingDistribution{Total: len(rows), Buckets: make([]RatingBucket, k)}
	for idx := 0; idx < k; idx++ {
		shares := make(Series, axis.Len())
		for q := range shares {
			if quarterTotal[q] > 0 {
				shares[q] = Num(float64(perQuarter[q][idx]) / float64(quarterTotal[q]) * 100)
			}
		}
		n := len(shares)
		recent := mean(shares[pyIndex(n, -momentumSpan):])
		prior := mean(shares[pyIndex(n, -2*momentumSpan):pyIndex(n, -momentumSpan)])

		b := RatingBucket{
			Rating:        idx + review.MinRating,
			Count:         counts[idx],
			Momentum:      momentumOf(recent, prior),
			Recent:        recent,
			Prior:         prior,
			QuarterShares: shares,
		}
		if len(rows) > 0 {
			b.Share = round1(float64(counts[idx]) / float64(len(rows)) * 100)
		}
		dist.Buckets[idx] = b
	}
	return dist
}

// momentumOf is rising only on a strict increase; ties and undefined means
// are falling.
func momentumOf(recent, prior Value) Momentum {
	r, ok1 := recent.Float()
	p, ok2 := prior.Float()
	if ok1 && ok2 && r > p {
		return MomentumRising
	}
	return MomentumFalling
}

// pyIndex resolves a possibly negative slice bound against length n and
// clamps it to [0, n].
func pyIndex(n, i int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

//Personal.AI order the ending
