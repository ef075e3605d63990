package analytics

import "fmt"

// Band is the satisfaction band of the average rating, matching the gauge
// colour steps (1-2, 2-3, 3-5).
type Band string

const (
	BandLow     Band = "low"
	BandNeutral Band = "neutral"
	BandHigh    Band = "high"
)

// Summary is the headline block of a QueryResult.
type Summary struct {
	AverageRating Value  `json:"average_rating" yaml:"average_rating"`
	AverageLabel  string `json:"average_label" yaml:"average_label"`
	Band          Band   `json:"band,omitempty" yaml:"band,omitempty"`
	Respondents   int    `json:"respondents" yaml:"respondents"`
}

func summarize(avg Value, respondents int) Summary {
	s := Summary{AverageRating: avg, AverageLabel: NotAvailable, Respondents: respondents}
	if v, ok := avg.Float(); ok {
		s.AverageLabel = fmt.Sprintf("%.1f", v)
		switch {
		case v < 2:
			s.Band = BandLow
		case v < 3:
			s.Band = BandNeutral
		default:
			s.Band = BandHigh
		}
	}
	return s
}

// GroupSummary is the headline block of one group.
type GroupSummary struct {
	Group   string `json:"group" yaml:"group"`
	Summary `yaml:",inline"`
}

// Trend is one group's quarterly trend line on the shared axis.
type Trend struct {
	Group string `json:"group" yaml:"group"`
	// Counts is the number of reviews per axis quarter.
	Counts []int `json:"counts" yaml:"counts"`
	// Mean is the raw quarterly mean; empty quarters are missing.
	Mean Series `json:"mean" yaml:"mean"`
	// Interpolated fills interior gaps and carries the tail forward.
	Interpolated Series `json:"interpolated" yaml:"interpolated"`
	// MovingAverage is the plotted line.
	MovingAverage Series `json:"moving_average" yaml:"moving_average"`
}

// QueryResult bundles everything one dashboard refresh needs.
type QueryResult struct {
	Fingerprint  string             `json:"dataset_fingerprint" yaml:"dataset_fingerprint"`
	Quarters     []string           `json:"quarters" yaml:"quarters"`
	Groups       []string           `json:"groups" yaml:"groups"`
	Summary      Summary            `json:"summary" yaml:"summary"`
	PerGroup     []GroupSummary     `json:"group_summaries" yaml:"group_summaries"`
	Trends       []Trend            `json:"trends" yaml:"trends"`
	TopicShares  TopicTable         `json:"topic_shares" yaml:"topic_shares"`
	TopicRatings TopicTable         `json:"topic_ratings" yaml:"topic_ratings"`
	Ratings      RatingDistribution `json:"rating_distribution" yaml:"rating_distribution"`
	Reviews      ReviewListing      `json:"reviews" yaml:"reviews"`
}

// Meta describes the loaded dataset for populating dashboard controls.
type Meta struct {
	Fingerprint string   `json:"dataset_fingerprint" yaml:"dataset_fingerprint"`
	Records     int      `json:"records" yaml:"records"`
	Entities    []string `json:"entities" yaml:"entities"`
	Topics      []string `json:"topics" yaml:"topics"`
	MinDate     string   `json:"min_date,omitempty" yaml:"min_date,omitempty"`
	MaxDate     string   `json:"max_date,omitempty" yaml:"max_date,omitempty"`
	Quarters    []string `json:"quarters" yaml:"quarters"`

	DefaultPercentThreshold float64     `json:"default_percent_threshold" yaml:"default_percent_threshold"`
	DefaultRatingThreshold  float64     `json:"default_rating_threshold" yaml:"default_rating_threshold"`
	DefaultRatingBound      RatingBound `json:"default_rating_bound" yaml:"default_rating_bound"`
}

//Personal.AI order the ending
