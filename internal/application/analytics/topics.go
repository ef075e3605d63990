package analytics

import (
	"sort"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
)

// Highlight classifies a table cell against its row Total.
type Highlight string

const (
	HighlightNormal Highlight = "normal"
	HighlightAbove  Highlight = "above-threshold"
	HighlightBelow  Highlight = "below-threshold"
)

// Stripe is the alternating row background, assigned after sorting.
type Stripe string

const (
	StripeEven Stripe = "even"
	StripeOdd  Stripe = "odd"
)

// Column ids shared by both topic tables.
const (
	ColumnTopic = "Topic"
	ColumnTotal = "Total"
)

// Column describes one table column for the presentation layer.
type Column struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Cell is one group's value in a table row.
type Cell struct {
	Group     string    `json:"group" yaml:"group"`
	Value     Value     `json:"value" yaml:"value"`
	Highlight Highlight `json:"highlight" yaml:"highlight"`
}

// AggregateRow is one topic row of a share or rating table.
type AggregateRow struct {
	Label  string `json:"label" yaml:"label"`
	Total  Value  `json:"total" yaml:"total"`
	Cells  []Cell `json:"cells" yaml:"cells"`
	Stripe Stripe `json:"stripe" yaml:"stripe"`
}

// HighlightEntry lists a non-normal cell by row position and column id.
type HighlightEntry struct {
	Row    int       `json:"row" yaml:"row"`
	Column string    `json:"column" yaml:"column"`
	Class  Highlight `json:"class" yaml:"class"`
}

// TopicTable is a ranked topic table with its column spec and highlight map.
type TopicTable struct {
	Threshold  float64          `json:"threshold" yaml:"threshold"`
	Columns    []Column         `json:"columns" yaml:"columns"`
	Rows       []AggregateRow   `json:"rows" yaml:"rows"`
	Highlights []HighlightEntry `json:"highlights" yaml:"highlights"`
}

// topicStats accumulates per-topic mention counts and rating sums over a view.
type topicStats struct {
	n      int
	counts []int
	sums   []int
}

func collectTopicStats(ds *review.Dataset, rows []int) topicStats {
	k := ds.Taxonomy().Len()
	st := topicStats{n: len(rows), counts: make([]int, k), sums: make([]int, k)}
	for _, row := range rows {
		r := ds.At(row)
		if r.Topics == 0 {
			continue
		}
		for t := 0; t < k; t++ {
			if r.HasTopic(t) {
				st.counts[t]++
				st.sums[t] += r.Rating
			}
		}
	}
	return st
}

// share is the mention percentage of topic t; 0 for an empty view.
func (s topicStats) share(t int) Value {
	if s.n == 0 {
		return Num(0)
	}
	return Num(round1(float64(s.counts[t]) / float64(s.n) * 100))
}

// conditionalMean is the mean rating over rows mentioning t; NA when none do.
func (s topicStats) conditionalMean(t int) Value {
	if s.counts[t] == 0 {
		return NA()
	}
	return Num(round1(float64(s.sums[t]) / float64(s.counts[t])))
}

// Classify compares cell against total with threshold.  Either side being
// the sentinel yields HighlightNormal.
func Classify(cell, total Value, threshold float64) Highlight {
	c, ok1 := cell.Float()
	t, ok2 := total.Float()
	switch {
	case !ok1 || !ok2:
		return HighlightNormal
	case c > t+threshold:
		return HighlightAbove
	case c < t-threshold:
		return HighlightBelow
	default:
		return HighlightNormal
	}
}

// topicTables holds the per-view statistics both tables are derived from.
type topicTables struct {
	taxonomy *review.Taxonomy
	labels   []string
	total    topicStats
	groups   []topicStats
}

func newTopicTables(ds *review.Dataset, part Partition) topicTables {
	tt := topicTables{
		taxonomy: ds.Taxonomy(),
		labels:   part.Labels(),
		total:    collectTopicStats(ds, part.Filtered),
		groups:   make([]topicStats, len(part.Groups)),
	}
	for i, g := range part.Groups {
		tt.groups[i] = collectTopicStats(ds, g.Rows)
	}
	return tt
}

func (tt topicTables) build(threshold float64, metric func(topicStats, int) Value) TopicTable {
	k := tt.taxonomy.Len()
	rows := make([]AggregateRow, k)
	for t := 0; t < k; t++ {
		row := AggregateRow{
			Label: tt.taxonomy.Topic(t),
			Total: metric(tt.total, t),
			Cells: make([]Cell, len(tt.groups)),
		}
		for g, st := range tt.groups {
			v := metric(st, t)
			row.Cells[g] = Cell{Group: tt.labels[g], Value: v, Highlight: Classify(v, row.Total, threshold)}
		}
		rows[t] = row
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.rankKey() > rows[j].Total.rankKey()
	})

	table := TopicTable{
		Threshold:  threshold,
		Columns:    tableColumns(tt.labels),
		Rows:       rows,
		Highlights: []HighlightEntry{},
	}
	for i := range rows {
		rows[i].Stripe = StripeEven
		if i%2 == 1 {
			rows[i].Stripe = StripeOdd
		}
		for _, c := range rows[i].Cells {
			if c.Highlight != HighlightNormal {
				table.Highlights = append(table.Highlights, HighlightEntry{Row: i, Column: c.Group, Class: c.Highlight})
			}
		}
	}
	return table
}

// ShareTable is the share-of-mentions table with a percentage-point threshold.
func (tt topicTables) ShareTable(threshold float64) TopicTable {
	return tt.build(threshold, topicStats.share)
}

// RatingTable is the conditional-mean-rating table with a rating-point threshold.
func (tt topicTables) RatingTable(threshold float64) TopicTable {
	return tt.build(threshold, topicStats.conditionalMean)
}

// BuildTopicTables computes both topic tables for a resolved partition.
func BuildTopicTables(ds *review.Dataset, part Partition, percentThreshold, ratingThreshold float64) (share, rating TopicTable) {
	tt := newTopicTables(ds, part)
	return tt.ShareTable(percentThreshold), tt.RatingTable(ratingThreshold)
}

func tableColumns(labels []string) []Column {
	cols := make([]Column, 0, len(labels)+2)
	cols = append(cols, Column{ID: ColumnTopic, Name: ColumnTopic}, Column{ID: ColumnTotal, Name: ColumnTotal})
	for _, l := range labels {
		cols = append(cols, Column{ID: l, Name: l})
	}
	return cols
}

//Personal.AI order the ending
