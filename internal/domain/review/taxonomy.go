// Package review holds the immutable review corpus that every dashboard query
// is computed over: the Record row type, the closed topic Taxonomy and the
// Dataset snapshot that owns both.
package review

import (
	"strings"

	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// MaxTopics bounds the taxonomy size so topic flags fit in one TopicSet word.
const MaxTopics = 64

// DefaultTopics is the taxonomy of the car dealership review corpus.
var DefaultTopics = []string{
	"Kundenservice",
	"Beratung",
	"Freundlichkeit",
	"Fahrzeugübergabe",
	"Zubehör",
	"Werkstattservice",
	"Preis-Leistungs-Verhältnis",
	"Sauberkeit",
	"Zuverlässigkeit",
	"Terminvereinbarung",
	"Lieferzeit",
	"Garantieabwicklung",
	"Reparaturqualität",
	"Auswahl",
}

// Taxonomy is an ordered, closed set of topic identifiers.  It is created once
// at process start and shared by reference; it is never mutated afterwards.
type Taxonomy struct {
	topics []string
	index  map[string]int
}

// NewTaxonomy validates topics and builds a Taxonomy preserving their order.
func NewTaxonomy(topics []string) (*Taxonomy, error) {
	if len(topics) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyTaxonomy, "taxonomy must contain at least one topic")
	}
	if len(topics) > MaxTopics {
		return nil, errors.Newf(errors.ErrCodeEmptyTaxonomy, "taxonomy exceeds %d topics", MaxTopics).
			WithDetailf("got %d", len(topics))
	}
	t := &Taxonomy{
		topics: make([]string, 0, len(topics)),
		index:  make(map[string]int, len(topics)),
	}
	for _, raw := range topics {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, errors.New(errors.ErrCodeEmptyTaxonomy, "taxonomy contains a blank topic")
		}
		if _, dup := t.index[name]; dup {
			return nil, errors.New(errors.ErrCodeEmptyTaxonomy, "duplicate topic in taxonomy").WithDetail(name)
		}
		t.index[name] = len(t.topics)
		t.topics = append(t.topics, name)
	}
	return t, nil
}

// DefaultTaxonomy returns the 14-topic dealership taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(DefaultTopics)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of topics.
func (t *Taxonomy) Len() int { return len(t.topics) }

// Mask returns the TopicSet with every taxonomy position set.
func (t *Taxonomy) Mask() TopicSet { return TopicSet(1)<<uint(len(t.topics)) - 1 }

// Topics returns a copy of the topic identifiers in taxonomy order.
func (t *Taxonomy) Topics() []string {
	out := make([]string, len(t.topics))
	copy(out, t.topics)
	return out
}

// Topic returns the identifier at position i.
func (t *Taxonomy) Topic(i int) string { return t.topics[i] }

// Index returns the position of topic, or false if it is not in the taxonomy.
func (t *Taxonomy) Index(topic string) (int, bool) {
	i, ok := t.index[topic]
	return i, ok
}

// Contains reports whether topic belongs to the taxonomy.
func (t *Taxonomy) Contains(topic string) bool {
	_, ok := t.index[topic]
	return ok
}

// TopicSet is a bitset of topic flags aligned with a Taxonomy's order.
type TopicSet uint64

// Has reports whether the flag at position i is set.
func (s TopicSet) Has(i int) bool { return s&(1<<uint(i)) != 0 }

// With returns a copy of s with the flag at position i set.
func (s TopicSet) With(i int) TopicSet { return s | 1<<uint(i) }

//Personal.AI order the ending
