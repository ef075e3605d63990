package analytics

import (
	"strings"

	"github.com/turtacn/ReviewPulse/internal/domain/review"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// SelectionKind tags the variants of GroupSelection.
type SelectionKind string

const (
	// SelectionEntity reports one entity under its own name.
	SelectionEntity SelectionKind = "entity"
	// SelectionMerge reports several entities merged under a synthetic label
	// such as "Selection A".
	SelectionMerge SelectionKind = "merge"
	// SelectionCompetitors reports every listed entity as its own group.
	SelectionCompetitors SelectionKind = "competitors"
)

// GroupSelection is one caller-requested reporting group.
//
// Groups are not a partition.  An entity may be counted inside a merge group
// and again as its own competitor row, and every group also feeds the Total
// column.  This double counting is the intended reporting convention.
type GroupSelection struct {
	Kind     SelectionKind `json:"kind" yaml:"kind"`
	Label    string        `json:"label,omitempty" yaml:"label,omitempty"`
	Entities []string      `json:"entities" yaml:"entities"`
}

// Group is a resolved reporting group: a view onto dataset rows.
type Group struct {
	Label    string
	Kind     SelectionKind
	Entities []string
	// Rows are dataset indices in dataset order; empty when nothing matched.
	Rows []int
}

// Partition is the output of Resolve.
type Partition struct {
	// Groups are ordered merge groups first, then the remaining groups in
	// request order.
	Groups []Group
	// Filtered is the deduplicated union of all group rows in dataset order.
	Filtered []int
}

// Labels returns the group labels in partition order.
func (p Partition) Labels() []string {
	out := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		out[i] = g.Label
	}
	return out
}

// validateSelections checks selection shapes and label uniqueness.
func validateSelections(selections []GroupSelection) error {
	if len(selections) == 0 {
		return errors.New(errors.ErrCodeInvalidSelection, "at least one group selection is required")
	}
	seen := make(map[string]struct{})
	for i, sel := range selections {
		switch sel.Kind {
		case SelectionEntity:
			if len(sel.Entities) != 1 {
				return errors.New(errors.ErrCodeInvalidSelection, "entity selection takes exactly one entity").
					WithDetailf("selection %d has %d", i, len(sel.Entities))
			}
		case SelectionMerge:
			if strings.TrimSpace(sel.Label) == "" {
				return errors.New(errors.ErrCodeInvalidSelection, "merge selection requires a label").
					WithDetailf("selection %d", i)
			}
			if len(sel.Entities) == 0 {
				return errors.New(errors.ErrCodeInvalidSelection, "merge selection lists no entities").
					WithDetail(sel.Label)
			}
		case SelectionCompetitors:
			if len(sel.Entities) == 0 {
				return errors.New(errors.ErrCodeInvalidSelection, "competitor selection lists no entities").
					WithDetailf("selection %d", i)
			}
		default:
			return errors.New(errors.ErrCodeInvalidSelection, "unknown selection kind").WithDetail(string(sel.Kind))
		}
		for _, label := range selectionLabels(sel) {
			if strings.TrimSpace(label) == "" {
				return errors.New(errors.ErrCodeInvalidSelection, "blank entity name").WithDetailf("selection %d", i)
			}
			if label == ColumnTopic || label == ColumnTotal {
				return errors.New(errors.ErrCodeDuplicateGroupLabel, "group label collides with a reserved column").WithDetail(label)
			}
			if _, dup := seen[label]; dup {
				return errors.New(errors.ErrCodeDuplicateGroupLabel, "duplicate group label").WithDetail(label)
			}
			seen[label] = struct{}{}
		}
	}
	return nil
}

func selectionLabels(sel GroupSelection) []string {
	switch sel.Kind {
	case SelectionMerge:
		return []string{sel.Label}
	default:
		return sel.Entities
	}
}

// Resolve maps selections onto dataset row views.  Unknown entities resolve to
// empty groups.  selections must have passed validation.
func Resolve(ds *review.Dataset, selections []GroupSelection) Partition {
	var merged, plain []Group
	for _, sel := range selections {
		switch sel.Kind {
		case SelectionMerge:
			merged = append(merged, Group{
				Label:    sel.Label,
				Kind:     SelectionMerge,
				Entities: sel.Entities,
				Rows:     mergeRows(ds, sel.Entities),
			})
		default:
			for _, name := range sel.Entities {
				plain = append(plain, Group{
					Label:    name,
					Kind:     sel.Kind,
					Entities: []string{name},
					Rows:     ds.Rows(name),
				})
			}
		}
	}

	groups := append(merged, plain...)
	return Partition{Groups: groups, Filtered: union(ds.Len(), groups)}
}

// mergeRows returns the rows of all entities in dataset order, each row once
// even when an entity is listed twice.
func mergeRows(ds *review.Dataset, entities []string) []int {
	if len(entities) == 1 {
		return ds.Rows(entities[0])
	}
	member := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		member[e] = struct{}{}
	}
	var rows []int
	for i := 0; i < ds.Len(); i++ {
		if _, ok := member[ds.At(i).Entity]; ok {
			rows = append(rows, i)
		}
	}
	return rows
}

func union(n int, groups []Group) []int {
	if len(groups) == 1 {
		return groups[0].Rows
	}
	mark := make([]bool, n)
	count := 0
	for _, g := range groups {
		for _, r := range g.Rows {
			if !mark[r] {
				mark[r] = true
				count++
			}
		}
	}
	out := make([]int, 0, count)
	for i, m := range mark {
		if m {
			out = append(out, i)
		}
	}
	return out
}

//Personal.AI order the ending
