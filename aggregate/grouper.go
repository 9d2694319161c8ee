// Package aggregate computes per-drug prescription statistics: the number
// of unique prescribers and the total cost with null-cost imputation, and
// ranks the results for reporting.
package aggregate

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// Required record fields.
const (
	FieldDrugName = "drug_name"
	FieldDrugCost = "drug_cost"
	FieldID       = "id"
)

// RequiredFields lists the columns every input record must carry.
var RequiredFields = []string{FieldDrugName, FieldDrugCost, FieldID}

// ErrMissingField is returned when a record lacks a required field.
var ErrMissingField = errors.New("missing required field")

// Record is one prescription event keyed by column name.
type Record map[string]string

// Source yields input records in file order and returns io.EOF after the
// last one.
type Source interface {
	Next() (Record, error)
}

// DrugCost is the aggregate for one drug.
type DrugCost struct {
	DrugName      string
	NumPrescriber int
	TotalCost     Cost
}

// Stats summarizes what a Grouper has consumed.
type Stats struct {
	Records        int64
	MalformedCosts int64
	Drugs          int
}

type drugGroup struct {
	count       int64
	nulls       int64
	sum         Cost
	prescribers map[string]struct{}
}

// Grouper partitions records by exact drug name and accumulates per-group
// counts and cost sums. Records are not retained.
type Grouper struct {
	groups map[string]*drugGroup
	stats  Stats
}

func NewGrouper() *Grouper {
	return &Grouper{groups: make(map[string]*drugGroup)}
}

// Add folds one record into its drug group. A drug_cost that does not parse
// counts as 0 and is imputed later; only a missing field is an error.
func (g *Grouper) Add(rec Record) error {
	name, ok := rec[FieldDrugName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, FieldDrugName)
	}
	raw, ok := rec[FieldDrugCost]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, FieldDrugCost)
	}
	id, ok := rec[FieldID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, FieldID)
	}

	grp := g.groups[name]
	if grp == nil {
		grp = &drugGroup{prescribers: make(map[string]struct{})}
		g.groups[name] = grp
	}

	grp.count++
	g.stats.Records++
	if cost, ok := ParseCost(raw); ok {
		grp.sum = grp.sum.Add(cost)
	} else {
		grp.nulls++
		g.stats.MalformedCosts++
	}
	grp.prescribers[id] = struct{}{}
	return nil
}

// Stats returns counters for everything added so far.
func (g *Grouper) Stats() Stats {
	s := g.stats
	s.Drugs = len(g.groups)
	return s
}

// Aggregates returns one DrugCost per drug, ordered by drug name.
//
// Each null cost is imputed with the floor average of its group, where the
// average is taken over every record in the group (nulls included, as 0):
//
//	average    = floor(sum / count)
//	total_cost = sum + average * nulls
func (g *Grouper) Aggregates() []DrugCost {
	names := make([]string, 0, len(g.groups))
	for name := range g.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]DrugCost, 0, len(names))
	for _, name := range names {
		grp := g.groups[name]
		total := grp.sum
		if grp.nulls > 0 {
			avg := grp.sum.FloorDiv(grp.count)
			total = total.Add(avg.Mul(grp.nulls))
		}
		out = append(out, DrugCost{
			DrugName:      name,
			NumPrescriber: len(grp.prescribers),
			TotalCost:     total,
		})
	}
	return out
}

// Group drains src into a new Grouper and returns its aggregates.
func Group(src Source) ([]DrugCost, Stats, error) {
	g := NewGrouper()
	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, g.Stats(), err
		}
		if err := g.Add(rec); err != nil {
			return nil, g.Stats(), fmt.Errorf("record %d: %w", g.stats.Records+1, err)
		}
	}
	return g.Aggregates(), g.Stats(), nil
}
