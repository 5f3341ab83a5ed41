// Package placement computes the candidate adapter placement sets (PS) a
// query against a given table can be routed to. The router never plans
// cross-adapter joins dynamically: it either finds a single adapter that
// fully replicates the table, or stitches together one synthetic
// combination and relies on that pre-picked stitch.
package placement

import (
	"sort"

	"github.com/polypheny/adaptive-router/router/routing"
)

// ColumnSet is an unordered set of column identifiers.
type ColumnSet map[int32]struct{}

// NewColumnSet builds a ColumnSet from a slice of column ids.
func NewColumnSet(ids []int32) ColumnSet {
	cs := make(ColumnSet, len(ids))
	for _, id := range ids {
		cs[id] = struct{}{}
	}
	return cs
}

// Contains reports whether id is a member of the set.
func (cs ColumnSet) Contains(id int32) bool {
	_, ok := cs[id]
	return ok
}

// Equal reports whether cs and other contain exactly the same columns.
func (cs ColumnSet) Equal(other ColumnSet) bool {
	if len(cs) != len(other) {
		return false
	}
	for id := range cs {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// TableView is the catalog's view of one table: which adapter hosts which
// columns, and the table's full column set.
type TableView struct {
	// PlacedColumns maps an adapter id to the list of column ids it hosts,
	// in the order the catalog returns them. Discover compares these lists
	// as sets.
	PlacedColumns map[routing.AID][]int32

	// ColumnIDs is the table's full, ordered column set.
	ColumnIDs []int32
}

func (v TableView) fullSet() ColumnSet {
	return NewColumnSet(v.ColumnIDs)
}

// Discover computes the candidate placement sets for table view v, per the
// router's two-step contract:
//
//  1. Every adapter whose placed columns equal the full column set is, on
//     its own, a singleton candidate PS.
//  2. If no singleton fully covers the table, construct exactly one
//     synthetic combined PS: start from the adapter with the greatest
//     number of placed columns, then for each still-uncovered column pick
//     any adapter that has it (the first one the catalog iteration
//     returns); the union of adapters chosen is the one combined PS.
//
// Discover returns an empty slice, never an error, when no candidate
// exists — callers (selection.SelectFirstSighting, reached through
// engine.Route) are responsible for turning "no candidates" into
// routererr.ErrNoCandidatePlacements.
func Discover(v TableView) []routing.PS {
	full := v.fullSet()

	aids := sortedAIDs(v.PlacedColumns)

	var singletons []routing.PS
	for _, aid := range aids {
		cols := NewColumnSet(v.PlacedColumns[aid])
		if cols.Equal(full) {
			singletons = append(singletons, routing.NewPS(aid))
		}
	}
	if len(singletons) > 0 {
		return singletons
	}

	if len(v.PlacedColumns) == 0 {
		return nil
	}

	combined := synthesize(v, aids, full)
	if len(combined) == 0 {
		return nil
	}
	return []routing.PS{combined}
}

// synthesize builds the one combined placement set for step 2: the
// largest-coverage adapter first, then one adapter per remaining column,
// chosen in catalog iteration order (aids is pre-sorted for determinism,
// standing in for "first one returned by the catalog").
func synthesize(v TableView, aids []routing.AID, full ColumnSet) routing.PS {
	best := aids[0]
	for _, aid := range aids[1:] {
		if len(v.PlacedColumns[aid]) > len(v.PlacedColumns[best]) {
			best = aid
		}
	}

	chosen := map[routing.AID]struct{}{best: {}}
	covered := NewColumnSet(v.PlacedColumns[best])

	for _, col := range v.ColumnIDs {
		if covered.Contains(col) {
			continue
		}
		for _, aid := range aids {
			if containsColumn(v.PlacedColumns[aid], col) {
				chosen[aid] = struct{}{}
				covered[col] = struct{}{}
				break
			}
		}
	}

	if !covered.Equal(full) {
		// The catalog has a column no adapter hosts; no valid stitch exists.
		return nil
	}

	result := make(routing.PS, len(chosen))
	for aid := range chosen {
		result[aid] = struct{}{}
	}
	return result
}

func containsColumn(cols []int32, target int32) bool {
	for _, c := range cols {
		if c == target {
			return true
		}
	}
	return false
}

func sortedAIDs(m map[routing.AID][]int32) []routing.AID {
	aids := make([]routing.AID, 0, len(m))
	for aid := range m {
		aids = append(aids, aid)
	}
	sort.Slice(aids, func(i, j int) bool { return aids[i] < aids[j] })
	return aids
}
