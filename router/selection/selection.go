// Package selection implements the selection policy: given a query
// class's row, choose one placement set to route this query to.
package selection

import (
	"math/rand"

	"github.com/polypheny/adaptive-router/internal/routererr"
	"github.com/polypheny/adaptive-router/router/routing"
)

// ConfigSource supplies the similar_short percentage that decides whether
// selection is deterministic or weighted-random. Re-read on every call so
// a runtime config change takes effect immediately.
type ConfigSource interface {
	ShortSimilarPct() int
}

// Policy selects a placement set from a row. A Policy holds no per-call
// state; Select is safe to call concurrently from many request-path
// goroutines, each with its own *rand.Rand (rand.Rand is not
// goroutine-safe, so callers must not share one across goroutines).
type Policy struct {
	config ConfigSource
}

// New builds a selection Policy.
func New(config ConfigSource) *Policy {
	return &Policy{config: config}
}

// Select picks a placement set for row under rng. row must be non-nil and
// non-empty; first-sighting rows (no row exists yet for this QC) are
// handled by callers via SelectFirstSighting, not here.
//
// Algorithm:
//  1. Exploration: if any entry is MISSING_VALUE, return it — try every
//     candidate adapter placement at least once before exploiting.
//  2. If similar_short == 0, selection is deterministic: return the one
//     PS with weight 100.
//  3. Otherwise weighted random: draw r in [1,100], accumulate
//     max(weight, 0) in row order, return the first PS whose running sum
//     reaches r.
func (p *Policy) Select(row *routing.Row, rng *rand.Rand) (routing.PS, error) {
	if row == nil || row.Len() == 0 {
		return nil, routererr.ErrNoCandidatePlacements
	}

	var explore routing.PS
	found := false
	row.Each(func(ps routing.PS, w routing.Weight) {
		if !found && w == routing.MissingValue {
			explore = ps
			found = true
		}
	})
	if found {
		return explore, nil
	}

	if p.config.ShortSimilarPct() == 0 {
		var det routing.PS
		ok := false
		row.Each(func(ps routing.PS, w routing.Weight) {
			if w == 100 {
				det = ps
				ok = true
			}
		})
		if !ok {
			return nil, routererr.ErrSelectionExhausted
		}
		return det, nil
	}

	r := rng.Intn(100) + 1
	running := 0
	var chosen routing.PS
	chosenOK := false
	row.Each(func(ps routing.PS, w routing.Weight) {
		if chosenOK {
			return
		}
		if w > 0 {
			running += int(w)
		}
		if running >= r {
			chosen = ps
			chosenOK = true
		}
	})
	if !chosenOK {
		return nil, routererr.ErrSelectionExhausted
	}
	return chosen, nil
}

// SelectFirstSighting handles a query class the table has never seen: the
// selection for this one query is the first candidate PS placement
// discovery returned, and the caller is responsible for initializing the
// row from the same candidate list (routing.Table.InitializeRow).
func SelectFirstSighting(candidates []routing.PS) (routing.PS, error) {
	if len(candidates) == 0 {
		return nil, routererr.ErrNoCandidatePlacements
	}
	return candidates[0], nil
}
