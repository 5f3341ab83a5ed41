// Package routing implements the routing table: a concurrent map from
// query class to a distribution over adapter placement sets, refreshed
// under an exclusive writer lock and read lock-free on the request path.
package routing

import (
	"sort"
	"strconv"
	"strings"
)

// QC is an opaque query-class fingerprint produced by router/classify.
type QC string

// AID is a small non-negative integer adapter id assigned by the catalog.
type AID int32

// Weight is either a sentinel or an integer selection percentage in
// [0, 100].
type Weight int32

const (
	// NoPlacement marks a PS that cannot serve this query class at all.
	NoPlacement Weight = -1
	// MissingValue marks a PS with no timing sample yet.
	MissingValue Weight = -2
)

// PS is an unordered set of adapter ids sufficient to answer a query
// against a given table. Equality is by set membership.
type PS map[AID]struct{}

// NewPS builds a singleton placement set.
func NewPS(aid AID) PS {
	return PS{aid: {}}
}

// NewPSFromSlice builds a placement set from a slice of adapter ids.
func NewPSFromSlice(aids []AID) PS {
	ps := make(PS, len(aids))
	for _, a := range aids {
		ps[a] = struct{}{}
	}
	return ps
}

// Key renders PS as the canonical, order-independent string used both as
// a map key and as the "<PS-string>" half of the execution-time monitor's
// feedback reference tag: a bracketed, ascending, comma-separated list of
// adapter ids, e.g. "[1,3]".
func (ps PS) Key() string {
	aids := make([]int, 0, len(ps))
	for aid := range ps {
		aids = append(aids, int(aid))
	}
	sort.Ints(aids)

	var sb strings.Builder
	sb.WriteByte('[')
	for i, a := range aids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(a))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports whether ps and other contain exactly the same adapter ids.
func (ps PS) Equal(other PS) bool {
	if len(ps) != len(other) {
		return false
	}
	for aid := range ps {
		if _, ok := other[aid]; !ok {
			return false
		}
	}
	return true
}

// entry is one (PS, Weight) pair within a row, kept alongside its key so
// iteration order — significant for the selection policy's weighted-random
// accumulation and for "first MISSING_VALUE wins" exploration — is decided
// once, when the row is built, rather than recomputed from a map on every
// read.
type entry struct {
	ps     PS
	key    string
	weight Weight
}

// Row is an immutable snapshot of one query class's distribution over
// every known placement set. Rows are swapped wholesale (atomic pointer
// swap) on refresh; nothing ever mutates a Row in place, so a reader that
// holds a *Row reference sees a fully consistent snapshot even while a
// refresh is in flight for other classes.
type Row struct {
	entries []entry
}

// newRow builds a Row from an ordered list of (PS, Weight) pairs. The
// order given is preserved — callers control iteration order by
// constructing entries in the order they want read back.
func newRow(pairs []entry) *Row {
	return &Row{entries: pairs}
}

// RowEntry is one (PS, Weight) pair, exported so packages outside routing
// (router/refresh) can assemble a replacement Row without reaching into
// Row's internals.
type RowEntry struct {
	PS     PS
	Weight Weight
}

// NewRow builds a Row from an ordered list of RowEntry pairs, preserving
// the given order as the row's canonical iteration order.
func NewRow(entries []RowEntry) *Row {
	out := make([]entry, len(entries))
	for i, e := range entries {
		out[i] = entry{ps: e.PS, key: e.PS.Key(), weight: e.Weight}
	}
	return newRow(out)
}

// Len reports how many placement sets this row has an entry for.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Weight returns the weight associated with ps in this row, and whether an
// entry for ps exists at all.
func (r *Row) Weight(ps PS) (Weight, bool) {
	if r == nil {
		return 0, false
	}
	key := ps.Key()
	for _, e := range r.entries {
		if e.key == key {
			return e.weight, true
		}
	}
	return 0, false
}

// Each calls fn for every (PS, Weight) entry in this row, in the row's
// canonical iteration order.
func (r *Row) Each(fn func(ps PS, w Weight)) {
	if r == nil {
		return
	}
	for _, e := range r.entries {
		fn(e.ps, e.weight)
	}
}

// Sum returns the sum of all non-sentinel (>= 0) weights in the row, and
// whether the row contains at least one MissingValue entry.
func (r *Row) Sum() (sum int, hasMissing bool) {
	if r == nil {
		return 0, false
	}
	for _, e := range r.entries {
		switch e.weight {
		case MissingValue:
			hasMissing = true
		case NoPlacement:
			// excluded from the sum
		default:
			sum += int(e.weight)
		}
	}
	return sum, hasMissing
}
