package routing

import (
	"sync"
	"sync/atomic"
)

// EventSink is the router's view of the external monitoring service: the
// one call the routing table makes on the feedback path. Implementations
// (internal/monitor.Client) must return without blocking on I/O — queue
// and flush asynchronously — since this call happens on the request path.
type EventSink interface {
	Monitor(qc QC, ps PS, nanos int64)
}

type rowHolder struct {
	ptr atomic.Pointer[Row]
}

// Table is the routing table: a concurrent map from query class to a
// distribution over placement sets. Reads (Contains, Get) never block a
// concurrent refresh or drop; refresh and drop serialize against each
// other and against row initialization through mu, exactly as spec.md's
// concurrency model requires ("during any refresh, no initializeRow or
// dropPlacements may interleave").
type Table struct {
	registry *Registry
	sink     EventSink

	mu   sync.Mutex // exclusive writer lock: refresh, InitializeRow, DropPlacements
	rows sync.Map   // QC -> *rowHolder
}

// NewTable builds an empty routing table backed by registry. sink may be
// nil in tests that don't exercise feedback.
func NewTable(registry *Registry, sink EventSink) *Table {
	return &Table{registry: registry, sink: sink}
}

// Registry returns the table's known-adapters registry, for components
// (placement discovery, introspection) that need to register or read
// labels directly.
func (t *Table) Registry() *Registry {
	return t.registry
}

// Contains reports whether a row exists for qc. Lock-free.
func (t *Table) Contains(qc QC) bool {
	_, ok := t.rows.Load(qc)
	return ok
}

// Get returns the current snapshot row for qc, or nil if no row exists.
// The returned *Row is immutable and safe to read concurrently with any
// number of refreshes; it may be one refresh cycle stale, which spec.md
// explicitly allows.
func (t *Table) Get(qc QC) *Row {
	v, ok := t.rows.Load(qc)
	if !ok {
		return nil
	}
	return v.(*rowHolder).ptr.Load()
}

// InitializeRow creates the row for a previously unseen query class qc,
// given the candidate placement sets placement discovery found for it.
// Every candidate not already in the registry is registered, which in
// turn back-fills a NoPlacement entry for that placement set into every
// other existing row — the registry's isomorphism invariant holds the
// instant InitializeRow returns, not just eventually.
func (t *Table) InitializeRow(qc QC, candidates []PS) *Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range candidates {
		t.registry.EnsureKnown(c, "")
	}

	known := t.registry.Known()
	candidateKeys := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		candidateKeys[c.Key()] = struct{}{}
	}

	row := buildRow(known, func(key string) (Weight, bool) {
		if _, ok := candidateKeys[key]; ok {
			return MissingValue, true
		}
		return NoPlacement, true
	})
	t.storeRow(qc, row)

	t.reconcileOtherRows(qc, known)

	return row
}

// reconcileOtherRows rebuilds every row other than except so it carries an
// entry (defaulting to NoPlacement) for every placement set in known. It
// runs with mu already held.
func (t *Table) reconcileOtherRows(except QC, known []PS) {
	t.rows.Range(func(k, v any) bool {
		qc := k.(QC)
		if qc == except {
			return true
		}
		holder := v.(*rowHolder)
		old := holder.ptr.Load()
		oldWeights := old.weightsByKey()
		newRow := buildRow(known, func(key string) (Weight, bool) {
			w, ok := oldWeights[key]
			return w, ok
		})
		holder.ptr.Store(newRow)
		return true
	})
}

// DropPlacements removes every placement set that references any adapter
// in aids, from the registry and from every row. Rows whose own candidate
// placements are entirely dropped are removed from the table. Dropping
// the same adapters twice is a no-op the second time.
func (t *Table) DropPlacements(aids []AID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dropped := t.registry.DropAdapters(aids)
	if len(dropped) == 0 {
		return
	}

	known := t.registry.Known()
	knownKeys := make(map[string]struct{}, len(known))
	for _, ps := range known {
		knownKeys[ps.Key()] = struct{}{}
	}

	t.rows.Range(func(k, v any) bool {
		qc := k.(QC)
		holder := v.(*rowHolder)
		old := holder.ptr.Load()
		oldWeights := old.weightsByKey()

		survivors := 0
		for key, w := range oldWeights {
			if w == NoPlacement {
				continue
			}
			if _, stillKnown := knownKeys[key]; stillKnown {
				survivors++
			}
		}
		if survivors == 0 {
			t.rows.Delete(qc)
			return true
		}

		newRow := buildRow(known, func(key string) (Weight, bool) {
			w, ok := oldWeights[key]
			return w, ok
		})
		holder.ptr.Store(newRow)
		return true
	})
}

// Refresh rewrites every row currently in the table by calling compute
// once per query class, passing the row's current snapshot. A nil return
// from compute leaves that row unchanged. Refresh holds the table's
// exclusive lock for its entire duration, so no InitializeRow or
// DropPlacements call can interleave with it.
func (t *Table) Refresh(compute func(qc QC, old *Row) *Row) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows.Range(func(k, v any) bool {
		qc := k.(QC)
		holder := v.(*rowHolder)
		old := holder.ptr.Load()
		if newRow := compute(qc, old); newRow != nil {
			holder.ptr.Store(newRow)
		}
		return true
	})
}

// OnExecutionTime forwards a routing event to the monitoring service. The
// call must not block the caller: Table relies on its EventSink to queue
// or pipeline the write itself.
func (t *Table) OnExecutionTime(qc QC, ps PS, nanos int64) {
	if t.sink == nil {
		return
	}
	t.sink.Monitor(qc, ps, nanos)
}

// QueryClasses returns every query class currently in the table. Used by
// the refresher to decide what to recompute, and by introspection.
func (t *Table) QueryClasses() []QC {
	var qcs []QC
	t.rows.Range(func(k, v any) bool {
		qcs = append(qcs, k.(QC))
		return true
	})
	return qcs
}

func (t *Table) storeRow(qc QC, row *Row) {
	holder := &rowHolder{}
	holder.ptr.Store(row)
	t.rows.Store(qc, holder)
}

// buildRow constructs a Row covering exactly the placement sets in known,
// in known's order, taking each entry's weight from weightOf when it has
// one and defaulting to NoPlacement otherwise.
func buildRow(known []PS, weightOf func(key string) (Weight, bool)) *Row {
	entries := make([]entry, 0, len(known))
	for _, ps := range known {
		key := ps.Key()
		w, ok := weightOf(key)
		if !ok {
			w = NoPlacement
		}
		entries = append(entries, entry{ps: ps, key: key, weight: w})
	}
	return newRow(entries)
}

// weightsByKey snapshots a row's entries into a key->weight map, used when
// reconciling a row against a changed known-PS set.
func (r *Row) weightsByKey() map[string]Weight {
	if r == nil {
		return nil
	}
	m := make(map[string]Weight, len(r.entries))
	for _, e := range r.entries {
		m[e.key] = e.weight
	}
	return m
}
