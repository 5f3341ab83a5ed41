package routing

import (
	"sort"
	"sync"
)

// Registry is the known-adapters registry: every placement set the router
// has ever seen, mapped to a human label, shared across all rows so that
// rows stay isomorphic and columnwise comparable.
type Registry struct {
	mu     sync.RWMutex
	sets   map[string]PS
	labels map[string]string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sets:   make(map[string]PS),
		labels: make(map[string]string),
	}
}

// EnsureKnown registers ps if it is not already known. If label is
// non-empty it (re)sets the label even for an already-known ps. Returns
// true iff ps was newly registered.
func (r *Registry) EnsureKnown(ps PS, label string) bool {
	key := ps.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, known := r.sets[key]
	if known {
		if label != "" {
			r.labels[key] = label
		}
		return false
	}

	r.sets[key] = ps
	if label == "" {
		label = key
	}
	r.labels[key] = label
	return true
}

// Known returns every registered placement set, in ascending key order.
// This order is the router's canonical row-iteration order: it decides
// which PS the exploration rule and the weighted-random draw see first.
func (r *Registry) Known() []PS {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.sets))
	for k := range r.sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]PS, len(keys))
	for i, k := range keys {
		out[i] = r.sets[k]
	}
	return out
}

// Label returns the human label registered for ps, if any.
func (r *Registry) Label(ps PS) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.labels[ps.Key()]
	return l, ok
}

// DropAdapters removes every known placement set that references any of
// the given adapter ids, from both the set registry and the label map.
// It returns the placement sets that were actually dropped — an empty
// result means the call was a no-op (idempotent repeat).
func (r *Registry) DropAdapters(aids []AID) []PS {
	toDrop := make(map[AID]struct{}, len(aids))
	for _, a := range aids {
		toDrop[a] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var dropped []PS
	for key, ps := range r.sets {
		if !intersects(ps, toDrop) {
			continue
		}
		dropped = append(dropped, ps)
		delete(r.sets, key)
		delete(r.labels, key)
	}
	return dropped
}

func intersects(ps PS, aids map[AID]struct{}) bool {
	for aid := range ps {
		if _, ok := aids[aid]; ok {
			return true
		}
	}
	return false
}
