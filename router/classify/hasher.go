// Package classify reduces a logical plan to a stable query class (QC):
// an opaque string fingerprint shared by every plan in the same
// equivalence class. classify is stateless and deterministic — the same
// plan, walked twice, always yields the same QC.
package classify

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/polypheny/adaptive-router/internal/plan"
	"github.com/polypheny/adaptive-router/router/routing"
)

// MetricsSink receives the elapsed time of every uncached Classify call,
// if the caller wires one.
type MetricsSink interface {
	RecordClassifyTime(ctx context.Context, ms float64)
}

// Strategy selects how classify reduces a plan to a QC. The active
// strategy is a runtime-mutable configuration value (queryClassProvider);
// Hasher re-reads it on every Classify call that misses its memoization
// cache, so a config change applies to plans not yet classified. A plan
// pointer already in the cache keeps the QC computed under the strategy
// that was active when it was first classified.
type Strategy string

const (
	// StructuralShuttle collects one discriminator string per operator
	// into a set, ignoring literal values and most operator detail. Two
	// plans with the same operator shapes land in the same class even if
	// their column lists differ in length-invariant ways (e.g. two
	// LogicalFilter nodes always discriminate identically).
	StructuralShuttle Strategy = "STRUCTURAL_SHUTTLE"

	// Parameterizer serializes the full plan tree into a canonical
	// string with literal constants replaced by positional parameter
	// markers, so plans differing only in literal values collapse to the
	// same QC.
	Parameterizer Strategy = "PARAMETERIZER"
)

// Hasher classifies logical plans into query classes. It holds no mutable
// state beyond an optional memoization cache; classify(p) for the same
// plan pointer is safe to call concurrently from many request-path
// goroutines.
type Hasher struct {
	strategyFn func() Strategy
	cache      *lru.Cache[*plan.Node, routing.QC]
	metrics    MetricsSink
}

// New builds a Hasher. strategyFn is read on every Classify call that
// misses the memoization cache, so the queryClassProvider config knob can
// change at runtime without reconstructing the hasher; a cache hit returns
// the stored QC without reading it. cacheSize bounds an optional memoization
// cache keyed by plan pointer identity (mirrors the teacher's bounded
// LRU-cache-per-concern shape); pass 0 to disable memoization.
func New(strategyFn func() Strategy, cacheSize int) (*Hasher, error) {
	h := &Hasher{strategyFn: strategyFn}
	if cacheSize > 0 {
		cache, err := lru.New[*plan.Node, routing.QC](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("classify: failed to create memoization cache: %w", err)
		}
		h.cache = cache
	}
	return h, nil
}

// WithMetrics attaches a MetricsSink that times every cache-miss Classify
// call.
func (h *Hasher) WithMetrics(m MetricsSink) *Hasher {
	h.metrics = m
	return h
}

// Classify reduces root to its query class under the currently configured
// strategy. Modification plans (root.IsModification()) are never
// classified by the router's contract — callers must check that first;
// Classify does not special-case it so the hasher stays a pure function of
// (plan, strategy).
func (h *Hasher) Classify(root *plan.Node) routing.QC {
	if h.cache != nil {
		if cached, ok := h.cache.Get(root); ok {
			return cached
		}
	}

	start := time.Now()

	var qc routing.QC
	switch h.strategyFn() {
	case StructuralShuttle:
		qc = structuralShuttle(root)
	default:
		qc = parameterize(root)
	}

	if h.metrics != nil {
		h.metrics.RecordClassifyTime(context.Background(), float64(time.Since(start))/float64(time.Millisecond))
	}

	if h.cache != nil {
		h.cache.Add(root, qc)
	}
	return qc
}

// structuralShuttle implements the discriminator-set strategy from the
// router's query class hasher component design.
func structuralShuttle(root *plan.Node) routing.QC {
	seen := make(map[string]struct{})
	plan.Walk(root, func(n *plan.Node) {
		d := discriminator(n)
		if d == "" {
			return
		}
		seen[d] = struct{}{}
	})

	discriminators := make([]string, 0, len(seen))
	for d := range seen {
		discriminators = append(discriminators, d)
	}
	sort.Strings(discriminators)

	return routing.QC("{" + strings.Join(discriminators, ", ") + "}")
}

// discriminator renders the single discriminator string for one operator
// node, per the router's enumerated list. LogicalValues is terminal and
// contributes no discriminator.
func discriminator(n *plan.Node) string {
	switch n.Kind {
	case plan.KindTableScan:
		return "TableScan#" + n.QualifiedName
	case plan.KindAggregate:
		return "LogicalAggregate#" + aggCallList(n.AggCalls)
	case plan.KindFilter:
		return "LogicalFilter"
	case plan.KindProject:
		return fmt.Sprintf("LogicalProject#%d", n.ProjectArity)
	case plan.KindJoin:
		return fmt.Sprintf("LogicalJoin#%s#%s", n.JoinLHS.QualifiedName, n.JoinRHS.QualifiedName)
	case plan.KindSort:
		return "LogicalSort"
	case plan.KindUnion:
		return "LogicalUnion"
	case plan.KindIntersect:
		return "LogicalIntersect"
	case plan.KindMinus:
		return "LogicalMinus"
	case plan.KindExchange:
		return "LogicalExchange#" + string(n.Distribution)
	case plan.KindCorrelate:
		return "LogicalCorrelate"
	case plan.KindMatch:
		return "LogicalMatch#" + n.QualifiedName
	case plan.KindValues:
		return ""
	default:
		return "other#" + n.OperatorKind
	}
}

// aggCallList renders the aggregate call list portion of a
// LogicalAggregate discriminator, e.g. "COUNT(*),SUM(amount)".
func aggCallList(calls []plan.AggCall) string {
	parts := make([]string, len(calls))
	for i, c := range calls {
		parts[i] = c.Function + "(" + c.Operand + ")"
	}
	return strings.Join(parts, ",")
}

// parameterize implements the Parameterizer strategy: a full canonical
// serialization of the tree with literal constants collapsed to a
// positional marker, so "x = 3" and "x = 7" produce identical output.
func parameterize(root *plan.Node) routing.QC {
	var sb strings.Builder
	counter := 0
	serialize(root, &sb, &counter)
	return routing.QC(sb.String())
}

func serialize(n *plan.Node, sb *strings.Builder, paramCounter *int) {
	if n == nil {
		sb.WriteString("nil")
		return
	}

	sb.WriteString(discriminator(n))

	if len(n.Literals) > 0 {
		sb.WriteByte('(')
		for i := range n.Literals {
			if i > 0 {
				sb.WriteByte(',')
			}
			*paramCounter++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(*paramCounter))
		}
		sb.WriteByte(')')
	}

	if len(n.Children) > 0 {
		sb.WriteByte('[')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			serialize(c, sb, paramCounter)
		}
		sb.WriteByte(']')
	}
}
