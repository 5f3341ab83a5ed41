// Package engine composes the router's per-query lifecycle: classify the
// plan into a query class, look up or initialize its routing-table row,
// select a placement set, and (later, out of band) record the execution
// feedback that the periodic refresh consumes. Every other router/*
// package implements one step of this path in isolation; Engine is the
// only thing that actually drives all of them, in order, for a real
// query.
package engine

import (
	"context"
	"math/rand"

	"github.com/polypheny/adaptive-router/internal/plan"
	"github.com/polypheny/adaptive-router/internal/routererr"
	"github.com/polypheny/adaptive-router/router/placement"
	"github.com/polypheny/adaptive-router/router/routing"
	"github.com/polypheny/adaptive-router/router/selection"
)

// Hasher reduces a logical plan to a query class. Satisfied by
// *classify.Hasher.
type Hasher interface {
	Classify(root *plan.Node) routing.QC
}

// Table is the subset of *routing.Table the engine needs to look up and
// initialize rows. Satisfied by *routing.Table.
type Table interface {
	Contains(qc routing.QC) bool
	Get(qc routing.QC) *routing.Row
	InitializeRow(qc routing.QC, candidates []routing.PS) *routing.Row
}

// Catalog resolves a table name to the placement view discovery needs.
// Satisfied by *catalog.Client.
type Catalog interface {
	TableView(ctx context.Context, table string) (placement.TableView, error)
}

// Policy picks a placement set from an existing row. Satisfied by
// *selection.Policy.
type Policy interface {
	Select(row *routing.Row, rng *rand.Rand) (routing.PS, error)
}

// FeedbackSink parses and forwards a post-query execution-time sample.
// Satisfied by *intake.Intake.
type FeedbackSink interface {
	OnExecutionTime(tag string, nanos int64) error
}

// MetricsSink receives the outcome of every Select/SelectFirstSighting
// call, and of a failed catalog lookup on first sighting, if the caller
// wires one.
type MetricsSink interface {
	RecordSelection(ctx context.Context, err error)
}

// Engine composes the router's request path. It holds no per-call state
// and is safe to call concurrently from many request-path goroutines,
// each with its own *rand.Rand.
type Engine struct {
	hasher  Hasher
	table   Table
	catalog Catalog
	policy  Policy
	intake  FeedbackSink
	metrics MetricsSink
}

// New builds an Engine. metrics may be nil in tests that don't care about
// selection counters.
func New(hasher Hasher, table Table, catalog Catalog, policy Policy, intake FeedbackSink, metrics MetricsSink) *Engine {
	return &Engine{
		hasher:  hasher,
		table:   table,
		catalog: catalog,
		policy:  policy,
		intake:  intake,
		metrics: metrics,
	}
}

// Route runs the full per-query lifecycle for root against the named
// table: classify, then either select against the query class's existing
// row (steady state) or discover candidates, initialize the row, and pick
// the first-sighting candidate (first time this query class is seen).
// Modification plans are rejected outright — write plans are never
// classified or routed through the table (internal/plan.Node.IsModification
// documents why); callers should instead use router/ddl.AddColumnCandidates
// to find every adapter a write must reach.
func (e *Engine) Route(ctx context.Context, table string, root *plan.Node, rng *rand.Rand) (routing.PS, routing.QC, error) {
	if root.IsModification() {
		return nil, "", routererr.ErrModificationPlan
	}

	qc := e.hasher.Classify(root)

	if e.table.Contains(qc) {
		ps, err := e.policy.Select(e.table.Get(qc), rng)
		e.recordSelection(ctx, err)
		return ps, qc, err
	}

	view, err := e.catalog.TableView(ctx, table)
	if err != nil {
		e.recordSelection(ctx, err)
		return nil, qc, err
	}

	candidates := placement.Discover(view)
	e.table.InitializeRow(qc, candidates)

	ps, err := selection.SelectFirstSighting(candidates)
	e.recordSelection(ctx, err)
	return ps, qc, err
}

// Feedback parses a post-query execution-time reference tag and forwards
// it to the monitoring service. This is the wrapUp half of the request
// lifecycle; it runs independently of Route, typically from the query
// engine's own completion callback rather than synchronously after Route.
func (e *Engine) Feedback(tag string, nanos int64) error {
	return e.intake.OnExecutionTime(tag, nanos)
}

func (e *Engine) recordSelection(ctx context.Context, err error) {
	if e.metrics != nil {
		e.metrics.RecordSelection(ctx, err)
	}
}
