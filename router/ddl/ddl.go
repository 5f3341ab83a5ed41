// Package ddl implements the router's ancillary DDL surfaces: candidate
// adapter selection for CREATE TABLE and ADD COLUMN, and truncate
// delegation. These are interface-only surfaces — no routing-table weight
// or query class is involved.
package ddl

import (
	"context"

	"github.com/polypheny/adaptive-router/router/routing"
)

// Catalog is the subset of the catalog client ddl needs.
type Catalog interface {
	AllAdapters(ctx context.Context) ([]routing.AID, error)
	AdaptersHosting(ctx context.Context, table string) ([]routing.AID, error)
}

// CreateTableCandidates returns every known data store as a candidate
// placement for a new table. The router does not pick for the caller; it
// only enumerates what's available.
func CreateTableCandidates(ctx context.Context, catalog Catalog) ([]routing.AID, error) {
	return catalog.AllAdapters(ctx)
}

// AddColumnCandidates returns every adapter already hosting table, since
// an added column must land on every existing placement.
func AddColumnCandidates(ctx context.Context, catalog Catalog, table string) ([]routing.AID, error) {
	return catalog.AdaptersHosting(ctx, table)
}

// Truncater is implemented by adapters that can truncate a table.
type Truncater interface {
	Truncate(ctx context.Context, table string) error
}

// Truncate delegates truncation to the adapter. The router applies no
// policy of its own here: an adapter that cannot truncate (the blockchain
// adapter) simply returns its own error.
func Truncate(ctx context.Context, adapter Truncater, table string) error {
	return adapter.Truncate(ctx, table)
}
