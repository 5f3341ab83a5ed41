// Package blockchainadapter implements the router's adapter façade for a
// blockchain-backed data store: append-only, no delete or truncate
// semantics, since a ledger cannot retroactively remove committed blocks.
package blockchainadapter

import (
	"context"

	"github.com/polypheny/adaptive-router/internal/routererr"
)

// Adapter is a read-mostly façade over a blockchain data source. It never
// holds a live node connection itself here; the router only needs enough
// of an adapter shape to reject the operations a ledger cannot support.
type Adapter struct {
	chainID string
}

// New builds an Adapter for the chain identified by chainID.
func New(chainID string) *Adapter {
	return &Adapter{chainID: chainID}
}

// Truncate always fails: a blockchain ledger is append-only.
func (a *Adapter) Truncate(ctx context.Context, table string) error {
	return routererr.ErrUnsupportedOperation
}
