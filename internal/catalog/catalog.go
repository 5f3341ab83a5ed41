// Package catalog implements the catalog collaborator: for a table, the
// set of adapters hosting it, which columns each hosts, and the table's
// full column set. The router's placement discovery and DDL surfaces both
// read through this client; nothing in router/ talks to Postgres
// directly.
package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/polypheny/adaptive-router/router/placement"
	"github.com/polypheny/adaptive-router/router/routing"
)

// Adapter is the catalog's view of one registered data store.
type Adapter struct {
	ID         routing.AID
	UniqueName string
}

// Client is the Postgres-backed catalog client.
type Client struct {
	pool *pgxpool.Pool
}

// New builds a Client backed by pool.
func New(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// TableView returns the placement view placement.Discover needs for
// table: every adapter hosting it, the columns each hosts, and the
// table's full ordered column set.
func (c *Client) TableView(ctx context.Context, table string) (placement.TableView, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT adapter_id, column_id FROM catalog_column_placements
		 WHERE table_name = $1 ORDER BY column_id`, table)
	if err != nil {
		return placement.TableView{}, errors.Wrapf(err, "catalog: query placements for %s", table)
	}
	defer rows.Close()

	placed := make(map[routing.AID][]int32)
	seenCols := make(map[int32]struct{})
	var columnIDs []int32

	for rows.Next() {
		var adapterID int32
		var columnID int32
		if err := rows.Scan(&adapterID, &columnID); err != nil {
			return placement.TableView{}, errors.Wrap(err, "catalog: scan placement row")
		}
		aid := routing.AID(adapterID)
		placed[aid] = append(placed[aid], columnID)
		if _, ok := seenCols[columnID]; !ok {
			seenCols[columnID] = struct{}{}
			columnIDs = append(columnIDs, columnID)
		}
	}
	if err := rows.Err(); err != nil {
		return placement.TableView{}, errors.Wrap(err, "catalog: iterate placement rows")
	}

	return placement.TableView{PlacedColumns: placed, ColumnIDs: columnIDs}, nil
}

// GetAdapter returns the registered adapter for id.
func (c *Client) GetAdapter(ctx context.Context, id routing.AID) (Adapter, error) {
	var name string
	err := c.pool.QueryRow(ctx,
		`SELECT unique_name FROM catalog_adapters WHERE id = $1`, int32(id)).Scan(&name)
	if err != nil {
		return Adapter{}, errors.Wrapf(err, "catalog: get adapter %d", id)
	}
	return Adapter{ID: id, UniqueName: name}, nil
}

// AllAdapters returns every registered data store, for the create-table
// DDL surface.
func (c *Client) AllAdapters(ctx context.Context) ([]routing.AID, error) {
	rows, err := c.pool.Query(ctx, `SELECT id FROM catalog_adapters ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "catalog: query all adapters")
	}
	defer rows.Close()

	var aids []routing.AID
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "catalog: scan adapter id")
		}
		aids = append(aids, routing.AID(id))
	}
	return aids, rows.Err()
}

// AdaptersHosting returns every adapter currently hosting table, for the
// add-column DDL surface.
func (c *Client) AdaptersHosting(ctx context.Context, table string) ([]routing.AID, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT DISTINCT adapter_id FROM catalog_column_placements
		 WHERE table_name = $1 ORDER BY adapter_id`, table)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog: query adapters hosting %s", table)
	}
	defer rows.Close()

	var aids []routing.AID
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "catalog: scan hosting adapter id")
		}
		aids = append(aids, routing.AID(id))
	}
	return aids, rows.Err()
}
