// Package mongoadapter implements the router's adapter façade for a
// MongoDB-backed data store: one of the pluggable physical stores a
// placement set can route to.
package mongoadapter

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

// Adapter wraps a MongoDB database handle.
type Adapter struct {
	db *mongo.Database
}

// New builds an Adapter over db.
func New(db *mongo.Database) *Adapter {
	return &Adapter{db: db}
}

// Truncate empties table by deleting every document in its collection.
// MongoDB has no native TRUNCATE; deleteMany with an empty filter is the
// idiomatic equivalent.
func (a *Adapter) Truncate(ctx context.Context, table string) error {
	_, err := a.db.Collection(table).DeleteMany(ctx, struct{}{})
	if err != nil {
		return errors.Wrapf(err, "mongoadapter: truncate %s", table)
	}
	return nil
}
