package ddl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polypheny/adaptive-router/router/routing"
)

type fakeCatalog struct {
	all    []routing.AID
	hostBy map[string][]routing.AID
	err    error
}

func (c *fakeCatalog) AllAdapters(ctx context.Context) ([]routing.AID, error) {
	return c.all, c.err
}

func (c *fakeCatalog) AdaptersHosting(ctx context.Context, table string) ([]routing.AID, error) {
	return c.hostBy[table], c.err
}

func TestCreateTableCandidatesReturnsEveryAdapter(t *testing.T) {
	cat := &fakeCatalog{all: []routing.AID{1, 2, 3}}
	got, err := CreateTableCandidates(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, []routing.AID{1, 2, 3}, got)
}

func TestAddColumnCandidatesReturnsHostingAdapters(t *testing.T) {
	cat := &fakeCatalog{hostBy: map[string][]routing.AID{"orders": {1, 2}}}
	got, err := AddColumnCandidates(context.Background(), cat, "orders")
	require.NoError(t, err)
	assert.Equal(t, []routing.AID{1, 2}, got)
}

func TestAddColumnCandidatesPropagatesCatalogError(t *testing.T) {
	boom := errors.New("boom")
	cat := &fakeCatalog{err: boom}
	_, err := AddColumnCandidates(context.Background(), cat, "orders")
	assert.ErrorIs(t, err, boom)
}

func TestTruncateDelegatesToAdapter(t *testing.T) {
	adapter := &fakeTruncater{}
	err := Truncate(context.Background(), adapter, "orders")
	require.NoError(t, err)
	assert.Equal(t, 1, adapter.calls)
}
