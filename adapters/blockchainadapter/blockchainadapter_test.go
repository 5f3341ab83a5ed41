package blockchainadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polypheny/adaptive-router/internal/routererr"
)

func TestTruncateAlwaysRejected(t *testing.T) {
	a := New("chain-1")
	err := a.Truncate(context.Background(), "orders")
	assert.ErrorIs(t, err, routererr.ErrUnsupportedOperation)
}
