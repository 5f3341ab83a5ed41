package sqladapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateRejectsInvalidIdentifier(t *testing.T) {
	a := &Adapter{} // db is intentionally nil: validation must short-circuit before use
	err := a.Truncate(context.Background(), "orders; DROP TABLE orders")
	require.Error(t, err)
}

func TestTruncateRejectsEmptyIdentifier(t *testing.T) {
	a := &Adapter{}
	err := a.Truncate(context.Background(), "")
	require.Error(t, err)
}

func TestIdentifierPatternAcceptsBareNames(t *testing.T) {
	assert.True(t, identifierPattern.MatchString("orders"))
	assert.True(t, identifierPattern.MatchString("_orders_2"))
	assert.False(t, identifierPattern.MatchString("orders table"))
	assert.False(t, identifierPattern.MatchString("orders;drop"))
}
