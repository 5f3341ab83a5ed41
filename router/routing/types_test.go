package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPSKeyIsOrderIndependent(t *testing.T) {
	a := NewPSFromSlice([]AID{3, 1, 2})
	b := NewPSFromSlice([]AID{1, 2, 3})
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "[1,2,3]", a.Key())
}

func TestPSEqual(t *testing.T) {
	a := NewPSFromSlice([]AID{1, 2})
	b := NewPSFromSlice([]AID{2, 1})
	c := NewPSFromSlice([]AID{1, 3})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestRowSumExcludesNoPlacementAndFlagsMissing(t *testing.T) {
	row := NewRow([]RowEntry{
		{PS: NewPS(1), Weight: 40},
		{PS: NewPS(2), Weight: 60},
		{PS: NewPS(3), Weight: NoPlacement},
		{PS: NewPS(4), Weight: MissingValue},
	})

	sum, hasMissing := row.Sum()
	assert.Equal(t, 100, sum)
	assert.True(t, hasMissing)
}

func TestRowWeightLookupMissingEntry(t *testing.T) {
	row := NewRow([]RowEntry{{PS: NewPS(1), Weight: 50}})
	_, ok := row.Weight(NewPS(2))
	assert.False(t, ok)
}

func TestNilRowIsEmptyAndSafe(t *testing.T) {
	var r *Row
	assert.Equal(t, 0, r.Len())
	sum, hasMissing := r.Sum()
	assert.Equal(t, 0, sum)
	assert.False(t, hasMissing)
	assert.NotPanics(t, func() { r.Each(func(ps PS, w Weight) {}) })
}
