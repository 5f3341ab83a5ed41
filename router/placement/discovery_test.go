package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polypheny/adaptive-router/router/routing"
)

func TestDiscoverSingletonWhenAdapterFullyReplicates(t *testing.T) {
	v := TableView{
		PlacedColumns: map[routing.AID][]int32{
			1: {1, 2, 3},
			2: {1, 2},
		},
		ColumnIDs: []int32{1, 2, 3},
	}

	candidates := Discover(v)
	assert.Len(t, candidates, 1)
	assert.True(t, candidates[0].Equal(routing.NewPS(1)))
}

func TestDiscoverMultipleSingletons(t *testing.T) {
	v := TableView{
		PlacedColumns: map[routing.AID][]int32{
			1: {1, 2},
			2: {1, 2},
		},
		ColumnIDs: []int32{1, 2},
	}

	candidates := Discover(v)
	assert.Len(t, candidates, 2)
}

func TestDiscoverSynthesizesOneCombinedPlacement(t *testing.T) {
	v := TableView{
		PlacedColumns: map[routing.AID][]int32{
			1: {1, 2},
			2: {3},
		},
		ColumnIDs: []int32{1, 2, 3},
	}

	candidates := Discover(v)
	assert.Len(t, candidates, 1)
	assert.True(t, candidates[0].Equal(routing.NewPSFromSlice([]routing.AID{1, 2})))
}

func TestDiscoverReturnsNilWhenNoAdapterHostsAColumn(t *testing.T) {
	v := TableView{
		PlacedColumns: map[routing.AID][]int32{
			1: {1, 2},
		},
		ColumnIDs: []int32{1, 2, 99},
	}

	assert.Empty(t, Discover(v))
}

func TestDiscoverEmptyCatalogYieldsNoCandidates(t *testing.T) {
	v := TableView{PlacedColumns: map[routing.AID][]int32{}, ColumnIDs: []int32{1}}
	assert.Empty(t, Discover(v))
}
