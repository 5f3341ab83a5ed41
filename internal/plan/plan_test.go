package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalkVisitsPreOrder(t *testing.T) {
	root := &Node{
		Kind: Kind(0),
		Children: []*Node{
			{Kind: KindFilter},
			{Kind: KindProject},
		},
	}

	var visited []Kind
	Walk(root, func(n *Node) { visited = append(visited, n.Kind) })

	assert.Equal(t, []Kind{KindTableScan, KindFilter, KindProject}, visited)
}

func TestWalkNilRootDoesNothing(t *testing.T) {
	called := false
	Walk(nil, func(n *Node) { called = true })
	assert.False(t, called)
}

func TestIsModification(t *testing.T) {
	assert.True(t, (&Node{Kind: KindModify}).IsModification())
	assert.False(t, (&Node{Kind: KindTableScan}).IsModification())
	assert.False(t, (*Node)(nil).IsModification())
}
