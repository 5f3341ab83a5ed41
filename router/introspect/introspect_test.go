package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polypheny/adaptive-router/router/routing"
)

func TestSnapshotRendersRowsSortedByQCAndCanonicalColumns(t *testing.T) {
	reg := routing.NewRegistry()
	table := routing.NewTable(reg, nil)

	table.InitializeRow("zeta", []routing.PS{routing.NewPS(1)})
	table.InitializeRow("alpha", []routing.PS{routing.NewPS(2)})

	table.Refresh(func(qc routing.QC, old *routing.Row) *routing.Row {
		if qc != "zeta" {
			return nil
		}
		return routing.NewRow([]routing.RowEntry{
			{PS: routing.NewPS(1), Weight: 100},
			{PS: routing.NewPS(2), Weight: routing.NoPlacement},
		})
	})

	view := Snapshot(table)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, routing.QC("alpha"), view.Rows[0].QC)
	assert.Equal(t, routing.QC("zeta"), view.Rows[1].QC)

	// zeta's row: PS [1] got weight 100, PS [2] explicitly NoPlacement ("-").
	zetaRow := view.Rows[1]
	require.Len(t, zetaRow.Cells, 2)
	texts := map[string]bool{}
	for _, c := range zetaRow.Cells {
		texts[c.Text] = true
	}
	assert.True(t, texts["100"])
	assert.True(t, texts["-"])
}

func TestRenderWeightSentinelsAndPlainValue(t *testing.T) {
	assert.Equal(t, "Unknown", renderWeight(routing.MissingValue))
	assert.Equal(t, "-", renderWeight(routing.NoPlacement))
	assert.Equal(t, "42", renderWeight(routing.Weight(42)))
}
