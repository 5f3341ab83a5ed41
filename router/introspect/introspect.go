// Package introspect provides a read-only tabular view of the routing
// table, for the admin HTTP surface and CLI introspect subcommand.
package introspect

import (
	"sort"
	"strconv"

	"github.com/polypheny/adaptive-router/router/routing"
)

// Cell is one rendered (QC, PS) weight for display. Text is one of:
// a decimal percentage, "Unknown" (MISSING_VALUE, no sample yet), or
// "-" (NO_PLACEMENT, this PS cannot serve this class at all).
type Cell struct {
	Text string
}

// Row is one query class's rendered row, in the table's canonical
// column order.
type Row struct {
	QC    routing.QC
	Cells []Cell
}

// View is a full rendered snapshot of the routing table: the canonical
// column headers (placement set labels, in registry order) and one Row
// per query class, sorted by QC for stable display.
type View struct {
	Columns []string
	Rows    []Row
}

// Table is the subset of routing.Table introspect needs to read.
type Table interface {
	QueryClasses() []routing.QC
	Get(qc routing.QC) *routing.Row
	Registry() *routing.Registry
}

// Snapshot renders the current state of t.
func Snapshot(t Table) View {
	known := t.Registry().Known()
	columns := make([]string, len(known))
	for i, ps := range known {
		label, ok := t.Registry().Label(ps)
		if !ok {
			label = ps.Key()
		}
		columns[i] = label
	}

	qcs := t.QueryClasses()
	sort.Slice(qcs, func(i, j int) bool { return qcs[i] < qcs[j] })

	rows := make([]Row, 0, len(qcs))
	for _, qc := range qcs {
		row := t.Get(qc)
		cells := make([]Cell, len(known))
		for i, ps := range known {
			w, ok := row.Weight(ps)
			if !ok {
				cells[i] = Cell{Text: "Unknown"}
				continue
			}
			cells[i] = Cell{Text: renderWeight(w)}
		}
		rows = append(rows, Row{QC: qc, Cells: cells})
	}

	return View{Columns: columns, Rows: rows}
}

func renderWeight(w routing.Weight) string {
	switch w {
	case routing.MissingValue:
		return "Unknown"
	case routing.NoPlacement:
		return "-"
	default:
		return strconv.Itoa(int(w))
	}
}
