// Package formula mirrors the evaluator's arithmetic as spreadsheet cell
// formulas so the exported workbook recomputes itself when the parameter
// block is edited, without re-running this tool.
package formula

import (
	"fmt"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// Named constants bound to cells of the parameters sheet. Formulas always
// reference parameters by name, never by cell literal, so relocating the
// parameter block does not break them.
const (
	NameSystemVoltage   = "systemVoltage"
	NameMinVoltage      = "minVoltage"
	NameWireResistance  = "wireResistance"
	NameSupplyDistance  = "supplyDistance"
	NameRoutingOverhead = "routingOverhead"
	NameSafetyPercent   = "safetyPercent"
)

// ParameterCell binds one named constant to a parameters-sheet cell.
type ParameterCell struct {
	Name  string
	Label string
	Cell  string
	Value float64
}

// ParameterCells lays out the adjustable parameter block in fixed order:
// labels in column A, values (the named cells) in column B, from row 2.
func ParameterCells(p models.ParameterSet) []ParameterCell {
	p.ResolveResistance()
	return []ParameterCell{
		{Name: NameSystemVoltage, Label: "System Voltage (V)", Cell: "B2", Value: p.SystemVoltage},
		{Name: NameMinVoltage, Label: "Minimum Voltage (V)", Cell: "B3", Value: p.MinVoltage},
		{Name: NameWireResistance, Label: "Wire Resistance (ohm/1000)", Cell: "B4", Value: p.Resistance},
		{Name: NameSupplyDistance, Label: "Supply Distance", Cell: "B5", Value: p.SupplyDistance},
		{Name: NameRoutingOverhead, Label: "Routing Overhead", Cell: "B6", Value: p.RoutingOverhead},
		{Name: NameSafetyPercent, Label: "Safety Margin", Cell: "B7", Value: p.SafetyPercent},
	}
}

// Layout describes where the circuit table lives in the target sheet.
// Literal columns (currents, distances) and formula columns are disjoint:
// a column is always one or the other for the whole table.
type Layout struct {
	Sheet     string
	HeaderRow int

	PositionCol    string
	NameCol        string
	TypeCol        string
	LocationCol    string
	AlarmCol       string
	StandbyCol     string
	DistanceCol    string
	CumDistanceCol string
	LoadCol        string
	DropCol        string
	VoltageCol     string
	StatusCol      string
}

// DefaultLayout matches the workbook's Circuit Layout sheet.
func DefaultLayout() Layout {
	return Layout{
		Sheet:          "Circuit Layout",
		HeaderRow:      1,
		PositionCol:    "A",
		NameCol:        "B",
		TypeCol:        "C",
		LocationCol:    "D",
		AlarmCol:       "E",
		StandbyCol:     "F",
		DistanceCol:    "G",
		CumDistanceCol: "H",
		LoadCol:        "I",
		DropCol:        "J",
		VoltageCol:     "K",
		StatusCol:      "L",
	}
}

// Row gives the sheet row for a 1-based device position.
func (l Layout) Row(position int) int {
	return l.HeaderRow + position
}

// RowFormulas holds the synthesized formulas for one device row. The Row
// field is the actual sheet row the formulas were generated for; branch
// subtrees of varying size shift all following rows, so callers must place
// each formula at exactly this row.
type RowFormulas struct {
	Row         int
	CumDistance string
	Load        string
	Drop        string
	Voltage     string
	Status      string
}

// Synthesizer generates one formula row per flattened device row, in the
// same traversal order the evaluator and projector use.
type Synthesizer struct {
	layout Layout
}

// NewSynthesizer creates a synthesizer for the given sheet layout.
func NewSynthesizer(layout Layout) *Synthesizer {
	return &Synthesizer{layout: layout}
}

// Layout returns the sheet layout the synthesizer targets.
func (s *Synthesizer) Layout() Layout {
	return s.layout
}

// Synthesize walks the tree in emission order and produces formulas that
// evaluate, under the spreadsheet engine, to the evaluator's results.
//
// Row bookkeeping: every node's actual row is recorded during the walk;
// voltage and cumulative-distance formulas reference the parent's recorded
// row, which is the immediately preceding row on an unbroken main run but
// shifts by the full size of any intervening branch subtree.
//
// Accumulated load uses a row-range SUM over the node's subtree. Under the
// branches-before-continuation order a subtree occupies a contiguous row
// range, so the range sum reproduces the bottom-up accumulation exactly;
// conditional-sum approximations keyed on labels are known to diverge on
// deeply nested branches and are deliberately not used.
func (s *Synthesizer) Synthesize(root *models.DeviceNode) []RowFormulas {
	l := s.layout
	rows := make([]RowFormulas, 0)
	rowOf := make(map[*models.DeviceNode]int)

	circuit.Walk(root, func(n *models.DeviceNode, ctx *circuit.WalkContext) {
		r := l.Row(ctx.Position)
		rowOf[n] = r
		firstHop := n.Parent != nil && n.Parent.IsRoot()

		rf := RowFormulas{Row: r}

		// Accumulated load: the subtree spans rows r..r+size-1.
		last := r + n.SubtreeSize() - 1
		rf.Load = fmt.Sprintf("SUM(%s%d:%s%d)", l.AlarmCol, r, l.AlarmCol, last)

		// Segment distance term: supply run for first hops, the row's own
		// distance cell otherwise, overhead applied in both cases.
		var segment string
		if firstHop {
			segment = fmt.Sprintf("%s*%s", NameSupplyDistance, NameRoutingOverhead)
		} else {
			segment = fmt.Sprintf("%s%d*%s", l.DistanceCol, r, NameRoutingOverhead)
		}
		rf.Drop = fmt.Sprintf("%s%d*2*%s*%s/1000", l.LoadCol, r, segment, NameWireResistance)

		if firstHop {
			rf.CumDistance = segment
			rf.Voltage = fmt.Sprintf("%s-%s%d", NameSystemVoltage, l.DropCol, r)
		} else {
			pr := rowOf[n.Parent]
			rf.CumDistance = fmt.Sprintf("%s%d+%s", l.CumDistanceCol, pr, segment)
			rf.Voltage = fmt.Sprintf("%s%d-%s%d", l.VoltageCol, pr, l.DropCol, r)
		}

		rf.Status = fmt.Sprintf(`IF(%s%d>=%s,"%s","%s")`,
			l.VoltageCol, r, NameMinVoltage, models.StatusOK, models.StatusLowVoltage)

		rows = append(rows, rf)
	})
	return rows
}
