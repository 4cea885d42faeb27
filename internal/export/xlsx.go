package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/formula"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// Mode selects how the workbook's computed columns are filled. A column is
// either all literal values or all formulas, never a row-dependent mix.
type Mode int

const (
	// ModeBaked writes literal numbers produced by the evaluator.
	ModeBaked Mode = iota
	// ModeLive writes synthesized formulas that recompute when the
	// parameter block is edited.
	ModeLive
)

// Workbook sheet names.
const (
	SheetParameters = "Parameters"
	SheetDevices    = "Devices"
	SheetCircuit    = "Circuit Layout"
	SheetSummary    = "Summary"
	SheetSpecs      = "Device Specs"
	SheetReference  = "Wire Reference"
)

// WorkbookExporter emits the spreadsheet workbook via excelize.
type WorkbookExporter struct {
	mode Mode
	syn  *formula.Synthesizer
}

func NewWorkbookExporter(mode Mode) *WorkbookExporter {
	return &WorkbookExporter{
		mode: mode,
		syn:  formula.NewSynthesizer(formula.DefaultLayout()),
	}
}

func (e *WorkbookExporter) Name() string { return "xlsx" }
func (e *WorkbookExporter) Ext() string  { return ".xlsx" }

func (e *WorkbookExporter) Export(w io.Writer, rep *Report) error {
	f, err := e.Build(rep)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Build assembles the workbook in memory. Split from Export so tests can
// read cells and formulas back without a round-trip through disk.
func (e *WorkbookExporter) Build(rep *Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetParameters); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetDevices, SheetCircuit, SheetSummary, SheetSpecs, SheetReference} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := e.writeParameters(f, rep); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeDevices(f, rep); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeCircuit(f, rep); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeSummary(f, rep); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeSpecs(f, rep); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeReference(f, rep); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// writeParameters lays out the adjustable input block and binds the named
// constants every live formula references.
func (e *WorkbookExporter) writeParameters(f *excelize.File, rep *Report) error {
	f.SetCellValue(SheetParameters, "A1", "Parameter")
	f.SetCellValue(SheetParameters, "B1", "Value")

	for _, pc := range formula.ParameterCells(rep.Params) {
		labelCell := "A" + pc.Cell[1:]
		f.SetCellValue(SheetParameters, labelCell, pc.Label)
		f.SetCellValue(SheetParameters, pc.Cell, pc.Value)
		if err := f.SetDefinedName(&excelize.DefinedName{
			Name:     pc.Name,
			RefersTo: fmt.Sprintf("%s!$%s$%s", SheetParameters, pc.Cell[:1], pc.Cell[1:]),
			Scope:    "Workbook",
		}); err != nil {
			return err
		}
	}

	f.SetCellValue(SheetParameters, "A9", "Wire Gauge")
	f.SetCellValue(SheetParameters, "B9", string(rep.Params.WireGauge))
	f.SetCellValue(SheetParameters, "A10", "Max Supply Load (A)")
	f.SetCellValue(SheetParameters, "B10", rep.Params.MaxLoad)
	f.SetCellValue(SheetParameters, "A11", "Usable Load (A)")
	f.SetCellValue(SheetParameters, "B11", rep.Params.UsableLoad())

	f.SetColWidth(SheetParameters, "A", "A", 28)
	return nil
}

// writeDevices emits the designer's input view of the tree.
func (e *WorkbookExporter) writeDevices(f *excelize.File, rep *Report) error {
	headers := []string{"Seq", "Name", "Device Type", "Alarm (A)", "Standby (A)", "Distance", "Branch"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(SheetDevices, cell, h)
	}
	row := 2
	circuit.Walk(rep.Tree, func(n *models.DeviceNode, _ *circuit.WalkContext) {
		branch := "no"
		if n.IsBranchDevice {
			branch = "yes"
		}
		values := []interface{}{n.SequenceNumber, n.Name, n.DeviceType, n.Current.Alarm, n.Current.Standby, n.DistanceFromParent, branch}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(SheetDevices, cell, v)
		}
		row++
	})
	f.SetColWidth(SheetDevices, "B", "C", 22)
	return nil
}

// writeCircuit emits the evaluated table. Literal columns are identical in
// both modes; the computed columns are either baked numbers or synthesized
// formulas placed at the exact rows the synthesizer tracked.
func (e *WorkbookExporter) writeCircuit(f *excelize.File, rep *Report) error {
	l := e.syn.Layout()
	headers := map[string]string{
		l.PositionCol:    "#",
		l.NameCol:        "Name",
		l.TypeCol:        "Device Type",
		l.LocationCol:    "Location",
		l.AlarmCol:       "Alarm (A)",
		l.StandbyCol:     "Standby (A)",
		l.DistanceCol:    "Distance",
		l.CumDistanceCol: "Distance from Panel",
		l.LoadCol:        "Accumulated Load (A)",
		l.DropCol:        "Voltage Drop (V)",
		l.VoltageCol:     "Voltage (V)",
		l.StatusCol:      "Status",
	}
	for col, h := range headers {
		f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", col, l.HeaderRow), h)
	}

	eval := circuit.NewEvaluator(rep.Params)
	for _, rec := range rep.Records {
		r := l.Row(rec.Position)
		f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.PositionCol, r), rec.Position)
		f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.NameCol, r), rec.Name)
		f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.TypeCol, r), rec.DeviceType)
		f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.LocationCol, r), rec.Location)
		f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.AlarmCol, r), rec.AlarmCurrent)
		f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.StandbyCol, r), rec.StandbyCurrent)
		f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.DistanceCol, r), rec.Distance)
	}

	switch e.mode {
	case ModeLive:
		for _, rf := range e.syn.Synthesize(rep.Tree) {
			cells := map[string]string{
				l.CumDistanceCol: rf.CumDistance,
				l.LoadCol:        rf.Load,
				l.DropCol:        rf.Drop,
				l.VoltageCol:     rf.Voltage,
				l.StatusCol:      rf.Status,
			}
			for col, fx := range cells {
				if err := f.SetCellFormula(SheetCircuit, fmt.Sprintf("%s%d", col, rf.Row), fx); err != nil {
					return err
				}
			}
		}
	case ModeBaked:
		cum := make(map[*models.DeviceNode]float64)
		circuit.Walk(rep.Tree, func(n *models.DeviceNode, ctx *circuit.WalkContext) {
			d := eval.SegmentDistance(n)
			if n.Parent != nil && !n.Parent.IsRoot() {
				d += cum[n.Parent]
			}
			cum[n] = d
			r := l.Row(ctx.Position)
			f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.CumDistanceCol, r), d)
			f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.LoadCol, r), n.AccumulatedLoad)
			f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.DropCol, r), n.VoltageDrop)
			f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.VoltageCol, r), n.Voltage)
			f.SetCellValue(SheetCircuit, fmt.Sprintf("%s%d", l.StatusCol, r), circuit.Status(n, rep.Params.MinVoltage))
		})
	}

	f.SetColWidth(SheetCircuit, "B", "D", 20)
	f.SetColWidth(SheetCircuit, "H", "L", 18)
	return nil
}

func (e *WorkbookExporter) writeSummary(f *excelize.File, rep *Report) error {
	s := rep.Summary
	l := e.syn.Layout()
	first := l.Row(1)
	last := l.Row(len(rep.Records))

	rows := []struct {
		label   string
		value   interface{}
		formula string
	}{
		{"Total Devices", s.TotalDevices, fmt.Sprintf("COUNTA('%s'!%s%d:%s%d)", SheetCircuit, l.PositionCol, first, l.PositionCol, last)},
		{"Total Load (A)", s.TotalLoad, fmt.Sprintf("SUM('%s'!%s%d:%s%d)", SheetCircuit, l.AlarmCol, first, l.AlarmCol, last)},
		{"End-of-Line Voltage (V)", s.WorstVoltage, fmt.Sprintf("MIN('%s'!%s%d:%s%d)", SheetCircuit, l.VoltageCol, first, l.VoltageCol, last)},
		{"Worst Drop (V)", s.WorstDrop, fmt.Sprintf("MAX('%s'!%s%d:%s%d)", SheetCircuit, l.DropCol, first, l.DropCol, last)},
		{"Main Devices", s.MainDevices, ""},
		{"Branch Devices", s.BranchDevices, ""},
		{"Total Wire Length", s.TotalWireLength, ""},
		{"Valid", s.IsValid, ""},
	}
	f.SetCellValue(SheetSummary, "A1", "Summary")
	r := 2
	for _, row := range rows {
		f.SetCellValue(SheetSummary, fmt.Sprintf("A%d", r), row.label)
		cell := fmt.Sprintf("B%d", r)
		if e.mode == ModeLive && row.formula != "" && len(rep.Records) > 0 {
			if err := f.SetCellFormula(SheetSummary, cell, row.formula); err != nil {
				return err
			}
		} else {
			f.SetCellValue(SheetSummary, cell, row.value)
		}
		r++
	}
	for _, msg := range s.Errors {
		f.SetCellValue(SheetSummary, fmt.Sprintf("A%d", r), "Error")
		f.SetCellValue(SheetSummary, fmt.Sprintf("B%d", r), msg)
		r++
	}
	f.SetColWidth(SheetSummary, "A", "A", 26)
	f.SetColWidth(SheetSummary, "B", "B", 40)
	return nil
}

// writeSpecs aggregates the device table by device type in first-seen order.
func (e *WorkbookExporter) writeSpecs(f *excelize.File, rep *Report) error {
	type spec struct {
		count   int
		alarm   float64
		standby float64
	}
	order := make([]string, 0)
	specs := make(map[string]*spec)
	for _, rec := range rep.Records {
		s, ok := specs[rec.DeviceType]
		if !ok {
			s = &spec{}
			specs[rec.DeviceType] = s
			order = append(order, rec.DeviceType)
		}
		s.count++
		s.alarm += rec.AlarmCurrent
		s.standby += rec.StandbyCurrent
	}

	headers := []string{"Device Type", "Count", "Total Alarm (A)", "Total Standby (A)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetSpecs, cell, h)
	}
	for i, dt := range order {
		s := specs[dt]
		r := i + 2
		f.SetCellValue(SheetSpecs, fmt.Sprintf("A%d", r), dt)
		f.SetCellValue(SheetSpecs, fmt.Sprintf("B%d", r), s.count)
		f.SetCellValue(SheetSpecs, fmt.Sprintf("C%d", r), s.alarm)
		f.SetCellValue(SheetSpecs, fmt.Sprintf("D%d", r), s.standby)
	}
	f.SetColWidth(SheetSpecs, "A", "A", 24)
	return nil
}

// writeReference emits the static gauge table and documents the drop
// formula for reviewers of the workbook.
func (e *WorkbookExporter) writeReference(f *excelize.File, rep *Report) error {
	f.SetCellValue(SheetReference, "A1", "Wire Gauge")
	f.SetCellValue(SheetReference, "B1", "Resistance (ohm/1000)")
	for i, g := range models.GaugeOrder {
		r := i + 2
		f.SetCellValue(SheetReference, fmt.Sprintf("A%d", r), string(g))
		f.SetCellValue(SheetReference, fmt.Sprintf("B%d", r), models.GaugeResistance[g])
	}

	notes := []string{
		"Voltage drop = accumulated load x 2 x segment distance x resistance / 1000",
		"Segment distance = wire distance x routing overhead (supply distance for the first device)",
		"Voltage = upstream voltage - voltage drop",
		"Accumulated load = own alarm draw + all downstream alarm draw",
	}
	base := len(models.GaugeOrder) + 3
	f.SetCellValue(SheetReference, fmt.Sprintf("A%d", base-1), "Formulas")
	for i, n := range notes {
		f.SetCellValue(SheetReference, fmt.Sprintf("A%d", base+i), n)
	}
	f.SetColWidth(SheetReference, "A", "A", 70)
	f.SetColWidth(SheetReference, "B", "B", 22)
	return nil
}
