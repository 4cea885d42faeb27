package export

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/formula"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/testutil"
)

func buildWorkbook(t *testing.T, mode Mode, root *models.DeviceNode) *excelize.File {
	t.Helper()
	rep := testReport(t, root)
	f, err := NewWorkbookExporter(mode).Build(rep)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cellFloat(t *testing.T, f *excelize.File, sheet, cell string) float64 {
	t.Helper()
	s, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err, "cell %s!%s = %q", sheet, cell, s)
	return v
}

func TestWorkbook_AllSheetsPresent(t *testing.T) {
	f := buildWorkbook(t, ModeBaked, testutil.LinearCircuit(2, 0.2, 30))

	want := []string{SheetParameters, SheetDevices, SheetCircuit, SheetSummary, SheetSpecs, SheetReference}
	assert.ElementsMatch(t, want, f.GetSheetList())
}

func TestWorkbook_DefinedNamesBindParameterCells(t *testing.T) {
	f := buildWorkbook(t, ModeLive, testutil.LinearCircuit(1, 0.5, 100))

	defined := make(map[string]string)
	for _, dn := range f.GetDefinedName() {
		defined[dn.Name] = dn.RefersTo
	}
	for _, pc := range formula.ParameterCells(testutil.TestParams()) {
		ref, ok := defined[pc.Name]
		require.True(t, ok, "missing defined name %s", pc.Name)
		assert.Contains(t, ref, SheetParameters+"!$B$")
	}
}

func TestWorkbook_LiveModePlacesFormulasAtTrackedRows(t *testing.T) {
	// root -> D1 -> (B1 -> B2) branch, then D2 continuation. The two-node
	// branch pushes the continuation from row 3 to row 5.
	f := buildWorkbook(t, ModeLive, testutil.BranchedCircuit(2, 0.2, 30))

	fx, err := f.GetCellFormula(SheetCircuit, "I2")
	require.NoError(t, err)
	assert.Equal(t, "SUM(E2:E5)", fx)

	fx, err = f.GetCellFormula(SheetCircuit, "K5")
	require.NoError(t, err)
	assert.Equal(t, "K2-J5", fx)

	fx, err = f.GetCellFormula(SheetCircuit, "L2")
	require.NoError(t, err)
	assert.Equal(t, `IF(K2>=minVoltage,"OK","LOW VOLTAGE")`, fx)
}

func TestWorkbook_LiveModeKeepsLiteralInputColumns(t *testing.T) {
	f := buildWorkbook(t, ModeLive, testutil.BranchedCircuit(2, 0.2, 30))

	// Input columns stay literal so the formulas have real operands.
	for _, cell := range []string{"A2", "B2", "E2", "G2"} {
		fx, err := f.GetCellFormula(SheetCircuit, cell)
		require.NoError(t, err)
		assert.Empty(t, fx, "input cell %s must not hold a formula", cell)
	}
	name, err := f.GetCellValue(SheetCircuit, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Device 1", name)
}

func TestWorkbook_BakedModeWritesValuesNotFormulas(t *testing.T) {
	f := buildWorkbook(t, ModeBaked, testutil.LinearCircuit(1, 0.5, 100))

	for _, cell := range []string{"H2", "I2", "J2", "K2"} {
		fx, err := f.GetCellFormula(SheetCircuit, cell)
		require.NoError(t, err)
		assert.Empty(t, fx, "baked cell %s must not hold a formula", cell)
	}
	assert.InDelta(t, 0.5, cellFloat(t, f, SheetCircuit, "I2"), 1e-9)
	assert.InDelta(t, 0.2525, cellFloat(t, f, SheetCircuit, "J2"), 1e-9)
	assert.InDelta(t, 23.7475, cellFloat(t, f, SheetCircuit, "K2"), 1e-9)

	status, err := f.GetCellValue(SheetCircuit, "L2")
	require.NoError(t, err)
	assert.Equal(t, "OK", status)
}

func TestWorkbook_SummaryFormulasOnlyInLiveMode(t *testing.T) {
	live := buildWorkbook(t, ModeLive, testutil.LinearCircuit(3, 0.2, 30))
	fx, err := live.GetCellFormula(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Contains(t, fx, "COUNTA")

	baked := buildWorkbook(t, ModeBaked, testutil.LinearCircuit(3, 0.2, 30))
	fx, err = baked.GetCellFormula(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Empty(t, fx)
	v, err := baked.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestWorkbook_ReferenceSheetListsGaugeTable(t *testing.T) {
	f := buildWorkbook(t, ModeBaked, testutil.LinearCircuit(1, 0.5, 100))

	for i, g := range models.GaugeOrder {
		cell := "A" + strconv.Itoa(i+2)
		v, err := f.GetCellValue(SheetReference, cell)
		require.NoError(t, err)
		assert.Equal(t, string(g), v)
		assert.InDelta(t, models.GaugeResistance[g], cellFloat(t, f, SheetReference, "B"+strconv.Itoa(i+2)), 1e-9)
	}
}

func TestWorkbook_DeviceSpecsAggregateByType(t *testing.T) {
	root := models.NewRoot()
	d1 := testutil.Device("Horn 1", 0.2, 30)
	d1.DeviceType = "horn-strobe"
	root.AddChild(d1)
	d2 := testutil.Device("Horn 2", 0.3, 30)
	d2.DeviceType = "horn-strobe"
	d1.AddChild(d2)
	d3 := testutil.Device("Strobe 1", 0.1, 30)
	d3.DeviceType = "strobe"
	d2.AddChild(d3)

	f := buildWorkbook(t, ModeBaked, root)

	v, err := f.GetCellValue(SheetSpecs, "A2")
	require.NoError(t, err)
	assert.Equal(t, "horn-strobe", v)
	assert.InDelta(t, 2, cellFloat(t, f, SheetSpecs, "B2"), 1e-9)
	assert.InDelta(t, 0.5, cellFloat(t, f, SheetSpecs, "C2"), 1e-9)

	v, err = f.GetCellValue(SheetSpecs, "A3")
	require.NoError(t, err)
	assert.Equal(t, "strobe", v)
}
