package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/testutil"
)

func testReport(t *testing.T, root *models.DeviceNode) *Report {
	t.Helper()
	rep, err := Prepare(root, testutil.TestParams(), models.ExportMetadata{
		ExportedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ProjectName: "Test Project",
		ProjectPath: "/projects/test",
		ExportedBy:  "tester",
	})
	require.NoError(t, err)
	return rep
}

func TestPrepare_RejectsBadConfiguration(t *testing.T) {
	params := testutil.TestParams()
	params.Resistance = 0
	params.WireGauge = ""

	_, err := Prepare(testutil.LinearCircuit(1, 0.5, 100), params, models.ExportMetadata{})
	require.Error(t, err)
	assert.True(t, circuit.IsConfigError(err))
}

func TestRegistry_FixedFormatSet(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"csv", "json", "xlsx", "pdf"}, r.Formats())
}

func TestRegistry_UnknownFormatIsConfigError(t *testing.T) {
	r := NewRegistry()
	_, err := r.GetByName("docx")
	require.Error(t, err)
	assert.True(t, circuit.IsConfigError(err))
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestRegistry_NameLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	e, err := r.GetByName("  XLSX ")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", e.Name())
}

func TestCSVExporter_RowsAndTrailer(t *testing.T) {
	rep := testReport(t, testutil.BranchedCircuit(2, 0.2, 30))

	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter().Export(&buf, rep))

	cr := csv.NewReader(&buf)
	cr.FieldsPerRecord = -1 // trailer rows are shorter than the table
	records, err := cr.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, "Position", records[0][0])
	// One header + four devices, then the trailer.
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Device 1", records[1][1])
	assert.Equal(t, "T-Tap", records[2][3])
	assert.Equal(t, "4", records[4][0])

	found := false
	for _, rec := range records[5:] {
		if len(rec) >= 2 && rec[0] == "Total Devices" {
			assert.Equal(t, "4", rec[1])
			found = true
		}
	}
	assert.True(t, found, "summary trailer missing")
}

func TestJSONExporter_DocumentShape(t *testing.T) {
	rep := testReport(t, testutil.BranchedCircuit(1, 0.3, 20))

	var buf bytes.Buffer
	require.NoError(t, NewJSONExporter().Export(&buf, rep))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "Test Project", doc.Metadata.ProjectName)
	assert.Equal(t, "tester", doc.Metadata.ExportedBy)
	require.NotNil(t, doc.Circuit)
	assert.True(t, doc.Circuit.IsRoot())
	assert.Len(t, doc.Devices, 3)
	assert.Equal(t, 3, doc.Summary.TotalDevices)
	// Tree shape survives serialization.
	require.Len(t, doc.Circuit.Children, 1)
	assert.Len(t, doc.Circuit.Children[0].Children, 2)
}

func TestJSONExporter_FlatAndTreeAgree(t *testing.T) {
	rep := testReport(t, testutil.BranchedCircuit(3, 0.2, 25))

	var buf bytes.Buffer
	require.NoError(t, NewJSONExporter().Export(&buf, rep))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	count := 0
	var walk func(n *models.DeviceNode)
	walk = func(n *models.DeviceNode) {
		if !n.IsRoot() {
			count++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(doc.Circuit)
	assert.Equal(t, len(doc.Devices), count)
}

func TestPDFExporter_ProducesDocument(t *testing.T) {
	rep := testReport(t, testutil.LinearCircuit(5, 0.2, 30))

	var buf bytes.Buffer
	require.NoError(t, NewPDFExporter().Export(&buf, rep))

	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))
	assert.Greater(t, buf.Len(), 500)
}

func TestPDFExporter_PaginatesLongTables(t *testing.T) {
	root := models.NewRoot()
	parent := root
	for i := 1; i <= 80; i++ {
		d := testutil.Device(fmt.Sprintf("Device %d", i), 0.01, 5)
		parent.AddChild(d)
		parent = d
	}
	rep := testReport(t, root)

	var buf bytes.Buffer
	require.NoError(t, NewPDFExporter().Export(&buf, rep))

	// 80 rows cannot fit one landscape A4 page: expect the pages tree
	// object plus at least two page objects.
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "/Type /Page"), 3)
}

func TestEmissionError_WrapsCause(t *testing.T) {
	rep := testReport(t, testutil.LinearCircuit(1, 0.5, 100))

	r := NewRegistry()
	err := r.Export("csv", failingWriter{}, rep)
	require.Error(t, err)

	var ee *EmissionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "csv", ee.Format)

	// The evaluated report is untouched and usable by other emitters.
	var buf bytes.Buffer
	assert.NoError(t, r.Export("json", &buf, rep))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, fmt.Errorf("disk full")
}
