package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/testutil"
)

func evaluated(t *testing.T, root *models.DeviceNode, params models.ParameterSet) *models.DeviceNode {
	t.Helper()
	require.NoError(t, circuit.NewEvaluator(params).Evaluate(root))
	return root
}

func TestFlatten_PositionsFollowEmissionOrder(t *testing.T) {
	params := testutil.TestParams()
	root := evaluated(t, testutil.BranchedCircuit(2, 0.2, 30), params)

	records := Flatten(root, params)
	require.Len(t, records, 4)

	names := make([]string, 0, len(records))
	for i, rec := range records {
		assert.Equal(t, i+1, rec.Position)
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"Device 1", "Branch 1", "Branch 2", "Device 2"}, names)
}

func TestFlatten_LocationLabels(t *testing.T) {
	params := testutil.TestParams()
	root := evaluated(t, testutil.BranchedCircuit(2, 0.2, 30), params)

	records := Flatten(root, params)

	byName := make(map[string]models.DeviceRecord)
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	assert.Equal(t, models.LocationMain, byName["Device 1"].Location)
	assert.Equal(t, models.LocationTTap, byName["Branch 1"].Location)
	// Descendants of a tap stay on the branch even when not flagged.
	assert.Equal(t, models.LocationTTap, byName["Branch 2"].Location)
	assert.Equal(t, models.LocationMain, byName["Device 2"].Location)
}

func TestFlatten_CarriesEvaluatedValues(t *testing.T) {
	params := testutil.TestParams()
	root := evaluated(t, testutil.LinearCircuit(1, 0.5, 100), params)

	records := Flatten(root, params)
	require.Len(t, records, 1)

	rec := records[0]
	assert.InDelta(t, 0.5, rec.AccumulatedLoad, 1e-9)
	assert.InDelta(t, 0.2525, rec.VoltageDrop, 1e-9)
	assert.InDelta(t, 23.7475, rec.Voltage, 1e-9)
	assert.Equal(t, models.StatusOK, rec.Status)
}

func TestFlatten_SameNumberingEveryCall(t *testing.T) {
	params := testutil.TestParams()
	root := evaluated(t, testutil.BranchedCircuit(5, 0.1, 20), params)

	first := Flatten(root, params)
	second := Flatten(root, params)
	assert.Equal(t, first, second)
}
