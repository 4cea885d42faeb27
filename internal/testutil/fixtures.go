// Package testutil provides shared circuit fixtures for tests.
package testutil

import (
	"fmt"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// TestParams returns a parameter set with no routing overhead so expected
// values can be computed by hand: 24V system, 16V floor, 14 AWG wire.
func TestParams() models.ParameterSet {
	return models.ParameterSet{
		SystemVoltage:   24.0,
		MinVoltage:      16.0,
		WireGauge:       models.Gauge14,
		Resistance:      2.525,
		SupplyDistance:  100.0,
		RoutingOverhead: 1.0,
		SafetyPercent:   0.10,
		MaxLoad:         3.0,
	}
}

// Device creates a main-run device node.
func Device(name string, alarm, distance float64) *models.DeviceNode {
	return &models.DeviceNode{
		Type:               models.NodeTypeDevice,
		Name:               name,
		DeviceType:         "horn-strobe",
		Current:            models.Current{Alarm: alarm},
		DistanceFromParent: distance,
	}
}

// BranchDevice creates a T-tap device node.
func BranchDevice(name string, alarm, distance float64) *models.DeviceNode {
	d := Device(name, alarm, distance)
	d.IsBranchDevice = true
	return d
}

// LinearCircuit builds a root with n chained main-run devices, each with
// the given alarm draw and hop distance. Sequence numbers follow chain
// order.
func LinearCircuit(n int, alarm, distance float64) *models.DeviceNode {
	root := models.NewRoot()
	parent := root
	for i := 1; i <= n; i++ {
		d := Device(fmt.Sprintf("Device %d", i), alarm, distance)
		d.SequenceNumber = i
		parent.AddChild(d)
		parent = d
	}
	return root
}

// BranchedCircuit builds a root -> main device with one branch subtree of
// branchLen chained devices followed by a main continuation:
//
//	root -> D1 -> (B1 -> ... -> Bn) branch
//	          \-> D2 (main continuation)
func BranchedCircuit(branchLen int, alarm, distance float64) *models.DeviceNode {
	root := models.NewRoot()
	d1 := Device("Device 1", alarm, distance)
	d1.SequenceNumber = 1
	root.AddChild(d1)

	parent := d1
	for i := 1; i <= branchLen; i++ {
		// Only the tap itself is flagged; the rest of the spur continues
		// the branch run.
		b := Device(fmt.Sprintf("Branch %d", i), alarm, distance)
		b.IsBranchDevice = i == 1
		b.SequenceNumber = 1 + i
		parent.AddChild(b)
		parent = b
	}

	d2 := Device("Device 2", alarm, distance)
	d2.SequenceNumber = branchLen + 2
	d1.AddChild(d2)
	return root
}
