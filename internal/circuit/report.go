package circuit

import (
	"fmt"
	"math"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// BuildReport folds an evaluated tree into the read-only aggregate.
// Validation findings (low voltage, overload) are carried as data in the
// error list, never returned as an error value.
func BuildReport(root *models.DeviceNode, params models.ParameterSet) *models.CircuitReport {
	params.ResolveResistance()
	eval := NewEvaluator(params)

	rep := &models.CircuitReport{
		WorstVoltage: math.Inf(1),
	}

	Walk(root, func(n *models.DeviceNode, _ *WalkContext) {
		rep.TotalDevices++
		if n.OnBranch() {
			rep.BranchDevices++
		} else {
			rep.MainDevices++
		}
		rep.TotalLoad += n.Current.Alarm
		rep.TotalWireLength += eval.SegmentDistance(n)
		if n.Voltage < rep.WorstVoltage {
			rep.WorstVoltage = n.Voltage
		}
		if n.VoltageDrop > rep.WorstDrop {
			rep.WorstDrop = n.VoltageDrop
		}
		if Status(n, params.MinVoltage) == models.StatusLowVoltage {
			rep.Errors = append(rep.Errors,
				fmt.Sprintf("device %q: voltage %.3fV below minimum %.3fV", n.Name, n.Voltage, params.MinVoltage))
		}
	})

	if rep.TotalDevices == 0 {
		rep.WorstVoltage = params.SystemVoltage
	}
	if usable := params.UsableLoad(); rep.TotalLoad > usable {
		rep.Errors = append(rep.Errors,
			fmt.Sprintf("total load %.3fA exceeds usable supply %.3fA", rep.TotalLoad, usable))
	}
	rep.IsValid = len(rep.Errors) == 0
	return rep
}
