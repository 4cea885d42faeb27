package circuit

import (
	"fmt"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// Evaluator computes per-device electrical results over a circuit tree.
// Evaluation is deterministic and idempotent: re-running it on unchanged
// inputs rewrites the same three computed fields with identical values.
type Evaluator struct {
	params models.ParameterSet
}

// NewEvaluator creates an evaluator for the given parameter set. The wire
// resistance is resolved from the gauge table if not set explicitly.
func NewEvaluator(params models.ParameterSet) *Evaluator {
	params.ResolveResistance()
	return &Evaluator{params: params}
}

// Params returns the resolved parameter set the evaluator runs with.
func (e *Evaluator) Params() models.ParameterSet {
	return e.params
}

// Evaluate fills AccumulatedLoad, VoltageDrop and Voltage for every device
// in the tree. Configuration problems (zero resistance, multiple main
// continuations at one node) are rejected before any node is touched.
func (e *Evaluator) Evaluate(root *models.DeviceNode) error {
	if err := e.params.Validate(); err != nil {
		return NewConfigError("invalid parameter set", err)
	}
	if err := ValidateTopology(root); err != nil {
		return err
	}

	// Pass 1: bottom-up load accumulation. The current through the segment
	// feeding a node is its own alarm draw plus everything downstream.
	accumulate(root)

	// Pass 2: top-down voltage propagation from the source.
	root.Voltage = e.params.SystemVoltage
	e.propagate(root)
	return nil
}

// accumulate returns the total downstream alarm draw of n's subtree and
// writes AccumulatedLoad on every device in it.
func accumulate(n *models.DeviceNode) float64 {
	sum := 0.0
	for _, c := range n.Children {
		sum += accumulate(c)
	}
	if n.IsRoot() {
		// The root is the source; it draws nothing itself.
		return sum
	}
	n.AccumulatedLoad = n.Current.Alarm + sum
	return n.AccumulatedLoad
}

func (e *Evaluator) propagate(n *models.DeviceNode) {
	for _, c := range n.Children {
		c.VoltageDrop = c.AccumulatedLoad * 2 * e.SegmentDistance(c) * e.params.Resistance / 1000
		c.Voltage = n.Voltage - c.VoltageDrop
		e.propagate(c)
	}
}

// SegmentDistance is the effective wire length of the segment feeding n.
// Devices directly under the root are fed by the supply run, not by a
// device-to-device hop, so they use the supply distance instead of their
// own distance field. Routing overhead applies in both cases.
func (e *Evaluator) SegmentDistance(n *models.DeviceNode) float64 {
	d := n.DistanceFromParent
	if n.Parent != nil && n.Parent.IsRoot() {
		d = e.params.SupplyDistance
	}
	return d * e.params.RoutingOverhead
}

// Status labels a device against the minimum acceptable voltage.
func Status(n *models.DeviceNode, minVoltage float64) string {
	if n.Voltage >= minVoltage {
		return models.StatusOK
	}
	return models.StatusLowVoltage
}

// ValidateTopology rejects malformed trees: any node with more than one
// child flagged as continuing the main run fails the whole evaluation.
func ValidateTopology(root *models.DeviceNode) error {
	return checkNode(root)
}

func checkNode(n *models.DeviceNode) error {
	if mains := n.MainContinuations(); len(mains) > 1 {
		name := n.Name
		if n.IsRoot() {
			name = "root"
		}
		return NewConfigError(
			fmt.Sprintf("node %q has %d main-continuation children, at most one allowed", name, len(mains)), nil)
	}
	for _, c := range n.Children {
		if err := checkNode(c); err != nil {
			return err
		}
	}
	return nil
}
