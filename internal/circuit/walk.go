package circuit

import "github.com/gpokora/FA-Wire-Tool-sub002/internal/models"

// WalkContext carries per-run accumulator state through the traversal so
// concurrent report runs never share counters.
type WalkContext struct {
	// Position is the 1-based emission ordinal of the current device.
	Position int
}

// Sink receives each device node in emission order.
type Sink func(n *models.DeviceNode, ctx *WalkContext)

// Walk visits every device of the tree in emission order: each node is
// emitted before its subtree, branch children come first (in child-list
// order), the main continuation last. The synthetic root is not emitted.
//
// This single traversal drives row numbering for every output format and
// the relative row references of the formula synthesizer, so all consumers
// see identical positions for the same tree.
func Walk(root *models.DeviceNode, sink Sink) {
	ctx := &WalkContext{}
	walkNode(root, ctx, sink)
}

func walkNode(n *models.DeviceNode, ctx *WalkContext, sink Sink) {
	if !n.IsRoot() {
		ctx.Position++
		sink(n, ctx)
	}
	for _, c := range n.BranchChildren() {
		walkNode(c, ctx, sink)
	}
	for _, c := range n.MainContinuations() {
		walkNode(c, ctx, sink)
	}
}

// Devices returns the tree's devices in emission order.
func Devices(root *models.DeviceNode) []*models.DeviceNode {
	var out []*models.DeviceNode
	Walk(root, func(n *models.DeviceNode, _ *WalkContext) {
		out = append(out, n)
	})
	return out
}
