package models

// NodeType distinguishes the synthetic root from real devices.
type NodeType string

const (
	NodeTypeRoot   NodeType = "root"
	NodeTypeDevice NodeType = "device"
)

// Current is a device's draw in amps for each panel state.
type Current struct {
	Alarm   float64 `json:"alarm" yaml:"alarm"`
	Standby float64 `json:"standby" yaml:"standby"`
}

// DeviceNode is one node of the circuit tree. The root owns its children;
// Parent is a lookup back-reference only and is never serialized.
//
// Children are partitioned by IsBranchDevice: any number of branch (T-tap)
// children plus at most one main-continuation child. The three computed
// fields are written exactly once per evaluation.
type DeviceNode struct {
	Type               NodeType      `json:"type"`
	Name               string        `json:"name"`
	DeviceType         string        `json:"deviceType"`
	Current            Current       `json:"current"`
	DistanceFromParent float64       `json:"distanceFromParent"`
	IsBranchDevice     bool          `json:"isBranchDevice"`
	SequenceNumber     int           `json:"sequenceNumber"`
	Children           []*DeviceNode `json:"children,omitempty"`

	Parent *DeviceNode `json:"-"`

	// Computed during evaluation.
	AccumulatedLoad float64 `json:"accumulatedLoad"`
	VoltageDrop     float64 `json:"voltageDrop"`
	Voltage         float64 `json:"voltage"`
}

// NewRoot creates the synthetic root node of a circuit tree.
func NewRoot() *DeviceNode {
	return &DeviceNode{Type: NodeTypeRoot, Name: "Panel"}
}

// AddChild appends a child and wires its parent back-reference.
func (n *DeviceNode) AddChild(c *DeviceNode) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// IsRoot reports whether this is the synthetic root.
func (n *DeviceNode) IsRoot() bool {
	return n.Type == NodeTypeRoot
}

// BranchChildren returns the T-tap children in list order.
func (n *DeviceNode) BranchChildren() []*DeviceNode {
	var out []*DeviceNode
	for _, c := range n.Children {
		if c.IsBranchDevice {
			out = append(out, c)
		}
	}
	return out
}

// MainContinuations returns every child flagged as continuing the main run.
// A well-formed tree has at most one; callers reject anything more.
func (n *DeviceNode) MainContinuations() []*DeviceNode {
	var out []*DeviceNode
	for _, c := range n.Children {
		if !c.IsBranchDevice {
			out = append(out, c)
		}
	}
	return out
}

// OnBranch reports whether the node sits inside a T-tap subtree, i.e.
// whether it or any ancestor below the root is flagged as a branch device.
func (n *DeviceNode) OnBranch() bool {
	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.Parent {
		if cur.IsBranchDevice {
			return true
		}
	}
	return false
}

// Clone deep-copies the subtree rooted at n, rewiring parent
// back-references inside the copy. The clone's root has no parent.
// Evaluation writes the three computed fields, so concurrent report runs
// over one stored circuit must each work on their own clone.
func (n *DeviceNode) Clone() *DeviceNode {
	c := *n
	c.Parent = nil
	if len(n.Children) > 0 {
		c.Children = make([]*DeviceNode, len(n.Children))
		for i, child := range n.Children {
			cc := child.Clone()
			cc.Parent = &c
			c.Children[i] = cc
		}
	}
	return &c
}

// SubtreeSize counts the node itself plus all descendants.
func (n *DeviceNode) SubtreeSize() int {
	size := 1
	for _, c := range n.Children {
		size += c.SubtreeSize()
	}
	return size
}
