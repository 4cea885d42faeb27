package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *DeviceNode {
	root := NewRoot()
	d1 := &DeviceNode{Type: NodeTypeDevice, Name: "D1", Current: Current{Alarm: 0.2}, DistanceFromParent: 30}
	tap := &DeviceNode{Type: NodeTypeDevice, Name: "Tap", Current: Current{Alarm: 0.1}, DistanceFromParent: 15, IsBranchDevice: true}
	d2 := &DeviceNode{Type: NodeTypeDevice, Name: "D2", Current: Current{Alarm: 0.2}, DistanceFromParent: 40}
	root.AddChild(d1)
	d1.AddChild(tap)
	d1.AddChild(d2)
	return root
}

func TestClone_CopiesShapeAndFields(t *testing.T) {
	root := sampleTree()
	clone := root.Clone()

	require.Equal(t, root.SubtreeSize(), clone.SubtreeSize())
	assert.True(t, clone.IsRoot())
	require.Len(t, clone.Children, 1)

	d1 := clone.Children[0]
	assert.Equal(t, "D1", d1.Name)
	assert.InDelta(t, 30.0, d1.DistanceFromParent, 1e-9)
	require.Len(t, d1.Children, 2)
	assert.True(t, d1.Children[0].IsBranchDevice)
}

func TestClone_NodesAreIndependent(t *testing.T) {
	root := sampleTree()
	clone := root.Clone()

	// Writes to the clone's computed fields never reach the original.
	clone.Children[0].Voltage = 12.0
	clone.Children[0].AccumulatedLoad = 9.9
	assert.Zero(t, root.Children[0].Voltage)
	assert.Zero(t, root.Children[0].AccumulatedLoad)

	// The child lists are separate slices of separate nodes.
	assert.NotSame(t, root.Children[0], clone.Children[0])
	clone.Children[0].AddChild(&DeviceNode{Type: NodeTypeDevice, Name: "Extra"})
	assert.Len(t, root.Children[0].Children, 2)
}

func TestClone_RewiresParents(t *testing.T) {
	root := sampleTree()
	clone := root.Clone()

	assert.Nil(t, clone.Parent)
	d1 := clone.Children[0]
	assert.Same(t, clone, d1.Parent)
	for _, c := range d1.Children {
		assert.Same(t, d1, c.Parent)
	}
	// Branch ancestry works on the copy without touching the original.
	assert.True(t, d1.Children[0].OnBranch())
}
