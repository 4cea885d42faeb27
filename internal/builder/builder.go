// Package builder constructs circuit trees from YAML definitions supplied
// by the host design application.
package builder

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// AttributeSource is the host application's per-device key/value lookup.
// Missing attributes fall back to the caller-supplied default.
type AttributeSource interface {
	Lookup(name string, def string) string
}

// MapSource is a map-backed AttributeSource.
type MapSource map[string]string

func (m MapSource) Lookup(name string, def string) string {
	if v, ok := m[name]; ok {
		return v
	}
	return def
}

// NoAttributes always returns the default.
type NoAttributes struct{}

func (NoAttributes) Lookup(_ string, def string) string { return def }

// Definition is the on-disk circuit description.
type Definition struct {
	Project    string              `yaml:"project"`
	Parameters models.ParameterSet `yaml:"parameters"`
	Devices    []DeviceDef         `yaml:"devices"`
}

// DeviceDef is one device entry. Children nest recursively; branch entries
// are T-taps, the rest continue the main run.
type DeviceDef struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Alarm    float64     `yaml:"alarm"`
	Standby  float64     `yaml:"standby"`
	Distance float64     `yaml:"distance"`
	Branch   bool        `yaml:"branch"`
	Children []DeviceDef `yaml:"children"`
}

// Load reads and decodes a definition file.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening circuit definition: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a YAML definition from a reader.
func Decode(r io.Reader) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing circuit definition: %w", err)
	}
	return &def, nil
}

// Build constructs the circuit tree: sequence numbers are assigned in
// definition order, parent back-references wired, names and device types
// defaulted through the attribute source. The finished tree is validated
// against the topology rules before being returned.
func Build(def *Definition, attrs AttributeSource) (*models.DeviceNode, models.ParameterSet, error) {
	if attrs == nil {
		attrs = NoAttributes{}
	}
	root := models.NewRoot()
	seq := 0
	for i := range def.Devices {
		buildNode(root, &def.Devices[i], attrs, &seq)
	}

	params := def.Parameters
	params.ResolveResistance()
	if err := circuit.ValidateTopology(root); err != nil {
		return nil, params, err
	}
	return root, params, nil
}

func buildNode(parent *models.DeviceNode, d *DeviceDef, attrs AttributeSource, seq *int) {
	*seq++
	n := &models.DeviceNode{
		Type:               models.NodeTypeDevice,
		SequenceNumber:     *seq,
		Current:            models.Current{Alarm: d.Alarm, Standby: d.Standby},
		DistanceFromParent: d.Distance,
		IsBranchDevice:     d.Branch,
	}
	n.Name = d.Name
	if n.Name == "" {
		n.Name = attrs.Lookup(attrKey(*seq, "name"), fmt.Sprintf("Device %d", *seq))
	}
	n.DeviceType = d.Type
	if n.DeviceType == "" {
		n.DeviceType = attrs.Lookup(attrKey(*seq, "type"), "notification-appliance")
	}
	parent.AddChild(n)
	for i := range d.Children {
		buildNode(n, &d.Children[i], attrs, seq)
	}
}

func attrKey(seq int, field string) string {
	return fmt.Sprintf("device.%d.%s", seq, field)
}
