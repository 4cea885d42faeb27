// Package export renders evaluated circuit reports into the supported
// output formats.
package export

import (
	"fmt"
	"io"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/project"
)

// Report bundles everything an emitter needs for one run. Emitters only
// read it; a failure in one emitter never affects another's use of the
// same evaluated tree.
type Report struct {
	Tree    *models.DeviceNode
	Params  models.ParameterSet
	Records []models.DeviceRecord
	Summary *models.CircuitReport
	Meta    models.ExportMetadata
}

// Prepare runs the full evaluate-then-project pipeline for one report
// request. The tree is fully evaluated before any projection begins.
func Prepare(root *models.DeviceNode, params models.ParameterSet, meta models.ExportMetadata) (*Report, error) {
	eval := circuit.NewEvaluator(params)
	if err := eval.Evaluate(root); err != nil {
		return nil, err
	}
	resolved := eval.Params()
	return &Report{
		Tree:    root,
		Params:  resolved,
		Records: project.Flatten(root, resolved),
		Summary: circuit.BuildReport(root, resolved),
		Meta:    meta,
	}, nil
}

// Exporter renders one report into a single output document.
type Exporter interface {
	// Name is the format name used for selection (lowercase).
	Name() string
	// Ext is the output file extension including the dot.
	Ext() string
	// Export writes the rendered document. Failures are wrapped in
	// EmissionError by the registry.
	Export(w io.Writer, rep *Report) error
}

// EmissionError is a formatting or I/O failure local to one emitter.
type EmissionError struct {
	Format string
	Err    error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *EmissionError) Unwrap() error {
	return e.Err
}
