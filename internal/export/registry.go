package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
)

// Registry holds the fixed set of exporters, selectable by format name.
type Registry struct {
	exporters []Exporter
}

// NewRegistry creates the default registry: csv, json, xlsx and pdf.
// The xlsx exporter runs in live-formula mode by default.
func NewRegistry() *Registry {
	return &Registry{
		exporters: []Exporter{
			NewCSVExporter(),
			NewJSONExporter(),
			NewWorkbookExporter(ModeLive),
			NewPDFExporter(),
		},
	}
}

// Register adds an exporter to the registry.
func (r *Registry) Register(e Exporter) {
	r.exporters = append(r.exporters, e)
}

// Formats lists the registered format names in registration order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.exporters))
	for _, e := range r.exporters {
		names = append(names, e.Name())
	}
	return names
}

// GetByName returns the exporter for a format name. An unknown name is a
// configuration error, not an emission error.
func (r *Registry) GetByName(name string) (Exporter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range r.exporters {
		if e.Name() == name {
			return e, nil
		}
	}
	return nil, circuit.NewConfigError(
		fmt.Sprintf("unsupported export format %q (supported: %s)", name, strings.Join(r.Formats(), ", ")), nil)
}

// Export renders the report in the named format, wrapping any emitter
// failure so it stays local to this one format.
func (r *Registry) Export(name string, w io.Writer, rep *Report) error {
	e, err := r.GetByName(name)
	if err != nil {
		return err
	}
	if err := e.Export(w, rep); err != nil {
		return &EmissionError{Format: e.Name(), Err: err}
	}
	return nil
}
