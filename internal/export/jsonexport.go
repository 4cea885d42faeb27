package export

import (
	"encoding/json"
	"io"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// JSONExporter emits the structured-record document: metadata block,
// parameter set, summary, the tree-shaped circuit and the flat device list.
type JSONExporter struct{}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Name() string { return "json" }
func (e *JSONExporter) Ext() string  { return ".json" }

// Document is the top-level JSON export shape.
type Document struct {
	Metadata   models.ExportMetadata `json:"metadata"`
	Parameters models.ParameterSet   `json:"parameters"`
	Summary    *models.CircuitReport `json:"summary"`
	Circuit    *models.DeviceNode    `json:"circuit"`
	Devices    []models.DeviceRecord `json:"devices"`
}

func (e *JSONExporter) Export(w io.Writer, rep *Report) error {
	doc := Document{
		Metadata:   rep.Meta,
		Parameters: rep.Params,
		Summary:    rep.Summary,
		Circuit:    rep.Tree,
		Devices:    rep.Records,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
