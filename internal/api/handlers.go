package api

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/builder"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/export"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/history"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/session"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/storage"
)

// Handler handles API requests.
type Handler struct {
	store     storage.Store
	sessions  *session.Manager
	registry  *export.Registry
	history   *history.Store
	defaults  models.ParameterSet
	attrs     builder.AttributeSource
}

// NewHandler creates a new API handler. The history store may be nil, in
// which case run logging is skipped.
func NewHandler(store storage.Store, sessions *session.Manager, hist *history.Store, defaults models.ParameterSet) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		registry: export.NewRegistry(),
		history:  hist,
		defaults: defaults,
		attrs:    builder.NoAttributes{},
	}
}

// SetAttributeSource plugs in the host application's device attribute lookup.
func (h *Handler) SetAttributeSource(attrs builder.AttributeSource) {
	h.attrs = attrs
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"formats": h.registry.Formats(),
	})
}

// HandleFormats lists the supported export formats.
func (h *Handler) HandleFormats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"formats": h.registry.Formats(),
	})
}

// uploadCircuitRequest wraps a circuit definition upload.
type uploadCircuitRequest struct {
	ProjectName string             `json:"projectName"`
	ProjectPath string             `json:"projectPath"`
	Definition  builder.Definition `json:"definition"`
}

// HandleUploadCircuit accepts a circuit definition (JSON body wrapping the
// YAML-equivalent structure), builds the tree and stores it for export.
func (h *Handler) HandleUploadCircuit(c echo.Context) error {
	var req uploadCircuitRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid circuit payload", err)
	}

	def := req.Definition
	tree, params, err := builder.Build(&def, h.attrs)
	if err != nil {
		return FromDomainError(err)
	}
	if params == (models.ParameterSet{}) {
		params = h.defaults
	}

	name := req.ProjectName
	if name == "" {
		name = def.Project
	}
	circ, err := h.sessions.AddCircuit(name, req.ProjectPath, tree, params)
	if err != nil {
		return NewInternalError("failed to store circuit", err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"circuitId":   circ.ID,
		"projectName": circ.ProjectName,
		"deviceCount": tree.SubtreeSize() - 1,
	})
}

// HandleValidateCircuit evaluates a stored circuit and returns the report
// aggregate without producing any output document.
func (h *Handler) HandleValidateCircuit(c echo.Context) error {
	circ, ok := h.sessions.GetCircuit(c.Param("id"))
	if !ok {
		return NewNotFoundError("circuit", c.Param("id"))
	}

	// Evaluation writes the computed fields, so each request works on its
	// own copy of the stored tree.
	tree := circ.Tree.Clone()
	eval := circuit.NewEvaluator(circ.Params)
	if err := eval.Evaluate(tree); err != nil {
		return FromDomainError(err)
	}
	return c.JSON(http.StatusOK, circuit.BuildReport(tree, eval.Params()))
}

// exportRequest selects the circuit and output format for one export run.
type exportRequest struct {
	CircuitID string `json:"circuitId"`
	Format    string `json:"format"`
}

// HandleExport runs the full evaluate-project-emit pipeline for one format
// and stores the produced artifact.
func (h *Handler) HandleExport(c echo.Context) error {
	var req exportRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid export request", err)
	}

	circ, ok := h.sessions.GetCircuit(req.CircuitID)
	if !ok {
		return NewNotFoundError("circuit", req.CircuitID)
	}

	exporter, err := h.registry.GetByName(req.Format)
	if err != nil {
		return FromDomainError(err)
	}

	rep, err := export.Prepare(circ.Tree.Clone(), circ.Params, models.ExportMetadata{
		ExportedAt:  time.Now(),
		ProjectName: circ.ProjectName,
		ProjectPath: circ.ProjectPath,
		ExportedBy:  currentUser(),
	})
	if err != nil {
		return FromDomainError(err)
	}

	name := fmt.Sprintf("%s-report%s", safeName(circ.ProjectName), exporter.Ext())
	w, info, err := h.store.Create(name)
	if err != nil {
		return NewInternalError("failed to create output file", err)
	}
	exportErr := h.registry.Export(exporter.Name(), w, rep)
	w.Close()
	if exportErr != nil {
		h.store.Delete(info.ID)
		return FromDomainError(exportErr)
	}

	run := h.sessions.AddRun(circ.ID, rep)
	if h.history != nil {
		err := h.history.Record(&models.ReportRun{
			ID:           run.ID,
			CreatedAt:    run.CreatedAt,
			ProjectName:  circ.ProjectName,
			Format:       exporter.Name(),
			DeviceCount:  rep.Summary.TotalDevices,
			TotalLoad:    rep.Summary.TotalLoad,
			WorstVoltage: rep.Summary.WorstVoltage,
			IsValid:      rep.Summary.IsValid,
			OutputPath:   info.Path,
		})
		// History is best-effort: a broken run log never fails the export,
		// but it must be visible.
		if err != nil {
			c.Logger().Warnf("recording run history: %v", err)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"runId":      run.ID,
		"artifactId": info.ID,
		"outputPath": info.Path,
		"format":     exporter.Name(),
		"isValid":    rep.Summary.IsValid,
	})
}

// HandleGetRecords returns a run's flattened device records as JSON.
func (h *Handler) HandleGetRecords(c echo.Context) error {
	run, ok := h.sessions.GetRun(c.Param("runId"))
	if !ok {
		return NewNotFoundError("report run", c.Param("runId"))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"metadata": run.Report.Meta,
		"summary":  run.Report.Summary,
		"devices":  run.Report.Records,
	})
}

// HandleGetRecordsMsgpack returns the same records msgpack-encoded for the
// host application's binary ingest path.
func (h *Handler) HandleGetRecordsMsgpack(c echo.Context) error {
	run, ok := h.sessions.GetRun(c.Param("runId"))
	if !ok {
		return NewNotFoundError("report run", c.Param("runId"))
	}
	payload := map[string]interface{}{
		"metadata": run.Report.Meta,
		"devices":  run.Report.Records,
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return NewInternalError("failed to encode records", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleRecentRuns lists recent export runs from the history store.
func (h *Handler) HandleRecentRuns(c echo.Context) error {
	if h.history == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"runs": []interface{}{}})
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	runs, err := h.history.Recent(limit)
	if err != nil {
		return NewInternalError("failed to query run history", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"runs": runs})
}

// HandleListArtifacts lists stored report artifacts, newest first.
func (h *Handler) HandleListArtifacts(c echo.Context) error {
	infos, err := h.store.List(50)
	if err != nil {
		return NewInternalError("failed to list artifacts", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"artifacts": infos})
}

// HandleDownloadArtifact streams a stored artifact back to the caller.
func (h *Handler) HandleDownloadArtifact(c echo.Context) error {
	info, err := h.store.Get(c.Param("id"))
	if err != nil {
		return NewNotFoundError("artifact", c.Param("id"))
	}
	return c.Attachment(info.Path, info.Name)
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u := os.Getenv("USERNAME"); u != "" {
		return u
	}
	return "unknown"
}

func safeName(name string) string {
	if name == "" {
		return "circuit"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "circuit"
	}
	return string(out)
}
