package export

import (
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// PDFExporter draws the device table as a paginated landscape document
// with the table header repeated on every page.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) Name() string { return "pdf" }
func (e *PDFExporter) Ext() string  { return ".pdf" }

var pdfColumns = []struct {
	title string
	width float64
}{
	{"#", 10},
	{"Name", 52},
	{"Device Type", 40},
	{"Location", 20},
	{"Alarm (A)", 20},
	{"Standby (A)", 22},
	{"Distance", 20},
	{"Load (A)", 20},
	{"Drop (V)", 20},
	{"Voltage (V)", 24},
	{"Status", 29},
}

func (e *PDFExporter) Export(w io.Writer, rep *Report) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	addPage := func() {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, fmt.Sprintf("Circuit Report - %s", rep.Meta.ProjectName), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Exported %s by %s", rep.Meta.ExportedAt.Format("2006-01-02 15:04"), rep.Meta.ExportedBy), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 8)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	addPage()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	limit := pageH - bottom - 10

	for _, rec := range rep.Records {
		if pdf.GetY()+6 > limit {
			addPage()
		}
		cells := []string{
			fmt.Sprintf("%d", rec.Position),
			rec.Name,
			rec.DeviceType,
			rec.Location,
			fmt.Sprintf("%.3f", rec.AlarmCurrent),
			fmt.Sprintf("%.3f", rec.StandbyCurrent),
			fmt.Sprintf("%.1f", rec.Distance),
			fmt.Sprintf("%.3f", rec.AccumulatedLoad),
			fmt.Sprintf("%.4f", rec.VoltageDrop),
			fmt.Sprintf("%.3f", rec.Voltage),
			rec.Status,
		}
		for i, c := range cells {
			align := "R"
			if i == 1 || i == 2 {
				align = "L"
			}
			if i == 3 || i == 10 {
				align = "C"
			}
			pdf.CellFormat(pdfColumns[i].width, 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.GetY()+40 > limit {
		addPage()
	}
	e.summaryBlock(pdf, rep.Summary)

	return pdf.Output(w)
}

func (e *PDFExporter) summaryBlock(pdf *fpdf.Fpdf, s *models.CircuitReport) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)

	lines := []string{
		fmt.Sprintf("Devices: %d (main %d, branch %d)", s.TotalDevices, s.MainDevices, s.BranchDevices),
		fmt.Sprintf("Total load: %.3f A    Total wire: %.1f", s.TotalLoad, s.TotalWireLength),
		fmt.Sprintf("End-of-line voltage: %.3f V    Worst drop: %.4f V", s.WorstVoltage, s.WorstDrop),
		fmt.Sprintf("Valid: %t", s.IsValid),
	}
	for _, l := range lines {
		pdf.CellFormat(0, 5, l, "", 1, "L", false, 0, "")
	}
	for _, msg := range s.Errors {
		pdf.SetTextColor(180, 0, 0)
		pdf.CellFormat(0, 5, "Error: "+msg, "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}
