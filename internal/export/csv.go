package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVExporter writes the flattened device table as delimited text with a
// summary trailer.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Name() string { return "csv" }
func (e *CSVExporter) Ext() string  { return ".csv" }

func (e *CSVExporter) Export(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)

	header := []string{
		"Position", "Name", "Device Type", "Location",
		"Alarm Current (A)", "Standby Current (A)", "Distance",
		"Accumulated Load (A)", "Voltage Drop (V)", "Voltage (V)", "Status",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range rep.Records {
		row := []string{
			strconv.Itoa(rec.Position),
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
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	// Summary trailer, separated from the table by one empty record.
	s := rep.Summary
	trailer := [][]string{
		{},
		{"Total Devices", strconv.Itoa(s.TotalDevices)},
		{"Main Devices", strconv.Itoa(s.MainDevices)},
		{"Branch Devices", strconv.Itoa(s.BranchDevices)},
		{"Total Load (A)", fmt.Sprintf("%.3f", s.TotalLoad)},
		{"Total Wire Length", fmt.Sprintf("%.1f", s.TotalWireLength)},
		{"End-of-Line Voltage (V)", fmt.Sprintf("%.3f", s.WorstVoltage)},
		{"Worst Drop (V)", fmt.Sprintf("%.4f", s.WorstDrop)},
		{"Valid", strconv.FormatBool(s.IsValid)},
	}
	for _, msg := range s.Errors {
		trailer = append(trailer, []string{"Error", msg})
	}
	for _, row := range trailer {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
