package models

import "time"

// Device status labels as they appear in every output format.
const (
	StatusOK         = "OK"
	StatusLowVoltage = "LOW VOLTAGE"
)

// Location labels for the flattened device table.
const (
	LocationMain = "Main"
	LocationTTap = "T-Tap"
)

// DeviceRecord is one flattened row of the evaluated circuit, shared by
// every output format so cross-format reports line up row-for-row.
type DeviceRecord struct {
	Position        int     `json:"position" msgpack:"position"`
	Name            string  `json:"name" msgpack:"name"`
	DeviceType      string  `json:"deviceType" msgpack:"deviceType"`
	Location        string  `json:"location" msgpack:"location"`
	AlarmCurrent    float64 `json:"alarmCurrent" msgpack:"alarmCurrent"`
	StandbyCurrent  float64 `json:"standbyCurrent" msgpack:"standbyCurrent"`
	Distance        float64 `json:"distance" msgpack:"distance"`
	AccumulatedLoad float64 `json:"accumulatedLoad" msgpack:"accumulatedLoad"`
	VoltageDrop     float64 `json:"voltageDrop" msgpack:"voltageDrop"`
	Voltage         float64 `json:"voltage" msgpack:"voltage"`
	Status          string  `json:"status" msgpack:"status"`
}

// CircuitReport is the read-only aggregate derived from one evaluation.
type CircuitReport struct {
	TotalDevices    int      `json:"totalDevices"`
	MainDevices     int      `json:"mainDevices"`
	BranchDevices   int      `json:"branchDevices"`
	TotalLoad       float64  `json:"totalLoad"`
	TotalWireLength float64  `json:"totalWireLength"`
	WorstVoltage    float64  `json:"worstVoltage"`
	WorstDrop       float64  `json:"worstDrop"`
	Errors          []string `json:"errors,omitempty"`
	IsValid         bool     `json:"isValid"`
}

// ExportMetadata travels with structured-record exports.
type ExportMetadata struct {
	ExportedAt  time.Time `json:"exportedAt" msgpack:"exportedAt"`
	ProjectName string    `json:"projectName" msgpack:"projectName"`
	ProjectPath string    `json:"projectPath" msgpack:"projectPath"`
	ExportedBy  string    `json:"exportedBy" msgpack:"exportedBy"`
}

// ReportRun records one completed export run for the history store.
type ReportRun struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	ProjectName  string    `json:"projectName"`
	Format       string    `json:"format"`
	DeviceCount  int       `json:"deviceCount"`
	TotalLoad    float64   `json:"totalLoad"`
	WorstVoltage float64   `json:"worstVoltage"`
	IsValid      bool      `json:"isValid"`
	OutputPath   string    `json:"outputPath"`
}
