// Package models contains domain types for the FA wire voltage-drop tool.
package models

import "fmt"

// WireGauge identifies a conductor size from the fixed gauge table.
type WireGauge string

const (
	Gauge18 WireGauge = "18 AWG"
	Gauge16 WireGauge = "16 AWG"
	Gauge14 WireGauge = "14 AWG"
	Gauge12 WireGauge = "12 AWG"
	Gauge10 WireGauge = "10 AWG"
)

// GaugeResistance maps a wire gauge to its loop conductor resistance in
// ohms per 1000 distance units (solid copper at 25C).
var GaugeResistance = map[WireGauge]float64{
	Gauge18: 6.385,
	Gauge16: 4.016,
	Gauge14: 2.525,
	Gauge12: 1.588,
	Gauge10: 0.999,
}

// GaugeOrder lists the supported gauges in display order for reference sheets.
var GaugeOrder = []WireGauge{Gauge18, Gauge16, Gauge14, Gauge12, Gauge10}

// ParameterSet holds the per-run electrical configuration. It is immutable
// for the duration of a report run; every calculation reads from it.
type ParameterSet struct {
	SystemVoltage   float64   `json:"systemVoltage" yaml:"system_voltage"`
	MinVoltage      float64   `json:"minVoltage" yaml:"min_voltage"`
	WireGauge       WireGauge `json:"wireGauge" yaml:"wire_gauge"`
	Resistance      float64   `json:"resistance" yaml:"resistance,omitempty"`
	SupplyDistance  float64   `json:"supplyDistance" yaml:"supply_distance"`
	RoutingOverhead float64   `json:"routingOverhead" yaml:"routing_overhead"`
	SafetyPercent   float64   `json:"safetyPercent" yaml:"safety_percent"`
	MaxLoad         float64   `json:"maxLoad" yaml:"max_load"`
}

// DefaultParameters returns the conventional NAC defaults: 24V nominal,
// 16 AWG wire, 10% safety margin on a 3A supply.
func DefaultParameters() ParameterSet {
	return ParameterSet{
		SystemVoltage:   24.0,
		MinVoltage:      16.0,
		WireGauge:       Gauge16,
		Resistance:      GaugeResistance[Gauge16],
		SupplyDistance:  50.0,
		RoutingOverhead: 1.15,
		SafetyPercent:   0.10,
		MaxLoad:         3.0,
	}
}

// ResolveResistance fills Resistance from the gauge table when it was not
// set explicitly. Unknown gauges leave Resistance untouched.
func (p *ParameterSet) ResolveResistance() {
	if p.Resistance != 0 {
		return
	}
	if r, ok := GaugeResistance[p.WireGauge]; ok {
		p.Resistance = r
	}
}

// UsableLoad is the supply capacity left after the safety margin.
func (p ParameterSet) UsableLoad() float64 {
	return p.MaxLoad * (1 - p.SafetyPercent)
}

// Validate checks the parameter invariants. A violation here is a
// configuration error: evaluation must not start.
func (p ParameterSet) Validate() error {
	if p.Resistance <= 0 {
		return fmt.Errorf("wire resistance must be positive, got %g (gauge %q)", p.Resistance, p.WireGauge)
	}
	if p.MinVoltage < 0 {
		return fmt.Errorf("minimum voltage must be non-negative, got %g", p.MinVoltage)
	}
	if p.SystemVoltage <= p.MinVoltage {
		return fmt.Errorf("system voltage %g must exceed minimum voltage %g", p.SystemVoltage, p.MinVoltage)
	}
	if p.RoutingOverhead < 1.0 {
		return fmt.Errorf("routing overhead must be >= 1.0, got %g", p.RoutingOverhead)
	}
	return nil
}
