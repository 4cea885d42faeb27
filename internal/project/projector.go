// Package project flattens an evaluated circuit tree into the ordered
// record sequence shared by every output format.
package project

import (
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// Flatten projects the evaluated tree into DeviceRecords in emission
// order. Positions are assigned 1-based during this flattening and depend
// only on tree shape, never on the output format or SequenceNumber.
func Flatten(root *models.DeviceNode, params models.ParameterSet) []models.DeviceRecord {
	records := make([]models.DeviceRecord, 0)
	circuit.Walk(root, func(n *models.DeviceNode, ctx *circuit.WalkContext) {
		loc := models.LocationMain
		if n.OnBranch() {
			loc = models.LocationTTap
		}
		records = append(records, models.DeviceRecord{
			Position:        ctx.Position,
			Name:            n.Name,
			DeviceType:      n.DeviceType,
			Location:        loc,
			AlarmCurrent:    n.Current.Alarm,
			StandbyCurrent:  n.Current.Standby,
			Distance:        n.DistanceFromParent,
			AccumulatedLoad: n.AccumulatedLoad,
			VoltageDrop:     n.VoltageDrop,
			Voltage:         n.Voltage,
			Status:          circuit.Status(n, params.MinVoltage),
		})
	})
	return records
}
