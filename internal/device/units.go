package device

import (
	"fmt"

	"github.com/openmarine/gopico/internal/protocol"
)

// Measurement is a sensor state projected into physical units
type Measurement struct {
	Value float64
	Unit  string
}

// String formats the measurement for display, e.g. "12.589 V"
func (m Measurement) String() string {
	return fmt.Sprintf("%g %s", m.Value, m.Unit)
}

// Convert projects a raw sensor state into physical units. The scale
// factors were verified against values shown by the companion app. ok is
// false for None, User, and unknown sensor types, which have no unit
// semantics.
//
// StateOfCharge only uses the high 16-bit half (percent = hi/160); the
// low half changes with charge cycles but its meaning is unknown, so it
// is left to callers via the raw state.
func (t SensorType) Convert(raw protocol.RawInt) (Measurement, bool) {
	switch t {
	case SensorVoltage:
		return Measurement{Value: float64(raw.Int32()) / 1000, Unit: "V"}, true
	case SensorCurrent:
		return Measurement{Value: float64(raw.Int32()) / 100, Unit: "A"}, true
	case SensorCoulombCounter:
		return Measurement{Value: float64(raw.Int32()) / 1000, Unit: "Ah"}, true
	case SensorTemperature:
		return Measurement{Value: float64(raw.Int32()) / 10, Unit: "°C"}, true
	case SensorAtmosphere:
		return Measurement{Value: float64(raw.Int32()) / 100, Unit: "mbar"}, true
	case SensorAtmosphereTrend:
		return Measurement{Value: float64(raw.Int32()) / 10, Unit: "mbar/h"}, true
	case SensorResistance:
		return Measurement{Value: float64(raw.Int32()), Unit: "Ω"}, true
	case SensorTimestamp:
		return Measurement{Value: float64(raw.Uint32()), Unit: "s"}, true
	case SensorStateOfCharge:
		return Measurement{Value: float64(raw.Int16Hi()) / 160, Unit: "%"}, true
	case SensorRemainingTime:
		return Measurement{Value: float64(raw.Int32()), Unit: "s"}, true
	case SensorAngle:
		return Measurement{Value: float64(raw.Int32()) / 10, Unit: "°"}, true
	default:
		return Measurement{}, false
	}
}
