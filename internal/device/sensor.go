package device

import (
	"fmt"

	"github.com/openmarine/gopico/internal/protocol"
)

// Sensor is the projection of a SENSOR_INFO response. DeviceSensorID is
// the sensor's index within its owning device; ID is its position in the
// system-wide flat id space used by SENSOR_STATE.
type Sensor struct {
	ID             int32
	Type           SensorType
	DeviceID       int32
	DeviceSensorID int32
	Extra          []protocol.Field

	// State is the last raw state observed for this sensor, if any.
	State *State
}

// String returns a debug representation of the sensor
func (s *Sensor) String() string {
	return fmt.Sprintf("Sensor{id=%d, type=%s, device=%d, device_sensor=%d}", s.ID, s.Type, s.DeviceID, s.DeviceSensorID)
}

// Measurement converts the sensor's last observed state into physical
// units. ok is false when no state has been observed or the sensor type
// has no unit projection.
func (s *Sensor) Measurement() (Measurement, bool) {
	if s.State == nil {
		return Measurement{}, false
	}
	return s.Type.Convert(s.State.Raw)
}

// ProjectSensor extracts a sensor descriptor from a SENSOR_INFO response.
//
// Wire layout (from capture): field 1 sensor id, field 2 sensor type,
// field 3 device id, field 4 index within the device. Remaining fields
// are calibration and display data, preserved in Extra in wire order.
func ProjectSensor(msg *protocol.Message) (*Sensor, error) {
	if msg.Type != protocol.TypeSensorInfo {
		return nil, fmt.Errorf("%w: got %s, want SensorInfo", protocol.ErrUnexpectedType, msg.Type)
	}

	sensor := &Sensor{}

	var haveID, haveType, haveDevice, haveIndex bool
	for _, f := range msg.Fields {
		raw, isInt := f.IntView()
		switch {
		case f.ID == 1 && isInt && !haveID:
			sensor.ID = raw.Int32()
			haveID = true
		case f.ID == 2 && isInt && !haveType:
			sensor.Type = SensorType(raw.Int32())
			haveType = true
		case f.ID == 3 && isInt && !haveDevice:
			sensor.DeviceID = raw.Int32()
			haveDevice = true
		case f.ID == 4 && isInt && !haveIndex:
			sensor.DeviceSensorID = raw.Int32()
			haveIndex = true
		default:
			sensor.Extra = append(sensor.Extra, f)
		}
	}

	return sensor, nil
}

// State is one sensor's raw state from a SENSOR_STATE response. The raw
// bytes keep all integer views available; interpretation depends on the
// sensor's type, which this message does not carry.
type State struct {
	SensorID uint8
	Raw      protocol.RawInt
}

// ProjectStates extracts the per-sensor states from a SENSOR_STATE
// response, in wire order. The response carries one integer field per
// sensor, keyed by sensor id.
func ProjectStates(msg *protocol.Message) ([]State, error) {
	if msg.Type != protocol.TypeSensorState {
		return nil, fmt.Errorf("%w: got %s, want SensorState", protocol.ErrUnexpectedType, msg.Type)
	}

	states := make([]State, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		raw, ok := f.IntView()
		if !ok {
			// Non-integer fields in a state response are unknown
			// extensions; skip rather than fail.
			continue
		}
		states = append(states, State{SensorID: f.ID, Raw: raw})
	}
	return states, nil
}
