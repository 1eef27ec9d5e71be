package protocol

import "fmt"

// MessageType identifies the semantic meaning of a message. The set below
// was recovered from packet captures; codes outside it are valid on the
// wire and pass through Decode untouched.
type MessageType uint8

// Known message types (from live capture against Pico firmware 1.21)
const (
	// TypeSystemInfo requests/carries the system serial number and
	// firmware version.
	TypeSystemInfo MessageType = 0x01

	// TypeDeviceSensorCount requests/carries the last device id and last
	// sensor id (both zero-indexed, so count = id + 1).
	TypeDeviceSensorCount MessageType = 0x02

	// TypeSensorInfo requests/carries the descriptor for one sensor.
	TypeSensorInfo MessageType = 0x20

	// TypeDeviceInfo requests/carries the descriptor for one device.
	TypeDeviceInfo MessageType = 0x41

	// TypeSensorState requests/carries the raw state of every sensor.
	TypeSensorState MessageType = 0xB0

	// TypePressureHistory is broadcast over UDP and carries the 72 hour
	// atmospheric pressure history as a timeseries field.
	TypePressureHistory MessageType = 0xC1
)

// Known reports whether the type code has an assigned meaning.
func (t MessageType) Known() bool {
	switch t {
	case TypeSystemInfo, TypeDeviceSensorCount, TypeSensorInfo,
		TypeDeviceInfo, TypeSensorState, TypePressureHistory:
		return true
	}
	return false
}

// String returns a human-readable name for the message type
func (t MessageType) String() string {
	switch t {
	case TypeSystemInfo:
		return "SystemInfo"
	case TypeDeviceSensorCount:
		return "DeviceSensorCount"
	case TypeSensorInfo:
		return "SensorInfo"
	case TypeDeviceInfo:
		return "DeviceInfo"
	case TypeSensorState:
		return "SensorState"
	case TypePressureHistory:
		return "PressureHistory"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(t))
	}
}

// FieldType identifies the wire encoding of a field's data. The encoding
// determines the field's length; there is no length prefix.
type FieldType uint8

// Known field types
const (
	FieldInt             FieldType = 0x01 // 4 raw bytes
	FieldTimestampedInt  FieldType = 0x03 // uint32 ts, FF, 4 raw bytes
	FieldTimestampedText FieldType = 0x04 // uint32 ts, FF, UTF-8, 0x00
	FieldTimeseries      FieldType = 0x0B // two uint32 ts, count, samples
)

// Known reports whether the field type has a decodable wire encoding.
func (t FieldType) Known() bool {
	switch t {
	case FieldInt, FieldTimestampedInt, FieldTimestampedText, FieldTimeseries:
		return true
	}
	return false
}

// String returns a human-readable name for the field type
func (t FieldType) String() string {
	switch t {
	case FieldInt:
		return "Int"
	case FieldTimestampedInt:
		return "TimestampedInt"
	case FieldTimestampedText:
		return "TimestampedText"
	case FieldTimeseries:
		return "Timeseries"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(t))
	}
}
