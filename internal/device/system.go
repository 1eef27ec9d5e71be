package device

import (
	"fmt"

	"github.com/openmarine/gopico/internal/protocol"
)

// SystemInfo is the projection of a SYSTEM_INFO response
type SystemInfo struct {
	Serial        uint32
	FirmwareMajor int16
	FirmwareMinor int16
}

// Firmware returns the version as the companion app displays it, e.g. "1.21"
func (s *SystemInfo) Firmware() string {
	return fmt.Sprintf("%d.%d", s.FirmwareMajor, s.FirmwareMinor)
}

// ProjectSystemInfo extracts serial number and firmware version from a
// SYSTEM_INFO response. Field 1 carries the serial as a uint32, field 2
// carries the firmware version as two 16-bit halves.
func ProjectSystemInfo(msg *protocol.Message) (*SystemInfo, error) {
	if msg.Type != protocol.TypeSystemInfo {
		return nil, fmt.Errorf("%w: got %s, want SystemInfo", protocol.ErrUnexpectedType, msg.Type)
	}

	info := &SystemInfo{}
	if f, ok := msg.FieldByID(1); ok {
		if raw, ok := f.IntView(); ok {
			info.Serial = raw.Uint32()
		}
	}
	if f, ok := msg.FieldByID(2); ok {
		if raw, ok := f.IntView(); ok {
			info.FirmwareMajor = raw.Int16Hi()
			info.FirmwareMinor = raw.Int16Lo()
		}
	}
	return info, nil
}

// Counts is the projection of a DEVICE_SENSOR_COUNT response. The device
// reports the highest assigned ids, zero indexed.
type Counts struct {
	LastDeviceID int32
	LastSensorID int32
}

// DeviceCount returns the number of devices, including the system device
func (c *Counts) DeviceCount() int { return int(c.LastDeviceID) + 1 }

// SensorCount returns the number of sensors
func (c *Counts) SensorCount() int { return int(c.LastSensorID) + 1 }

// ProjectCounts extracts the last device and sensor ids from a
// DEVICE_SENSOR_COUNT response.
func ProjectCounts(msg *protocol.Message) (*Counts, error) {
	if msg.Type != protocol.TypeDeviceSensorCount {
		return nil, fmt.Errorf("%w: got %s, want DeviceSensorCount", protocol.ErrUnexpectedType, msg.Type)
	}

	counts := &Counts{}
	if f, ok := msg.FieldByID(1); ok {
		if raw, ok := f.IntView(); ok {
			counts.LastDeviceID = raw.Int32()
		}
	}
	if f, ok := msg.FieldByID(2); ok {
		if raw, ok := f.IntView(); ok {
			counts.LastSensorID = raw.Int32()
		}
	}
	return counts, nil
}
