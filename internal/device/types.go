package device

import "fmt"

// DeviceType classifies a device in a DEVICE_INFO response
type DeviceType uint8

// Known device types
const (
	DeviceNull         DeviceType = 0
	DeviceVoltmeter    DeviceType = 1
	DeviceAmperemeter  DeviceType = 2
	DeviceThermometer  DeviceType = 3
	DeviceBarometer    DeviceType = 5
	DeviceOhmmeter     DeviceType = 6
	DeviceTime         DeviceType = 7
	DeviceTank         DeviceType = 8
	DeviceBattery      DeviceType = 9
	DeviceSystem       DeviceType = 10
	DeviceInclinometer DeviceType = 13
)

var deviceTypeNames = map[DeviceType]string{
	DeviceNull:         "null",
	DeviceVoltmeter:    "voltmeter",
	DeviceAmperemeter:  "amperemeter",
	DeviceThermometer:  "thermometer",
	DeviceBarometer:    "barometer",
	DeviceOhmmeter:     "ohmmeter",
	DeviceTime:         "time",
	DeviceTank:         "tank",
	DeviceBattery:      "battery",
	DeviceSystem:       "system",
	DeviceInclinometer: "inclinometer",
}

// Known reports whether the device type code has an assigned meaning
func (t DeviceType) Known() bool {
	_, ok := deviceTypeNames[t]
	return ok
}

func (t DeviceType) String() string {
	if name, ok := deviceTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// SensorType classifies a sensor in a SENSOR_INFO response and selects
// the raw-to-physical conversion for its state values.
type SensorType uint8

// Known sensor types
const (
	SensorNone            SensorType = 0
	SensorVoltage         SensorType = 1
	SensorCurrent         SensorType = 2
	SensorCoulombCounter  SensorType = 3
	SensorTemperature     SensorType = 4
	SensorAtmosphere      SensorType = 5
	SensorAtmosphereTrend SensorType = 6
	SensorResistance      SensorType = 7
	SensorTimestamp       SensorType = 10
	SensorStateOfCharge   SensorType = 11
	SensorRemainingTime   SensorType = 13
	SensorAngle           SensorType = 16
	SensorUser            SensorType = 22
)

var sensorTypeNames = map[SensorType]string{
	SensorNone:            "none",
	SensorVoltage:         "voltage",
	SensorCurrent:         "current",
	SensorCoulombCounter:  "coulomb_counter",
	SensorTemperature:     "temperature",
	SensorAtmosphere:      "atmosphere",
	SensorAtmosphereTrend: "atmosphere_trend",
	SensorResistance:      "resistance",
	SensorTimestamp:       "timestamp",
	SensorStateOfCharge:   "state_of_charge",
	SensorRemainingTime:   "remaining_time",
	SensorAngle:           "angle",
	SensorUser:            "user",
}

// Known reports whether the sensor type code has an assigned meaning
func (t SensorType) Known() bool {
	_, ok := sensorTypeNames[t]
	return ok
}

func (t SensorType) String() string {
	if name, ok := sensorTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}
