// Package device projects decoded protocol messages into domain objects:
// system information, device descriptors, sensor descriptors, and sensor
// states, plus the conversion from raw sensor values to physical units.
//
// The Pico describes its configuration as a tree of devices (battery,
// tank, barometer, ...) that each own one or more sensors. Sensors are
// addressed by a flat id space across the whole system; a SENSOR_STATE
// response carries the raw value of every sensor keyed by that id.
//
// Device and sensor type enums are closed but extensible: codes outside
// the known set survive projection and report themselves as unknown, so
// traffic from newer firmware degrades gracefully instead of failing.
package device
