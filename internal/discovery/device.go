package discovery

import (
	"fmt"
	"net"
	"time"
)

// Device represents a discovered Pico on the local network
type Device struct {
	// Serial is the system serial number stamped on every broadcast
	Serial uint32

	// IP is the device address (e.g., "192.168.1.50")
	IP string

	// Port is the TCP control port (typically 5001)
	Port int

	// Firmware is the firmware version string (e.g., "1.21").
	// Empty until the device has been probed over TCP.
	Firmware string

	// DiscoveredAt is when the broadcast was heard
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	if d.Firmware != "" {
		return fmt.Sprintf("Pico %d (fw %s) at %s", d.Serial, d.Firmware, d.Addr())
	}
	return fmt.Sprintf("Pico %d at %s", d.Serial, d.Addr())
}

// Addr returns the TCP control address for the device
func (d *Device) Addr() string {
	return net.JoinHostPort(d.IP, fmt.Sprintf("%d", d.Port))
}
