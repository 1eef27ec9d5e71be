package device

import (
	"fmt"
	"time"

	"github.com/openmarine/gopico/internal/protocol"
)

// Device is the projection of a DEVICE_INFO response.
//
// Field id 1 appears twice on the wire: once as a timestamped integer
// whose timestamp is the creation time and whose value is the device
// type, and ids are generally reused between device types, so every
// field that was not consumed by a named slot is preserved in Extra in
// wire order.
type Device struct {
	ID        int32
	CreatedAt time.Time
	Type      DeviceType
	Name      string
	Extra     []protocol.Field
}

// String returns a debug representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("Device{id=%d, type=%s, name=%q}", d.ID, d.Type, d.Name)
}

// ProjectDevice extracts a device descriptor from a DEVICE_INFO response.
//
// Wire layout (from capture):
//   - field 0 (int): device id
//   - field 1 (timestamped int): creation time + device type
//   - field 3 (timestamped text): device name
//
// Field 3 is documented as "text or int32" and the wire does not tag
// which; the name is only taken from the text variant and an integer
// variant stays in Extra with its raw bytes intact.
func ProjectDevice(msg *protocol.Message) (*Device, error) {
	if msg.Type != protocol.TypeDeviceInfo {
		return nil, fmt.Errorf("%w: got %s, want DeviceInfo", protocol.ErrUnexpectedType, msg.Type)
	}

	dev := &Device{}

	var haveID, haveType, haveName bool
	for _, f := range msg.Fields {
		switch {
		case f.ID == 0 && !haveID:
			if raw, ok := f.IntView(); ok {
				dev.ID = raw.Int32()
				haveID = true
				continue
			}
		case f.ID == 1 && !haveType:
			if v, ok := f.Value.(protocol.TimestampedIntValue); ok {
				dev.CreatedAt = time.Unix(int64(v.Timestamp), 0)
				dev.Type = DeviceType(v.Raw.Int32())
				haveType = true
				continue
			}
		case f.ID == 3 && !haveName:
			if text, ok := f.Text(); ok {
				dev.Name = text
				haveName = true
				continue
			}
		}
		dev.Extra = append(dev.Extra, f)
	}

	return dev, nil
}
