package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/openmarine/gopico/internal/device"
	"github.com/openmarine/gopico/internal/discovery"
	"github.com/openmarine/gopico/internal/logging"
	"github.com/openmarine/gopico/internal/protocol"
	"github.com/openmarine/gopico/internal/transport"
)

// Transport is the request/response channel the client runs on. Both
// the TCP and the MQTT transports satisfy it.
type Transport interface {
	Request(ctx context.Context, msgType protocol.MessageType, fields []protocol.Field) (*protocol.Message, error)
	Close() error
}

// Client is a session against one Pico. Methods issue one request each
// (enumerations issue several) and are not safe for concurrent use: the
// protocol has no correlation id, so the underlying transport allows a
// single request in flight.
type Client struct {
	transport Transport
}

// Connect opens a TCP session to the device's control port. Zero values
// select the default port and timeout.
func Connect(host string, port int, timeout time.Duration) (*Client, error) {
	if port == 0 {
		port = transport.DefaultTCPPort
	}

	tcp, err := transport.DialTCP(host, port, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{transport: tcp}, nil
}

// ConnectMQTT opens a session over the vendor cloud bridge. The serial
// selects the per-device topics; an empty broker selects the default.
func ConnectMQTT(broker string, serial uint32, timeout time.Duration) (*Client, error) {
	m, err := transport.DialMQTT(broker, serial, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{transport: m}, nil
}

// Discover waits for a broadcast on the local network and connects to
// the device that sent it.
func Discover(ctx context.Context, timeout time.Duration) (*Client, error) {
	scanner := discovery.NewScanner()
	scanner.Timeout = timeout

	dev, err := scanner.Discover(ctx)
	if err != nil {
		return nil, err
	}

	return Connect(dev.IP, dev.Port, timeout)
}

// New wraps an existing transport. Used by tests and by callers that
// manage the transport themselves.
func New(t Transport) *Client {
	return &Client{transport: t}
}

// Close releases the underlying transport. Safe to call more than once.
func (c *Client) Close() error {
	return c.transport.Close()
}

// SystemInfo requests the system serial number and firmware version
func (c *Client) SystemInfo(ctx context.Context) (*device.SystemInfo, error) {
	msg, err := c.transport.Request(ctx, protocol.TypeSystemInfo, nil)
	if err != nil {
		return nil, err
	}
	return device.ProjectSystemInfo(msg)
}

// Counts requests the last device and sensor ids
func (c *Client) Counts(ctx context.Context) (*device.Counts, error) {
	msg, err := c.transport.Request(ctx, protocol.TypeDeviceSensorCount, nil)
	if err != nil {
		return nil, err
	}
	return device.ProjectCounts(msg)
}

// deviceInfoRequest builds the exact payload the Pico expects for a
// DEVICE_INFO request: field 0 carries the id, field 1 is a zeroed
// timestamped int.
func deviceInfoRequest(id int32) []protocol.Field {
	return []protocol.Field{
		protocol.NewIntField(0, protocol.RawIntFromInt32(id)),
		protocol.NewTimestampedIntField(1, 0, protocol.RawInt{}),
	}
}

// sensorInfoRequest builds the exact payload for a SENSOR_INFO request:
// field 1 carries the id, field 2 is a zeroed int.
func sensorInfoRequest(id int32) []protocol.Field {
	return []protocol.Field{
		protocol.NewIntField(1, protocol.RawIntFromInt32(id)),
		protocol.NewIntField(2, protocol.RawIntFromInt32(0)),
	}
}

// Device requests one device by id. Id 0 is the system device.
func (c *Client) Device(ctx context.Context, id int32) (*device.Device, error) {
	msg, err := c.transport.Request(ctx, protocol.TypeDeviceInfo, deviceInfoRequest(id))
	if err != nil {
		return nil, err
	}
	return device.ProjectDevice(msg)
}

// SystemDevice requests the system device (id 0)
func (c *Client) SystemDevice(ctx context.Context) (*device.Device, error) {
	return c.Device(ctx, 0)
}

// Devices enumerates all devices except the system device (id 0). Ids
// run from 1 through the last id reported by Counts.
func (c *Client) Devices(ctx context.Context) ([]*device.Device, error) {
	return c.devices(ctx, 1)
}

// AllDevices enumerates every device including the system device
func (c *Client) AllDevices(ctx context.Context) ([]*device.Device, error) {
	return c.devices(ctx, 0)
}

func (c *Client) devices(ctx context.Context, first int32) ([]*device.Device, error) {
	counts, err := c.Counts(ctx)
	if err != nil {
		return nil, err
	}
	logging.Debug("Enumerating devices", zap.Int32("last_id", counts.LastDeviceID))

	devices := make([]*device.Device, 0, counts.DeviceCount())
	for id := first; id <= counts.LastDeviceID; id++ {
		dev, err := c.Device(ctx, id)
		if err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// Sensor requests one sensor by id
func (c *Client) Sensor(ctx context.Context, id int32) (*device.Sensor, error) {
	msg, err := c.transport.Request(ctx, protocol.TypeSensorInfo, sensorInfoRequest(id))
	if err != nil {
		return nil, err
	}
	return device.ProjectSensor(msg)
}

// Sensors enumerates every sensor, ids 0 through the last id reported
// by Counts
func (c *Client) Sensors(ctx context.Context) ([]*device.Sensor, error) {
	counts, err := c.Counts(ctx)
	if err != nil {
		return nil, err
	}
	logging.Debug("Enumerating sensors", zap.Int32("last_id", counts.LastSensorID))

	sensors := make([]*device.Sensor, 0, counts.SensorCount())
	for id := int32(0); id <= counts.LastSensorID; id++ {
		sensor, err := c.Sensor(ctx, id)
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, sensor)
	}
	return sensors, nil
}

// SensorStates requests a snapshot of every sensor's current raw value
func (c *Client) SensorStates(ctx context.Context) ([]device.State, error) {
	msg, err := c.transport.Request(ctx, protocol.TypeSensorState, nil)
	if err != nil {
		return nil, err
	}
	return device.ProjectStates(msg)
}

// UpdateSensorStates requests a state snapshot and attaches each state
// to the matching sensor in the map. States with no matching sensor are
// ignored.
func (c *Client) UpdateSensorStates(ctx context.Context, sensors map[int32]*device.Sensor) error {
	states, err := c.SensorStates(ctx)
	if err != nil {
		return err
	}

	for i := range states {
		if sensor, ok := sensors[int32(states[i].SensorID)]; ok {
			sensor.State = &states[i]
		}
	}
	return nil
}
