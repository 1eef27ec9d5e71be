package client

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/openmarine/gopico/internal/device"
	"github.com/openmarine/gopico/internal/protocol"
)

type sentRequest struct {
	msgType protocol.MessageType
	fields  []protocol.Field
}

// fakeTransport scripts the device side of a session: handle answers
// each request, sent records what the client asked for.
type fakeTransport struct {
	handle func(msgType protocol.MessageType, fields []protocol.Field) (*protocol.Message, error)
	sent   []sentRequest
	closed int
}

func (f *fakeTransport) Request(_ context.Context, msgType protocol.MessageType, fields []protocol.Field) (*protocol.Message, error) {
	f.sent = append(f.sent, sentRequest{msgType, fields})
	return f.handle(msgType, fields)
}

func (f *fakeTransport) Close() error {
	f.closed++
	return nil
}

func systemInfoResponse() *protocol.Message {
	return &protocol.Message{
		Type:   protocol.TypeSystemInfo,
		Serial: 0x84B3EE93,
		Fields: []protocol.Field{
			protocol.NewIntField(1, protocol.RawIntFromUint32(0x84B3EE93)),
			protocol.NewIntField(2, protocol.RawIntFromUint16Pair(1, 21)),
		},
	}
}

func countsResponse(lastDevice, lastSensor int32) *protocol.Message {
	return &protocol.Message{
		Type: protocol.TypeDeviceSensorCount,
		Fields: []protocol.Field{
			protocol.NewIntField(1, protocol.RawIntFromInt32(lastDevice)),
			protocol.NewIntField(2, protocol.RawIntFromInt32(lastSensor)),
		},
	}
}

func deviceResponse(id int32, typ device.DeviceType, name string) *protocol.Message {
	return &protocol.Message{
		Type: protocol.TypeDeviceInfo,
		Fields: []protocol.Field{
			protocol.NewIntField(0, protocol.RawIntFromInt32(id)),
			protocol.NewTimestampedIntField(1, 0x65932547, protocol.RawIntFromInt32(int32(typ))),
			protocol.NewTextField(3, 0x65932547, name),
		},
	}
}

func sensorResponse(id int32, typ device.SensorType) *protocol.Message {
	return &protocol.Message{
		Type: protocol.TypeSensorInfo,
		Fields: []protocol.Field{
			protocol.NewIntField(1, protocol.RawIntFromInt32(id)),
			protocol.NewIntField(2, protocol.RawIntFromInt32(int32(typ))),
			protocol.NewIntField(3, protocol.RawIntFromInt32(1)),
			protocol.NewIntField(4, protocol.RawIntFromInt32(0)),
		},
	}
}

func TestClientSystemInfo(t *testing.T) {
	ft := &fakeTransport{
		handle: func(protocol.MessageType, []protocol.Field) (*protocol.Message, error) {
			return systemInfoResponse(), nil
		},
	}
	c := New(ft)

	info, err := c.SystemInfo(context.Background())
	if err != nil {
		t.Fatalf("SystemInfo() error: %v", err)
	}

	if info.Serial != 0x84B3EE93 || info.Firmware() != "1.21" {
		t.Errorf("info = serial %d firmware %s", info.Serial, info.Firmware())
	}
	if len(ft.sent) != 1 || ft.sent[0].msgType != protocol.TypeSystemInfo {
		t.Fatalf("sent = %v", ft.sent)
	}
	if len(ft.sent[0].fields) != 0 {
		t.Errorf("system info request carries %d fields, want none", len(ft.sent[0].fields))
	}
}

// The device accepts only byte-exact request payloads; these are the
// payloads the vendor app sends.
func TestClientRequestPayloads(t *testing.T) {
	ft := &fakeTransport{
		handle: func(msgType protocol.MessageType, _ []protocol.Field) (*protocol.Message, error) {
			switch msgType {
			case protocol.TypeDeviceInfo:
				return deviceResponse(11, device.DeviceBattery, "SC503 [1765] 1"), nil
			case protocol.TypeSensorInfo:
				return sensorResponse(5, device.SensorVoltage), nil
			}
			return nil, errors.New("unexpected request")
		},
	}
	c := New(ft)

	if _, err := c.Device(context.Background(), 11); err != nil {
		t.Fatalf("Device() error: %v", err)
	}
	if _, err := c.Sensor(context.Background(), 5); err != nil {
		t.Fatalf("Sensor() error: %v", err)
	}

	wantDevice := "ff00010000000bff010300000000ff00000000"
	if got := hex.EncodeToString(protocol.EncodeFields(ft.sent[0].fields)); got != wantDevice {
		t.Errorf("device info payload = %s, want %s", got, wantDevice)
	}

	wantSensor := "ff010100000005ff020100000000"
	if got := hex.EncodeToString(protocol.EncodeFields(ft.sent[1].fields)); got != wantSensor {
		t.Errorf("sensor info payload = %s, want %s", got, wantSensor)
	}
}

func TestClientDevices(t *testing.T) {
	var requested []int32
	ft := &fakeTransport{
		handle: func(msgType protocol.MessageType, fields []protocol.Field) (*protocol.Message, error) {
			switch msgType {
			case protocol.TypeDeviceSensorCount:
				return countsResponse(2, 5), nil
			case protocol.TypeDeviceInfo:
				raw, _ := fields[0].IntView()
				id := raw.Int32()
				requested = append(requested, id)
				return deviceResponse(id, device.DeviceBattery, "bat"), nil
			}
			return nil, errors.New("unexpected request")
		},
	}
	c := New(ft)

	devices, err := c.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices() error: %v", err)
	}

	// The system device (id 0) is excluded.
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	if len(requested) != 2 || requested[0] != 1 || requested[1] != 2 {
		t.Errorf("requested ids = %v, want [1 2]", requested)
	}

	requested = nil
	all, err := c.AllDevices(context.Background())
	if err != nil {
		t.Fatalf("AllDevices() error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d devices, want 3", len(all))
	}
	if len(requested) != 3 || requested[0] != 0 {
		t.Errorf("requested ids = %v, want [0 1 2]", requested)
	}
}

func TestClientSensors(t *testing.T) {
	var requested []int32
	ft := &fakeTransport{
		handle: func(msgType protocol.MessageType, fields []protocol.Field) (*protocol.Message, error) {
			switch msgType {
			case protocol.TypeDeviceSensorCount:
				return countsResponse(2, 2), nil
			case protocol.TypeSensorInfo:
				raw, _ := fields[0].IntView()
				id := raw.Int32()
				requested = append(requested, id)
				return sensorResponse(id, device.SensorVoltage), nil
			}
			return nil, errors.New("unexpected request")
		},
	}
	c := New(ft)

	sensors, err := c.Sensors(context.Background())
	if err != nil {
		t.Fatalf("Sensors() error: %v", err)
	}

	// Sensor ids start at 0.
	if len(sensors) != 3 {
		t.Fatalf("got %d sensors, want 3", len(sensors))
	}
	if len(requested) != 3 || requested[0] != 0 || requested[2] != 2 {
		t.Errorf("requested ids = %v, want [0 1 2]", requested)
	}
}

func TestClientUpdateSensorStates(t *testing.T) {
	ft := &fakeTransport{
		handle: func(protocol.MessageType, []protocol.Field) (*protocol.Message, error) {
			return &protocol.Message{
				Type: protocol.TypeSensorState,
				Fields: []protocol.Field{
					protocol.NewIntField(0, protocol.RawIntFromUint32(0x691C8A3C)),
					protocol.NewIntField(2, protocol.RawIntFromInt32(12589)),
					protocol.NewIntField(7, protocol.RawIntFromInt32(-1002)),
				},
			}, nil
		},
	}
	c := New(ft)

	sensors := map[int32]*device.Sensor{
		2: {ID: 2, Type: device.SensorVoltage},
		9: {ID: 9, Type: device.SensorCurrent},
	}

	if err := c.UpdateSensorStates(context.Background(), sensors); err != nil {
		t.Fatalf("UpdateSensorStates() error: %v", err)
	}

	if sensors[2].State == nil {
		t.Fatal("sensor 2 state not attached")
	}
	if sensors[2].State.Raw.Int32() != 12589 {
		t.Errorf("sensor 2 raw = %d", sensors[2].State.Raw.Int32())
	}
	if m, ok := sensors[2].Measurement(); !ok || m.Value != 12.589 || m.Unit != "V" {
		t.Errorf("sensor 2 measurement = %v, %v", m, ok)
	}
	// No state with id 9 arrived.
	if sensors[9].State != nil {
		t.Errorf("sensor 9 state = %v, want nil", sensors[9].State)
	}
}

func TestClientRequestErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	ft := &fakeTransport{
		handle: func(protocol.MessageType, []protocol.Field) (*protocol.Message, error) {
			return nil, boom
		},
	}
	c := New(ft)

	if _, err := c.SystemInfo(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if _, err := c.Devices(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestClientClose(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if ft.closed != 1 {
		t.Errorf("transport closed %d times, want 1", ft.closed)
	}
}
