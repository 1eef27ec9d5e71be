package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/openmarine/gopico/internal/device"
	"github.com/openmarine/gopico/internal/logging"
	"github.com/openmarine/gopico/internal/protocol"
	"github.com/openmarine/gopico/internal/transport"
)

// DefaultScanTimeout is the default timeout for device discovery. The
// Pico broadcasts sensor state about once a second, so anything beyond a
// few seconds of silence means no device is reachable.
const DefaultScanTimeout = 10 * time.Second

// ErrNoDevice indicates that no broadcast was heard within the timeout
var ErrNoDevice = errors.New("no device broadcast heard")

// Scanner discovers Pico devices by listening for their UDP broadcasts
type Scanner struct {
	// Timeout is the maximum time to wait for a broadcast
	Timeout time.Duration

	// UDPPort is the broadcast port to listen on (0 means the default)
	UDPPort int

	// TCPPort is the control port recorded on discovered devices
	// (0 means the default)
	TCPPort int
}

// NewScanner creates a new broadcast scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		UDPPort: transport.DefaultUDPPort,
		TCPPort: transport.DefaultTCPPort,
	}
}

// Discover waits for the first valid broadcast and returns the device
// that sent it. The sender's address identifies the Pico; its serial
// number comes from the broadcast envelope.
func (s *Scanner) Discover(ctx context.Context) (*Device, error) {
	u, err := transport.ListenUDP(s.udpPort())
	if err != nil {
		return nil, err
	}
	defer u.Close()

	return s.discover(ctx, u)
}

func (s *Scanner) discover(ctx context.Context, u *transport.UDP) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	msg, addr, err := u.Recv(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w on udp port %d within %s", ErrNoDevice, s.udpPort(), s.timeout())
		}
		return nil, err
	}

	dev := s.fromBroadcast(msg, addr)
	logging.Info("Device discovered",
		zap.Uint32("serial", dev.Serial),
		zap.String("addr", dev.Addr()),
	)
	return dev, nil
}

// Scan listens for the full timeout and returns every distinct device
// heard. Useful on networks with more than one Pico.
func (s *Scanner) Scan(ctx context.Context) ([]*Device, error) {
	u, err := transport.ListenUDP(s.udpPort())
	if err != nil {
		return nil, err
	}
	defer u.Close()

	return s.scan(ctx, u)
}

func (s *Scanner) scan(ctx context.Context, u *transport.UDP) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	seen := make(map[string]bool)
	devices := make([]*Device, 0)

	err := u.Listen(ctx, func(msg *protocol.Message, addr *net.UDPAddr) {
		dev := s.fromBroadcast(msg, addr)
		key := fmt.Sprintf("%d@%s", dev.Serial, dev.IP)
		if seen[key] {
			return
		}
		seen[key] = true
		devices = append(devices, dev)
	})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return nil, err
	}

	return devices, nil
}

// Probe opens a short TCP session to the device and fills in the
// authoritative serial number and firmware version.
func (s *Scanner) Probe(ctx context.Context, dev *Device) error {
	tcp, err := transport.DialTCP(dev.IP, dev.Port, s.timeout())
	if err != nil {
		return err
	}
	defer tcp.Close()

	resp, err := tcp.Request(ctx, protocol.TypeSystemInfo, nil)
	if err != nil {
		return err
	}

	info, err := device.ProjectSystemInfo(resp)
	if err != nil {
		return err
	}

	dev.Serial = info.Serial
	dev.Firmware = info.Firmware()
	return nil
}

// fromBroadcast builds a Device from one broadcast and its sender
func (s *Scanner) fromBroadcast(msg *protocol.Message, addr *net.UDPAddr) *Device {
	return &Device{
		Serial:       msg.Serial,
		IP:           addr.IP.String(),
		Port:         s.tcpPort(),
		DiscoveredAt: time.Now(),
	}
}

func (s *Scanner) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultScanTimeout
	}
	return s.Timeout
}

func (s *Scanner) udpPort() int {
	if s.UDPPort == 0 {
		return transport.DefaultUDPPort
	}
	return s.UDPPort
}

func (s *Scanner) tcpPort() int {
	if s.TCPPort == 0 {
		return transport.DefaultTCPPort
	}
	return s.TCPPort
}

// DiscoverDevice is a convenience function that waits for the first
// broadcast with a custom timeout
func DiscoverDevice(timeout time.Duration) (*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Discover(context.Background())
}
