package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/openmarine/gopico/internal/logging"
	"github.com/openmarine/gopico/internal/protocol"
)

// maxDatagram bounds a receive buffer. The largest observed broadcast,
// the 72 hour pressure history, is ~1.1 KiB; 8 KiB leaves headroom.
const maxDatagram = 8192

// UDP is the listen-only broadcast channel. Datagrams that fail to decode
// are dropped silently: port 43210 is a broadcast port and foreign
// traffic on it must not take the listener down.
type UDP struct {
	conn *net.UDPConn
}

// ListenUDP binds the broadcast port on all interfaces. Where the
// platform allows, the socket is opened with SO_BROADCAST and the
// address-reuse options set, so discovery can share port 43210 with the
// companion app or a second listener on the same host.
func ListenUDP(port int) (*UDP, error) {
	lc := net.ListenConfig{Control: reuseControl}
	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind udp port %d: %w", port, err)
	}

	logging.Debug("UDP transport listening", zap.Int("port", port))
	return &UDP{conn: pc.(*net.UDPConn)}, nil
}

// LocalAddr returns the bound socket address, or nil after Close.
func (u *UDP) LocalAddr() net.Addr {
	if u.conn == nil {
		return nil
	}
	return u.conn.LocalAddr()
}

// Recv blocks until one well-formed broadcast arrives and returns it with
// the sender's address. Malformed datagrams are skipped. The context
// deadline and cancellation are honored between datagrams.
func (u *UDP) Recv(ctx context.Context) (*protocol.Message, *net.UDPAddr, error) {
	conn := u.conn
	if conn == nil {
		return nil, nil, ErrClosed
	}

	buf := make([]byte, maxDatagram)
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		// Poll in short slices so cancellation is noticed even when
		// the network is quiet.
		wake := time.Now().Add(time.Second)
		if deadline, ok := ctx.Deadline(); ok && deadline.Before(wake) {
			wake = deadline
		}
		if err := conn.SetReadDeadline(wake); err != nil {
			return nil, nil, fmt.Errorf("failed to set read deadline: %w", err)
		}

		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return nil, nil, fmt.Errorf("failed to read datagram: %w", err)
		}

		msg, err := protocol.Decode(buf[:n])
		if err != nil {
			logging.Debug("Dropping malformed broadcast",
				zap.String("from", addr.String()),
				zap.Int("length", n),
				zap.Error(err),
			)
			continue
		}

		logging.Frame("UDP broadcast", buf[:n])
		return msg, addr, nil
	}
}

// Listen delivers broadcasts to fn until the context ends or the
// listener is closed. The error is the context's on cancellation, nil
// when the socket was closed under it.
func (u *UDP) Listen(ctx context.Context, fn func(*protocol.Message, *net.UDPAddr)) error {
	for {
		msg, addr, err := u.Recv(ctx)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
		fn(msg, addr)
	}
}

// Close releases the socket. Safe to call more than once; unblocks a
// concurrent Recv.
func (u *UDP) Close() error {
	if u.conn == nil {
		return nil
	}
	err := u.conn.Close()
	u.conn = nil
	return err
}
