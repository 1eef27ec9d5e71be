package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/openmarine/gopico/internal/logging"
	"github.com/openmarine/gopico/internal/protocol"
)

// Default ports spoken by the Pico
const (
	// DefaultTCPPort is the control channel port
	DefaultTCPPort = 5001
	// DefaultUDPPort is the broadcast channel port
	DefaultUDPPort = 43210
)

// DefaultTimeout bounds connect and per-request socket operations when the
// caller's context carries no deadline.
const DefaultTimeout = 5 * time.Second

// Transport errors
var (
	// ErrClosed indicates use of a transport after Close
	ErrClosed = errors.New("transport closed")
	// ErrEOF indicates the peer closed the connection mid-frame
	ErrEOF = errors.New("connection closed mid-frame")
)

// TCP is the request/response control channel. One request may be in
// flight at a time: the protocol has no correlation id (the serial is
// zero on client requests), so pipelining would make responses
// unattributable.
type TCP struct {
	conn    net.Conn
	timeout time.Duration
}

// DialTCP connects to the device's control port
func DialTCP(host string, port int, timeout time.Duration) (*TCP, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	logging.Debug("TCP transport connected", zap.String("addr", addr))
	return &TCP{conn: conn, timeout: timeout}, nil
}

// NewTCP wraps an established connection. Used by tests and by callers
// that manage dialing themselves.
func NewTCP(conn net.Conn, timeout time.Duration) *TCP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TCP{conn: conn, timeout: timeout}
}

// Request sends one message (serial 0) and reads the response frame. The
// response type must match the request type; anything else fails with
// protocol.ErrUnexpectedType and the message is dropped.
//
// The context deadline, when present, bounds the whole exchange via
// socket deadlines. Cancellation closes nothing by itself: callers that
// want to abandon a connection close the transport.
func (t *TCP) Request(ctx context.Context, msgType protocol.MessageType, fields []protocol.Field) (*protocol.Message, error) {
	if t.conn == nil {
		return nil, ErrClosed
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(t.timeout)
	}
	if err := t.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set socket deadline: %w", err)
	}

	req := &protocol.Message{Type: msgType, Fields: fields}
	wire := req.Encode()
	logging.Frame("TCP request", wire)

	if _, err := t.conn.Write(wire); err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", msgType, err)
	}

	raw, err := t.readFrame()
	if err != nil {
		return nil, err
	}
	logging.Frame("TCP response", raw)

	resp, err := protocol.Decode(raw)
	if err != nil {
		return nil, err
	}
	if resp.Type != msgType {
		return nil, fmt.Errorf("%w: sent %s, got %s", protocol.ErrUnexpectedType, msgType, resp.Type)
	}

	return resp, nil
}

// readFrame reads exactly one length-delimited frame: the 13-byte header
// first to learn the length, then the remaining bytes. io.ReadFull loops
// over short reads; a peer close mid-frame surfaces as ErrEOF.
func (t *TCP) readFrame() ([]byte, error) {
	header := make([]byte, protocol.HeaderSize)
	if _, err := io.ReadFull(t.conn, header); err != nil {
		return nil, readErr("frame header", err)
	}

	length := int(binary.BigEndian.Uint16(header[11:13]))
	frame := make([]byte, protocol.HeaderSize+length)
	copy(frame, header)

	if _, err := io.ReadFull(t.conn, frame[protocol.HeaderSize:]); err != nil {
		return nil, readErr("frame body", err)
	}

	return frame, nil
}

func readErr(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: while reading %s: %v", ErrEOF, what, err)
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}

// Close releases the socket. Safe to call more than once.
func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
