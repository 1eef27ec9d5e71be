//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseControl enables broadcast reception and address reuse before the
// socket is bound. The Pico sends to 255.255.255.255:43210 roughly once
// a second; SO_REUSEADDR and SO_REUSEPORT let more than one process
// listen for it at the same time.
func reuseControl(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		for _, opt := range []int{unix.SO_BROADCAST, unix.SO_REUSEADDR, unix.SO_REUSEPORT} {
			if opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, opt, 1); opErr != nil {
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return opErr
}
