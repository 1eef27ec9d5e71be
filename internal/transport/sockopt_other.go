//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package transport

import "syscall"

// reuseControl sets no options on platforms without SO_REUSEPORT; the
// broadcast port cannot be shared with another listener there.
func reuseControl(network, address string, c syscall.RawConn) error {
	return nil
}
