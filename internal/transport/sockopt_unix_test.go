//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package transport

import (
	"net"
	"testing"
)

// Discovery must coexist with another process already bound to the
// broadcast port, so two listeners on the same port both succeed.
func TestListenUDPSharesPort(t *testing.T) {
	first, err := ListenUDP(0)
	if err != nil {
		t.Fatalf("ListenUDP() error: %v", err)
	}
	defer first.Close()

	port := first.LocalAddr().(*net.UDPAddr).Port

	second, err := ListenUDP(port)
	if err != nil {
		t.Fatalf("second ListenUDP(%d) error: %v", port, err)
	}
	second.Close()
}
