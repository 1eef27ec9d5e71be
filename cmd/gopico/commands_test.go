package main

import (
	"testing"
	"time"

	"github.com/openmarine/gopico/internal/config"
)

func TestMonitorOptions(t *testing.T) {
	defer func() {
		hostFlag = ""
		tcpPortFlag = 0
		timeoutFlag = 0
	}()

	p := config.NewRegistry().Preferences
	p.AutoDiscover = false

	// With discovery disabled the dashboard must refuse to launch
	// without a host, like every other command.
	hostFlag = ""
	tcpPortFlag = 0
	timeoutFlag = 0
	if _, err := monitorOptions(p); err == nil {
		t.Fatal("expected an error with discovery disabled and no host")
	}

	hostFlag = "192.168.1.50"
	opts, err := monitorOptions(p)
	if err != nil {
		t.Fatalf("monitorOptions() error: %v", err)
	}
	if opts.Host != "192.168.1.50" {
		t.Errorf("host = %q", opts.Host)
	}
	if opts.Port != p.TCPPort {
		t.Errorf("port = %d, want %d", opts.Port, p.TCPPort)
	}
	if opts.Timeout != time.Duration(p.RequestTimeout)*time.Second {
		t.Errorf("timeout = %s", opts.Timeout)
	}
	if opts.Refresh != time.Duration(p.MonitorRefresh)*time.Second {
		t.Errorf("refresh = %s", opts.Refresh)
	}

	p.AutoDiscover = true
	hostFlag = ""
	if _, err := monitorOptions(p); err != nil {
		t.Errorf("monitorOptions() with discovery enabled: %v", err)
	}

	// Flags win over preferences.
	hostFlag = "192.168.1.50"
	tcpPortFlag = 5002
	timeoutFlag = 9
	opts, err = monitorOptions(p)
	if err != nil {
		t.Fatalf("monitorOptions() error: %v", err)
	}
	if opts.Port != 5002 || opts.Timeout != 9*time.Second {
		t.Errorf("flag overrides: port = %d, timeout = %s", opts.Port, opts.Timeout)
	}
}
