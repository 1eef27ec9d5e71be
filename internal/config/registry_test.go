package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "gopico") {
		t.Errorf("GetConfigDir() = %v, should contain 'gopico'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Systems == nil {
		t.Error("NewRegistry().Systems should not be nil")
	}

	prefs := reg.Preferences
	if prefs == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}

	if !prefs.AutoDiscover {
		t.Error("AutoDiscover should be true by default")
	}
	if prefs.TCPPort != 5001 || prefs.UDPPort != 43210 {
		t.Errorf("ports = %d, %d, want 5001, 43210", prefs.TCPPort, prefs.UDPPort)
	}
	if prefs.DiscoverTimeout != 10 || prefs.RequestTimeout != 5 {
		t.Errorf("timeouts = %d, %d, want 10, 5", prefs.DiscoverTimeout, prefs.RequestTimeout)
	}
}

func TestRegistryEnsureSystem(t *testing.T) {
	reg := NewRegistry()

	// First call should create the entry
	system1 := reg.EnsureSystem("2226578067")
	if system1 == nil {
		t.Fatal("EnsureSystem() returned nil")
	}

	// Second call should return the same entry
	system2 := reg.EnsureSystem("2226578067")
	if system1 != system2 {
		t.Error("EnsureSystem() should return same instance for same serial")
	}

	// Different serial should create a new entry
	system3 := reg.EnsureSystem("123456789")
	if system1 == system3 {
		t.Error("EnsureSystem() should create new instance for different serial")
	}
}

func TestRegistryUpdateSystemLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateSystemLastSeen("2226578067", "192.168.1.50", "1.21")
	after := time.Now()

	system := reg.GetSystem("2226578067")
	if system == nil {
		t.Fatal("System should exist after UpdateSystemLastSeen()")
	}

	if system.LastIP != "192.168.1.50" {
		t.Errorf("LastIP = %v, want 192.168.1.50", system.LastIP)
	}
	if system.LastFirmware != "1.21" {
		t.Errorf("LastFirmware = %v, want 1.21", system.LastFirmware)
	}
	if system.LastSeen.Before(before) || system.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", system.LastSeen, before, after)
	}

	// Empty firmware must not erase the recorded version.
	reg.UpdateSystemLastSeen("2226578067", "192.168.1.51", "")
	if system.LastFirmware != "1.21" {
		t.Errorf("LastFirmware = %v after empty update, want 1.21", system.LastFirmware)
	}
	if system.LastIP != "192.168.1.51" {
		t.Errorf("LastIP = %v, want 192.168.1.51", system.LastIP)
	}
}

func TestRegistrySetSystemNickname(t *testing.T) {
	reg := NewRegistry()

	reg.SetSystemNickname("2226578067", "Aft battery bank")

	system := reg.GetSystem("2226578067")
	if system == nil {
		t.Fatal("System should exist after SetSystemNickname()")
	}
	if system.Nickname != "Aft battery bank" {
		t.Errorf("Nickname = %v, want 'Aft battery bank'", system.Nickname)
	}
}

func TestParseRegistry(t *testing.T) {
	data := []byte(`
version: 1
systems:
  "2226578067":
    nickname: "Aft battery bank"
    last_ip: "192.168.1.50"
    last_firmware: "1.21"
preferences:
  auto_discover: true
  discover_timeout: 10
  tcp_port: 5001
  udp_port: 43210
  request_timeout: 5
  monitor_refresh: 2
`)

	reg, err := parseRegistry(data)
	if err != nil {
		t.Fatalf("parseRegistry() error = %v", err)
	}

	system := reg.GetSystem("2226578067")
	if system == nil {
		t.Fatal("System should exist in parsed registry")
	}
	if system.Nickname != "Aft battery bank" || system.LastIP != "192.168.1.50" || system.LastFirmware != "1.21" {
		t.Errorf("system = %+v", system)
	}
	if reg.Preferences.MonitorRefresh != 2 {
		t.Errorf("MonitorRefresh = %d, want 2", reg.Preferences.MonitorRefresh)
	}
}

func TestParseRegistryDefaults(t *testing.T) {
	// A minimal file gets empty systems and default preferences.
	reg, err := parseRegistry([]byte("version: 1\n"))
	if err != nil {
		t.Fatalf("parseRegistry() error = %v", err)
	}

	if reg.Systems == nil {
		t.Error("Systems should be initialized")
	}
	if reg.Preferences == nil || reg.Preferences.TCPPort != 5001 {
		t.Errorf("Preferences = %+v, want defaults", reg.Preferences)
	}
}

func TestParseRegistryBadVersion(t *testing.T) {
	if _, err := parseRegistry([]byte("version: 2\n")); err == nil {
		t.Error("parseRegistry() should reject unsupported versions")
	}
}

func TestParseRegistryBadYAML(t *testing.T) {
	if _, err := parseRegistry([]byte("version: [nope")); err == nil {
		t.Error("parseRegistry() should reject malformed YAML")
	}
}
