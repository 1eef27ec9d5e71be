// Package config provides user configuration management for gopico.
//
// This package manages a YAML-based configuration file that stores
// operator metadata for known Pico systems (nicknames, last seen
// addresses, firmware versions) and application preferences such as
// ports and timeouts. The configuration follows OS-specific conventions
// for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/gopico/config.yaml or $HOME/.config/gopico/config.yaml
//   - macOS: $HOME/.config/gopico/config.yaml
//   - Windows: %LOCALAPPDATA%\gopico\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetSystemNickname("2226578067", "Aft battery bank")
//	registry.UpdateSystemLastSeen("2226578067", "192.168.1.50", "1.21")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
