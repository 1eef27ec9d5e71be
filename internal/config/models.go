package config

import "time"

// Registry represents the entire user configuration file.
// This stores operator metadata for known Pico systems and application
// preferences. It never stores protocol state.
type Registry struct {
	Version     int                `yaml:"version"`
	Systems     map[string]*System `yaml:"systems,omitempty"` // Keyed by system serial number
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// System represents operator metadata for a single Pico system.
// This is keyed by the system's serial number in the Registry.
type System struct {
	Nickname     string    `yaml:"nickname,omitempty"`      // User-friendly name (e.g., "Aft battery bank")
	LastIP       string    `yaml:"last_ip,omitempty"`       // Last known IP address
	LastFirmware string    `yaml:"last_firmware,omitempty"` // Last seen firmware version
	LastSeen     time.Time `yaml:"last_seen,omitempty"`     // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`    // Discover via UDP broadcast when no host is given
	DiscoverTimeout int  `yaml:"discover_timeout"` // Broadcast discovery timeout in seconds
	TCPPort         int  `yaml:"tcp_port"`         // Control channel port
	UDPPort         int  `yaml:"udp_port"`         // Broadcast channel port
	RequestTimeout  int  `yaml:"request_timeout"`  // Per-request timeout in seconds
	MonitorRefresh  int  `yaml:"monitor_refresh"`  // Monitor dashboard refresh interval in seconds
}

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: 10,
		TCPPort:         5001,
		UDPPort:         43210,
		RequestTimeout:  5,
		MonitorRefresh:  2,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Systems:     make(map[string]*System),
		Preferences: defaultPreferences(),
	}
}

// GetSystem retrieves system metadata by serial number.
// Returns nil if the system doesn't exist in the registry.
func (r *Registry) GetSystem(serial string) *System {
	return r.Systems[serial]
}

// EnsureSystem ensures a system entry exists in the registry.
// If the system doesn't exist, creates a new empty entry.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureSystem(serial string) *System {
	if r.Systems == nil {
		r.Systems = make(map[string]*System)
	}

	if system, exists := r.Systems[serial]; exists {
		return system
	}

	system := &System{}
	r.Systems[serial] = system
	return system
}

// UpdateSystemLastSeen records where and when a system was last reached.
// An empty firmware string leaves the previous value in place.
func (r *Registry) UpdateSystemLastSeen(serial, ip, firmware string) {
	system := r.EnsureSystem(serial)
	system.LastSeen = time.Now()
	system.LastIP = ip
	if firmware != "" {
		system.LastFirmware = firmware
	}
}

// SetSystemNickname sets a user-friendly nickname for a system.
func (r *Registry) SetSystemNickname(serial, nickname string) {
	system := r.EnsureSystem(serial)
	system.Nickname = nickname
}
