package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/openmarine/gopico/internal/client"
	"github.com/openmarine/gopico/internal/config"
	"github.com/openmarine/gopico/internal/device"
	"github.com/openmarine/gopico/internal/discovery"
	"github.com/openmarine/gopico/internal/monitor"
	"github.com/openmarine/gopico/internal/protocol"
	"github.com/openmarine/gopico/internal/transport"
)

// Command flags
var (
	hostFlag      string
	tcpPortFlag   int
	udpPortFlag   int
	timeoutFlag   int
	outputFormat  string
	scanTimeout   int
	includeSystem bool
)

func init() {
	// Common flags for device commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Device IP address (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&tcpPortFlag, "tcp-port", 0, "Device TCP control port (default 5001)")
	rootCmd.PersistentFlags().IntVar(&udpPortFlag, "udp-port", 0, "Broadcast port for discovery (default 43210)")
	rootCmd.PersistentFlags().IntVar(&timeoutFlag, "timeout", 0, "Request timeout in seconds (default 5)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")

	// Add subcommands directly to root
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(sensorsCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(pressureCmd)
	rootCmd.AddCommand(monitorCmd)
}

// prefs loads the user preferences, falling back to defaults when the
// config file is unreadable.
func prefs() *config.Preferences {
	registry, err := config.LoadRegistry()
	if err != nil {
		return config.NewRegistry().Preferences
	}
	return registry.Preferences
}

func requestTimeout() time.Duration {
	if timeoutFlag > 0 {
		return time.Duration(timeoutFlag) * time.Second
	}
	return time.Duration(prefs().RequestTimeout) * time.Second
}

func newScanner() *discovery.Scanner {
	p := prefs()
	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(p.DiscoverTimeout) * time.Second
	if scanTimeout > 0 {
		scanner.Timeout = time.Duration(scanTimeout) * time.Second
	}
	scanner.UDPPort = udpPortFlag
	scanner.TCPPort = tcpPortFlag
	if scanner.UDPPort == 0 {
		scanner.UDPPort = p.UDPPort
	}
	if scanner.TCPPort == 0 {
		scanner.TCPPort = p.TCPPort
	}
	return scanner
}

// connect opens a session to --host, or discovers a device when no host
// was given. Returns the session and the address it connected to.
func connect(ctx context.Context) (*client.Client, string, error) {
	host := hostFlag
	if host == "" {
		if !prefs().AutoDiscover {
			return nil, "", fmt.Errorf("no host specified and auto discovery is disabled. Use --host")
		}
		fmt.Println("No host specified, listening for device broadcasts...")
		dev, err := newScanner().Discover(ctx)
		if err != nil {
			return nil, "", err
		}
		fmt.Printf("Found device: %s\n\n", dev)
		host = dev.IP
	}

	port := tcpPortFlag
	if port == 0 {
		port = prefs().TCPPort
	}

	c, err := client.Connect(host, port, requestTimeout())
	if err != nil {
		return nil, "", err
	}
	return c, host, nil
}

// recordSystem remembers where a system was last reached. Best effort;
// a read-only config dir must not fail the command.
func recordSystem(serial uint32, ip, firmware string) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return
	}
	registry.UpdateSystemLastSeen(strconv.FormatUint(uint64(serial), 10), ip, firmware)
	_ = registry.Save()
}

// discoverCmd listens for device broadcasts
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover Pico devices on the network",
	Long: `Discover Pico devices by listening for their UDP broadcasts.

The Pico broadcasts its sensor state about once a second. This command
listens for the full timeout and displays every distinct device heard,
probing each over TCP for its firmware version.`,
	Example: `  # Listen for 10 seconds (default)
  gopico discover

  # Quick 3-second scan
  gopico discover --scan-timeout 3`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 0, "Discovery timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	scanner := newScanner()
	fmt.Printf("Listening for Pico broadcasts (timeout: %s)...\n\n", scanner.Timeout)

	devices, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the Pico is powered on")
		fmt.Println("  - Verify this host is on the same network segment")
		fmt.Println("  - Check that UDP port 43210 is not blocked or already bound")
		fmt.Println("  - Use --host to connect directly if discovery fails")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))

	for i, dev := range devices {
		if err := scanner.Probe(cmd.Context(), dev); err != nil {
			fmt.Printf("%d. %s (probe failed: %v)\n\n", i+1, dev, err)
			continue
		}
		fmt.Printf("%d. Pico %d\n", i+1, dev.Serial)
		fmt.Printf("   Firmware: %s\n", dev.Firmware)
		fmt.Printf("   Address:  %s\n\n", dev.Addr())
		recordSystem(dev.Serial, dev.IP, dev.Firmware)
	}

	fmt.Println("Use 'gopico info --host <ip>' to inspect a device")
	return nil
}

// infoCmd shows system information
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system information",
	Long: `Display a Pico's system information: serial number, firmware
version, and the device and sensor counts.`,
	Example: `  # With auto-discovery
  gopico info

  # Specific device
  gopico info --host 192.168.1.50

  # JSON output for scripting
  gopico info --host 192.168.1.50 --format json`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	c, host, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	info, err := c.SystemInfo(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read system info: %w", err)
	}
	counts, err := c.Counts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read counts: %w", err)
	}

	recordSystem(info.Serial, host, info.Firmware())

	if outputFormat == "json" {
		return printJSON(struct {
			Serial      uint32 `json:"serial"`
			Firmware    string `json:"firmware"`
			DeviceCount int    `json:"device_count"`
			SensorCount int    `json:"sensor_count"`
		}{info.Serial, info.Firmware(), counts.DeviceCount(), counts.SensorCount()})
	}

	fmt.Printf("Serial:   %d\n", info.Serial)
	fmt.Printf("Firmware: %s\n", info.Firmware())
	fmt.Printf("Devices:  %d\n", counts.DeviceCount())
	fmt.Printf("Sensors:  %d\n", counts.SensorCount())
	return nil
}

// devicesCmd lists the device inventory
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List connected devices",
	Long: `Enumerate the devices attached to a Pico: shunts, battery and
temperature sensors, barometers and the like.

The system device (id 0) represents the Pico itself and is hidden
unless --system is given.`,
	Example: `  # List devices
  gopico devices --host 192.168.1.50

  # Include the system device
  gopico devices --host 192.168.1.50 --system`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().BoolVar(&includeSystem, "system", false, "Include the system device (id 0)")
}

func runDevices(cmd *cobra.Command, args []string) error {
	c, _, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	var devices []*device.Device
	if includeSystem {
		devices, err = c.AllDevices(cmd.Context())
	} else {
		devices, err = c.Devices(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to enumerate devices: %w", err)
	}

	if outputFormat == "json" {
		type deviceOut struct {
			ID        int32     `json:"id"`
			Type      string    `json:"type"`
			Name      string    `json:"name"`
			CreatedAt time.Time `json:"created_at"`
		}
		out := make([]deviceOut, 0, len(devices))
		for _, d := range devices {
			out = append(out, deviceOut{d.ID, d.Type.String(), d.Name, d.CreatedAt})
		}
		return printJSON(out)
	}

	fmt.Printf("%-4s %-16s %-28s %s\n", "ID", "TYPE", "NAME", "CREATED")
	for _, d := range devices {
		created := ""
		if !d.CreatedAt.IsZero() {
			created = d.CreatedAt.Format("2006-01-02")
		}
		fmt.Printf("%-4d %-16s %-28s %s\n", d.ID, d.Type, d.Name, created)
	}
	return nil
}

// sensorsCmd lists the sensor inventory
var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "List sensors",
	Long: `Enumerate a Pico's sensors with their types and owning devices.
Unconfigured slots report type none.`,
	Example: `  # List sensors
  gopico sensors --host 192.168.1.50`,
	RunE: runSensors,
}

func runSensors(cmd *cobra.Command, args []string) error {
	c, _, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	sensors, err := c.Sensors(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to enumerate sensors: %w", err)
	}

	if outputFormat == "json" {
		type sensorOut struct {
			ID             int32  `json:"id"`
			Type           string `json:"type"`
			DeviceID       int32  `json:"device_id"`
			DeviceSensorID int32  `json:"device_sensor_id"`
		}
		out := make([]sensorOut, 0, len(sensors))
		for _, s := range sensors {
			out = append(out, sensorOut{s.ID, s.Type.String(), s.DeviceID, s.DeviceSensorID})
		}
		return printJSON(out)
	}

	fmt.Printf("%-4s %-18s %-10s %s\n", "ID", "TYPE", "DEVICE", "DEV-SENSOR")
	for _, s := range sensors {
		fmt.Printf("%-4d %-18s %-10d %d\n", s.ID, s.Type, s.DeviceID, s.DeviceSensorID)
	}
	return nil
}

// stateCmd shows a one-shot snapshot of sensor values
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show current sensor values",
	Long: `Read the sensor inventory and one state snapshot, and display
each configured sensor's current value with its physical unit.`,
	Example: `  # Snapshot with auto-discovery
  gopico state

  # JSON output for scripting
  gopico state --host 192.168.1.50 --format json`,
	RunE: runState,
}

func runState(cmd *cobra.Command, args []string) error {
	c, _, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	return printStateSnapshot(cmd.Context(), c)
}

func printStateSnapshot(ctx context.Context, c *client.Client) error {
	sensors, err := c.Sensors(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate sensors: %w", err)
	}

	byID := make(map[int32]*device.Sensor, len(sensors))
	for _, s := range sensors {
		if s.Type != device.SensorNone {
			byID[s.ID] = s
		}
	}

	if err := c.UpdateSensorStates(ctx, byID); err != nil {
		return fmt.Errorf("failed to read sensor states: %w", err)
	}

	if outputFormat == "json" {
		type stateOut struct {
			ID    int32    `json:"id"`
			Type  string   `json:"type"`
			Raw   int32    `json:"raw"`
			Value *float64 `json:"value,omitempty"`
			Unit  string   `json:"unit,omitempty"`
		}
		out := make([]stateOut, 0, len(sensors))
		for _, s := range sensors {
			entry, ok := byID[s.ID]
			if !ok || entry.State == nil {
				continue
			}
			o := stateOut{ID: s.ID, Type: s.Type.String(), Raw: entry.State.Raw.Int32()}
			if m, ok := entry.Measurement(); ok {
				o.Value = &m.Value
				o.Unit = m.Unit
			}
			out = append(out, o)
		}
		return printJSON(out)
	}

	fmt.Printf("%-4s %-18s %s\n", "ID", "TYPE", "VALUE")
	for _, s := range sensors {
		entry, ok := byID[s.ID]
		if !ok || entry.State == nil {
			continue
		}
		if m, ok := entry.Measurement(); ok {
			fmt.Printf("%-4d %-18s %s\n", s.ID, s.Type, m)
		} else {
			fmt.Printf("%-4d %-18s raw 0x%08X\n", s.ID, s.Type, entry.State.Raw.Uint32())
		}
	}
	return nil
}

// pressureCmd shows the broadcast atmospheric pressure history
var pressureCmd = &cobra.Command{
	Use:   "pressure",
	Short: "Show the atmospheric pressure history",
	Long: `Listen for the Pico's atmospheric pressure history broadcast and
display the rolling 72 hour log.

The Pico broadcasts the history over UDP alongside its sensor state
when a barometer is connected; no TCP connection is needed.`,
	Example: `  # Wait for the next history broadcast
  gopico pressure

  # Full series as JSON
  gopico pressure --format json`,
	RunE: runPressure,
}

var listenTimeout int

func init() {
	pressureCmd.Flags().IntVar(&listenTimeout, "listen-timeout", 60, "Seconds to wait for a history broadcast")
}

func runPressure(cmd *cobra.Command, args []string) error {
	port := udpPortFlag
	if port == 0 {
		port = prefs().UDPPort
	}

	u, err := transport.ListenUDP(port)
	if err != nil {
		return err
	}
	defer u.Close()

	fmt.Printf("Listening for a pressure history broadcast on UDP port %d...\n\n", port)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(listenTimeout)*time.Second)
	defer cancel()

	var hist *device.PressureHistory
	err = u.Listen(ctx, func(msg *protocol.Message, addr *net.UDPAddr) {
		if msg.Type != protocol.TypePressureHistory {
			return
		}
		h, perr := device.ProjectPressureHistory(msg)
		if perr != nil || len(h.Readings) == 0 {
			return
		}
		hist = h
		cancel()
	})
	if hist == nil {
		if errors.Is(err, context.DeadlineExceeded) {
			fmt.Println("No pressure history heard.")
			fmt.Println("\nTroubleshooting:")
			fmt.Println("  - A barometer must be connected for the Pico to broadcast the history")
			fmt.Println("  - Verify this host is on the same network segment")
			fmt.Println("  - Check that UDP port 43210 is not blocked")
			return nil
		}
		return err
	}

	return printPressureHistory(hist)
}

func printPressureHistory(hist *device.PressureHistory) error {
	mbar := hist.Millibars()

	if outputFormat == "json" {
		return printJSON(struct {
			Timestamp time.Time `json:"timestamp"`
			Millibars []float64 `json:"millibars"`
		}{hist.Timestamp, mbar})
	}

	min, max := mbar[0], mbar[0]
	for _, v := range mbar {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	fmt.Printf("History at: %s\n", hist.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Readings:   %d (newest first, 72 h window)\n", len(mbar))
	fmt.Printf("Latest:     %.2f mbar\n", mbar[0])
	fmt.Printf("Range:      %.2f to %.2f mbar\n", min, max)
	return nil
}

// monitorCmd runs the live dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live sensor dashboard",
	Long: `Run a live dashboard that polls sensor state and renders each
configured sensor with its physical unit.

Requires an interactive terminal; without one, a single state snapshot
is printed instead.`,
	Example: `  # Monitor with auto-discovery
  gopico monitor
  # Or simply (monitor is default):
  gopico

  # Monitor a specific device
  gopico monitor --host 192.168.1.50`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		// Not a TTY: degrade to a one-shot snapshot.
		c, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		return printStateSnapshot(cmd.Context(), c)
	}

	opts, err := monitorOptions(prefs())
	if err != nil {
		return err
	}
	return monitor.Run(opts)
}

// monitorOptions derives the dashboard configuration from flags and
// preferences. Launching without a host needs auto discovery enabled,
// same as connect.
func monitorOptions(p *config.Preferences) (monitor.Options, error) {
	if hostFlag == "" && !p.AutoDiscover {
		return monitor.Options{}, fmt.Errorf("no host specified and auto discovery is disabled. Use --host")
	}

	port := tcpPortFlag
	if port == 0 {
		port = p.TCPPort
	}
	timeout := time.Duration(timeoutFlag) * time.Second
	if timeoutFlag <= 0 {
		timeout = time.Duration(p.RequestTimeout) * time.Second
	}

	return monitor.Options{
		Host:            hostFlag,
		Port:            port,
		Timeout:         timeout,
		DiscoverTimeout: time.Duration(p.DiscoverTimeout) * time.Second,
		Refresh:         time.Duration(p.MonitorRefresh) * time.Second,
	}, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
