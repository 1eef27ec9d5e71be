package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openmarine/gopico/internal/client"
	"github.com/openmarine/gopico/internal/device"
	"github.com/openmarine/gopico/internal/discovery"
)

// phase is the dashboard lifecycle state
type phase int

const (
	phaseDiscovering phase = iota
	phaseConnecting
	phaseLoading
	phaseRunning
	phaseFailed
)

// Options configures one monitor session
type Options struct {
	// Host is the device address; empty triggers broadcast discovery
	Host string
	// Port is the TCP control port (0 means the default)
	Port int
	// Timeout bounds each request
	Timeout time.Duration
	// DiscoverTimeout bounds broadcast discovery
	DiscoverTimeout time.Duration
	// Refresh is the state polling interval
	Refresh time.Duration
}

// row is one line of the sensor table
type row struct {
	sensor *device.Sensor
	device string // owning device name
}

// keyMap defines the dashboard key bindings
type keyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Quit},
	}
}

// Model is the live sensor dashboard
type Model struct {
	opts Options

	phase   phase
	err     error
	client  *client.Client
	serial  uint32
	fw      string
	host    string
	rows    []row
	sensors map[int32]*device.Sensor
	updated time.Time
	polling bool

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	width  int
	height int
}

// NewModel creates a dashboard model. Discovery starts on Init when no
// host was given.
func NewModel(opts Options) Model {
	if opts.Refresh <= 0 {
		opts.Refresh = 2 * time.Second
	}
	if opts.DiscoverTimeout <= 0 {
		opts.DiscoverTimeout = discovery.DefaultScanTimeout
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	keys := keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	initial := phaseDiscovering
	if opts.Host != "" {
		initial = phaseConnecting
	}

	return Model{
		opts:    opts,
		phase:   initial,
		host:    opts.Host,
		spinner: sp,
		help:    help.New(),
		keys:    keys,
	}
}

// Messages

type discoveredMsg struct{ dev *discovery.Device }

type connectedMsg struct{ c *client.Client }

type inventoryMsg struct {
	serial  uint32
	fw      string
	sensors []*device.Sensor
	devices []*device.Device
}

type statesMsg struct {
	states []device.State
	when   time.Time
}

type tickMsg time.Time

type failedMsg struct{ err error }

// Commands

func (m Model) discoverCmd() tea.Cmd {
	timeout := m.opts.DiscoverTimeout
	return func() tea.Msg {
		scanner := discovery.NewScanner()
		scanner.Timeout = timeout
		dev, err := scanner.Discover(context.Background())
		if err != nil {
			return failedMsg{err}
		}
		return discoveredMsg{dev}
	}
}

func (m Model) connectCmd() tea.Cmd {
	host, port, timeout := m.host, m.opts.Port, m.opts.Timeout
	return func() tea.Msg {
		c, err := client.Connect(host, port, timeout)
		if err != nil {
			return failedMsg{err}
		}
		return connectedMsg{c}
	}
}

func (m Model) loadCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()

		info, err := c.SystemInfo(ctx)
		if err != nil {
			return failedMsg{err}
		}
		sensors, err := c.Sensors(ctx)
		if err != nil {
			return failedMsg{err}
		}
		devices, err := c.AllDevices(ctx)
		if err != nil {
			return failedMsg{err}
		}
		return inventoryMsg{
			serial:  info.Serial,
			fw:      info.Firmware(),
			sensors: sensors,
			devices: devices,
		}
	}
}

func (m Model) pollCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		states, err := c.SensorStates(context.Background())
		if err != nil {
			return failedMsg{err}
		}
		return statesMsg{states: states, when: time.Now()}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts discovery or connects straight away
func (m Model) Init() tea.Cmd {
	first := m.discoverCmd()
	if m.phase == phaseConnecting {
		first = m.connectCmd()
	}
	return tea.Batch(m.spinner.Tick, first)
}

// Update handles all dashboard messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.client != nil {
				m.client.Close()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if m.phase == phaseRunning && !m.polling {
				m.polling = true
				return m, m.pollCmd()
			}
		}
		return m, nil

	case discoveredMsg:
		m.host = msg.dev.IP
		if m.opts.Port == 0 {
			m.opts.Port = msg.dev.Port
		}
		m.serial = msg.dev.Serial
		m.phase = phaseConnecting
		return m, m.connectCmd()

	case connectedMsg:
		m.client = msg.c
		m.phase = phaseLoading
		return m, m.loadCmd()

	case inventoryMsg:
		m.serial = msg.serial
		m.fw = msg.fw
		m.buildRows(msg.sensors, msg.devices)
		m.phase = phaseRunning
		m.polling = true
		return m, m.pollCmd()

	case statesMsg:
		m.applyStates(msg.states)
		m.updated = msg.when
		m.polling = false
		return m, m.tickCmd()

	case tickMsg:
		if m.phase == phaseRunning && !m.polling {
			m.polling = true
			return m, m.pollCmd()
		}
		return m, nil

	case failedMsg:
		m.phase = phaseFailed
		m.err = msg.err
		if m.client != nil {
			m.client.Close()
			m.client = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// applyStates attaches a state snapshot to the sensor rows. Runs in
// Update so View never observes a snapshot mid-application: the poll
// command only fetches, it does not touch shared rows.
func (m *Model) applyStates(states []device.State) {
	for i := range states {
		if sensor, ok := m.sensors[int32(states[i].SensorID)]; ok {
			sensor.State = &states[i]
		}
	}
}

// buildRows joins sensors to their owning device names and drops the
// unconfigured (None type) slots.
func (m *Model) buildRows(sensors []*device.Sensor, devices []*device.Device) {
	names := make(map[int32]string, len(devices))
	for _, d := range devices {
		names[d.ID] = d.Name
	}

	m.sensors = make(map[int32]*device.Sensor, len(sensors))
	m.rows = m.rows[:0]
	for _, s := range sensors {
		if s.Type == device.SensorNone {
			continue
		}
		m.sensors[s.ID] = s
		m.rows = append(m.rows, row{sensor: s, device: names[s.DeviceID]})
	}

	sort.SliceStable(m.rows, func(i, j int) bool {
		return m.rows[i].sensor.ID < m.rows[j].sensor.ID
	})
}

// View renders the dashboard
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Pico Monitor"))
	b.WriteString("\n")

	switch m.phase {
	case phaseDiscovering:
		b.WriteString(fmt.Sprintf("%s Listening for device broadcasts...\n", m.spinner.View()))

	case phaseConnecting:
		b.WriteString(fmt.Sprintf("%s Connecting to %s...\n", m.spinner.View(), m.host))

	case phaseLoading:
		b.WriteString(fmt.Sprintf("%s Reading device inventory...\n", m.spinner.View()))

	case phaseFailed:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("Press q to quit"))
		b.WriteString("\n")

	case phaseRunning:
		b.WriteString(statusStyle.Render(fmt.Sprintf("Pico %d  fw %s  %s", m.serial, m.fw, m.host)))
		b.WriteString("\n\n")
		b.WriteString(m.renderTable())
		b.WriteString("\n")
		if !m.updated.IsZero() {
			b.WriteString(statusStyle.Render(fmt.Sprintf("Updated %s", m.updated.Format("15:04:05"))))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderTable() string {
	var b strings.Builder

	b.WriteString(headerRowStyle.Render(fmt.Sprintf("%-4s %-18s %-24s %14s", "ID", "TYPE", "DEVICE", "VALUE")))
	b.WriteString("\n")

	for _, r := range m.rows {
		s := r.sensor
		value, style := formatState(s)
		line := fmt.Sprintf("%-4d %-18s %-24s ", s.ID, s.Type, truncate(r.device, 24))
		b.WriteString(cellStyle.Render(line))
		b.WriteString(style.Render(fmt.Sprintf("%14s", value)))
		b.WriteString("\n")
	}

	return b.String()
}

// formatState renders one sensor's current value. Sensors with no state
// yet render as pending; types without a unit projection show the raw
// register value.
func formatState(s *device.Sensor) (string, lipgloss.Style) {
	if s.State == nil {
		return "—", staleCellStyle
	}
	if m, ok := s.Measurement(); ok {
		return m.String(), valueStyle
	}
	return fmt.Sprintf("0x%08X", s.State.Raw.Uint32()), staleCellStyle
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
