// Package monitor implements the live sensor dashboard for the gopico
// CLI.
//
// The dashboard is a bubbletea program: it discovers a Pico (or
// connects to a given host), loads the sensor and device inventory
// once, then polls sensor state on a fixed interval and renders each
// sensor with its physical unit. Unconfigured sensor slots are hidden.
//
// Key bindings: r forces a refresh, q (or esc, ctrl+c) quits.
package monitor
