// Gopico is a command line client for Simarine Pico battery monitors.
//
// It discovers Pico devices on the local network via their UDP
// broadcasts, reads system information and the device and sensor
// inventories over TCP, and renders live sensor values either as plain
// output or as an interactive dashboard.
//
// Usage:
//
//	gopico [command] [flags]
//
// Running without arguments launches the live monitor dashboard.
// See 'gopico --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmarine/gopico/internal/logging"
	"github.com/openmarine/gopico/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gopico",
	Short: "Simarine Pico command line client",
	Long: `A command line client for Simarine Pico battery monitors.

Discovers Pico devices on the local network, reads the device and
sensor inventories, and renders live sensor values with physical units.

If no command is specified, the live monitor dashboard will launch.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the monitor when no subcommand provided
		return runMonitor(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gopico %s (commit: %s)\n", version.Version, version.Commit)
	},
}
