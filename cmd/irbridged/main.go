// Irbridged runs the IR bridge: a Wi-Fi configuration portal on first boot and
// an HTTP interface to the IR receiver and transmitter once joined to a
// network.
//
// Usage:
//
//	irbridged serve [flags]
//	irbridged reset [--yes]
//
// See 'irbridged <command> --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "irbridged",
	Short: "Universal IR bridge daemon",
	Long: `The IR bridge daemon.

On first boot the bridge has no Wi-Fi credentials. It raises an access point
and serves a small configuration portal; 'irbridge-cfg setup' talks to it.
Once credentials are stored the bridge joins the network, announces itself
over mDNS and serves the capture and replay endpoints.

Settings come from an optional YAML file and IRBRIDGE_* environment
variables. Use 'irbridge-cfg' from a PC to drive a running bridge.`,
	Version:      version.Version,
	SilenceUsage: true,
}

// Config flag shared by every command
var configPath string

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML settings file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("irbridged %s\n", version.Full())
	},
}
