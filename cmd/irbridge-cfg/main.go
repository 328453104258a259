// Irbridge-cfg sets up and drives IR bridges from a PC.
//
// It joins a new bridge to Wi-Fi through its configuration portal, finds
// bridges on the LAN over mDNS, captures IR signals and replays raw or A/C
// commands.
//
// Usage:
//
//	irbridge-cfg [command] [flags]
//
// Running without arguments launches the interactive setup wizard.
// See 'irbridge-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "irbridge-cfg",
	Short: "IR bridge configuration utility",
	Long: `A utility for setting up and using Universal IR bridges.

Provides the Wi-Fi setup wizard, mDNS discovery, IR capture and replay, and
a local registry of known bridges.

If no command is specified, the setup wizard will launch automatically.`,
	Version:      version.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitializeFromEnv()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("irbridge-cfg %s\n", version.Full())
	},
}
