package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/config"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/ui"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase stored Wi-Fi credentials",
	Long: `Erase the stored Wi-Fi credentials, the same as holding the reset button.

The next 'irbridged serve' starts in configuration portal mode. Run this while
the daemon is stopped; a running daemon should be reset with SIGUSR1 instead.`,
	Example: `  # Interactive, asks for confirmation
  irbridged reset

  # Non-interactive
  irbridged reset --yes --config /etc/irbridge.yaml`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	location := settings.Store.Backend
	if settings.Store.Backend != "memory" {
		location = fmt.Sprintf("%s (%s)", settings.Store.Path, settings.Store.Backend)
	}

	if !resetYes && !ui.ConfirmFactoryReset(os.Stdin, os.Stdout, location) {
		fmt.Println("Reset cancelled.")
		return nil
	}

	store, err := credstore.Open(settings.Store.Backend, settings.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	defer store.Close()

	if err := store.Erase(context.Background()); err != nil {
		return fmt.Errorf("failed to erase credentials: %w", err)
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintSuccess("Credentials erased", map[string]string{
		"Store":     location,
		"Next boot": "configuration portal",
	})
	return nil
}
