package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/config"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/deviceconfig"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/discovery"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal/nmcli"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal/sim"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/server"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/supervisor"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/version"
)

// Serve command flags
var (
	logLevel    string
	simNetworks map[string]string
	simSignal   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge",
	Long: `Run the bridge until interrupted.

With no stored credentials the bridge raises its access point and serves the
configuration portal. With credentials it keeps trying to join the network
and then serves the control endpoints. The attempt is unbounded unless
wifi.auto_connect_timeout is set, in which case the bridge restarts when it
elapses. Stored credentials are only erased by the reset button (SIGUSR1 in
simulation) or 'irbridged reset'; the next boot then raises the portal.

With wifi.backend=sim the radio, IR hardware and reset button are simulated:
  SIGUSR1         press the reset button (factory reset)
  SIGUSR2         deliver the --sim-signal capture to the IR receiver`,
	Example: `  # Simulated bridge that can join "home" with password "secret123"
  irbridged serve --sim-network home=secret123

  # Simulated bridge with a capture ready to deliver on SIGUSR2
  irbridged serve --sim-signal "4:9000,4500,560,560" --log-level debug

  # Real Wi-Fi through NetworkManager
  IRBRIDGE_WIFI_BACKEND=nmcli IRBRIDGE_WIFI_INTERFACE=wlan0 irbridged serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides log.level")
	serveCmd.Flags().StringToStringVar(&simNetworks, "sim-network", nil, "Simulated network the bridge can join, as ssid=password (repeatable)")
	serveCmd.Flags().StringVar(&simSignal, "sim-signal", "", "Raw signal delivered to the simulated receiver on SIGUSR2")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		settings.Log.Level = logLevel
	}

	if err := logging.Initialize(settings.Log.Level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	var injected *protocol.CapturedSignal
	if simSignal != "" {
		sig, err := protocol.DecodeRaw(simSignal)
		if err != nil {
			return fmt.Errorf("invalid --sim-signal: %w", err)
		}
		injected = &sig
	}

	store, err := credstore.Open(settings.Store.Backend, settings.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	defer store.Close()

	network, err := newNetwork(settings)
	if err != nil {
		return err
	}

	trx := sim.NewTransceiver()
	wifiLED := hal.NewLED("wifi", sim.NewPin("wifi"))
	irLED := hal.NewLED("ir", sim.NewPin("ir"))
	button := &sim.Button{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go wifiLED.Run(ctx)
	go irLED.Run(ctx)
	go handleSimSignals(ctx, button, trx, injected)

	announcer := discovery.NewAnnouncer(settings.HTTP.Port, version.Version)
	announcer.Service = settings.MDNS.Service
	defer announcer.Shutdown()

	logging.Info("Starting IR bridge",
		zap.String("version", version.Version),
		zap.String("wifi_backend", settings.WiFi.Backend),
		zap.String("store", settings.Store.Backend),
		zap.Int("port", settings.HTTP.Port),
	)

	var sup *supervisor.Supervisor
	sup = supervisor.New(func(ctx context.Context) (supervisor.Teardown, error) {
		machine := deviceconfig.New(settings.MachineOptions(), deviceconfig.Deps{
			Store:     store,
			Network:   network,
			LED:       wifiLED,
			Restarter: sup,
			Announcer: announcer,
		})
		srv := server.New(settings.ServerConfig(), server.Deps{
			Configurator: machine,
			Receiver:     trx,
			Transmitter:  trx,
			WiFiLED:      wifiLED,
			IRLED:        irLED,
		})

		watchCtx, cancelWatch := context.WithCancel(ctx)
		go machine.WatchResetButton(watchCtx, button, settings.Reset.PollInterval)

		teardown := func(tctx context.Context) {
			cancelWatch()
			announcer.Shutdown()
			if err := srv.Shutdown(tctx); err != nil {
				logging.Warn("HTTP server shutdown incomplete", zap.Error(err))
			}
		}

		if creds, ok := settings.StaticCredentials(); ok {
			return teardown, machine.ForceConnect(ctx, srv, creds)
		}
		return teardown, machine.Boot(ctx, srv)
	})

	if err := sup.Run(ctx); err != nil {
		return err
	}
	logging.Info("IR bridge stopped", zap.Int("restarts", sup.Restarts()))
	return nil
}

func newNetwork(settings *config.Settings) (hal.Network, error) {
	switch settings.WiFi.Backend {
	case "sim":
		return sim.NewNetwork(simNetworks), nil
	case "nmcli":
		if len(simNetworks) > 0 {
			return nil, fmt.Errorf("--sim-network requires wifi.backend=sim")
		}
		network := nmcli.New(settings.WiFi.Interface)
		network.APAddress = settings.AP.Address
		return network, nil
	default:
		return nil, fmt.Errorf("unknown wifi backend %q", settings.WiFi.Backend)
	}
}
