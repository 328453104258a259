package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/bridgeclient"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/config"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/discovery"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/ui"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/urls"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/wizard/tui"
)

// Bridge selection flags
var (
	bridgeName  string
	bridgePort  int
	timeoutSecs int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&bridgeName, "bridge", "b", "", "Bridge hostname, nickname or IP (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&bridgePort, "port", bridgeclient.DefaultPort, "Bridge HTTP port")
	rootCmd.PersistentFlags().IntVar(&timeoutSecs, "timeout", 0, "HTTP request timeout in seconds (0 = default)")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(networksCmd)
	rootCmd.AddCommand(bridgesCmd)
}

// setupCmd joins a new bridge to a Wi-Fi network
var (
	setupSSID     string
	setupPassword string
	setupHostname string
	noWait        bool
	waitTimeout   int
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Join a new bridge to Wi-Fi",
	Long: `Send Wi-Fi credentials and a hostname to a bridge in portal mode.

Connect this computer to the bridge's access point (UniversalIRBlaster by
default) first. Without --ssid the interactive wizard lists the networks the
bridge can see. With --ssid, --password and --hostname the credentials are
sent directly.

After the bridge accepts the credentials it restarts and joins the network.
Reconnect this computer to that network; the bridge is then found over mDNS
under its new hostname and recorded in the local registry.`,
	Example: `  # Interactive wizard
  irbridge-cfg setup
  # Or simply (setup is default):
  irbridge-cfg

  # Non-interactive
  irbridge-cfg setup --ssid home --password secret123 --hostname "living room"

  # Portal reachable at a non-default address, do not wait for mDNS
  irbridge-cfg setup --bridge 192.168.4.1 --ssid home --password secret123 --hostname tv --no-wait`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&setupSSID, "ssid", "", "Network to join (skips the wizard)")
	setupCmd.Flags().StringVar(&setupPassword, "password", "", "Network password")
	setupCmd.Flags().StringVar(&setupHostname, "hostname", "", "Hostname the bridge announces over mDNS")
	setupCmd.Flags().BoolVar(&noWait, "no-wait", false, "Do not wait for the bridge to appear on the network")
	setupCmd.Flags().IntVar(&waitTimeout, "wait-timeout", 90, "Seconds to wait for the bridge to appear on the network")
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	host := bridgeclient.DefaultAPAddress
	if bridgeName != "" {
		host = reg.Resolve(bridgeName)
	}
	client := newClient(host)

	if setupSSID == "" {
		return runWizard(ctx, reg, client)
	}
	return runSetupDirect(ctx, reg, client, host)
}

func runWizard(ctx context.Context, reg *config.Registry, client *bridgeclient.Client) error {
	cfg := tui.Config{API: client, Hostname: setupHostname}
	if !noWait {
		cfg.Finder = newScanner(reg)
	}

	final, err := tea.NewProgram(tui.NewAppModel(ctx, cfg), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}
	app, ok := final.(tui.AppModel)
	if !ok {
		return fmt.Errorf("wizard returned unexpected model %T", final)
	}

	bridge, creds, err := app.Result()
	if errors.Is(err, tui.ErrAborted) {
		fmt.Println("Setup cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	if err := rememberSetup(reg, bridge, creds); err != nil {
		return err
	}

	details := map[string]string{"Hostname": creds.Hostname, "Network": creds.SSID}
	if bridge != nil {
		details["Address"] = fmt.Sprintf("%s:%d", bridge.IP, bridge.Port)
	}
	ui.NewPrinter(os.Stdout).PrintSuccess("Bridge configured", details)
	return nil
}

func runSetupDirect(ctx context.Context, reg *config.Registry, client *bridgeclient.Client, host string) error {
	creds := credstore.Credentials{Hostname: setupHostname, SSID: setupSSID, Password: setupPassword}

	runner := ui.NewStepRunner(ui.StepRunnerConfig{
		Title:   "Bridge setup",
		Command: "irbridge-cfg setup",
		Params: map[string]string{
			"Bridge":   host,
			"Network":  creds.SSID,
			"Hostname": creds.Hostname,
		},
		StepNames: []string{
			"Validate credentials",
			"Contact bridge portal",
			"Send credentials",
			"Wait for bridge on network",
		},
		Troubleshooting: troubleshooting,
	})

	var found *discovery.Bridge
	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) (map[string]string, error) {
		onStep(1, "", ui.StepRunning, "")
		if errs := bridgeclient.ValidateCredentials(creds); len(errs) > 0 {
			err := errors.Join(errs...)
			onStep(1, "", ui.StepFailed, err.Error())
			return nil, err
		}
		onStep(1, "", ui.StepComplete, "")

		onStep(2, "", ui.StepRunning, host)
		networks, err := client.Networks(ctx)
		if err != nil {
			onStep(2, "", ui.StepFailed, bridgeclient.GetShortErrorMessage(err))
			return nil, err
		}
		if slices.Contains(networks, creds.SSID) {
			onStep(2, "", ui.StepComplete, fmt.Sprintf("%d networks visible", len(networks)))
		} else {
			onStep(2, "", ui.StepComplete, fmt.Sprintf("%q not in scan results, sending anyway", creds.SSID))
		}

		onStep(3, "", ui.StepRunning, "")
		if err := client.Configure(ctx, creds); err != nil {
			onStep(3, "", ui.StepFailed, bridgeclient.GetShortErrorMessage(err))
			return nil, err
		}
		onStep(3, "", ui.StepComplete, "accepted")

		details := map[string]string{"Hostname": creds.Hostname, "Network": creds.SSID}
		if noWait {
			onStep(4, "", ui.StepSkipped, "--no-wait")
			return details, nil
		}

		onStep(4, "", ui.StepRunning, fmt.Sprintf("reconnect this computer to %q", creds.SSID))
		waitCtx, cancel := context.WithTimeout(ctx, time.Duration(waitTimeout)*time.Second)
		defer cancel()
		found, err = newScanner(reg).WaitFor(waitCtx, creds.Hostname)
		if err != nil {
			onStep(4, "", ui.StepFailed, "not seen on the network")
			return nil, fmt.Errorf("bridge %q did not appear within %ds: %w", creds.Hostname, waitTimeout, err)
		}
		onStep(4, "", ui.StepComplete, found.IP)
		details["Address"] = fmt.Sprintf("%s:%d", found.IP, found.Port)
		return details, nil
	})
	if err != nil {
		return err
	}

	creds.Password = ""
	return rememberSetup(reg, found, creds)
}

// rememberSetup records a configured bridge in the registry. bridge is nil
// when the bridge was not seen on the network yet.
func rememberSetup(reg *config.Registry, bridge *discovery.Bridge, creds credstore.Credentials) error {
	entry := reg.EnsureBridge(creds.Hostname)
	entry.Network = creds.SSID
	if bridge != nil {
		reg.UpdateBridgeSeen(creds.Hostname, bridge.IP, bridge.Port)
	}
	if reg.Preferences.DefaultBridge == "" {
		reg.Preferences.DefaultBridge = creds.Hostname
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save bridge registry: %w", err)
	}
	return nil
}

// discoverCmd finds bridges on the LAN
var (
	discoverTimeout int
	discoverPick    bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find IR bridges on the network",
	Long: `Find IR bridges using mDNS/DNS-SD discovery.

Every bridge found is recorded in the local registry so it can later be
addressed by hostname or nickname with --bridge. With --pick an interactive
list is shown and the chosen bridge becomes the default.`,
	Example: `  # Scan using the registry's discovery timeout (5 seconds by default)
  irbridge-cfg discover

  # Longer scan for slow networks
  irbridge-cfg discover --scan-timeout 15

  # Choose the default bridge interactively
  irbridge-cfg discover --pick`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "scan-timeout", 0, "Scan timeout in seconds (0 = registry preference)")
	discoverCmd.Flags().BoolVar(&discoverPick, "pick", false, "Choose the default bridge interactively")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	scanner := newScanner(reg)
	if discoverTimeout > 0 {
		scanner.Timeout = time.Duration(discoverTimeout) * time.Second
	}

	if discoverPick {
		return runPick(ctx, reg, scanner)
	}

	fmt.Printf("Scanning for IR bridges (timeout: %s)...\n\n", scanner.Timeout)

	bridges, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(bridges) == 0 {
		fmt.Println("No bridges found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the bridge is powered on and its Wi-Fi LED is steady")
		fmt.Println("  - A blinking LED means the bridge is in portal mode; run 'irbridge-cfg setup'")
		fmt.Println("  - Verify this computer is on the same network as the bridge")
		fmt.Println("  - Try increasing --scan-timeout for slower networks")
		fmt.Println("  - Use --bridge to specify the IP manually if discovery fails")
		fmt.Printf("\nFor more information, see: %s\n", urls.Troubleshooting)
		return nil
	}

	fmt.Printf("Found %d bridge(s):\n\n", len(bridges))

	for i, b := range bridges {
		fmt.Printf("%d. %s\n", i+1, b.Instance)
		fmt.Printf("   Address: %s:%d\n", b.IP, b.Port)
		if v := b.GetMetadata(discovery.VersionKey); v != "" {
			fmt.Printf("   Version: %s\n", v)
		}
		fmt.Println()
		reg.UpdateBridgeSeen(b.Instance, b.IP, b.Port)
	}

	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save bridge registry: %w", err)
	}

	fmt.Println("Use 'irbridge-cfg capture --bridge <hostname>' to capture a signal")
	fmt.Println("Use 'irbridge-cfg bridges' to list known bridges")
	return nil
}

func runPick(ctx context.Context, reg *config.Registry, scanner *discovery.Scanner) error {
	final, err := tea.NewProgram(tui.NewDiscoveryModel(ctx, scanner), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("discovery error: %w", err)
	}
	picker, ok := final.(tui.DiscoveryModel)
	if !ok {
		return fmt.Errorf("discovery returned unexpected model %T", final)
	}

	b := picker.GetSelectedBridge()
	if b == nil {
		fmt.Println("No bridge selected.")
		return nil
	}

	reg.UpdateBridgeSeen(b.Instance, b.IP, b.Port)
	reg.Preferences.DefaultBridge = b.Instance
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save bridge registry: %w", err)
	}

	ui.NewPrinter(os.Stdout).PrintSuccess("Default bridge set", map[string]string{
		"Bridge":  b.Instance,
		"Address": fmt.Sprintf("%s:%d", b.IP, b.Port),
	})
	return nil
}

// networksCmd lists the networks a bridge can see
var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List Wi-Fi networks visible to the bridge",
	Long: `Ask the bridge to scan for Wi-Fi networks.

Works in both portal and control mode. Without --bridge the portal address
(192.168.1.1) is used.`,
	Example: `  # Bridge in portal mode
  irbridge-cfg networks

  # Configured bridge
  irbridge-cfg networks --bridge "living room"`,
	RunE: runNetworks,
}

func runNetworks(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	host := bridgeclient.DefaultAPAddress
	if bridgeName != "" {
		host = reg.Resolve(bridgeName)
	}

	networks, err := newClient(host).Networks(ctx)
	if err != nil {
		ui.NewPrinter(os.Stdout).PrintError("Network scan failed", err, troubleshooting(err))
		return err
	}

	if len(networks) == 0 {
		fmt.Println("The bridge sees no networks.")
		return nil
	}
	fmt.Printf("Networks visible to %s:\n\n", host)
	for _, ssid := range networks {
		fmt.Printf("  %s\n", ssid)
	}
	return nil
}

// bridgesCmd manages the local registry
var bridgesCmd = &cobra.Command{
	Use:   "bridges",
	Short: "List and manage known bridges",
	Long: `List the bridges recorded in the local registry.

The registry lives in the user configuration directory (bridges.yaml) and is
filled by 'setup' and 'discover'.`,
	RunE: runBridgesList,
}

var bridgesForgetCmd = &cobra.Command{
	Use:   "forget <hostname>",
	Short: "Remove a bridge from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateRegistry(func(reg *config.Registry) error {
			if !reg.RemoveBridge(args[0]) {
				return fmt.Errorf("unknown bridge %q", args[0])
			}
			fmt.Printf("Forgot %s\n", args[0])
			return nil
		})
	},
}

var bridgesRenameCmd = &cobra.Command{
	Use:     "rename <hostname> <nickname>",
	Short:   "Give a bridge a nickname",
	Example: `  irbridge-cfg bridges rename "living room" tv`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateRegistry(func(reg *config.Registry) error {
			if reg.GetBridge(args[0]) == nil {
				return fmt.Errorf("unknown bridge %q", args[0])
			}
			reg.SetNickname(args[0], args[1])
			fmt.Printf("%s is now also known as %s\n", args[0], args[1])
			return nil
		})
	},
}

var bridgesDefaultCmd = &cobra.Command{
	Use:   "default <hostname>",
	Short: "Use a bridge when --bridge is not given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateRegistry(func(reg *config.Registry) error {
			b := reg.GetBridge(args[0])
			if b == nil {
				return fmt.Errorf("unknown bridge %q", args[0])
			}
			reg.Preferences.DefaultBridge = b.Hostname
			fmt.Printf("Default bridge: %s\n", b.Hostname)
			return nil
		})
	},
}

func init() {
	bridgesCmd.AddCommand(bridgesForgetCmd)
	bridgesCmd.AddCommand(bridgesRenameCmd)
	bridgesCmd.AddCommand(bridgesDefaultCmd)
}

func runBridgesList(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	bridges := reg.List()
	if len(bridges) == 0 {
		fmt.Println("No known bridges. Run 'irbridge-cfg discover' or 'irbridge-cfg setup'.")
		return nil
	}

	for _, b := range bridges {
		marker := " "
		if strings.EqualFold(b.Hostname, reg.Preferences.DefaultBridge) {
			marker = "*"
		}
		name := b.Hostname
		if b.Nickname != "" {
			name = fmt.Sprintf("%s (%s)", b.Hostname, b.Nickname)
		}
		fmt.Printf("%s %s\n", marker, ui.ResultValueStyle.Render(name))
		if b.LastIP != "" {
			fmt.Printf("    Address:   %s:%d\n", b.LastIP, b.Port)
		}
		if b.Network != "" {
			fmt.Printf("    Network:   %s\n", b.Network)
		}
		if !b.LastSeen.IsZero() {
			fmt.Printf("    Last seen: %s\n", b.LastSeen.Local().Format(time.DateTime))
		}
	}
	fmt.Printf("\nRegistry: %s\n", reg.Path())
	return nil
}

func updateRegistry(change func(reg *config.Registry) error) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	if err := change(reg); err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save bridge registry: %w", err)
	}
	return nil
}

func newClient(host string) *bridgeclient.Client {
	client := bridgeclient.NewClient(host, bridgePort)
	if timeoutSecs > 0 {
		client.SetTimeout(time.Duration(timeoutSecs) * time.Second)
	}
	return client
}

func newScanner(reg *config.Registry) *discovery.Scanner {
	scanner := discovery.NewScanner()
	if reg.Preferences.DiscoverTimeout > 0 {
		scanner.Timeout = time.Duration(reg.Preferences.DiscoverTimeout) * time.Second
	}
	return scanner
}

// resolveBridge picks the bridge a control command talks to: --bridge, then
// the registry default, then the only bridge discovery finds.
func resolveBridge(ctx context.Context, reg *config.Registry) (string, error) {
	name := bridgeName
	if name == "" {
		name = reg.Preferences.DefaultBridge
	}
	if name != "" {
		return reg.Resolve(name), nil
	}

	fmt.Println("No bridge specified, attempting auto-discovery...")
	bridges, err := newScanner(reg).Scan(ctx)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}

	if len(bridges) == 0 {
		return "", fmt.Errorf("no bridges found. Use --bridge to specify one")
	}

	if len(bridges) > 1 {
		fmt.Printf("Found %d bridges:\n", len(bridges))
		for i, b := range bridges {
			fmt.Printf("%d. %s (%s)\n", i+1, b.Instance, b.IP)
		}
		return "", fmt.Errorf("multiple bridges found. Use --bridge or 'irbridge-cfg bridges default' to choose")
	}

	b := bridges[0]
	fmt.Printf("Found bridge: %s (%s)\n\n", b.Instance, b.IP)
	reg.UpdateBridgeSeen(b.Instance, b.IP, b.Port)
	if err := reg.Save(); err != nil {
		return "", fmt.Errorf("failed to save bridge registry: %w", err)
	}
	return b.IP, nil
}

// troubleshooting extracts the bullet points of the client's hint for err.
func troubleshooting(err error) []string {
	var tips []string
	for _, line := range strings.Split(bridgeclient.GetTroubleshootingHint(err), "\n") {
		if tip, ok := strings.CutPrefix(strings.TrimSpace(line), "•"); ok {
			tips = append(tips, strings.TrimSpace(tip))
		}
	}
	return append(tips, "Setup guide: "+urls.Setup)
}
