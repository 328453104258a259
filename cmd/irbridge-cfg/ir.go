package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/bridgeclient"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/config"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/ui"
)

func init() {
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(sendRawCmd)
	rootCmd.AddCommand(sendACCmd)
}

// captureCmd reads one IR burst from the bridge
var (
	captureWatch bool
	captureWire  bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture an IR signal",
	Long: `Capture an IR signal with the bridge's receiver.

The bridge waits up to 10 seconds for a remote to be pointed at it. The
result is printed with its wire form, which 'send-raw' accepts unchanged.
With --watch every capture is streamed until interrupted.`,
	Example: `  # One capture from the default bridge
  irbridge-cfg capture

  # Script friendly
  irbridge-cfg capture --bridge tv --wire > power.ir

  # Stream captures
  irbridge-cfg capture --watch`,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().BoolVarP(&captureWatch, "watch", "w", false, "Stream captures until interrupted")
	captureCmd.Flags().BoolVar(&captureWire, "wire", false, "Print only the wire form")
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, host, err := controlClient(ctx)
	if err != nil {
		return err
	}
	width := ui.GetTerminalWidth()

	if captureWatch {
		if !captureWire {
			fmt.Printf("Streaming captures from %s (Ctrl+C to stop)...\n\n", host)
		}
		err := client.StreamCaptures(ctx, func(sig protocol.CapturedSignal, captured bool) error {
			if !captured {
				logging.Debug("Capture window closed empty")
				return nil
			}
			printSignal(sig, width)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return describeFailure(err, host)
	}

	if !captureWire {
		fmt.Printf("Point a remote at %s and press a button...\n\n", host)
	}
	sig, err := client.Capture(ctx)
	if bridgeclient.IsNoSignal(err) {
		return fmt.Errorf("no signal received within the capture window")
	}
	if err != nil {
		return describeFailure(err, host)
	}
	printSignal(sig, width)
	return nil
}

func printSignal(sig protocol.CapturedSignal, width int) {
	if captureWire {
		fmt.Println(protocol.EncodeRaw(sig))
		return
	}
	fmt.Println(ui.RenderSignal(sig, width))
}

// sendRawCmd replays a captured signal
var sendRawCmd = &cobra.Command{
	Use:   "send-raw <signal|->",
	Short: "Replay a raw IR signal",
	Long: `Replay a raw IR signal through the bridge's transmitter.

The signal is "<count>:<d1>,<d2>,..." in microseconds, optionally prefixed
with "<protocol>;" as printed by 'capture'. Use - to read it from stdin.`,
	Example: `  irbridge-cfg send-raw "4:9000,4500,560,560"

  # Replay a saved capture
  irbridge-cfg send-raw - < power.ir`,
	Args: cobra.ExactArgs(1),
	RunE: runSendRaw,
}

func runSendRaw(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	text := args[0]
	if text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read signal from stdin: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)

	sig, err := protocol.DecodeRaw(text)
	if err != nil {
		return fmt.Errorf("invalid signal: %w", err)
	}

	client, host, err := controlClient(ctx)
	if err != nil {
		return err
	}
	if err := client.SendRaw(ctx, text); err != nil {
		return describeFailure(err, host)
	}
	fmt.Printf("✓ Sent %d pulses via %s\n", sig.PulseCount(), host)
	return nil
}

// sendACCmd sends a structured air conditioner state
var (
	acFields     string
	acProtocol   int
	acModel      int
	acPower      bool
	acMode       string
	acDegrees    float64
	acFahrenheit bool
	acFan        string
	acSwingV     string
	acSwingH     string
	acQuiet      bool
	acTurbo      bool
	acEcono      bool
	acLight      bool
	acFilter     bool
	acClean      bool
	acBeep       bool
	acSleep      int
	acClock      int
)

var sendACCmd = &cobra.Command{
	Use:   "send-ac",
	Short: "Send an air conditioner command",
	Long: `Send a complete air conditioner state through the bridge.

The bridge encodes it with the appliance codec selected by --protocol.
Modes: off, auto, cool, heat, dry, fan
Fan:   auto, min, low, medium, high, max
Vanes: off, auto, highest, high, middle, low, lowest (vertical)
       off, auto, leftmax, left, middle, right, rightmax, wide (horizontal)
Numeric values are accepted as well. --fields sends the 18 field wire form
as is.`,
	Example: `  # Cool to 24C with auto fan
  irbridge-cfg send-ac --protocol 20 --power --mode cool --temp 24

  # Raw wire form
  irbridge-cfg send-ac --fields "20,1,1,1,24,1,0,0,0,0,0,0,1,0,0,1,-1,-1"`,
	RunE: runSendAC,
}

func init() {
	f := sendACCmd.Flags()
	f.StringVar(&acFields, "fields", "", "18 field wire form (overrides the other flags)")
	f.IntVar(&acProtocol, "protocol", 0, "Appliance protocol id")
	f.IntVar(&acModel, "model", 1, "Appliance model within the protocol")
	f.BoolVar(&acPower, "power", false, "Power on")
	f.StringVar(&acMode, "mode", "auto", "Operating mode")
	f.Float64Var(&acDegrees, "temp", 24, "Target temperature")
	f.BoolVar(&acFahrenheit, "fahrenheit", false, "Temperature is in Fahrenheit")
	f.StringVar(&acFan, "fan", "auto", "Fan speed")
	f.StringVar(&acSwingV, "swingv", "off", "Vertical vane position")
	f.StringVar(&acSwingH, "swingh", "off", "Horizontal vane position")
	f.BoolVar(&acQuiet, "quiet", false, "Quiet mode")
	f.BoolVar(&acTurbo, "turbo", false, "Turbo mode")
	f.BoolVar(&acEcono, "econo", false, "Economy mode")
	f.BoolVar(&acLight, "light", true, "Display light")
	f.BoolVar(&acFilter, "filter", false, "Filter mode")
	f.BoolVar(&acClean, "clean", false, "Clean mode")
	f.BoolVar(&acBeep, "beep", true, "Beep on receipt")
	f.IntVar(&acSleep, "sleep", -1, "Sleep timer in minutes (-1 disables)")
	f.IntVar(&acClock, "clock", -1, "Clock in minutes past midnight (-1 disables)")
}

func runSendAC(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ac, err := acCommandFromFlags()
	if err != nil {
		return err
	}

	client, host, err := controlClient(ctx)
	if err != nil {
		return err
	}
	if err := client.SendAC(ctx, ac); err != nil {
		return describeFailure(err, host)
	}
	fmt.Printf("✓ Sent A/C state (protocol %d, %s, %s) via %s\n", ac.Protocol, powerLabel(ac.Power), ac.Mode, host)
	return nil
}

func acCommandFromFlags() (protocol.ACCommand, error) {
	if acFields != "" {
		ac, err := protocol.DecodeAC(acFields)
		if err != nil {
			return ac, fmt.Errorf("invalid --fields: %w", err)
		}
		return ac, nil
	}

	mode, err := parseEnum("mode", acMode, protocol.ModeOff, protocol.ModeFan)
	if err != nil {
		return protocol.ACCommand{}, err
	}
	fan, err := parseEnum("fan speed", acFan, protocol.FanAuto, protocol.FanMax)
	if err != nil {
		return protocol.ACCommand{}, err
	}
	swingV, err := parseEnum("vertical vane position", acSwingV, protocol.SwingVOff, protocol.SwingVLowest)
	if err != nil {
		return protocol.ACCommand{}, err
	}
	swingH, err := parseEnum("horizontal vane position", acSwingH, protocol.SwingHOff, protocol.SwingHWide)
	if err != nil {
		return protocol.ACCommand{}, err
	}

	return protocol.ACCommand{
		Protocol: protocol.ProtocolID(acProtocol),
		Model:    acModel,
		Power:    acPower,
		Mode:     mode,
		Degrees:  acDegrees,
		Celsius:  !acFahrenheit,
		Fan:      fan,
		SwingV:   swingV,
		SwingH:   swingH,
		Quiet:    acQuiet,
		Turbo:    acTurbo,
		Econo:    acEcono,
		Light:    acLight,
		Filter:   acFilter,
		Clean:    acClean,
		Beep:     acBeep,
		Sleep:    acSleep,
		Clock:    acClock,
	}, nil
}

// parseEnum accepts either the String() name of a value in [lo, hi] or a
// plain integer.
func parseEnum[T interface {
	~int
	fmt.Stringer
}](kind, name string, lo, hi T) (T, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for v := lo; v <= hi; v++ {
		if v.String() == want {
			return v, nil
		}
	}
	if n, err := strconv.Atoi(want); err == nil {
		return T(n), nil
	}
	return lo, fmt.Errorf("unknown %s %q", kind, name)
}

func powerLabel(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// describeFailure puts a bridge request failure in terms of what went wrong
// for the user. The original error stays in the chain.
func describeFailure(err error, host string) error {
	switch {
	case err == nil:
		return nil
	case bridgeclient.IsInvalidFormat(err):
		return fmt.Errorf("bridge %s rejected the signal as malformed: %w", host, err)
	case bridgeclient.IsValidationError(err):
		return fmt.Errorf("invalid request: %w", err)
	case bridgeclient.IsHTTPError(err):
		return fmt.Errorf("bridge %s returned an error: %w", host, err)
	case bridgeclient.IsNetworkError(err):
		return fmt.Errorf("cannot reach bridge %s (%s): %w", host, strings.Join(troubleshooting(err), "; "), err)
	default:
		return err
	}
}

// controlClient resolves the target bridge for capture and replay commands.
func controlClient(ctx context.Context) (*bridgeclient.Client, string, error) {
	reg, err := config.LoadRegistry()
	if err != nil {
		return nil, "", err
	}
	host, err := resolveBridge(ctx, reg)
	if err != nil {
		return nil, "", err
	}
	return newClient(host), host, nil
}
