// Package nmcli implements hal.Network on Linux boards whose WiFi is managed
// by NetworkManager, by driving the nmcli command line tool.
package nmcli

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

const (
	// HotspotConnection is the NetworkManager connection name used for the
	// configuration access point.
	HotspotConnection = "irbridge-ap"

	// joinCommandTimeout bounds a single "nmcli device wifi connect" run.
	joinCommandTimeout = 90 * time.Second
)

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Network drives one wireless interface through nmcli.
type Network struct {
	// APAddress, when set, replaces NetworkManager's default hotspot
	// address. A bare IP gets a /24 prefix.
	APAddress string

	iface  string
	runner Runner

	mu         sync.Mutex
	cancelJoin context.CancelFunc
	joinGen    int
	joinResult *hal.NetworkStatus
}

// New returns a Network for iface (for example "wlan0") using the system
// nmcli binary.
func New(iface string) *Network {
	return NewWithRunner(iface, execRunner{})
}

// NewWithRunner is New with an injectable command runner
func NewWithRunner(iface string, runner Runner) *Network {
	return &Network{iface: iface, runner: runner}
}

func (n *Network) nmcli(ctx context.Context, args ...string) (string, error) {
	out, err := n.runner.Run(ctx, "nmcli", args...)
	if err != nil {
		return string(out), fmt.Errorf("nmcli %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func (n *Network) StartAP(ctx context.Context, ssid, password string) error {
	if _, err := n.nmcli(ctx, "device", "wifi", "hotspot",
		"ifname", n.iface, "con-name", HotspotConnection,
		"ssid", ssid, "password", password); err != nil {
		return err
	}
	if n.APAddress == "" {
		return nil
	}

	addr := n.APAddress
	if !strings.Contains(addr, "/") {
		addr += "/24"
	}
	if _, err := n.nmcli(ctx, "connection", "modify", HotspotConnection,
		"ipv4.method", "shared", "ipv4.addresses", addr); err != nil {
		return err
	}
	_, err := n.nmcli(ctx, "connection", "up", HotspotConnection)
	return err
}

func (n *Network) StopAP(ctx context.Context) error {
	out, err := n.nmcli(ctx, "connection", "down", HotspotConnection)
	if err != nil && strings.Contains(out, "not an active connection") {
		return nil
	}
	return err
}

// Join starts "nmcli device wifi connect" in the background. Its exit status
// feeds Status until the next Join or Disconnect.
func (n *Network) Join(ctx context.Context, ssid, password string) error {
	joinCtx, cancel := context.WithTimeout(context.Background(), joinCommandTimeout)

	n.mu.Lock()
	if n.cancelJoin != nil {
		n.cancelJoin()
	}
	n.cancelJoin = cancel
	n.joinGen++
	gen := n.joinGen
	n.joinResult = nil
	n.mu.Unlock()

	go func() {
		defer cancel()
		args := []string{"device", "wifi", "connect", ssid, "ifname", n.iface}
		if password != "" {
			args = append(args, "password", password)
		}
		out, err := n.nmcli(joinCtx, args...)
		status := hal.StatusConnected
		if err != nil {
			status = classifyJoinFailure(out)
			logging.Warn("nmcli join failed", zap.String("ssid", ssid), zap.Error(err))
		}

		n.mu.Lock()
		defer n.mu.Unlock()
		if gen == n.joinGen {
			n.joinResult = &status
		}
	}()
	return nil
}

func classifyJoinFailure(out string) hal.NetworkStatus {
	if strings.Contains(out, "No network with SSID") {
		return hal.StatusNoSSID
	}
	return hal.StatusConnectFailed
}

func (n *Network) Disconnect(ctx context.Context) error {
	n.mu.Lock()
	if n.cancelJoin != nil {
		n.cancelJoin()
		n.cancelJoin = nil
	}
	n.joinGen++
	n.joinResult = nil
	n.mu.Unlock()

	out, err := n.nmcli(ctx, "device", "disconnect", n.iface)
	if err != nil && strings.Contains(out, "not active") {
		return nil
	}
	return err
}

// Status prefers the outcome of a finished join; otherwise it maps the
// NetworkManager device state.
func (n *Network) Status(ctx context.Context) hal.NetworkStatus {
	n.mu.Lock()
	result := n.joinResult
	n.mu.Unlock()
	if result != nil && *result != hal.StatusConnected {
		return *result
	}

	out, err := n.nmcli(ctx, "-t", "-f", "GENERAL.STATE", "device", "show", n.iface)
	if err != nil {
		return hal.StatusIdle
	}
	return parseDeviceState(out)
}

// parseDeviceState maps "GENERAL.STATE:100 (connected)" to a NetworkStatus.
func parseDeviceState(out string) hal.NetworkStatus {
	_, value, ok := strings.Cut(strings.TrimSpace(out), ":")
	if !ok {
		return hal.StatusIdle
	}
	code, _, _ := strings.Cut(value, " ")
	state, err := strconv.Atoi(code)
	if err != nil {
		return hal.StatusIdle
	}
	switch {
	case state == 100:
		return hal.StatusConnected
	case state == 120:
		return hal.StatusConnectFailed
	case state <= 30:
		return hal.StatusDisconnected
	default:
		return hal.StatusIdle
	}
}

func (n *Network) Scan(ctx context.Context) ([]string, error) {
	out, err := n.nmcli(ctx, "-t", "-f", "SSID", "device", "wifi", "list", "ifname", n.iface, "--rescan", "yes")
	if err != nil {
		return nil, err
	}
	return parseSSIDList(out), nil
}

// parseSSIDList reads terse nmcli output, one ssid per line, dropping hidden
// networks and duplicates while keeping signal order.
func parseSSIDList(out string) []string {
	seen := make(map[string]bool)
	var ssids []string
	for _, line := range strings.Split(out, "\n") {
		ssid := strings.ReplaceAll(strings.TrimRight(line, "\r"), `\:`, ":")
		if ssid == "" || ssid == "--" || seen[ssid] {
			continue
		}
		seen[ssid] = true
		ssids = append(ssids, ssid)
	}
	return ssids
}
