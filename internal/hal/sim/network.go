package sim

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

// DefaultJoinDelay is how long a simulated join takes to associate.
const DefaultJoinDelay = 300 * time.Millisecond

// JoinAttempt records one call to Join.
type JoinAttempt struct {
	SSID     string
	Password string
	At       time.Time
}

// Network simulates a WiFi radio surrounded by a fixed set of networks.
// Joining a known network with the right password succeeds after JoinDelay,
// an unknown ssid reports StatusNoSSID immediately and a wrong password
// never associates.
type Network struct {
	JoinDelay time.Duration

	mu        sync.Mutex
	networks  map[string]string
	apSSID    string
	apActive  bool
	joining   string
	password  string
	joinedAt  time.Time
	connected bool
	attempts  []JoinAttempt
}

// NewNetwork returns a radio that can see the given ssid to password pairs.
func NewNetwork(networks map[string]string) *Network {
	known := make(map[string]string, len(networks))
	for ssid, pass := range networks {
		known[ssid] = pass
	}
	return &Network{JoinDelay: DefaultJoinDelay, networks: known}
}

// AddNetwork makes another network visible
func (n *Network) AddNetwork(ssid, password string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.networks[ssid] = password
}

func (n *Network) StartAP(ctx context.Context, ssid, password string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.apSSID = ssid
	n.apActive = true
	logging.Info("Simulated access point up", zap.String("ssid", ssid))
	return nil
}

func (n *Network) StopAP(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.apActive = false
	return nil
}

// APActive reports whether the access point is up and its ssid
func (n *Network) APActive() (bool, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.apActive, n.apSSID
}

func (n *Network) Join(ctx context.Context, ssid, password string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := time.Now()
	n.attempts = append(n.attempts, JoinAttempt{SSID: ssid, Password: password, At: now})
	n.joining = ssid
	n.password = password
	n.joinedAt = now
	n.connected = false
	return nil
}

func (n *Network) Disconnect(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.joining = ""
	n.connected = false
	return nil
}

func (n *Network) Status(ctx context.Context) hal.NetworkStatus {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.joining == "" {
		return hal.StatusDisconnected
	}
	if n.connected {
		return hal.StatusConnected
	}
	pass, ok := n.networks[n.joining]
	switch {
	case !ok:
		return hal.StatusNoSSID
	case pass != n.password:
		return hal.StatusDisconnected
	case time.Since(n.joinedAt) >= n.JoinDelay:
		n.connected = true
		return hal.StatusConnected
	default:
		return hal.StatusIdle
	}
}

func (n *Network) Scan(ctx context.Context) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ssids := make([]string, 0, len(n.networks))
	for ssid := range n.networks {
		ssids = append(ssids, ssid)
	}
	sort.Strings(ssids)
	return ssids, nil
}

// Attempts returns every join attempt so far
func (n *Network) Attempts() []JoinAttempt {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]JoinAttempt(nil), n.attempts...)
}
