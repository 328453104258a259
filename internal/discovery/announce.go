package discovery

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

// registration is the live side of an announcement.
type registration interface {
	Shutdown()
}

// registerFunc matches zeroconf.Register.
type registerFunc func(instance, service, domain string, port int, text []string) (registration, error)

// Announcer advertises the bridge under its configured hostname.
type Announcer struct {
	Service string
	Port    int
	Version string

	register registerFunc

	mu      sync.Mutex
	current registration
}

// NewAnnouncer creates an announcer for the HTTP port
func NewAnnouncer(port int, version string) *Announcer {
	return &Announcer{
		Service:  ServiceType,
		Port:     port,
		Version:  version,
		register: zeroconfRegister,
	}
}

// TXT returns the TXT record entries the bridge announces.
func (a *Announcer) TXT() []string {
	return []string{
		BoardKey + "=" + BoardValue,
		VersionKey + "=" + a.Version,
		"path=/",
	}
}

// Announce registers hostname as the service instance, replacing any earlier
// announcement.
func (a *Announcer) Announce(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("cannot announce an empty hostname")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil {
		a.current.Shutdown()
		a.current = nil
	}

	reg, err := a.register(hostname, a.Service, ServiceDomain, a.Port, a.TXT())
	if err != nil {
		return fmt.Errorf("failed to register mDNS service %q: %w", hostname, err)
	}
	a.current = reg

	logging.Info("mDNS service registered",
		zap.String("instance", hostname),
		zap.String("service", a.Service),
		zap.Int("port", a.Port),
	)
	return nil
}

// Shutdown withdraws the announcement. Safe to call more than once.
func (a *Announcer) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		a.current.Shutdown()
		a.current = nil
		logging.Info("mDNS service withdrawn")
	}
}
