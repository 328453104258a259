package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type bridges advertise
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for bridge discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default HTTP port for bridges
	DefaultPort = 80

	// BoardKey and BoardValue mark a TXT record as belonging to a bridge
	BoardKey   = "board"
	BoardValue = "irbridge"

	// VersionKey carries the firmware version in the TXT record
	VersionKey = "version"
)

// Scanner handles mDNS bridge discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration

	// Service overrides ServiceType when set
	Service string
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout, Service: ServiceType}
}

// browse streams bridges to found until ctx ends or found returns false.
func (s *Scanner) browse(ctx context.Context, found func(*Bridge) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if b := parseServiceEntry(entry); b != nil && !found(b) {
					cancel()
					return
				}
			}
		}
	}()

	service := s.Service
	if service == "" {
		service = ServiceType
	}
	if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done
	return nil
}

// Scan discovers every bridge answering within the scanner's timeout,
// sorted by instance name.
func (s *Scanner) Scan(ctx context.Context) ([]*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var mu sync.Mutex
	seen := make(map[string]*Bridge)
	err := s.browse(ctx, func(b *Bridge) bool {
		mu.Lock()
		defer mu.Unlock()
		seen[b.Instance] = b
		return true
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	bridges := make([]*Bridge, 0, len(seen))
	for _, b := range seen {
		bridges = append(bridges, b)
	}
	sort.Slice(bridges, func(i, j int) bool { return bridges[i].Instance < bridges[j].Instance })
	return bridges, nil
}

// WaitFor blocks until the named instance is seen or the timeout elapses.
// Instance names compare case-insensitively, as mDNS does.
func (s *Scanner) WaitFor(ctx context.Context, instance string) (*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	result := make(chan *Bridge, 1)
	err := s.browse(ctx, func(b *Bridge) bool {
		if !strings.EqualFold(b.Instance, instance) {
			return true
		}
		result <- b
		return false
	})
	if err != nil {
		return nil, err
	}

	select {
	case b := <-result:
		return b, nil
	default:
		return nil, fmt.Errorf("bridge %q not found within %s", instance, s.Timeout)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Bridge.
// Returns nil if the entry is not a bridge or has no address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Bridge {
	metadata := parseTXT(entry.Text)
	if metadata[BoardKey] != BoardValue {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Bridge{
		Instance:     unescapeInstance(entry.Instance),
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Version:      metadata[VersionKey],
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits "key=value" TXT entries. A key without '=' maps to "".
func parseTXT(txt []string) map[string]string {
	metadata := make(map[string]string, len(txt))
	for _, entry := range txt {
		key, value, _ := strings.Cut(entry, "=")
		metadata[key] = value
	}
	return metadata
}

// unescapeInstance undoes the DNS escaping zeroconf leaves in instance names
// ("Living\ Room" -> "Living Room").
func unescapeInstance(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
