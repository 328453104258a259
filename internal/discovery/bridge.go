package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Bridge represents a discovered IR bridge on the network
type Bridge struct {
	// Instance is the advertised instance name, the hostname set during setup
	Instance string

	// Hostname is the mDNS host name (e.g., "irbridge.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Version is the firmware version from the TXT record
	Version string

	// Metadata contains every TXT record entry
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("IR bridge %q (%s) at %s", b.Instance, b.Hostname, net.JoinHostPort(b.IP, strconv.Itoa(b.Port)))
}

// BaseURL returns the HTTP base URL for the bridge
func (b *Bridge) BaseURL() string {
	return "http://" + net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
