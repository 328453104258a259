package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func bridgeEntry(instance string, text ...string) *zeroconf.ServiceEntry {
	entry := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	entry.HostName = "irbridge.local."
	entry.Port = 80
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.50")}
	entry.Text = text
	return entry
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantInstance string
		wantIP       string
		wantPort     int
		wantVersion  string
	}{
		{
			name:         "bridge with IPv4",
			entry:        bridgeEntry("livingroom", "board=irbridge", "version=1.2.0"),
			wantInstance: "livingroom",
			wantIP:       "192.168.1.50",
			wantPort:     80,
			wantVersion:  "1.2.0",
		},
		{
			name:         "escaped instance name",
			entry:        bridgeEntry(`Living\ Room`, "board=irbridge"),
			wantInstance: "Living Room",
			wantIP:       "192.168.1.50",
			wantPort:     80,
		},
		{
			name: "no port defaults to 80",
			entry: func() *zeroconf.ServiceEntry {
				e := bridgeEntry("ir", "board=irbridge")
				e.Port = 0
				return e
			}(),
			wantInstance: "ir",
			wantIP:       "192.168.1.50",
			wantPort:     80,
		},
		{
			name: "IPv6 only",
			entry: func() *zeroconf.ServiceEntry {
				e := bridgeEntry("ir", "board=irbridge")
				e.AddrIPv4 = nil
				e.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}
				return e
			}(),
			wantInstance: "ir",
			wantIP:       "fe80::1",
			wantPort:     80,
		},
		{
			name: "prefers IPv4",
			entry: func() *zeroconf.ServiceEntry {
				e := bridgeEntry("ir", "board=irbridge")
				e.AddrIPv6 = []net.IP{net.ParseIP("fe80::2")}
				return e
			}(),
			wantInstance: "ir",
			wantIP:       "192.168.1.50",
			wantPort:     80,
		},
		{
			name:    "other HTTP service",
			entry:   bridgeEntry("printer", "path=/"),
			wantNil: true,
		},
		{
			name:    "different board",
			entry:   bridgeEntry("ir", "board=esp32"),
			wantNil: true,
		},
		{
			name: "no address",
			entry: func() *zeroconf.ServiceEntry {
				e := bridgeEntry("ir", "board=irbridge")
				e.AddrIPv4 = nil
				return e
			}(),
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if b != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", b)
				}
				return
			}
			if b == nil {
				t.Fatal("parseServiceEntry() = nil, want bridge")
			}
			if b.Instance != tt.wantInstance {
				t.Errorf("Instance = %q, want %q", b.Instance, tt.wantInstance)
			}
			if b.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", b.IP, tt.wantIP)
			}
			if b.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", b.Port, tt.wantPort)
			}
			if b.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", b.Version, tt.wantVersion)
			}
			if time.Since(b.DiscoveredAt) > time.Second {
				t.Errorf("DiscoveredAt is not recent: %v", b.DiscoveredAt)
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"board=irbridge", "flag", "note=a=b"})
	want := map[string]string{"board": "irbridge", "flag": "", "note": "a=b"}
	if len(got) != len(want) {
		t.Fatalf("parseTXT() has %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("parseTXT()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
	if scanner.Service != ServiceType {
		t.Errorf("Service = %q, want %q", scanner.Service, ServiceType)
	}
}

func TestBridge(t *testing.T) {
	b := &Bridge{Instance: "Living Room", Hostname: "irbridge.local.", IP: "10.0.0.5", Port: 8080}

	if got := b.BaseURL(); got != "http://10.0.0.5:8080" {
		t.Errorf("BaseURL() = %q", got)
	}
	if got := b.String(); got != `IR bridge "Living Room" (irbridge.local.) at 10.0.0.5:8080` {
		t.Errorf("String() = %q", got)
	}
	if b.GetMetadata("board") != "" {
		t.Error("GetMetadata() on nil metadata should be empty")
	}

	v6 := &Bridge{IP: "fe80::1", Port: 80}
	if got := v6.BaseURL(); got != "http://[fe80::1]:80" {
		t.Errorf("BaseURL() = %q", got)
	}
}

// Live mDNS browsing needs a multicast capable network and is exercised
// manually with 'irbridge-cfg discover'.
