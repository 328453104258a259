package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName      = "irbridge"
	registryFile = "bridges.yaml"

	registryVersion = 1
)

// Mutex for file operations
var fileMutex sync.Mutex

// Registry is the client side record of known bridges.
type Registry struct {
	Version     int                `yaml:"version"`
	Bridges     map[string]*Bridge `yaml:"bridges,omitempty"` // Keyed by lower-cased hostname
	Preferences *Preferences       `yaml:"preferences,omitempty"`

	path string
}

// Bridge is what the client remembers about one bridge.
type Bridge struct {
	Hostname string    `yaml:"hostname"`
	Nickname string    `yaml:"nickname,omitempty"`
	LastIP   string    `yaml:"last_ip,omitempty"`
	Port     int       `yaml:"port,omitempty"`
	LastSeen time.Time `yaml:"last_seen,omitempty"`
	Network  string    `yaml:"network,omitempty"` // SSID the bridge was set up on
}

// Preferences are application-wide client preferences.
type Preferences struct {
	DiscoverTimeout int    `yaml:"discover_timeout"` // seconds
	DefaultBridge   string `yaml:"default_bridge,omitempty"`
}

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/irbridge or $HOME/.config/irbridge
//   - macOS: $HOME/.config/irbridge
//   - Windows: %LOCALAPPDATA%\irbridge
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil

	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil
	}
}

// GetRegistryPath returns the full path to the registry file.
func GetRegistryPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, registryFile), nil
}

// NewRegistry creates an empty registry that saves to path.
func NewRegistry(path string) *Registry {
	return &Registry{
		Version: registryVersion,
		Bridges: make(map[string]*Bridge),
		Preferences: &Preferences{
			DiscoverTimeout: 5,
		},
		path: path,
	}
}

// LoadRegistry loads the registry from its default location.
func LoadRegistry() (*Registry, error) {
	path, err := GetRegistryPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry path: %w", err)
	}
	return LoadRegistryFrom(path)
}

// LoadRegistryFrom loads the registry at path. A missing file yields an
// empty registry.
func LoadRegistryFrom(path string) (*Registry, error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(path), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	reg := NewRegistry(path)
	if err := yaml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	if reg.Version != registryVersion {
		return nil, fmt.Errorf("unsupported registry version: %d (expected %d)", reg.Version, registryVersion)
	}
	if reg.Bridges == nil {
		reg.Bridges = make(map[string]*Bridge)
	}
	if reg.Preferences == nil {
		reg.Preferences = &Preferences{DiscoverTimeout: 5}
	}
	reg.path = path
	return reg, nil
}

// Path returns where Save writes
func (r *Registry) Path() string { return r.path }

// Save writes the registry atomically through a temporary file.
func (r *Registry) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if r.path == "" {
		return fmt.Errorf("registry has no path")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	header := []byte("# IR bridge registry\n" +
		"# Bridges found by irbridge-cfg. WiFi passwords are never stored here.\n\n")
	data = append(header, data...)

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary registry: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save registry: %w", err)
	}
	return nil
}

func registryKey(hostname string) string {
	return strings.ToLower(strings.TrimSpace(hostname))
}

// GetBridge returns the entry for hostname, or nil.
func (r *Registry) GetBridge(hostname string) *Bridge {
	return r.Bridges[registryKey(hostname)]
}

// EnsureBridge returns the entry for hostname, creating it if needed.
func (r *Registry) EnsureBridge(hostname string) *Bridge {
	if r.Bridges == nil {
		r.Bridges = make(map[string]*Bridge)
	}
	key := registryKey(hostname)
	if b, ok := r.Bridges[key]; ok {
		return b
	}
	b := &Bridge{Hostname: hostname}
	r.Bridges[key] = b
	return b
}

// UpdateBridgeSeen records the address a bridge was last reached at.
func (r *Registry) UpdateBridgeSeen(hostname, ip string, port int) {
	b := r.EnsureBridge(hostname)
	b.LastIP = ip
	b.Port = port
	b.LastSeen = time.Now()
}

// SetNickname sets a user-friendly name for a bridge.
func (r *Registry) SetNickname(hostname, nickname string) {
	r.EnsureBridge(hostname).Nickname = nickname
}

// RemoveBridge forgets hostname and reports whether it was known.
func (r *Registry) RemoveBridge(hostname string) bool {
	key := registryKey(hostname)
	if _, ok := r.Bridges[key]; !ok {
		return false
	}
	delete(r.Bridges, key)
	if r.Preferences != nil && registryKey(r.Preferences.DefaultBridge) == key {
		r.Preferences.DefaultBridge = ""
	}
	return true
}

// List returns the known bridges sorted by hostname.
func (r *Registry) List() []*Bridge {
	out := make([]*Bridge, 0, len(r.Bridges))
	for _, b := range r.Bridges {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return registryKey(out[i].Hostname) < registryKey(out[j].Hostname)
	})
	return out
}

// Resolve turns a hostname or nickname into an address the client can
// dial. Unknown names are returned unchanged so raw IPs and mDNS names
// still work.
func (r *Registry) Resolve(name string) string {
	if b := r.GetBridge(name); b != nil && b.LastIP != "" {
		return b.LastIP
	}
	for _, b := range r.Bridges {
		if b.Nickname != "" && strings.EqualFold(b.Nickname, name) && b.LastIP != "" {
			return b.LastIP
		}
	}
	return name
}
