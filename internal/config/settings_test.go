package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/server"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "irbridged.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.HTTP.Port != 80 {
		t.Errorf("HTTP.Port = %d, want 80", s.HTTP.Port)
	}
	if s.HTTP.MaxBody != 1500 {
		t.Errorf("HTTP.MaxBody = %d, want 1500", s.HTTP.MaxBody)
	}
	if s.AP.SSID != "UniversalIRBlaster" || s.AP.Password != "test12345678" {
		t.Errorf("AP = %+v, want stock access point", s.AP)
	}
	if s.WiFi.JoinTimeout != 10*time.Second {
		t.Errorf("WiFi.JoinTimeout = %v, want 10s", s.WiFi.JoinTimeout)
	}
	if s.WiFi.AutoConnectTimeout != 0 {
		t.Errorf("WiFi.AutoConnectTimeout = %v, want 0", s.WiFi.AutoConnectTimeout)
	}
	if s.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q, want sqlite", s.Store.Backend)
	}
	if s.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", s.Log.Level)
	}
	if _, ok := s.StaticCredentials(); ok {
		t.Error("StaticCredentials() ok = true with no static network")
	}
}

func TestLoad_File(t *testing.T) {
	path := writeYAML(t, `
http:
  port: 8080
  oversize_policy: reject
wifi:
  join_timeout: 3s
  static:
    ssid: home
    password: secret
    hostname: lounge
ir:
  carrier_khz: 40
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := s.ServerConfig()
	if cfg.Addr != ":8080" {
		t.Errorf("ServerConfig().Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.OversizePolicy != server.PolicyReject {
		t.Errorf("ServerConfig().OversizePolicy = %q, want reject", cfg.OversizePolicy)
	}
	if cfg.CarrierKHz != 40 {
		t.Errorf("ServerConfig().CarrierKHz = %d, want 40", cfg.CarrierKHz)
	}
	if got := s.MachineOptions().JoinTimeout; got != 3*time.Second {
		t.Errorf("MachineOptions().JoinTimeout = %v, want 3s", got)
	}

	creds, ok := s.StaticCredentials()
	if !ok {
		t.Fatal("StaticCredentials() ok = false")
	}
	if creds.SSID != "home" || creds.Password != "secret" || creds.Hostname != "lounge" {
		t.Errorf("StaticCredentials() = %+v", creds)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("IRBRIDGE_HTTP_PORT", "9090")
	t.Setenv("IRBRIDGE_LOG_LEVEL", "debug")

	path := writeYAML(t, "http:\n  port: 8080\n")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.HTTP.Port != 9090 {
		t.Errorf("HTTP.Port = %d, want 9090 from environment", s.HTTP.Port)
	}
	if s.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", s.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"port out of range", "http:\n  port: 70000\n", "http.port"},
		{"unknown policy", "http:\n  oversize_policy: drop\n", "oversize policy"},
		{"unknown wifi backend", "wifi:\n  backend: esp\n", "wifi.backend"},
		{"unknown store", "store:\n  backend: redis\n", "store.backend"},
		{"short ap password", "ap:\n  password: short\n", "ap.password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeYAML(t, tt.body))
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() error = nil for missing file")
	}
}
