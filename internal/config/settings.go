package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/deviceconfig"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/server"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IRBRIDGE"

// Settings is the full daemon configuration.
type Settings struct {
	HTTP  HTTPSettings  `mapstructure:"http"`
	AP    APSettings    `mapstructure:"ap"`
	WiFi  WiFiSettings  `mapstructure:"wifi"`
	Store StoreSettings `mapstructure:"store"`
	IR    IRSettings    `mapstructure:"ir"`
	MDNS  MDNSSettings  `mapstructure:"mdns"`
	Reset ResetSettings `mapstructure:"reset"`
	Log   LogSettings   `mapstructure:"log"`
}

type HTTPSettings struct {
	Port           int           `mapstructure:"port"`
	MaxBody        int           `mapstructure:"max_body"`
	OversizePolicy string        `mapstructure:"oversize_policy"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
}

type APSettings struct {
	SSID     string `mapstructure:"ssid"`
	Password string `mapstructure:"password"`
	Address  string `mapstructure:"address"`
}

// WiFiSettings select the radio backend and the join timing. Static, when
// its SSID is set, overrides stored credentials at boot.
type WiFiSettings struct {
	Backend            string         `mapstructure:"backend"`
	Interface          string         `mapstructure:"interface"`
	JoinTimeout        time.Duration  `mapstructure:"join_timeout"`
	PollInterval       time.Duration  `mapstructure:"poll_interval"`
	AutoConnectTimeout time.Duration  `mapstructure:"auto_connect_timeout"`
	Static             StaticSettings `mapstructure:"static"`
}

type StaticSettings struct {
	SSID     string `mapstructure:"ssid"`
	Password string `mapstructure:"password"`
	Hostname string `mapstructure:"hostname"`
}

type StoreSettings struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type IRSettings struct {
	CaptureTimeout time.Duration `mapstructure:"capture_timeout"`
	CarrierKHz     int           `mapstructure:"carrier_khz"`
}

type MDNSSettings struct {
	Service string `mapstructure:"service"`
}

type ResetSettings struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 80)
	v.SetDefault("http.max_body", server.DefaultMaxBody)
	v.SetDefault("http.oversize_policy", string(server.PolicyTruncate))
	v.SetDefault("http.read_timeout", server.DefaultReadTimeout)

	v.SetDefault("ap.ssid", deviceconfig.DefaultAPSSID)
	v.SetDefault("ap.password", deviceconfig.DefaultAPPassword)
	v.SetDefault("ap.address", "192.168.1.1")

	v.SetDefault("wifi.backend", "sim")
	v.SetDefault("wifi.interface", "wlan0")
	v.SetDefault("wifi.join_timeout", deviceconfig.DefaultJoinTimeout)
	v.SetDefault("wifi.poll_interval", deviceconfig.DefaultPollInterval)
	v.SetDefault("wifi.auto_connect_timeout", deviceconfig.DefaultAutoConnectTimeout)
	v.SetDefault("wifi.static.ssid", "")
	v.SetDefault("wifi.static.password", "")
	v.SetDefault("wifi.static.hostname", "")

	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.path", "irbridge.db")

	v.SetDefault("ir.capture_timeout", server.DefaultCaptureTimeout)
	v.SetDefault("ir.carrier_khz", server.DefaultCarrierKHz)

	v.SetDefault("mdns.service", "_http._tcp")
	v.SetDefault("reset.poll_interval", deviceconfig.DefaultResetPollInterval)
	v.SetDefault("log.level", "info")
}

// Load reads settings from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects settings the daemon cannot run with.
func (s *Settings) Validate() error {
	var errs []error
	if s.HTTP.Port <= 0 || s.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", s.HTTP.Port))
	}
	if s.HTTP.MaxBody <= 0 {
		errs = append(errs, fmt.Errorf("http.max_body must be positive"))
	}
	if _, err := server.ParseOversizePolicy(s.HTTP.OversizePolicy); err != nil {
		errs = append(errs, err)
	}
	switch s.WiFi.Backend {
	case "sim", "nmcli":
	default:
		errs = append(errs, fmt.Errorf("unknown wifi.backend %q", s.WiFi.Backend))
	}
	switch s.Store.Backend {
	case "sqlite", "file", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", s.Store.Backend))
	}
	if len(s.AP.Password) > 0 && len(s.AP.Password) < 8 {
		errs = append(errs, fmt.Errorf("ap.password must be at least 8 characters"))
	}
	return errors.Join(errs...)
}

// ServerConfig maps the HTTP and IR settings onto the server's config.
func (s *Settings) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	cfg.Addr = fmt.Sprintf(":%d", s.HTTP.Port)
	cfg.MaxBody = s.HTTP.MaxBody
	cfg.OversizePolicy, _ = server.ParseOversizePolicy(s.HTTP.OversizePolicy)
	cfg.ReadTimeout = s.HTTP.ReadTimeout
	cfg.CaptureTimeout = s.IR.CaptureTimeout
	cfg.CarrierKHz = s.IR.CarrierKHz
	return cfg
}

// MachineOptions maps the access point and join settings onto the
// lifecycle options.
func (s *Settings) MachineOptions() deviceconfig.Options {
	return deviceconfig.Options{
		APSSID:             s.AP.SSID,
		APPassword:         s.AP.Password,
		JoinTimeout:        s.WiFi.JoinTimeout,
		PollInterval:       s.WiFi.PollInterval,
		AutoConnectTimeout: s.WiFi.AutoConnectTimeout,
	}
}

// StaticCredentials returns the configured static network, if any.
func (s *Settings) StaticCredentials() (credstore.Credentials, bool) {
	st := s.WiFi.Static
	if st.SSID == "" {
		return credstore.Credentials{}, false
	}
	return credstore.Credentials{Hostname: st.Hostname, SSID: st.SSID, Password: st.Password}, true
}
