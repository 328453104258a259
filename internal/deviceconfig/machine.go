package deviceconfig

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

const (
	// DefaultJoinTimeout bounds a join started from the configuration portal.
	DefaultJoinTimeout = 10 * time.Second

	// DefaultPollInterval is how often the join status is checked.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultAutoConnectTimeout bounds the boot time join with stored
	// credentials. Zero waits until the network appears.
	DefaultAutoConnectTimeout time.Duration = 0

	// DefaultAPSSID and DefaultAPPassword identify the configuration
	// access point.
	DefaultAPSSID     = "UniversalIRBlaster"
	DefaultAPPassword = "test12345678"

	// DefaultResetPollInterval is how often the reset button is sampled.
	DefaultResetPollInterval = 2 * time.Second
)

// Options tune the lifecycle.
type Options struct {
	APSSID             string
	APPassword         string
	JoinTimeout        time.Duration
	PollInterval       time.Duration
	AutoConnectTimeout time.Duration
}

// DefaultOptions returns the stock configuration
func DefaultOptions() Options {
	return Options{
		APSSID:             DefaultAPSSID,
		APPassword:         DefaultAPPassword,
		JoinTimeout:        DefaultJoinTimeout,
		PollInterval:       DefaultPollInterval,
		AutoConnectTimeout: DefaultAutoConnectTimeout,
	}
}

// Surface is the HTTP side of the bridge, started once the mode is known.
type Surface interface {
	StartPortal(ctx context.Context) error
	StartControl(ctx context.Context, hostname string) error
}

// Announcer advertises the bridge on the local network.
type Announcer interface {
	Announce(hostname string) error
}

// Deps are the collaborators a Machine drives. Announcer may be nil.
type Deps struct {
	Store     *credstore.Store
	Network   hal.Network
	LED       hal.Indicator
	Restarter hal.Restarter
	Announcer Announcer
}

// Machine runs the configuration lifecycle. Its methods are safe to call
// from multiple goroutines, but concurrent Configure calls are not
// serialised: both drive the same radio and the last status wins.
type Machine struct {
	opts      Options
	store     *credstore.Store
	net       hal.Network
	led       hal.Indicator
	restarter hal.Restarter
	announcer Announcer

	state atomic.Int32
}

// New returns a Machine in the Unconfigured state.
func New(opts Options, deps Deps) *Machine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Machine{
		opts:      opts,
		store:     deps.Store,
		net:       deps.Network,
		led:       deps.LED,
		restarter: deps.Restarter,
		announcer: deps.Announcer,
	}
}

// State returns the current lifecycle state
func (m *Machine) State() State {
	return State(m.state.Load())
}

func (m *Machine) transition(to State, fields ...zap.Field) {
	from := State(m.state.Swap(int32(to)))
	logging.LogTransition(from.String(), to.String(), fields...)
}

// Boot picks the mode from the credential store: without a stored ssid the
// access point and configuration portal come up, otherwise the stored
// network is joined. Boot returns once the portal is serving, once the
// control endpoints are serving, or when the join fails.
func (m *Machine) Boot(ctx context.Context, surface Surface) error {
	m.state.Store(int32(Unconfigured))

	configured, err := m.store.Configured(ctx)
	if err != nil {
		return fmt.Errorf("probe credential store: %w", err)
	}
	if configured {
		return m.AutoConnect(ctx, surface)
	}
	return m.startPortal(ctx, surface)
}

func (m *Machine) startPortal(ctx context.Context, surface Surface) error {
	if err := m.net.StartAP(ctx, m.opts.APSSID, m.opts.APPassword); err != nil {
		return fmt.Errorf("start access point: %w", err)
	}
	m.transition(APMode, zap.String("ap_ssid", m.opts.APSSID))

	if err := surface.StartPortal(ctx); err != nil {
		return fmt.Errorf("start configuration portal: %w", err)
	}
	m.led.Off()
	return nil
}

// Configure applies a "<hostname>$<ssid>$<password>$" payload received by
// the portal. It joins the network, persists the credentials on success and
// restarts the bridge whatever the outcome, except when ctx is cancelled.
//
// A malformed payload is logged and the join is still attempted with the
// fields that could be read; the format error is returned on success so
// callers can report it.
func (m *Machine) Configure(ctx context.Context, payload string) error {
	m.led.BlinkOnce()

	creds, formatErr := ParseConfigurePayload(payload)
	if formatErr != nil {
		logging.Warn("Malformed configure payload, attempting join anyway", zap.Error(formatErr))
	}

	m.transition(Connecting, zap.String("ssid", creds.SSID), zap.String("hostname", creds.Hostname))
	if err := m.net.StopAP(ctx); err != nil {
		logging.Warn("Failed to stop access point", zap.Error(err))
	}

	if err := m.connect(ctx, creds, m.opts.JoinTimeout, true); err != nil {
		m.transition(ConnectFailed, zap.Error(err))
		if ctx.Err() == nil {
			m.restarter.Restart("configure: " + err.Error())
		}
		return errors.Join(formatErr, err)
	}

	m.transition(Connected, zap.String("ssid", creds.SSID))
	if err := m.store.Save(ctx, creds); err != nil {
		logging.Error("Failed to persist credentials", zap.Error(err))
		m.restarter.Restart("configure: persist failed")
		return errors.Join(formatErr, err)
	}
	logging.Info("Credentials stored", zap.String("ssid", creds.SSID), zap.String("hostname", creds.Hostname))

	m.restarter.Restart("configured")
	return formatErr
}

// AutoConnect joins the stored network and, once connected, starts the
// control endpoints and the mDNS announcement. It waits at most
// Options.AutoConnectTimeout, or indefinitely when that is zero; a bounded
// timeout ends in a restart.
func (m *Machine) AutoConnect(ctx context.Context, surface Surface) error {
	creds, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	return m.stationUp(ctx, surface, creds)
}

// ForceConnect behaves like AutoConnect with fixed credentials that never
// touch the store.
func (m *Machine) ForceConnect(ctx context.Context, surface Surface, creds credstore.Credentials) error {
	logging.Info("Using static credentials", zap.String("ssid", creds.SSID))
	m.state.Store(int32(Unconfigured))
	return m.stationUp(ctx, surface, creds)
}

func (m *Machine) stationUp(ctx context.Context, surface Surface, creds credstore.Credentials) error {
	m.transition(Connecting, zap.String("ssid", creds.SSID), zap.Bool("stored", true))

	if err := m.connect(ctx, creds, m.opts.AutoConnectTimeout, false); err != nil {
		m.transition(ConnectFailed, zap.Error(err))
		if ctx.Err() == nil {
			m.restarter.Restart("auto-connect: " + err.Error())
		}
		return err
	}
	m.transition(Connected, zap.String("ssid", creds.SSID))

	if err := surface.StartControl(ctx, creds.Hostname); err != nil {
		return fmt.Errorf("start control endpoints: %w", err)
	}
	if m.announcer != nil {
		if err := m.announcer.Announce(creds.Hostname); err != nil {
			logging.Warn("mDNS announcement failed", zap.String("hostname", creds.Hostname), zap.Error(err))
		}
	}
	return nil
}

// connect starts a join and polls until it succeeds, is rejected (when
// abortOnReject is set) or timeout elapses. A zero timeout never expires.
func (m *Machine) connect(ctx context.Context, creds credstore.Credentials, timeout time.Duration, abortOnReject bool) error {
	m.led.Blink()
	defer m.led.Off()

	if err := m.net.Disconnect(ctx); err != nil {
		logging.Debug("Disconnect before join failed", zap.Error(err))
	}
	if err := m.net.Join(ctx, creds.SSID, creds.Password); err != nil {
		return fmt.Errorf("join %q: %w", creds.SSID, err)
	}

	start := time.Now()
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		status := m.net.Status(ctx)
		switch {
		case status == hal.StatusConnected:
			logging.Info("Joined network", zap.String("ssid", creds.SSID), zap.Duration("elapsed", time.Since(start)))
			return nil
		case status == hal.StatusNoSSID && abortOnReject:
			return &JoinError{SSID: creds.SSID, Elapsed: time.Since(start), Status: status, Err: ErrJoinRejected}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-expired:
			last := m.net.Status(ctx)
			if last == hal.StatusConnected {
				return nil
			}
			return &JoinError{SSID: creds.SSID, Elapsed: time.Since(start), Status: last, Err: ErrJoinTimeout}
		case <-ticker.C:
			logging.Debug("Waiting for join", zap.String("ssid", creds.SSID), zap.Stringer("status", status))
		}
	}
}

// Scan lists visible networks as "<ssid>$<ssid>$...". The LED blinks while
// the radio scans.
func (m *Machine) Scan(ctx context.Context) (string, error) {
	m.led.Blink()
	defer m.led.Off()

	ssids, err := m.net.Scan(ctx)
	if err != nil {
		return "", fmt.Errorf("scan networks: %w", err)
	}
	logging.Info("Network scan complete", zap.Int("count", len(ssids)))
	return JoinNetworkList(ssids), nil
}

// FactoryReset erases the stored credentials and restarts, bringing the
// bridge back up in access point mode.
func (m *Machine) FactoryReset(ctx context.Context) error {
	if err := m.store.Erase(ctx); err != nil {
		return err
	}
	logging.Warn("Credentials erased")
	m.restarter.Restart("factory reset")
	return nil
}

// WatchResetButton samples button every interval until ctx is done and
// performs a factory reset on a press.
func (m *Machine) WatchResetButton(ctx context.Context, button hal.Button, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultResetPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !button.Pressed() {
				continue
			}
			logging.Info("Reset button pressed")
			if err := m.FactoryReset(ctx); err != nil {
				logging.Error("Factory reset failed", zap.Error(err))
			}
		}
	}
}
