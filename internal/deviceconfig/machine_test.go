package deviceconfig

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal/sim"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

const (
	testJoinTimeout  = 150 * time.Millisecond
	testPollInterval = 10 * time.Millisecond
)

type fakeSurface struct {
	mu        sync.Mutex
	portal    int
	hostnames []string
}

func (s *fakeSurface) StartPortal(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portal++
	return nil
}

func (s *fakeSurface) StartControl(ctx context.Context, hostname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostnames = append(s.hostnames, hostname)
	return nil
}

func (s *fakeSurface) snapshot() (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portal, append([]string(nil), s.hostnames...)
}

type fakeRestarter struct {
	reasons chan string
}

func newFakeRestarter() *fakeRestarter {
	return &fakeRestarter{reasons: make(chan string, 8)}
}

func (r *fakeRestarter) Restart(reason string) { r.reasons <- reason }

func (r *fakeRestarter) count() int { return len(r.reasons) }

type fakeAnnouncer struct {
	mu        sync.Mutex
	announced []string
}

func (a *fakeAnnouncer) Announce(hostname string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.announced = append(a.announced, hostname)
	return nil
}

type harness struct {
	machine   *Machine
	store     *credstore.Store
	network   *sim.Network
	restarter *fakeRestarter
	announcer *fakeAnnouncer
	surface   *fakeSurface
	led       *hal.LED
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		store:     credstore.New(credstore.NewMemoryBackend()),
		network:   sim.NewNetwork(map[string]string{"home": "secret", "office": "work1234"}),
		restarter: newFakeRestarter(),
		announcer: &fakeAnnouncer{},
		surface:   &fakeSurface{},
		led:       hal.NewLED("wifi", sim.NewPin("wifi")),
	}
	h.network.JoinDelay = 20 * time.Millisecond
	h.machine = New(opts, Deps{
		Store:     h.store,
		Network:   h.network,
		LED:       h.led,
		Restarter: h.restarter,
		Announcer: h.announcer,
	})
	return h
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.JoinTimeout = testJoinTimeout
	opts.PollInterval = testPollInterval
	return opts
}

func TestBoot_UnconfiguredStartsPortal(t *testing.T) {
	h := newHarness(t, testOptions())

	if err := h.machine.Boot(context.Background(), h.surface); err != nil {
		t.Fatalf("Boot() error = %v", err)
	}

	if got := h.machine.State(); got != APMode {
		t.Errorf("State() = %v, want %v", got, APMode)
	}
	active, ssid := h.network.APActive()
	if !active || ssid != DefaultAPSSID {
		t.Errorf("access point = (%v, %q), want (true, %q)", active, ssid, DefaultAPSSID)
	}
	portal, control := h.surface.snapshot()
	if portal != 1 || len(control) != 0 {
		t.Errorf("portal starts = %d, control starts = %v", portal, control)
	}
	if len(h.network.Attempts()) != 0 {
		t.Error("Boot() joined a network without credentials")
	}
}

func TestBoot_StoredCredentialsAutoConnect(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	_ = h.store.Save(ctx, credstore.Credentials{Hostname: "livingroom", SSID: "home", Password: "secret"})

	if err := h.machine.Boot(ctx, h.surface); err != nil {
		t.Fatalf("Boot() error = %v", err)
	}

	if got := h.machine.State(); got != Connected {
		t.Errorf("State() = %v, want %v", got, Connected)
	}
	portal, control := h.surface.snapshot()
	if portal != 0 || len(control) != 1 || control[0] != "livingroom" {
		t.Errorf("portal starts = %d, control starts = %v", portal, control)
	}
	if len(h.announcer.announced) != 1 || h.announcer.announced[0] != "livingroom" {
		t.Errorf("announced = %v, want [livingroom]", h.announcer.announced)
	}
	if h.restarter.count() != 0 {
		t.Error("successful auto-connect restarted the bridge")
	}
	if h.led.Mode() != hal.LEDOff {
		t.Errorf("LED mode = %v after join, want off", h.led.Mode())
	}
}

func TestBoot_StoredCredentialsWaitIndefinitely(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Credentials validity is irrelevant to the boot decision.
	_ = h.store.Save(ctx, credstore.Credentials{Hostname: "ir", SSID: "home", Password: "wrong"})

	done := make(chan error, 1)
	go func() { done <- h.machine.Boot(ctx, h.surface) }()

	time.Sleep(3 * testJoinTimeout)
	if got := h.machine.State(); got != Connecting {
		t.Errorf("State() = %v, want %v while waiting", got, Connecting)
	}
	if h.led.Mode() != hal.LEDBlink {
		t.Errorf("LED mode = %v while joining, want blink", h.led.Mode())
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Boot() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Boot() did not return after cancel")
	}
	if h.restarter.count() != 0 {
		t.Error("cancelled boot restarted the bridge")
	}
}

func TestAutoConnect_BoundedTimeoutRestarts(t *testing.T) {
	opts := testOptions()
	opts.AutoConnectTimeout = 50 * time.Millisecond
	h := newHarness(t, opts)
	ctx := context.Background()
	_ = h.store.Save(ctx, credstore.Credentials{Hostname: "ir", SSID: "ghost", Password: "x"})

	err := h.machine.AutoConnect(ctx, h.surface)
	if !IsJoinTimeout(err) {
		t.Fatalf("AutoConnect() error = %v, want join timeout", err)
	}
	if got := h.machine.State(); got != ConnectFailed {
		t.Errorf("State() = %v, want %v", got, ConnectFailed)
	}
	if h.restarter.count() != 1 {
		t.Errorf("restarts = %d, want 1", h.restarter.count())
	}
	if _, control := h.surface.snapshot(); len(control) != 0 {
		t.Error("control endpoints started after failed join")
	}
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantState   State
		wantErr     error
		wantStored  bool
		minDuration time.Duration
		maxDuration time.Duration
	}{
		{
			name:       "join succeeds",
			payload:    "livingroom$home$secret$",
			wantState:  Connected,
			wantStored: true,
		},
		{
			name:        "network not found aborts early",
			payload:     "livingroom$ghost$secret$",
			wantState:   ConnectFailed,
			wantErr:     ErrJoinRejected,
			maxDuration: testJoinTimeout,
		},
		{
			name:        "wrong password times out",
			payload:     "livingroom$home$nope$",
			wantState:   ConnectFailed,
			wantErr:     ErrJoinTimeout,
			minDuration: testJoinTimeout,
		},
		{
			name:      "malformed payload still attempts join",
			payload:   "justahost",
			wantState: ConnectFailed,
			wantErr:   protocol.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testOptions())
			ctx := context.Background()
			if err := h.machine.Boot(ctx, h.surface); err != nil {
				t.Fatalf("Boot() error = %v", err)
			}

			start := time.Now()
			err := h.machine.Configure(ctx, tt.payload)
			elapsed := time.Since(start)

			if tt.wantErr == nil && err != nil {
				t.Fatalf("Configure() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Configure() error = %v, want %v", err, tt.wantErr)
			}
			if got := h.machine.State(); got != tt.wantState {
				t.Errorf("State() = %v, want %v", got, tt.wantState)
			}
			if tt.minDuration > 0 && elapsed < tt.minDuration {
				t.Errorf("Configure() gave up after %v, before the %v timeout", elapsed, tt.minDuration)
			}
			if tt.maxDuration > 0 && elapsed >= tt.maxDuration {
				t.Errorf("Configure() took %v, want less than %v", elapsed, tt.maxDuration)
			}

			stored, _ := h.store.Configured(ctx)
			if stored != tt.wantStored {
				t.Errorf("credentials stored = %v, want %v", stored, tt.wantStored)
			}
			if h.restarter.count() != 1 {
				t.Errorf("restarts = %d, want 1", h.restarter.count())
			}
			if active, _ := h.network.APActive(); active {
				t.Error("access point still active after configure")
			}
			if len(h.network.Attempts()) != 1 {
				t.Errorf("join attempts = %d, want 1", len(h.network.Attempts()))
			}
		})
	}
}

func TestConfigure_PersistsExactFields(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()

	if err := h.machine.Configure(ctx, "Living Room$office$work1234$"); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	got, err := h.store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := credstore.Credentials{Hostname: "Living Room", SSID: "office", Password: "work1234"}
	if got != want {
		t.Errorf("stored = %+v, want %+v", got, want)
	}
	if reason := <-h.restarter.reasons; reason != "configured" {
		t.Errorf("restart reason = %q, want configured", reason)
	}
}

func TestConfigure_CancelledDoesNotRestart(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.machine.Configure(ctx, "ir$home$nope$")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Configure() error = %v, want context.Canceled", err)
	}
	if h.restarter.count() != 0 {
		t.Error("cancelled configure restarted the bridge")
	}
}

func TestForceConnect(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()

	creds := credstore.Credentials{Hostname: "static", SSID: "home", Password: "secret"}
	if err := h.machine.ForceConnect(ctx, h.surface, creds); err != nil {
		t.Fatalf("ForceConnect() error = %v", err)
	}
	if got := h.machine.State(); got != Connected {
		t.Errorf("State() = %v, want %v", got, Connected)
	}
	if stored, _ := h.store.Configured(ctx); stored {
		t.Error("ForceConnect() wrote to the store")
	}
}

func TestScan(t *testing.T) {
	h := newHarness(t, testOptions())

	got, err := h.machine.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if got != "home$office$" {
		t.Errorf("Scan() = %q, want %q", got, "home$office$")
	}
	if h.machine.State() != Unconfigured {
		t.Errorf("Scan() changed state to %v", h.machine.State())
	}
	if h.led.Mode() != hal.LEDOff {
		t.Errorf("LED mode = %v after scan, want off", h.led.Mode())
	}
}

func TestFactoryReset(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	_ = h.store.Save(ctx, credstore.Credentials{Hostname: "ir", SSID: "home"})

	if err := h.machine.FactoryReset(ctx); err != nil {
		t.Fatalf("FactoryReset() error = %v", err)
	}
	if stored, _ := h.store.Configured(ctx); stored {
		t.Error("credentials survived factory reset")
	}
	if reason := <-h.restarter.reasons; reason != "factory reset" {
		t.Errorf("restart reason = %q", reason)
	}
}

func TestWatchResetButton(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = h.store.Save(ctx, credstore.Credentials{Hostname: "ir", SSID: "home"})

	var button sim.Button
	go h.machine.WatchResetButton(ctx, &button, 5*time.Millisecond)

	button.Press()
	select {
	case reason := <-h.restarter.reasons:
		if reason != "factory reset" {
			t.Errorf("restart reason = %q", reason)
		}
	case <-time.After(time.Second):
		t.Fatal("button press did not trigger a reset")
	}
	if stored, _ := h.store.Configured(ctx); stored {
		t.Error("credentials survived button reset")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Unconfigured, "unconfigured"},
		{APMode, "ap_mode"},
		{Connecting, "connecting"},
		{Connected, "connected"},
		{ConnectFailed, "connect_failed"},
		{State(9), "State(9)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestJoinError(t *testing.T) {
	err := &JoinError{SSID: "home", Elapsed: 1500 * time.Millisecond, Status: hal.StatusDisconnected, Err: ErrJoinTimeout}
	if !IsJoinTimeout(err) || IsJoinRejected(err) {
		t.Errorf("classification wrong for %v", err)
	}
	want := `join "home": join timed out after 1.5s (last status disconnected)`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
