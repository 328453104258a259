package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal/sim"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

type fakeConfigurator struct {
	mu       sync.Mutex
	payloads []string
	got      chan string
	block    chan struct{}
	networks string
	scanErr  error
}

func newFakeConfigurator() *fakeConfigurator {
	return &fakeConfigurator{got: make(chan string, 4), networks: "home$office$"}
}

func (f *fakeConfigurator) Configure(ctx context.Context, payload string) error {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	f.got <- payload
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeConfigurator) Scan(ctx context.Context) (string, error) {
	return f.networks, f.scanErr
}

type fixture struct {
	srv          *Server
	configurator *fakeConfigurator
	radio        *sim.Transceiver
	irLED        *hal.LED
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.CaptureTimeout = 50 * time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}

	f := &fixture{
		configurator: newFakeConfigurator(),
		radio:        sim.NewTransceiver(),
		irLED:        hal.NewLED("ir", sim.NewPin("ir")),
	}
	f.srv = New(cfg, Deps{
		Configurator: f.configurator,
		Receiver:     f.radio,
		Transmitter:  f.radio,
		WiFiLED:      hal.NewLED("wifi", sim.NewPin("wifi")),
		IRLED:        f.irLED,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = f.srv.Shutdown(ctx)
	})
	return f
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCapture(t *testing.T) {
	tests := []struct {
		name    string
		inject  *hal.Capture
		want    string
		wantLED hal.LEDMode
	}{
		{
			name:   "signal",
			inject: &hal.Capture{Protocol: 3, Buffer: []uint32{50000, 9000, 4500, 560, 1690}},
			want:   "3;4:9000,4500,560,1690,",
		},
		{
			name:   "long space is split",
			inject: &hal.Capture{Protocol: protocol.ProtocolUnknown, Buffer: []uint32{0, 100, 70000}},
			want:   "-1;2:100,65535,  0,4465,",
		},
		{
			name: "window closes empty",
			want: "-1",
		},
		{
			name:   "marker only",
			inject: &hal.Capture{Protocol: 1, Buffer: []uint32{1234}},
			want:   "-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if tt.inject != nil {
				f.radio.InjectCapture(*tt.inject)
			}

			w := do(f.srv.ControlRouter(), http.MethodGet, "/", "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if got := w.Body.String(); got != tt.want {
				t.Errorf("GET / = %q, want %q", got, tt.want)
			}
			if f.irLED.Mode() != hal.LEDOff {
				t.Errorf("IR LED = %v after capture, want off", f.irLED.Mode())
			}
		})
	}
}

func TestSendRaw(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		want       string
		wantPulses []uint32
	}{
		{
			name:       "replay",
			body:       "4:8954,4180,540,1584",
			want:       "Success",
			wantPulses: []uint32{8954, 4180, 540, 1584},
		},
		{
			name:       "captured form is accepted back",
			body:       "3;2:9000,4500,",
			want:       "Success",
			wantPulses: []uint32{9000, 4500},
		},
		{
			name: "missing colon",
			body: "8954,4180",
			want: "Invalid format",
		},
		{
			name: "zero count",
			body: "0:",
			want: "Invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			w := do(f.srv.ControlRouter(), http.MethodPost, "/", tt.body)
			if got := w.Body.String(); got != tt.want {
				t.Errorf("POST / = %q, want %q", got, tt.want)
			}

			sent := f.radio.Sent()
			if tt.wantPulses == nil {
				if len(sent) != 0 {
					t.Errorf("transmitted %v for a rejected body", sent)
				}
				return
			}
			if len(sent) != 1 {
				t.Fatalf("transmissions = %d, want 1", len(sent))
			}
			if !reflect.DeepEqual(sent[0].Pulses, tt.wantPulses) {
				t.Errorf("pulses = %v, want %v", sent[0].Pulses, tt.wantPulses)
			}
			if sent[0].CarrierKHz != DefaultCarrierKHz {
				t.Errorf("carrier = %d, want %d", sent[0].CarrierKHz, DefaultCarrierKHz)
			}
		})
	}
}

func TestSendAC(t *testing.T) {
	f := newFixture(t, nil)
	router := f.srv.ControlRouter()

	w := do(router, http.MethodPost, "/ac", "10,1,1,1,25,1,2,4,2,1,0,1,1,0,0,1,-1,-1")
	if w.Body.String() != "Success" {
		t.Fatalf("POST /ac = %q, want Success", w.Body.String())
	}
	sent := f.radio.Sent()
	if len(sent) != 1 || sent[0].AC == nil {
		t.Fatalf("sent = %+v, want one A/C command", sent)
	}
	if ac := sent[0].AC; ac.Protocol != 10 || ac.Degrees != 25 || ac.Mode != protocol.ModeCool {
		t.Errorf("A/C command = %+v", ac)
	}

	w = do(router, http.MethodPost, "/ac", "no separators at all")
	if w.Body.String() != "Invalid format" {
		t.Errorf("POST /ac = %q, want Invalid format", w.Body.String())
	}
	if len(f.radio.Sent()) != 1 {
		t.Error("rejected A/C command was transmitted")
	}
}

func TestEmptyBody(t *testing.T) {
	f := newFixture(t, nil)

	w := do(f.srv.ControlRouter(), http.MethodPost, "/", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if w.Header().Get("Connection") != "close" {
		t.Error("connection not marked for close")
	}
}

func TestOversizeBody(t *testing.T) {
	body := "2:100,200," + strings.Repeat("9", 2000)

	t.Run("truncate", func(t *testing.T) {
		f := newFixture(t, nil)
		w := do(f.srv.ControlRouter(), http.MethodPost, "/", body)
		if w.Body.String() != "Success" {
			t.Errorf("POST / = %q, want Success", w.Body.String())
		}
		if w.Header().Get(HeaderBodyTruncated) != "true" {
			t.Errorf("%s header missing", HeaderBodyTruncated)
		}
	})

	t.Run("reject", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.OversizePolicy = PolicyReject })
		w := do(f.srv.ControlRouter(), http.MethodPost, "/", body)
		if w.Body.String() != "Invalid format" {
			t.Errorf("POST / = %q, want Invalid format", w.Body.String())
		}
		if len(f.radio.Sent()) != 0 {
			t.Error("rejected body was transmitted")
		}
	})

	t.Run("exactly at capacity", func(t *testing.T) {
		f := newFixture(t, nil)
		exact := "1:" + strings.Repeat("1", DefaultMaxBody-2)
		w := do(f.srv.ControlRouter(), http.MethodPost, "/", exact)
		if w.Header().Get(HeaderBodyTruncated) != "" {
			t.Error("body of exactly MaxBody bytes reported as truncated")
		}
	})
}

func TestRequestID(t *testing.T) {
	f := newFixture(t, nil)
	router := f.srv.ControlRouter()

	w := do(router, http.MethodGet, "/scan", "")
	if id := w.Header().Get(HeaderRequestID); len(id) != 36 {
		t.Errorf("generated request id = %q, want a uuid", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if id := w.Header().Get(HeaderRequestID); id != "abc-123" {
		t.Errorf("request id = %q, want abc-123", id)
	}
}

func TestScan(t *testing.T) {
	f := newFixture(t, nil)

	for _, router := range []*gin.Engine{f.srv.PortalRouter(), f.srv.ControlRouter()} {
		w := do(router, http.MethodGet, "/scan", "")
		if w.Body.String() != "home$office$" {
			t.Errorf("GET /scan = %q", w.Body.String())
		}
	}

	f.configurator.scanErr = errors.New("radio busy")
	f.configurator.networks = ""
	w := do(f.srv.PortalRouter(), http.MethodGet, "/scan", "")
	if w.Code != http.StatusOK || w.Body.String() != "" {
		t.Errorf("GET /scan on failure = %d %q, want 200 and empty", w.Code, w.Body.String())
	}
}

func TestConfigure_AcknowledgesThenRuns(t *testing.T) {
	f := newFixture(t, nil)
	f.configurator.block = make(chan struct{})
	defer close(f.configurator.block)

	w := do(f.srv.PortalRouter(), http.MethodPost, "/wificonfig", "Living Room$myWiFi$really Strong Password$")
	if w.Body.String() != "Got request" {
		t.Fatalf("POST /wificonfig = %q, want Got request", w.Body.String())
	}

	select {
	case got := <-f.configurator.got:
		if got != "Living Room$myWiFi$really Strong Password$" {
			t.Errorf("payload = %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("configure never ran")
	}
}

func TestRouteSets(t *testing.T) {
	f := newFixture(t, nil)

	if w := do(f.srv.PortalRouter(), http.MethodGet, "/", ""); w.Code != http.StatusNotFound {
		t.Errorf("portal GET / status = %d, want 404", w.Code)
	}
	if w := do(f.srv.ControlRouter(), http.MethodPost, "/wificonfig", "a$b$c$"); w.Code != http.StatusNotFound {
		t.Errorf("control POST /wificonfig status = %d, want 404", w.Code)
	}
}

func TestStartControl_ServesAndShutsDown(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.srv.StartControl(context.Background(), "livingroom"); err != nil {
		t.Fatalf("StartControl() error = %v", err)
	}
	if f.srv.Mode() != "control" {
		t.Errorf("Mode() = %q, want control", f.srv.Mode())
	}
	if err := f.srv.StartPortal(context.Background()); err == nil {
		t.Error("second start should fail")
	}

	resp, err := http.Get("http://" + f.srv.Addr() + "/scan")
	if err != nil {
		t.Fatalf("GET /scan error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "home$office$" {
		t.Errorf("GET /scan = %q", body)
	}

	if err := f.srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if _, err := http.Get("http://" + f.srv.Addr() + "/scan"); err == nil {
		t.Error("server still answering after Shutdown")
	}
}

func TestBodyReadTimeout(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.ReadTimeout = 100 * time.Millisecond })
	if err := f.srv.StartControl(context.Background(), "ir"); err != nil {
		t.Fatalf("StartControl() error = %v", err)
	}

	conn, err := net.Dial("tcp", f.srv.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Promise 50 bytes, deliver 3.
	_, _ = io.WriteString(conn, "POST / HTTP/1.1\r\nHost: bridge\r\nContent-Length: 50\r\n\r\n2:1")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != http.StatusRequestTimeout {
		t.Errorf("status = %d, want 408", resp.StatusCode)
	}
	if len(f.radio.Sent()) != 0 {
		t.Error("partial body was transmitted")
	}
}

func TestShutdown_CancelsConfigure(t *testing.T) {
	f := newFixture(t, nil)
	f.configurator.block = make(chan struct{})

	do(f.srv.PortalRouter(), http.MethodPost, "/wificonfig", "ir$home$secret$")
	<-f.configurator.got

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
