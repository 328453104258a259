package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

const (
	DefaultAddr           = ":80"
	DefaultMaxBody        = 1500
	DefaultReadTimeout    = 5 * time.Second
	DefaultCaptureTimeout = 10 * time.Second
	DefaultCarrierKHz     = 38

	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

// Route paths.
const (
	PathRoot       = "/"
	PathAC         = "/ac"
	PathScan       = "/scan"
	PathWiFiConfig = "/wificonfig"
	PathStream     = "/capture/stream"
)

// Config holds the server configuration
type Config struct {
	Addr           string
	MaxBody        int
	OversizePolicy OversizePolicy
	ReadTimeout    time.Duration // whole request, body included
	CaptureTimeout time.Duration
	CarrierKHz     int
}

// DefaultConfig returns the stock configuration
func DefaultConfig() Config {
	return Config{
		Addr:           DefaultAddr,
		MaxBody:        DefaultMaxBody,
		OversizePolicy: PolicyTruncate,
		ReadTimeout:    DefaultReadTimeout,
		CaptureTimeout: DefaultCaptureTimeout,
		CarrierKHz:     DefaultCarrierKHz,
	}
}

// Configurator is the part of the configuration lifecycle reachable over HTTP.
type Configurator interface {
	Configure(ctx context.Context, payload string) error
	Scan(ctx context.Context) (string, error)
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Configurator Configurator
	Receiver     hal.Receiver
	Transmitter  hal.Transmitter
	WiFiLED      hal.Indicator
	IRLED        hal.Indicator
}

// Server serves either the configuration portal or the control endpoints.
// A Server is good for one boot cycle: after Shutdown, build a new one.
type Server struct {
	cfg  Config
	deps Deps

	// captureMu serialises access to the single IR receiver.
	captureMu sync.Mutex

	// bg tracks configure requests that outlive their HTTP exchange.
	bg       sync.WaitGroup
	bgCtx    context.Context
	bgCancel context.CancelFunc

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	mode       string
}

// New creates a new Server instance
func New(cfg Config, deps Deps) *Server {
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	if cfg.OversizePolicy == "" {
		cfg.OversizePolicy = PolicyTruncate
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = DefaultCaptureTimeout
	}
	if cfg.CarrierKHz <= 0 {
		cfg.CarrierKHz = DefaultCarrierKHz
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{cfg: cfg, deps: deps, bgCtx: ctx, bgCancel: cancel}
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(), activity(s.deps.WiFiLED))
	return r
}

// PortalRouter builds the access point mode routes.
func (s *Server) PortalRouter() *gin.Engine {
	r := s.newRouter()
	r.GET(PathScan, s.handleScan)
	r.POST(PathWiFiConfig, s.handleConfigure)
	return r
}

// ControlRouter builds the station mode routes.
func (s *Server) ControlRouter() *gin.Engine {
	r := s.newRouter()
	r.GET(PathRoot, s.handleCapture)
	r.POST(PathRoot, s.handleSendRaw)
	r.POST(PathAC, s.handleSendAC)
	r.GET(PathScan, s.handleScan)
	r.GET(PathStream, s.handleStream)
	return r
}

// StartPortal starts serving the configuration portal.
func (s *Server) StartPortal(ctx context.Context) error {
	return s.serve("portal", s.PortalRouter())
}

// StartControl starts serving the control endpoints.
func (s *Server) StartControl(ctx context.Context, hostname string) error {
	logging.Info("Bridge ready", zap.String("hostname", hostname))
	return s.serve("control", s.ControlRouter())
}

func (s *Server) serve(mode string, handler http.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return fmt.Errorf("already serving %s routes", s.mode)
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}

	s.listener = listener
	s.mode = mode
	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		IdleTimeout:       idleTimeout,
	}

	logging.Info("HTTP server listening",
		zap.String("mode", mode),
		zap.String("addr", listener.Addr().String()),
	)

	srv := s.httpServer
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server stopped", zap.String("mode", mode), zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the listening address, or "" before a Start call.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Mode returns "portal", "control" or "" when not serving.
func (s *Server) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Shutdown gracefully stops the server and cancels background configure
// requests, waiting for them to return.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	var err error
	if srv != nil {
		logging.Info("Shutting down HTTP server", zap.String("mode", s.Mode()))
		err = srv.Shutdown(ctx)
	}

	s.bgCancel()
	done := make(chan struct{})
	go func() {
		s.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}
