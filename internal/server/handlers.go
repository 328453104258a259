package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

func reply(c *gin.Context, text string) {
	c.String(http.StatusOK, text)
}

// readPayload reads the request body into the fixed buffer. It writes the
// response itself and returns false when the handler should stop.
func (s *Server) readPayload(c *gin.Context) (string, bool) {
	text, truncated, err := readBody(c.Request.Body, s.cfg.MaxBody)
	switch {
	case errors.Is(err, ErrTransportTimeout):
		logging.Warn("Request body timed out", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.Header("Connection", "close")
		c.AbortWithStatus(http.StatusRequestTimeout)
		return "", false
	case err != nil:
		logging.Warn("Failed to read request body", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.Header("Connection", "close")
		c.AbortWithStatus(http.StatusBadRequest)
		return "", false
	}

	if truncated {
		if s.cfg.OversizePolicy == PolicyReject {
			logging.Warn("Request body exceeds buffer, rejecting",
				zap.String("path", c.Request.URL.Path), zap.Int("max_body", s.cfg.MaxBody))
			reply(c, protocol.ReplyInvalidFormat)
			return "", false
		}
		logging.Warn("Request body truncated",
			zap.String("path", c.Request.URL.Path), zap.Int("max_body", s.cfg.MaxBody))
		c.Header(HeaderBodyTruncated, "true")
	}

	logging.LogPayload("Request body "+c.Request.URL.Path, text)
	return text, true
}

func (s *Server) handleCapture(c *gin.Context) {
	reply(c, s.capture(c.Request.Context()))
}

// capture waits for one signal and returns its wire form, or "-1".
func (s *Server) capture(ctx context.Context) string {
	s.captureMu.Lock()
	defer s.captureMu.Unlock()

	s.deps.IRLED.Blink()
	defer s.deps.IRLED.Off()

	got, err := s.deps.Receiver.Capture(ctx, s.cfg.CaptureTimeout)
	if err != nil {
		if !errors.Is(err, hal.ErrNoSignal) && ctx.Err() == nil {
			logging.Warn("IR capture failed", zap.Error(err))
		}
		return protocol.ReplyNoSignal
	}

	sig := protocol.FromRawCapture(got.Protocol, got.Buffer)
	if sig.PulseCount() == 0 {
		return protocol.ReplyNoSignal
	}
	logging.Info("IR signal captured",
		zap.Stringer("protocol", sig.Protocol),
		zap.Int("pulses", sig.PulseCount()),
	)
	return protocol.EncodeRaw(sig)
}

func (s *Server) handleSendRaw(c *gin.Context) {
	text, ok := s.readPayload(c)
	if !ok {
		return
	}
	s.deps.IRLED.BlinkOnce()

	sig, err := protocol.DecodeRaw(text)
	if err != nil {
		logging.Info("Rejected raw signal", zap.Error(err))
		reply(c, protocol.ReplyInvalidFormat)
		return
	}
	if err := s.deps.Transmitter.SendRaw(c.Request.Context(), sig.Pulses, s.cfg.CarrierKHz); err != nil {
		logging.Error("IR transmit failed", zap.Error(err))
		reply(c, protocol.ReplyInvalidFormat)
		return
	}
	reply(c, protocol.ReplySuccess)
}

func (s *Server) handleSendAC(c *gin.Context) {
	text, ok := s.readPayload(c)
	if !ok {
		return
	}
	s.deps.IRLED.BlinkOnce()

	cmd, err := protocol.DecodeAC(text)
	if err != nil {
		logging.Info("Rejected A/C command", zap.Error(err))
		reply(c, protocol.ReplyInvalidFormat)
		return
	}
	if err := s.deps.Transmitter.SendAC(c.Request.Context(), cmd); err != nil {
		logging.Error("A/C transmit failed", zap.Stringer("protocol", cmd.Protocol), zap.Error(err))
		reply(c, protocol.ReplyInvalidFormat)
		return
	}
	reply(c, protocol.ReplySuccess)
}

func (s *Server) handleScan(c *gin.Context) {
	list, err := s.deps.Configurator.Scan(c.Request.Context())
	if err != nil {
		logging.Warn("Network scan failed", zap.Error(err))
	}
	reply(c, list)
}

// handleConfigure acknowledges the payload first, then runs the join in the
// background; the join ends in a restart, so the client never sees its result.
func (s *Server) handleConfigure(c *gin.Context) {
	text, ok := s.readPayload(c)
	if !ok {
		return
	}
	reply(c, protocol.ReplyGotRequest)

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		if err := s.deps.Configurator.Configure(s.bgCtx, text); err != nil {
			logging.Warn("Configure finished with error", zap.Error(err))
		}
	}()
}
