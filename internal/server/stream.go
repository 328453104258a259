package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	maxMsgSize = 512
)

var upgrader = websocket.Upgrader{
	// The bridge lives on a LAN and has no browser-facing origin of its own.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStream upgrades to a websocket and sends one message per capture
// window, "-1" included, until the client goes away.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("Capture stream upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	remote := conn.RemoteAddr().String()
	logging.Info("Capture stream opened", zap.String("remote_addr", remote))
	defer logging.Info("Capture stream closed", zap.String("remote_addr", remote))

	ctx, cancel := context.WithCancel(s.bgCtx)
	defer cancel()

	conn.SetReadLimit(maxMsgSize)
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for ctx.Err() == nil {
		msg := s.capture(ctx)
		if ctx.Err() != nil {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			logging.Debug("Capture stream write failed", zap.String("remote_addr", remote), zap.Error(err))
			return
		}
	}
}
