package bridgeclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

// CaptureHandler receives each streamed capture. captured is false when a
// capture window closed empty. Returning an error ends the stream.
type CaptureHandler func(sig protocol.CapturedSignal, captured bool) error

// StreamCaptures subscribes to the bridge's live capture stream and calls
// handle for every message until ctx is done, the bridge closes the stream or
// handle returns an error.
func (c *Client) StreamCaptures(ctx context.Context, handle CaptureHandler) error {
	wsURL := "ws" + strings.TrimPrefix(c.BaseURL, "http") + PathStream

	dialer := websocket.Dialer{HandshakeTimeout: c.HTTPClient.Timeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return NewHTTPError(resp.StatusCode, "capture stream upgrade refused")
		}
		return ClassifyNetworkError(err, c.host())
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return NewNetworkError("capture stream interrupted", err)
		}

		sig, err := parseCapture(strings.TrimSpace(string(msg)))
		captured := err == nil
		if err != nil && !IsNoSignal(err) {
			return err
		}
		if err := handle(sig, captured); err != nil {
			return err
		}
	}
}
