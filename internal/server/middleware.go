package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

const (
	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"

	// HeaderBodyTruncated is set on responses to truncated requests.
	HeaderBodyTruncated = "X-Body-Truncated"

	requestIDKey = "request_id"
)

// requestID reuses the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.LogHTTPRequest(
			c.ClientIP(),
			c.Request.Method,
			c.Request.URL.Path,
			c.GetString(requestIDKey),
			c.Writer.Status(),
			int(c.Request.ContentLength),
			time.Since(start),
		)
	}
}

// activity flashes the network LED once per request.
func activity(led hal.Indicator) gin.HandlerFunc {
	return func(c *gin.Context) {
		led.BlinkOnce()
		c.Next()
	}
}
