// Package logging provides structured logging for the IR bridge.
//
// This package wraps a package level zap logger with convenience functions
// for the logging patterns used by the daemon and the configuration client.
//
// # Log Levels
//
//   - Debug: wire payloads, poll iterations, LED mode changes
//   - Info: state transitions, HTTP requests, announcements
//   - Warn: truncated bodies, malformed configure payloads, failed joins
//   - Error: startup failures, storage errors
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// An empty level falls back to IRBRIDGE_LOG_LEVEL; with neither set the
// logger is a no-op, which keeps the CLI output clean.
//
// # Specialized Logging
//
//	logging.LogTransition("ap_mode", "connecting", zap.String("ssid", ssid))
//	logging.LogHTTPRequest(remote, "POST", "/ac", reqID, 200, 42, latency)
//	logging.LogPayload("raw replay payload", body)
package logging
