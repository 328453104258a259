package deviceconfig

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
)

var (
	// ErrJoinRejected means the network primitive reported that the ssid
	// could not be found.
	ErrJoinRejected = errors.New("network not found")

	// ErrJoinTimeout means no connection was observed within the timeout.
	ErrJoinTimeout = errors.New("join timed out")
)

// JoinError describes a failed join attempt.
type JoinError struct {
	SSID    string
	Elapsed time.Duration
	Status  hal.NetworkStatus // last status observed
	Err     error             // ErrJoinRejected or ErrJoinTimeout
}

// Error implements the error interface
func (e *JoinError) Error() string {
	return fmt.Sprintf("join %q: %v after %s (last status %s)",
		e.SSID, e.Err, e.Elapsed.Round(time.Millisecond), e.Status)
}

// Unwrap returns the underlying error for error chain inspection
func (e *JoinError) Unwrap() error {
	return e.Err
}

// IsJoinRejected reports whether err is an explicit rejection
func IsJoinRejected(err error) bool {
	return errors.Is(err, ErrJoinRejected)
}

// IsJoinTimeout reports whether err is a join timeout
func IsJoinTimeout(err error) bool {
	return errors.Is(err, ErrJoinTimeout)
}
