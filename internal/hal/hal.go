package hal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

// ErrNoSignal is returned by Receiver.Capture when nothing arrived before the
// timeout.
var ErrNoSignal = errors.New("no IR signal received")

// NetworkStatus is the station state reported by the network primitive.
type NetworkStatus int

const (
	StatusIdle NetworkStatus = iota
	StatusConnected
	StatusNoSSID
	StatusConnectFailed
	StatusDisconnected
)

func (s NetworkStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnected:
		return "connected"
	case StatusNoSSID:
		return "no_ssid_available"
	case StatusConnectFailed:
		return "connect_failed"
	case StatusDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("NetworkStatus(%d)", int(s))
	}
}

// Network is the WiFi radio. Join only starts an attempt; callers poll Status
// to learn the outcome.
type Network interface {
	StartAP(ctx context.Context, ssid, password string) error
	StopAP(ctx context.Context) error
	Join(ctx context.Context, ssid, password string) error
	Disconnect(ctx context.Context) error
	Status(ctx context.Context) NetworkStatus
	Scan(ctx context.Context) ([]string, error)
}

// Capture is a raw receiver buffer. Buffer[0] is the idle gap before the
// burst; durations are in microseconds.
type Capture struct {
	Protocol protocol.ProtocolID
	Buffer   []uint32
}

// Receiver captures one IR burst, waiting at most timeout.
type Receiver interface {
	Capture(ctx context.Context, timeout time.Duration) (Capture, error)
}

// Transmitter replays IR. SendAC delegates to the appliance codec selected by
// the command's protocol.
type Transmitter interface {
	SendRaw(ctx context.Context, pulses []uint32, carrierKHz int) error
	SendAC(ctx context.Context, cmd protocol.ACCommand) error
}

// Pin is a digital output driving an LED.
type Pin interface {
	Set(on bool)
}

// Button is a momentary input, polled.
type Button interface {
	Pressed() bool
}

// Restarter reboots the bridge. On the host it tears down and re-runs the
// boot sequence.
type Restarter interface {
	Restart(reason string)
}

// Indicator is a status LED as seen by the control plane.
type Indicator interface {
	On()
	Off()
	Blink()
	BlinkOnce()
}
