package sim

import (
	"context"
	"sync"
	"time"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

const captureQueue = 64

// Sent is one recorded transmission. Exactly one of Pulses or AC is set.
type Sent struct {
	Pulses     []uint32
	CarrierKHz int
	AC         *protocol.ACCommand
}

// Transceiver is a simulated IR receiver and LED. Captures are served from an
// injected queue.
type Transceiver struct {
	captures chan hal.Capture

	mu   sync.Mutex
	sent []Sent
}

func NewTransceiver() *Transceiver {
	return &Transceiver{captures: make(chan hal.Capture, captureQueue)}
}

// InjectCapture queues a capture for the next Capture call. When the queue is
// full the capture is dropped.
func (t *Transceiver) InjectCapture(c hal.Capture) {
	select {
	case t.captures <- c:
	default:
	}
}

func (t *Transceiver) Capture(ctx context.Context, timeout time.Duration) (hal.Capture, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case c := <-t.captures:
		return c, nil
	case <-timer.C:
		return hal.Capture{}, hal.ErrNoSignal
	case <-ctx.Done():
		return hal.Capture{}, ctx.Err()
	}
}

func (t *Transceiver) SendRaw(ctx context.Context, pulses []uint32, carrierKHz int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, Sent{Pulses: append([]uint32(nil), pulses...), CarrierKHz: carrierKHz})
	return nil
}

func (t *Transceiver) SendAC(ctx context.Context, cmd protocol.ACCommand) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, Sent{AC: &cmd})
	return nil
}

// Sent returns every transmission so far
func (t *Transceiver) Sent() []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Sent(nil), t.sent...)
}
