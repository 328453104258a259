package sim

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

// Pin is a simulated LED output.
type Pin struct {
	name string
	on   atomic.Bool
}

func NewPin(name string) *Pin {
	return &Pin{name: name}
}

func (p *Pin) Set(on bool) {
	if p.on.Swap(on) != on {
		logging.Debug("Pin", zap.String("pin", p.name), zap.Bool("on", on))
	}
}

// On reports the current level
func (p *Pin) On() bool {
	return p.on.Load()
}

// Button is a simulated push button. A press is latched until read.
type Button struct {
	pressed atomic.Bool
}

// Press latches a press
func (b *Button) Press() {
	b.pressed.Store(true)
}

// Pressed reports and clears a latched press
func (b *Button) Pressed() bool {
	return b.pressed.Swap(false)
}
