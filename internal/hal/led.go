package hal

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

const (
	// BlinkPeriod is the half period of continuous blinking.
	BlinkPeriod = 100 * time.Millisecond

	// BlinkOnceDuration is how long a single acknowledgement blink stays lit.
	BlinkOnceDuration = 500 * time.Millisecond
)

// LEDMode is the steady state of an LED.
type LEDMode int32

const (
	LEDOff LEDMode = iota
	LEDOn
	LEDBlink
)

func (m LEDMode) String() string {
	switch m {
	case LEDOff:
		return "off"
	case LEDOn:
		return "on"
	case LEDBlink:
		return "blink"
	default:
		return fmt.Sprintf("LEDMode(%d)", int32(m))
	}
}

// LED drives a Pin from a single loop that reads an atomic mode on every
// tick. Mode setters never block and may be called from any goroutine.
type LED struct {
	name       string
	pin        Pin
	tick       time.Duration
	mode       atomic.Int32
	pulseUntil atomic.Int64

	// owned by Run
	phase bool
	lit   bool
}

// NewLED returns an LED that is off until Run is started.
func NewLED(name string, pin Pin) *LED {
	return &LED{name: name, pin: pin, tick: BlinkPeriod}
}

// On lights the LED steadily
func (l *LED) On() { l.setMode(LEDOn) }

// Off turns the LED off
func (l *LED) Off() { l.setMode(LEDOff) }

// Blink toggles the LED every BlinkPeriod until another mode is set
func (l *LED) Blink() { l.setMode(LEDBlink) }

// BlinkOnce lights the LED for BlinkOnceDuration on top of the current mode
func (l *LED) BlinkOnce() {
	l.pulseUntil.Store(time.Now().Add(BlinkOnceDuration).UnixNano())
}

// Mode returns the current steady mode
func (l *LED) Mode() LEDMode {
	return LEDMode(l.mode.Load())
}

func (l *LED) setMode(m LEDMode) {
	if old := LEDMode(l.mode.Swap(int32(m))); old != m {
		logging.Debug("LED mode", zap.String("led", l.name), zap.Stringer("from", old), zap.Stringer("to", m))
	}
}

// Run drives the pin until ctx is cancelled, leaving it off.
func (l *LED) Run(ctx context.Context) {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()
	defer l.pin.Set(false)

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if on := l.next(now); on != l.lit {
				l.pin.Set(on)
				l.lit = on
			}
		}
	}
}

// next computes the pin level for the tick at now. A pending single blink
// takes precedence; the blink phase keeps advancing underneath it.
func (l *LED) next(now time.Time) bool {
	var on bool
	switch l.Mode() {
	case LEDOn:
		on = true
	case LEDBlink:
		l.phase = !l.phase
		on = l.phase
	}
	if now.UnixNano() < l.pulseUntil.Load() {
		return true
	}
	return on
}
