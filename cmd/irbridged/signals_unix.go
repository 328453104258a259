//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal/sim"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

// handleSimSignals maps SIGUSR1 to a reset button press and SIGUSR2 to an IR
// capture arriving at the receiver.
func handleSimSignals(ctx context.Context, button *sim.Button, trx *sim.Transceiver, sig *protocol.CapturedSignal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-ch:
			switch s {
			case syscall.SIGUSR1:
				logging.Info("Reset button pressed (SIGUSR1)")
				button.Press()
			case syscall.SIGUSR2:
				if sig == nil {
					logging.Warn("SIGUSR2 received but no --sim-signal configured")
					continue
				}
				// Buffer[0] is the idle gap the receiver reports before a burst.
				buf := append([]uint32{0}, sig.Pulses...)
				trx.InjectCapture(hal.Capture{Protocol: sig.Protocol, Buffer: buf})
				logging.Info("Simulated IR capture queued", zap.Int("pulses", sig.PulseCount()))
			}
		}
	}
}
