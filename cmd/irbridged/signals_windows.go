//go:build windows

package main

import (
	"context"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/hal/sim"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

// handleSimSignals is a no-op: Windows has no SIGUSR1/SIGUSR2.
func handleSimSignals(ctx context.Context, button *sim.Button, trx *sim.Transceiver, sig *protocol.CapturedSignal) {
}
