// Package supervisor re-runs the bridge's boot sequence whenever a restart
// is requested, the way a microcontroller would reset and run setup again.
//
// Each cycle gets a fresh context. A restart cancels it, waits for the boot
// function to return, tears down what the cycle started and boots again:
//
//	sup := supervisor.New(func(ctx context.Context) (supervisor.Teardown, error) {
//	    srv := server.New(cfg, deps)
//	    machine := deviceconfig.New(opts, deviceconfig.Deps{Restarter: sup, ...})
//	    teardown := func(ctx context.Context) { _ = srv.Shutdown(ctx) }
//	    return teardown, machine.Boot(ctx, srv)
//	})
//	err := sup.Run(ctx)
package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/logging"
)

const (
	// DefaultRestartDelay is the pause between teardown and the next boot.
	DefaultRestartDelay = 1 * time.Second

	// DefaultTeardownTimeout bounds how long a cycle may take to stop.
	DefaultTeardownTimeout = 5 * time.Second
)

// Teardown releases everything a boot cycle started.
type Teardown func(ctx context.Context)

// BootFunc runs one boot cycle. It returns once the bridge is serving or the
// cycle has failed, and may block until ctx is cancelled. The returned
// Teardown may be nil.
type BootFunc func(ctx context.Context) (Teardown, error)

// Supervisor owns the boot loop and implements hal.Restarter.
type Supervisor struct {
	RestartDelay    time.Duration
	TeardownTimeout time.Duration

	boot     BootFunc
	restart  chan string
	restarts atomic.Int64
}

// New creates a supervisor around boot
func New(boot BootFunc) *Supervisor {
	return &Supervisor{
		RestartDelay:    DefaultRestartDelay,
		TeardownTimeout: DefaultTeardownTimeout,
		boot:            boot,
		restart:         make(chan string, 1),
	}
}

// Restart asks for a new boot cycle. It never blocks; a request made while
// another is pending is merged into it.
func (s *Supervisor) Restart(reason string) {
	select {
	case s.restart <- reason:
		logging.Info("Restart requested", zap.String("reason", reason))
	default:
		logging.Debug("Restart already pending", zap.String("reason", reason))
	}
}

// Restarts returns how many restarts have been carried out
func (s *Supervisor) Restarts() int {
	return int(s.restarts.Load())
}

// Run boots the bridge and keeps rebooting it on request until ctx is done.
func (s *Supervisor) Run(ctx context.Context) error {
	for cycle := 1; ; cycle++ {
		reason, err := s.runCycle(ctx, cycle)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		s.restarts.Add(1)
		logging.Info("Restarting", zap.String("reason", reason), zap.Int("cycle", cycle))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.RestartDelay):
		}
	}
}

type bootResult struct {
	teardown Teardown
	err      error
}

// runCycle boots once and returns the restart reason when the cycle ends.
func (s *Supervisor) runCycle(ctx context.Context, cycle int) (string, error) {
	cycleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logging.Info("Booting", zap.Int("cycle", cycle))

	booted := make(chan bootResult, 1)
	go func() {
		teardown, err := s.boot(cycleCtx)
		booted <- bootResult{teardown, err}
	}()

	var (
		reason string
		result bootResult
		done   bool
	)
	for !done || reason == "" {
		select {
		case result = <-booted:
			done = true
			booted = nil
			if result.err != nil && !errors.Is(result.err, context.Canceled) {
				logging.Error("Boot failed", zap.Int("cycle", cycle), zap.Error(result.err))
				if reason == "" {
					reason = "boot failed"
				}
			}
		case reason = <-s.restart:
			cancel()
		case <-ctx.Done():
			cancel()
			if !done {
				result = <-booted
			}
			s.teardown(result.teardown)
			return "", nil
		}
	}

	s.teardown(result.teardown)
	s.drainRestarts()
	return reason, nil
}

// drainRestarts discards requests queued by the cycle that just ended; the
// next cycle already satisfies them.
func (s *Supervisor) drainRestarts() {
	for {
		select {
		case reason := <-s.restart:
			logging.Debug("Restart merged", zap.String("reason", reason))
		default:
			return
		}
	}
}

func (s *Supervisor) teardown(t Teardown) {
	if t == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.TeardownTimeout)
	defer cancel()
	t(ctx)
}
