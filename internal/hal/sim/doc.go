// Package sim provides in-memory hardware for running the bridge on a
// development machine and for tests.
//
// The simulated radio knows a fixed set of networks, the IR transceiver
// replays injected captures and records everything sent, and pins and
// buttons are plain flags.
package sim
