// Package hal declares the hardware the bridge talks to and the LED driver
// shared by every backend.
//
// The daemon never touches a radio, a GPIO or an IR diode directly. It is
// handed implementations of the interfaces below:
//
//   - Network: access point, station join, status polling and scanning
//   - Receiver and Transmitter: IR capture and replay
//   - Pin and Button: status LEDs and the factory reset button
//   - Restarter: the host equivalent of rebooting the board
//
// Backends live in sub packages: sim for development and tests, nmcli for
// Linux boards managed by NetworkManager.
package hal
