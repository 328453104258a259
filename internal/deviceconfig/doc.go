// Package deviceconfig decides how the bridge joins a network.
//
// A Machine owns the configuration lifecycle:
//
//	Unconfigured --(boot, no stored ssid)--> APMode
//	APMode --(configure)--> Connecting
//	Connecting --(joined in time)--> Connected --> persist, restart
//	Connecting --(rejected or timed out)--> ConnectFailed --> restart
//	Unconfigured --(boot, stored ssid)--> Connecting (auto-connect)
//	Connecting --(joined)--> Connected --> control endpoints, mDNS
//
// The only thing consulted at boot is whether the credential store holds an
// ssid. Credentials are persisted only after a join has been observed to
// succeed; every failed attempt ends in a restart so the bridge comes back up
// in the mode its store dictates.
//
// # Usage Example
//
//	m := deviceconfig.New(deviceconfig.DefaultOptions(), deviceconfig.Deps{
//	    Store:     store,
//	    Network:   radio,
//	    LED:       wifiLED,
//	    Restarter: supervisor,
//	    Announcer: announcer,
//	})
//	if err := m.Boot(ctx, httpServer); err != nil {
//	    log.Fatal(err)
//	}
//
// The HTTP layer calls Configure and Scan; Configure blocks for at most the
// join timeout and is normally run in its own goroutine after the request has
// been acknowledged.
package deviceconfig
