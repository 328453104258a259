// Package discovery announces bridges on the local network and finds them
// again from the client side, both over mDNS.
//
// A bridge joined to a network registers itself as a "_http._tcp" service
// whose instance name is the hostname chosen during setup. The TXT record
// carries "board=irbridge", which is how a browsing client tells bridges
// apart from every other HTTP service on the segment:
//
//	announcer := discovery.NewAnnouncer(80, version.Version)
//	if err := announcer.Announce("Living Room"); err != nil {
//	    ...
//	}
//	defer announcer.Shutdown()
//
// On the client side:
//
//	bridges, err := discovery.NewScanner().Scan(ctx)
//	for _, b := range bridges {
//	    fmt.Println(b.Instance, b.BaseURL())
//	}
//
// After a bridge has been configured it restarts and comes back under its
// new name; WaitFor blocks until that instance shows up.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Bridges must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
