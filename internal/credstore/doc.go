// Package credstore persists the bridge's WiFi credentials.
//
// The credentials live in the "wifiConfig" namespace of a small key-value
// store under the keys ssid, password and hostname. The presence of ssid is
// the only signal the boot sequence uses to tell a configured bridge from a
// factory fresh one.
//
// Three backends are provided:
//
//   - SQLiteBackend: a single kv table in an SQLite file (default)
//   - FileBackend: a YAML file written atomically
//   - MemoryBackend: process memory, for tests and the simulator
//
// # Usage Example
//
//	store, err := credstore.Open("sqlite", "/var/lib/irbridge/creds.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if ok, _ := store.Configured(ctx); !ok {
//	    // start the configuration access point
//	}
package credstore
