// Package config holds configuration for both sides of the IR bridge.
//
// # Daemon settings
//
// Settings drive irbridged. They are layered with viper: built-in defaults,
// then an optional YAML file, then IRBRIDGE_ environment variables where a
// dot in the key becomes an underscore (http.port is IRBRIDGE_HTTP_PORT).
//
//	settings, err := config.Load("/etc/irbridge/irbridged.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srvCfg := settings.ServerConfig()
//
// # Known bridges
//
// Registry is the client side record of bridges irbridge-cfg has discovered
// or set up, keyed by hostname. It lives in the platform configuration
// directory:
//   - Linux: $XDG_CONFIG_HOME/irbridge/bridges.yaml or $HOME/.config/irbridge/bridges.yaml
//   - macOS: $HOME/.config/irbridge/bridges.yaml
//   - Windows: %LOCALAPPDATA%\irbridge\bridges.yaml
//
// WiFi passwords are never written to the registry.
package config
