// Package config provides user configuration management for the AIO bridge.
//
// This package manages a YAML-based configuration file that selects how the
// gateway is detected, which ports and broadcast address are used, and where
// state is published (MQTT broker, live feed). The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/aiobridge/config.yaml or $HOME/.config/aiobridge/config.yaml
//   - macOS: $HOME/.config/aiobridge/config.yaml
//   - Windows: %LOCALAPPDATA%\aiobridge\config.yaml
//
// # Environment Overrides
//
// A handful of settings may be supplied through the environment, which wins
// over the file:
//   - AIOBRIDGE_MQTT_BROKER, AIOBRIDGE_MQTT_USER, AIOBRIDGE_MQTT_PASS
//   - AIOBRIDGE_MAC (selects MAC detection)
//   - AIOBRIDGE_IP (selects IP detection)
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	target, err := cfg.Resolve()
//	if err != nil {
//	    // No detection method: the bridge stays unbound
//	}
//
// # Thread Safety
//
// File operations are protected by a mutex to ensure atomic writes.
package config
