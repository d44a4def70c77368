// Package config provides user configuration management for the firmata tooling.
//
// This package manages a YAML-based configuration file that stores saved board
// connections (keyed by nickname) and application preferences. The configuration
// follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/firmatactl/config.yaml or $HOME/.config/firmatactl/config.yaml
//   - macOS: $HOME/.config/firmatactl/config.yaml
//   - Windows: %LOCALAPPDATA%\firmatactl\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save a board under a nickname
//	registry.SetSerialBoard("uno", "/dev/ttyACM0", 57600)
//	registry.Preferences.DefaultBoard = "uno"
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
