// Package config provides configuration management for the fuel station
// server.
//
// The config package handles:
//   - Loading server profiles from JSON files
//   - Profile validation
//   - Default profile management
//   - Profile discovery and listing
//
// Profile Format:
//
// Profiles are stored as JSON files in the configs directory. Each profile
// defines:
//   - Consumption tuning (tank capacity, loss per tick, tick cadence)
//   - Refueling economics (price per unit, fill time, offer timeout)
//   - The station list with positions and map blips
//
// Durations are written in milliseconds in the files and converted to
// native durations at load time.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific profile
//	profile, err := manager.LoadProfile("classic")
//
//	// Get the default profile
//	profile = manager.GetDefault()
//
//	// List available profiles
//	profiles, err := manager.ListProfiles()
package config
