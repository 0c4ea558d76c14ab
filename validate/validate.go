// Command validate provides a small CLI that validates simulation profile
// JSON files in a configs directory. It checks:
//   - JSON structure against the on-disk profile schema
//   - Consumption tuning (tank capacity, burn rate, tick and persist cadence)
//   - Refueling economics (pricing, thresholds, timing)
//   - Station entries (names present, unique UIDs, no duplicate positions)
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openrp/fuel-stations/game/config"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

// validateProfile loads one profile through the config manager and runs
// the extra station checks the manager does not enforce.
func validateProfile(manager *config.Manager, filename string) ValidationResult {
	result := ValidationResult{
		File:  filename,
		Valid: true,
		Notes: []string{},
	}

	name := strings.TrimSuffix(filename, ".json")
	profile, err := manager.LoadProfile(name)
	if err != nil {
		result.Valid = false
		switch {
		case errors.Is(err, config.ErrProfileNotFound):
			result.Notes = append(result.Notes, "File disappeared while validating")
		case errors.Is(err, config.ErrInvalidProfile):
			result.Notes = append(result.Notes, fmt.Sprintf("Invalid profile: %v", err))
		default:
			result.Notes = append(result.Notes, fmt.Sprintf("Failed to load: %v", err))
		}
		return result
	}

	// Station checks beyond the manager's name requirement
	seenUIDs := make(map[string]bool)
	for i, s := range profile.Stations {
		if s.UID != "" {
			if seenUIDs[s.UID] {
				result.Valid = false
				result.Notes = append(result.Notes, fmt.Sprintf("Duplicate station UID %q at index %d", s.UID, i))
			}
			seenUIDs[s.UID] = true
		}
		for j := i + 1; j < len(profile.Stations); j++ {
			o := profile.Stations[j]
			if s.Position == o.Position {
				result.Valid = false
				result.Notes = append(result.Notes, fmt.Sprintf("Stations %d and %d share position (%.1f, %.1f, %.1f)",
					i, j, s.Position.X, s.Position.Y, s.Position.Z))
			}
		}
	}

	if profile.Refuel.MaximumFuel != profile.Fuel.MaximumFuel {
		// Legal but almost always a typo: the pump would overfill or
		// underfill relative to the consumption tank.
		result.Notes = append(result.Notes, fmt.Sprintf("NOTE: refuel capacity %.1f differs from fuel capacity %.1f",
			profile.Refuel.MaximumFuel, profile.Fuel.MaximumFuel))
	}

	if result.Valid {
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Name: %s", profile.Name))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Tank: %.1f units, %.2f burn per %s tick",
			profile.Fuel.MaximumFuel, profile.Fuel.LossPerTick, profile.Fuel.TickInterval))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Pricing: $%.2f per unit, minimum purchase %.0f",
			profile.Refuel.PricePerUnit, profile.Refuel.MinPurchase))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Stations: %d", len(profile.Stations)))
	}

	return result
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	manager, err := config.NewManager(dir)
	if err != nil {
		fmt.Printf("Error opening config directory: %v\n", err)
		os.Exit(1)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", dir, err)
		os.Exit(1)
	}

	allValid := true
	validated := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		validated++

		result := validateProfile(manager, filepath.Base(entry.Name()))
		status := "VALID"
		if !result.Valid {
			status = "INVALID"
			allValid = false
		}
		fmt.Printf("\n%s: %s\n", result.File, status)
		for _, note := range result.Notes {
			fmt.Printf("  %s\n", note)
		}
	}

	if validated == 0 {
		fmt.Printf("No profile files found in %s\n", dir)
		os.Exit(1)
	}

	if !allValid {
		os.Exit(1)
	}
	fmt.Printf("\nAll %d profiles valid.\n", validated)
}
