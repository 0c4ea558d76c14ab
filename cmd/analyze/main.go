// Command analyze prints quick, human-readable heuristics about simulation
// profiles in the project's configs directory. It summarizes tank capacity,
// burn rate, engine runtime on a full tank, fill cost and duration, and
// flags station pairs placed suspiciously close together.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AnalysisProfile is a light struct for reading profile files used by analysis.
type AnalysisProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Fuel        struct {
		MaximumFuel    float64 `json:"maximum_fuel"`
		LossPerTick    float64 `json:"loss_per_tick"`
		TickIntervalMS int64   `json:"tick_interval_ms"`
		InitialFuel    float64 `json:"initial_fuel"`
	} `json:"fuel"`
	Refuel struct {
		PricePerUnit      float64 `json:"price_per_unit"`
		FillTimePerUnitMS int64   `json:"fill_time_per_unit_ms"`
		ResetTimeoutMS    int64   `json:"reset_timeout_ms"`
	} `json:"refuel"`
	Stations []AnalysisStation `json:"stations"`
}

// AnalysisStation is one configured station location.
type AnalysisStation struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Position struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"position"`
	Blip bool `json:"blip"`
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", dir, err)
		os.Exit(1)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fmt.Printf("\n=== Analyzing %s ===\n", entry.Name())
		analyzeProfile(filepath.Join(dir, entry.Name()))
	}
}

func analyzeProfile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var profile AnalysisProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", profile.Name)
	fmt.Printf("Tank Capacity: %.1f units (starts at %.1f)\n", profile.Fuel.MaximumFuel, profile.Fuel.InitialFuel)
	fmt.Printf("Burn Rate: %.2f units per %s tick\n",
		profile.Fuel.LossPerTick, time.Duration(profile.Fuel.TickIntervalMS)*time.Millisecond)

	if runtime := fullTankRuntime(&profile); runtime > 0 {
		fmt.Printf("Full Tank Runtime: %s of continuous engine time\n", runtime.Round(time.Second))
	} else {
		fmt.Println("WARNING: burn rate is zero, tank never empties")
	}

	fmt.Printf("Full Fill Cost: $%.2f\n", profile.Fuel.MaximumFuel*profile.Refuel.PricePerUnit)
	fillTime := time.Duration(profile.Refuel.FillTimePerUnitMS) * time.Millisecond * time.Duration(profile.Fuel.MaximumFuel)
	fmt.Printf("Full Fill Duration: %s\n", fillTime.Round(time.Second))

	offerWindow := time.Duration(profile.Refuel.ResetTimeoutMS) * time.Millisecond
	fmt.Printf("Offer Window: %s\n", offerWindow)

	fmt.Printf("Stations: %d\n", len(profile.Stations))
	for _, s := range profile.Stations {
		marker := ""
		if s.Blip {
			marker = " [blip]"
		}
		fmt.Printf("  - %s at (%.1f, %.1f)%s\n", s.Name, s.Position.X, s.Position.Y, marker)
	}

	for i := range profile.Stations {
		for j := i + 1; j < len(profile.Stations); j++ {
			d := stationDistance(profile.Stations[i], profile.Stations[j])
			if d < 50 {
				fmt.Printf("WARNING: stations %q and %q are only %.1f apart\n",
					profile.Stations[i].Name, profile.Stations[j].Name, d)
			}
		}
	}
}

// fullTankRuntime returns how long a full tank lasts with the engine on,
// or zero when the profile never burns fuel.
func fullTankRuntime(p *AnalysisProfile) time.Duration {
	if p.Fuel.LossPerTick <= 0 {
		return 0
	}
	ticks := p.Fuel.MaximumFuel / p.Fuel.LossPerTick
	return time.Duration(ticks * float64(p.Fuel.TickIntervalMS) * float64(time.Millisecond))
}

func stationDistance(a, b AnalysisStation) float64 {
	dx := a.Position.X - b.Position.X
	dy := a.Position.Y - b.Position.Y
	return math.Sqrt(dx*dx + dy*dy)
}
