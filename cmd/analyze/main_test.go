package main

import (
	"os"
	"testing"
	"time"
)

func sampleProfile() AnalysisProfile {
	var p AnalysisProfile
	p.Name = "Test Profile"
	p.Fuel.MaximumFuel = 100
	p.Fuel.LossPerTick = 0.15
	p.Fuel.TickIntervalMS = 5000
	p.Fuel.InitialFuel = 100
	p.Refuel.PricePerUnit = 2
	p.Refuel.FillTimePerUnitMS = 600
	p.Refuel.ResetTimeoutMS = 60000
	return p
}

func TestFullTankRuntime(t *testing.T) {
	p := sampleProfile()

	// 100 units / 0.15 per tick = ~666.7 ticks of 5s each
	got := fullTankRuntime(&p)
	ticks := 100.0 / 0.15
	want := time.Duration(ticks * 5000.0 * float64(time.Millisecond))
	if got != want {
		t.Errorf("fullTankRuntime() = %s, want %s", got, want)
	}
}

func TestFullTankRuntime_ZeroBurn(t *testing.T) {
	p := sampleProfile()
	p.Fuel.LossPerTick = 0

	if got := fullTankRuntime(&p); got != 0 {
		t.Errorf("Expected zero runtime for zero burn rate, got %s", got)
	}
}

func TestStationDistance(t *testing.T) {
	var a, b AnalysisStation
	a.Position.X, a.Position.Y = 0, 0
	b.Position.X, b.Position.Y = 3, 4

	if got := stationDistance(a, b); got != 5 {
		t.Errorf("stationDistance() = %f, want 5", got)
	}
}

func TestAnalyzeProfile_ValidFile(t *testing.T) {
	validProfile := `{
		"name": "Test Profile",
		"description": "Test tuning",
		"fuel": {
			"maximum_fuel": 100,
			"loss_per_tick": 0.15,
			"tick_interval_ms": 5000,
			"initial_fuel": 100
		},
		"refuel": {
			"price_per_unit": 2,
			"fill_time_per_unit_ms": 600,
			"reset_timeout_ms": 60000
		},
		"stations": [
			{"uid": "a", "name": "Alpha", "position": {"x": 0, "y": 0}, "blip": true},
			{"uid": "b", "name": "Bravo", "position": {"x": 10, "y": 10}}
		]
	}`

	tmpfile, err := os.CreateTemp("", "test_profile_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(validProfile)); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
	tmpfile.Close()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeProfile panicked: %v", r)
		}
	}()

	analyzeProfile(tmpfile.Name())
}

func TestAnalyzeProfile_InvalidFile(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeProfile panicked with invalid file: %v", r)
		}
	}()

	analyzeProfile("/non/existent/file.json")
}

func TestAnalyzeProfile_InvalidJSON(t *testing.T) {
	invalidJSON := `{"name": "test", invalid json}`

	tmpfile, err := os.CreateTemp("", "test_profile_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(invalidJSON)); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
	tmpfile.Close()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeProfile panicked with invalid JSON: %v", r)
		}
	}()

	analyzeProfile(tmpfile.Name())
}
