package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openrp/fuel-stations/game/config"
)

const validProfileJSON = `{
	"name": "Test Profile",
	"description": "Test tuning",
	"fuel": {
		"maximum_fuel": 100,
		"loss_per_tick": 0.15,
		"tick_interval_ms": 5000,
		"initial_fuel": 100,
		"persist_interval_ms": 15000,
		"distance_threshold": 5
	},
	"refuel": {
		"maximum_fuel": 100,
		"price_per_unit": 2,
		"min_purchase": 2,
		"full_threshold": 99,
		"reset_timeout_ms": 60000,
		"fill_time_per_unit_ms": 600,
		"trigger_radius": 2,
		"max_pump_distance": 4
	},
	"stations": [
		{"uid": "a", "name": "Alpha", "position": {"x": 0, "y": 0, "z": 0}, "blip": true},
		{"uid": "b", "name": "Bravo", "position": {"x": 100, "y": 100, "z": 0}}
	]
}`

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
}

func newTestManager(t *testing.T, dir string) *config.Manager {
	t.Helper()
	manager, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return manager
}

func TestValidateProfile_Valid(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "test.json", validProfileJSON)

	result := validateProfile(newTestManager(t, dir), "test.json")
	if !result.Valid {
		t.Errorf("Expected valid profile, but got notes: %v", result.Notes)
	}

	if result.File != "test.json" {
		t.Errorf("Expected file name test.json, got %s", result.File)
	}
}

func TestValidateProfile_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "broken.json", `{"name": "test", invalid json}`)

	result := validateProfile(newTestManager(t, dir), "broken.json")
	if result.Valid {
		t.Error("Expected invalid result for broken JSON")
	}
}

func TestValidateProfile_BadTuning(t *testing.T) {
	bad := strings.Replace(validProfileJSON, `"loss_per_tick": 0.15`, `"loss_per_tick": -1`, 1)

	dir := t.TempDir()
	writeProfile(t, dir, "bad.json", bad)

	result := validateProfile(newTestManager(t, dir), "bad.json")
	if result.Valid {
		t.Error("Expected invalid result for negative burn rate")
	}

	found := false
	for _, note := range result.Notes {
		if strings.Contains(note, "Invalid profile") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected invalid-profile note, got: %v", result.Notes)
	}
}

func TestValidateProfile_DuplicateStationUID(t *testing.T) {
	dup := strings.Replace(validProfileJSON, `"uid": "b"`, `"uid": "a"`, 1)

	dir := t.TempDir()
	writeProfile(t, dir, "dup.json", dup)

	result := validateProfile(newTestManager(t, dir), "dup.json")
	if result.Valid {
		t.Error("Expected invalid result for duplicate station UID")
	}
}

func TestValidateProfile_DuplicateStationPosition(t *testing.T) {
	dup := strings.Replace(validProfileJSON, `"position": {"x": 100, "y": 100, "z": 0}`, `"position": {"x": 0, "y": 0, "z": 0}`, 1)

	dir := t.TempDir()
	writeProfile(t, dir, "dup.json", dup)

	result := validateProfile(newTestManager(t, dir), "dup.json")
	if result.Valid {
		t.Error("Expected invalid result for duplicate station position")
	}
}

func TestValidateProfile_CapacityMismatchNote(t *testing.T) {
	mismatch := strings.Replace(validProfileJSON, `"maximum_fuel": 100,
		"price_per_unit": 2`, `"maximum_fuel": 80,
		"price_per_unit": 2`, 1)

	dir := t.TempDir()
	writeProfile(t, dir, "mismatch.json", mismatch)

	result := validateProfile(newTestManager(t, dir), "mismatch.json")
	if !result.Valid {
		t.Errorf("Capacity mismatch should be a note, not an error: %v", result.Notes)
	}

	found := false
	for _, note := range result.Notes {
		if strings.Contains(note, "differs from fuel capacity") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected capacity mismatch note, got: %v", result.Notes)
	}
}

func TestValidateProfile_Missing(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "present.json", validProfileJSON)

	result := validateProfile(newTestManager(t, dir), "absent.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
}
