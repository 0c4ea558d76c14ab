package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/openrp/fuel-stations/game/fuel"
	"github.com/openrp/fuel-stations/game/refuel"
	"github.com/openrp/fuel-stations/game/station"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// Profile is one complete server tuning: consumption, refueling economics,
// and the station list.
type Profile struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Fuel        fuel.Config       `json:"fuel"`
	Refuel      refuel.Config     `json:"refuel"`
	Stations    []station.Station `json:"stations"`
}

// Validate checks both tuning sections.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile name is required")
	}
	if err := p.Fuel.Validate(); err != nil {
		return fmt.Errorf("fuel: %w", err)
	}
	if err := p.Refuel.Validate(); err != nil {
		return fmt.Errorf("refuel: %w", err)
	}
	for i, s := range p.Stations {
		if s.Name == "" {
			return fmt.Errorf("station %d: name is required", i)
		}
	}
	return nil
}

// ProfileInfo summarizes one discoverable profile.
type ProfileInfo struct {
	Filename    string `json:"filename"`
	ProfileID   string `json:"profile_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Stations    int    `json:"stations"`
}

// profileFile is the on-disk shape. Durations are plain millisecond
// integers so profiles stay editable without Go duration syntax.
type profileFile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Fuel        struct {
		MaximumFuel       float64 `json:"maximum_fuel"`
		LossPerTick       float64 `json:"loss_per_tick"`
		TickIntervalMS    int64   `json:"tick_interval_ms"`
		InitialFuel       float64 `json:"initial_fuel"`
		PersistIntervalMS int64   `json:"persist_interval_ms"`
		DistanceThreshold float64 `json:"distance_threshold"`
	} `json:"fuel"`
	Refuel struct {
		MaximumFuel       float64 `json:"maximum_fuel"`
		PricePerUnit      float64 `json:"price_per_unit"`
		MinPurchase       float64 `json:"min_purchase"`
		FullThreshold     float64 `json:"full_threshold"`
		ResetTimeoutMS    int64   `json:"reset_timeout_ms"`
		FillTimePerUnitMS int64   `json:"fill_time_per_unit_ms"`
		TriggerRadius     float64 `json:"trigger_radius"`
		MaxPumpDistance   float64 `json:"max_pump_distance"`
	} `json:"refuel"`
	Stations []station.Station `json:"stations"`
}

func (f *profileFile) toProfile() *Profile {
	return &Profile{
		Name:        f.Name,
		Description: f.Description,
		Fuel: fuel.Config{
			MaximumFuel:       f.Fuel.MaximumFuel,
			LossPerTick:       f.Fuel.LossPerTick,
			TickInterval:      time.Duration(f.Fuel.TickIntervalMS) * time.Millisecond,
			InitialFuel:       f.Fuel.InitialFuel,
			PersistInterval:   time.Duration(f.Fuel.PersistIntervalMS) * time.Millisecond,
			DistanceThreshold: f.Fuel.DistanceThreshold,
		},
		Refuel: refuel.Config{
			MaximumFuel:     f.Refuel.MaximumFuel,
			PricePerUnit:    f.Refuel.PricePerUnit,
			MinPurchase:     f.Refuel.MinPurchase,
			FullThreshold:   f.Refuel.FullThreshold,
			ResetTimeout:    time.Duration(f.Refuel.ResetTimeoutMS) * time.Millisecond,
			FillTimePerUnit: time.Duration(f.Refuel.FillTimePerUnitMS) * time.Millisecond,
			TriggerRadius:   f.Refuel.TriggerRadius,
			MaxPumpDistance: f.Refuel.MaxPumpDistance,
		},
		Stations: f.Stations,
	}
}

func fromProfile(p *Profile) *profileFile {
	var f profileFile
	f.Name = p.Name
	f.Description = p.Description
	f.Fuel.MaximumFuel = p.Fuel.MaximumFuel
	f.Fuel.LossPerTick = p.Fuel.LossPerTick
	f.Fuel.TickIntervalMS = p.Fuel.TickInterval.Milliseconds()
	f.Fuel.InitialFuel = p.Fuel.InitialFuel
	f.Fuel.PersistIntervalMS = p.Fuel.PersistInterval.Milliseconds()
	f.Fuel.DistanceThreshold = p.Fuel.DistanceThreshold
	f.Refuel.MaximumFuel = p.Refuel.MaximumFuel
	f.Refuel.PricePerUnit = p.Refuel.PricePerUnit
	f.Refuel.MinPurchase = p.Refuel.MinPurchase
	f.Refuel.FullThreshold = p.Refuel.FullThreshold
	f.Refuel.ResetTimeoutMS = p.Refuel.ResetTimeout.Milliseconds()
	f.Refuel.FillTimePerUnitMS = p.Refuel.FillTimePerUnit.Milliseconds()
	f.Refuel.TriggerRadius = p.Refuel.TriggerRadius
	f.Refuel.MaxPumpDistance = p.Refuel.MaxPumpDistance
	f.Stations = p.Stations
	return &f
}

// Manager handles profile loading and caching
type Manager struct {
	configDir      string
	defaultProfile *Profile
	profiles       map[string]*Profile
	mu             sync.RWMutex
}

// NewManager creates a new profile manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		profiles:  make(map[string]*Profile),
	}

	if err := m.loadDefaultProfile(); err != nil {
		return nil, fmt.Errorf("failed to load default profile: %w", err)
	}

	return m, nil
}

// LoadProfile loads a profile by name
func (m *Manager) LoadProfile(name string) (*Profile, error) {
	m.mu.RLock()
	// Check cache first
	if profile, exists := m.profiles[name]; exists {
		m.mu.RUnlock()
		return profile, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if profile, exists := m.profiles[name]; exists {
		return profile, nil
	}

	// Add .json extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	configPath := filepath.Join(m.configDir, filename)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var file profileFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	profile := file.toProfile()
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	// Cache the profile
	m.profiles[name] = profile
	return profile, nil
}

// ListProfiles returns information about all available profiles
func (m *Manager) ListProfiles() ([]*ProfileInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var profiles []*ProfileInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		profile, err := m.LoadProfile(name)
		if err != nil {
			// Skip invalid profiles
			continue
		}

		profiles = append(profiles, &ProfileInfo{
			Filename:    entry.Name(),
			ProfileID:   name,
			Name:        profile.Name,
			Description: profile.Description,
			Stations:    len(profile.Stations),
		})
	}

	return profiles, nil
}

// GetDefault returns the default profile
func (m *Manager) GetDefault() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultProfile
}

// SetDefault sets the default profile by name
func (m *Manager) SetDefault(name string) error {
	profile, err := m.LoadProfile(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultProfile = profile
	return nil
}

// RefreshCache reloads all cached profiles from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.profiles = make(map[string]*Profile)
	m.mu.Unlock()

	return m.loadDefaultProfile()
}

// loadDefaultProfile loads the default profile, preferring classic.json,
// then the first discoverable profile, then built-in defaults.
func (m *Manager) loadDefaultProfile() error {
	profile, err := m.LoadProfile("classic")
	if err != nil {
		profiles, listErr := m.ListProfiles()
		if listErr != nil || len(profiles) == 0 {
			m.setDefault(m.createMinimalProfile())
			return nil
		}

		profile, err = m.LoadProfile(profiles[0].ProfileID)
		if err != nil {
			m.setDefault(m.createMinimalProfile())
			return nil
		}
	}

	m.setDefault(profile)
	return nil
}

func (m *Manager) setDefault(p *Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultProfile = p
}

// SaveProfile saves a profile to disk
func (m *Manager) SaveProfile(name string, profile *Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	configPath := filepath.Join(m.configDir, filename)

	data, err := json.MarshalIndent(fromProfile(profile), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.profiles[name] = profile
	m.mu.Unlock()

	return nil
}

// createMinimalProfile builds a valid profile from built-in defaults with a
// single unmarked station at the origin.
func (m *Manager) createMinimalProfile() *Profile {
	return &Profile{
		Name:        "default",
		Description: "Default minimal profile",
		Fuel:        fuel.DefaultConfig(),
		Refuel:      refuel.DefaultConfig(),
		Stations: []station.Station{
			{UID: "default-station", Name: "Fuel Station"},
		},
	}
}
