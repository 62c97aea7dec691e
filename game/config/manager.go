package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrMapNotFound = errors.New("map not found")
	ErrInvalidMap  = errors.New("invalid map definition")
)

// MapConfig defines one playable Pong map: the tuning the two clients need
// to agree on before the countdown starts.
type MapConfig struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	BallSpeed    float64  `json:"ball_speed"`
	PaddleScale  float64  `json:"paddle_scale"`
	WinScore     int      `json:"win_score"`
	PowerUps     bool     `json:"power_ups"`
	PowerUpKinds []string `json:"power_up_kinds,omitempty"`
	Theme        string   `json:"theme"`
}

// MapInfo is the listing view of a map definition.
type MapInfo struct {
	Filename    string `json:"filename,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	WinScore    int    `json:"win_score"`
	PowerUps    bool   `json:"power_ups"`
	BuiltIn     bool   `json:"built_in"`
}

// Manager handles map definition loading and caching. The three classic
// maps are always available; a maps directory may add or override entries
// with JSON files.
type Manager struct {
	mapsDir string
	maps    map[string]*MapConfig
	mu      sync.RWMutex
}

// NewManager creates a map catalog. mapsDir may be empty to serve only the
// built-in maps; a non-empty directory must exist.
func NewManager(mapsDir string) (*Manager, error) {
	if mapsDir != "" {
		if _, err := os.Stat(mapsDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("maps directory does not exist: %s", mapsDir)
		}
	}

	return &Manager{
		mapsDir: mapsDir,
		maps:    make(map[string]*MapConfig),
	}, nil
}

// LoadMap loads a map definition by name, preferring a JSON file over the
// built-in catalog so deployments can override the classics.
func (m *Manager) LoadMap(name string) (*MapConfig, error) {
	m.mu.RLock()
	if cfg, exists := m.maps[name]; exists {
		m.mu.RUnlock()
		return cfg, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cfg, exists := m.maps[name]; exists {
		return cfg, nil
	}

	cfg, err := m.loadFromDisk(name)
	if err != nil {
		if !errors.Is(err, ErrMapNotFound) {
			return nil, err
		}
		builtin, ok := builtinMaps[name]
		if !ok {
			return nil, ErrMapNotFound
		}
		copy := builtin
		cfg = &copy
	}

	m.maps[name] = cfg
	return cfg, nil
}

// Has reports whether a map by this name can be loaded.
func (m *Manager) Has(name string) bool {
	_, err := m.LoadMap(name)
	return err == nil
}

func (m *Manager) loadFromDisk(name string) (*MapConfig, error) {
	if m.mapsDir == "" {
		return nil, ErrMapNotFound
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.mapsDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	var cfg MapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse map file: %w", err)
	}
	if err := ValidateMapConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	return &cfg, nil
}

// ListMaps returns information about every available map, built-ins first.
func (m *Manager) ListMaps() ([]*MapInfo, error) {
	var maps []*MapInfo
	seen := make(map[string]bool)

	for _, name := range builtinOrder {
		cfg, err := m.LoadMap(name)
		if err != nil {
			continue
		}
		maps = append(maps, &MapInfo{
			Name:        name,
			Description: cfg.Description,
			WinScore:    cfg.WinScore,
			PowerUps:    cfg.PowerUps,
			BuiltIn:     true,
		})
		seen[name] = true
	}

	if m.mapsDir == "" {
		return maps, nil
	}

	entries, err := os.ReadDir(m.mapsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read maps directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		if seen[name] {
			continue
		}

		cfg, err := m.LoadMap(name)
		if err != nil {
			// Skip invalid map files
			continue
		}

		maps = append(maps, &MapInfo{
			Filename:    entry.Name(),
			Name:        name,
			Description: cfg.Description,
			WinScore:    cfg.WinScore,
			PowerUps:    cfg.PowerUps,
		})
	}

	return maps, nil
}

// GetDefault returns the default map definition.
func (m *Manager) GetDefault() *MapConfig {
	cfg, err := m.LoadMap(DefaultMapName)
	if err != nil {
		copy := builtinMaps[DefaultMapName]
		return &copy
	}
	return cfg
}

// SaveMap validates and writes a map definition to the maps directory and
// refreshes the cache entry.
func (m *Manager) SaveMap(name string, cfg *MapConfig) error {
	if m.mapsDir == "" {
		return errors.New("no maps directory configured")
	}
	if err := ValidateMapConfig(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.mapsDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write map file: %w", err)
	}

	m.mu.Lock()
	m.maps[name] = cfg
	m.mu.Unlock()
	return nil
}

// RefreshCache drops every cached map so the next load re-reads disk.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps = make(map[string]*MapConfig)
}

// ValidateMapConfig checks a map definition for structural sanity.
func ValidateMapConfig(cfg *MapConfig) error {
	if cfg.Name == "" {
		return errors.New("name is required")
	}
	if cfg.BallSpeed <= 0 || cfg.BallSpeed > 5 {
		return errors.New("ball_speed must be in (0, 5]")
	}
	if cfg.PaddleScale <= 0 || cfg.PaddleScale > 2 {
		return errors.New("paddle_scale must be in (0, 2]")
	}
	if cfg.WinScore <= 0 {
		return errors.New("win_score must be positive")
	}
	if cfg.PowerUps && len(cfg.PowerUpKinds) == 0 {
		return errors.New("power_ups enabled but no power_up_kinds listed")
	}
	for _, kind := range cfg.PowerUpKinds {
		if !knownPowerUps[kind] {
			return fmt.Errorf("unknown power-up kind %q", kind)
		}
	}
	return nil
}

// DefaultMapName is the map used when no preference is expressed.
const DefaultMapName = "one"

var knownPowerUps = map[string]bool{
	"speed_ball":    true,
	"grow_paddle":   true,
	"shrink_paddle": true,
	"double_point":  true,
}

var builtinOrder = []string{"one", "two", "three"}

var builtinMaps = map[string]MapConfig{
	"one": {
		Name:        "one",
		Description: "Classic arena, no frills",
		BallSpeed:   1.0,
		PaddleScale: 1.0,
		WinScore:    10,
		Theme:       "classic",
	},
	"two": {
		Name:         "two",
		Description:  "Faster ball with power-ups",
		BallSpeed:    1.4,
		PaddleScale:  1.0,
		WinScore:     10,
		PowerUps:     true,
		PowerUpKinds: []string{"speed_ball", "grow_paddle"},
		Theme:        "neon",
	},
	"three": {
		Name:         "three",
		Description:  "Small paddles, every power-up",
		BallSpeed:    1.2,
		PaddleScale:  0.7,
		WinScore:     10,
		PowerUps:     true,
		PowerUpKinds: []string{"speed_ball", "grow_paddle", "shrink_paddle", "double_point"},
		Theme:        "retro",
	},
}
