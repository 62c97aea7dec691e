package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, dir
}

func writeMap(t *testing.T, dir, name string, cfg MapConfig) {
	t.Helper()
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("write map: %v", err)
	}
}

func TestNewManagerMissingDir(t *testing.T) {
	if _, err := NewManager(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing maps directory")
	}
	if _, err := NewManager(""); err != nil {
		t.Errorf("empty maps dir should be allowed: %v", err)
	}
}

func TestLoadBuiltins(t *testing.T) {
	m, _ := newTestManager(t)

	for _, name := range []string{"one", "two", "three"} {
		cfg, err := m.LoadMap(name)
		if err != nil {
			t.Fatalf("LoadMap(%s): %v", name, err)
		}
		if cfg.Name != name {
			t.Errorf("LoadMap(%s).Name = %q", name, cfg.Name)
		}
		if cfg.WinScore != 10 {
			t.Errorf("builtin %s win score = %d, want 10", name, cfg.WinScore)
		}
	}

	if _, err := m.LoadMap("volcano"); !errors.Is(err, ErrMapNotFound) {
		t.Errorf("unknown map error = %v, want ErrMapNotFound", err)
	}
}

func TestDiskOverridesBuiltin(t *testing.T) {
	m, dir := newTestManager(t)
	writeMap(t, dir, "one", MapConfig{
		Name:        "one",
		Description: "house rules",
		BallSpeed:   2.0,
		PaddleScale: 1.0,
		WinScore:    5,
	})

	cfg, err := m.LoadMap("one")
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if cfg.WinScore != 5 || cfg.Description != "house rules" {
		t.Errorf("disk override not applied: %+v", cfg)
	}
}

func TestLoadMapCaches(t *testing.T) {
	m, dir := newTestManager(t)
	writeMap(t, dir, "custom", MapConfig{
		Name: "custom", Description: "v1", BallSpeed: 1, PaddleScale: 1, WinScore: 3,
	})

	if _, err := m.LoadMap("custom"); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	// The cached definition survives file changes until the cache is
	// refreshed.
	writeMap(t, dir, "custom", MapConfig{
		Name: "custom", Description: "v2", BallSpeed: 1, PaddleScale: 1, WinScore: 7,
	})
	cfg, _ := m.LoadMap("custom")
	if cfg.WinScore != 3 {
		t.Errorf("WinScore = %d, want cached 3", cfg.WinScore)
	}

	m.RefreshCache()
	cfg, _ = m.LoadMap("custom")
	if cfg.WinScore != 7 {
		t.Errorf("WinScore after refresh = %d, want 7", cfg.WinScore)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	m, dir := newTestManager(t)
	writeMap(t, dir, "broken", MapConfig{
		Name: "broken", BallSpeed: 0, PaddleScale: 1, WinScore: 3,
	})

	if _, err := m.LoadMap("broken"); !errors.Is(err, ErrInvalidMap) {
		t.Errorf("invalid file error = %v, want ErrInvalidMap", err)
	}
}

func TestHas(t *testing.T) {
	m, _ := newTestManager(t)
	if !m.Has("two") {
		t.Error("Has(two) = false")
	}
	if m.Has("volcano") {
		t.Error("Has(volcano) = true")
	}
}

func TestListMaps(t *testing.T) {
	m, dir := newTestManager(t)
	writeMap(t, dir, "custom", MapConfig{
		Name: "custom", Description: "extra", BallSpeed: 1, PaddleScale: 1, WinScore: 3,
	})
	writeMap(t, dir, "one", MapConfig{
		Name: "one", Description: "override", BallSpeed: 1, PaddleScale: 1, WinScore: 5,
	})
	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}

	infos, err := m.ListMaps()
	if err != nil {
		t.Fatalf("ListMaps: %v", err)
	}
	if len(infos) != 4 {
		t.Fatalf("ListMaps len = %d, want 4 (three builtins + custom)", len(infos))
	}
	// Built-ins come first in catalog order; the override still lists as
	// built-in under its own name.
	for i, want := range []string{"one", "two", "three", "custom"} {
		if infos[i].Name != want {
			t.Errorf("infos[%d].Name = %q, want %q", i, infos[i].Name, want)
		}
	}
	if !infos[0].BuiltIn || infos[0].WinScore != 5 {
		t.Errorf("overridden builtin listing wrong: %+v", infos[0])
	}
	if infos[3].BuiltIn || infos[3].Filename != "custom.json" {
		t.Errorf("custom listing wrong: %+v", infos[3])
	}
}

func TestGetDefault(t *testing.T) {
	m, _ := newTestManager(t)
	cfg := m.GetDefault()
	if cfg == nil || cfg.Name != DefaultMapName {
		t.Errorf("GetDefault = %+v, want %q", cfg, DefaultMapName)
	}
}

func TestSaveMap(t *testing.T) {
	m, dir := newTestManager(t)

	cfg := &MapConfig{
		Name:        "tourney",
		Description: "tournament settings",
		BallSpeed:   1.5,
		PaddleScale: 0.9,
		WinScore:    15,
	}
	if err := m.SaveMap("tourney", cfg); err != nil {
		t.Fatalf("SaveMap: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tourney.json")); err != nil {
		t.Errorf("map file not written: %v", err)
	}

	loaded, err := m.LoadMap("tourney")
	if err != nil {
		t.Fatalf("LoadMap after save: %v", err)
	}
	if loaded.WinScore != 15 {
		t.Errorf("WinScore = %d, want 15", loaded.WinScore)
	}

	bad := &MapConfig{Name: "bad", BallSpeed: 9, PaddleScale: 1, WinScore: 1}
	if err := m.SaveMap("bad", bad); !errors.Is(err, ErrInvalidMap) {
		t.Errorf("SaveMap invalid error = %v, want ErrInvalidMap", err)
	}

	noDir, _ := NewManager("")
	if err := noDir.SaveMap("tourney", cfg); err == nil {
		t.Error("SaveMap without maps dir should fail")
	}
}

func TestValidateMapConfig(t *testing.T) {
	valid := MapConfig{
		Name: "ok", Description: "d", BallSpeed: 1, PaddleScale: 1, WinScore: 10,
	}

	tests := []struct {
		name    string
		mutate  func(*MapConfig)
		wantErr bool
	}{
		{"valid", func(c *MapConfig) {}, false},
		{"missing name", func(c *MapConfig) { c.Name = "" }, true},
		{"zero ball speed", func(c *MapConfig) { c.BallSpeed = 0 }, true},
		{"excessive ball speed", func(c *MapConfig) { c.BallSpeed = 5.1 }, true},
		{"zero paddle scale", func(c *MapConfig) { c.PaddleScale = 0 }, true},
		{"oversized paddle", func(c *MapConfig) { c.PaddleScale = 2.5 }, true},
		{"zero win score", func(c *MapConfig) { c.WinScore = 0 }, true},
		{"power-ups without kinds", func(c *MapConfig) { c.PowerUps = true }, true},
		{"unknown power-up", func(c *MapConfig) {
			c.PowerUps = true
			c.PowerUpKinds = []string{"teleport"}
		}, true},
		{"known power-ups", func(c *MapConfig) {
			c.PowerUps = true
			c.PowerUpKinds = []string{"speed_ball", "double_point"}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := ValidateMapConfig(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMapConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
