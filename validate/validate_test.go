package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMapFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write map file: %v", err)
	}
	return path
}

func TestValidateMapFile_Valid(t *testing.T) {
	validMap := `{
		"name": "sunset",
		"description": "Slow classic arena",
		"ball_speed": 0.8,
		"paddle_scale": 1.2,
		"win_score": 7,
		"power_ups": true,
		"power_up_kinds": ["speed_ball", "grow_paddle"],
		"theme": "sunset"
	}`

	path := writeMapFile(t, "sunset.json", validMap)
	result := validateMapFile(path)
	if !result.Valid {
		t.Errorf("Expected valid map, but got errors: %v", result.Errors)
	}
	if result.Name != "sunset" {
		t.Errorf("Expected name sunset, got %s", result.Name)
	}
}

func TestValidateMapFile_InvalidJSON(t *testing.T) {
	path := writeMapFile(t, "broken.json", `{"name": "broken", invalid json}`)

	result := validateMapFile(path)
	if result.Valid {
		t.Error("Expected invalid result for malformed JSON")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Invalid JSON") {
		t.Errorf("Expected JSON error, got %v", result.Errors)
	}
}

func TestValidateMapFile_MissingFile(t *testing.T) {
	result := validateMapFile("/nonexistent/map.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
}

func TestValidateMapFile_BadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "zero ball speed",
			content: `{"name":"slow","description":"x","ball_speed":0,"paddle_scale":1,"win_score":10}`,
			wantErr: "ball_speed",
		},
		{
			name:    "oversized paddle",
			content: `{"name":"slow","description":"x","ball_speed":1,"paddle_scale":3,"win_score":10}`,
			wantErr: "paddle_scale",
		},
		{
			name:    "unknown power-up",
			content: `{"name":"slow","description":"x","ball_speed":1,"paddle_scale":1,"win_score":10,"power_ups":true,"power_up_kinds":["teleport"]}`,
			wantErr: "power-up",
		},
		{
			name:    "missing description",
			content: `{"name":"slow","ball_speed":1,"paddle_scale":1,"win_score":10}`,
			wantErr: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMapFile(t, "slow.json", tt.content)
			result := validateMapFile(path)
			if result.Valid {
				t.Fatal("Expected invalid result")
			}
			found := false
			for _, e := range result.Errors {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error mentioning %q, got %v", tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidateMapFile_NameFilenameMismatch(t *testing.T) {
	content := `{"name":"aurora","description":"x","ball_speed":1,"paddle_scale":1,"win_score":10}`
	path := writeMapFile(t, "sunset.json", content)

	result := validateMapFile(path)
	if result.Valid {
		t.Error("Expected mismatch to be invalid")
	}
}

func TestCheckDuplicates(t *testing.T) {
	results := []ValidationResult{
		{File: "a.json", Name: "arena"},
		{File: "b.json", Name: "arena"},
		{File: "c.json", Name: "other"},
	}

	dups := checkDuplicates(results)
	if len(dups) != 1 {
		t.Fatalf("Expected 1 duplicate, got %d: %v", len(dups), dups)
	}
	if !strings.Contains(dups[0], "arena") {
		t.Errorf("Unexpected duplicate message: %s", dups[0])
	}
}
