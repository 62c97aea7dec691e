// Command validate checks map definition JSON files in the ../maps
// directory. It verifies:
//   - JSON structure and required fields
//   - Value ranges (ball speed, paddle scale, win score)
//   - Power-up kinds against the known set
//   - Filename / name agreement and duplicate names across files
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/frfrance/pong-arena/game/config"
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File   string
	Name   string
	Valid  bool
	Errors []string
}

// validateMapFile loads and validates a single map definition JSON file.
func validateMapFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var cfg config.MapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}
	result.Name = cfg.Name

	if err := config.ValidateMapConfig(&cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}

	if cfg.Description == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "description is required")
	}

	base := strings.TrimSuffix(result.File, ".json")
	if cfg.Name != "" && cfg.Name != base {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("name %q does not match filename %q", cfg.Name, base))
	}

	return result
}

// checkDuplicates flags map names claimed by more than one file.
func checkDuplicates(results []ValidationResult) []string {
	seen := make(map[string]string)
	var dups []string
	for _, r := range results {
		if r.Name == "" {
			continue
		}
		if prev, ok := seen[r.Name]; ok {
			dups = append(dups, fmt.Sprintf("map name %q claimed by both %s and %s", r.Name, prev, r.File))
			continue
		}
		seen[r.Name] = r.File
	}
	return dups
}

func main() {
	mapsDir := "../maps"
	if len(os.Args) > 1 {
		mapsDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(mapsDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding map files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No map files found in %s\n", mapsDir)
		return
	}

	allValid := true
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		result := validateMapFile(file)
		results = append(results, result)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	for _, dup := range checkDuplicates(results) {
		allValid = false
		fmt.Println("❌ " + dup)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All map definitions are valid!")
	} else {
		fmt.Println("❌ Some map definitions have errors")
		os.Exit(1)
	}
}
