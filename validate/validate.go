// Command validate provides a small CLI that validates board position JSON
// files in the positions directory. It checks:
//   - JSON structure and required fields
//   - Layout shape (6 rows of 7 cells) and allowed characters (., A, B)
//   - Gravity: no token sits above an empty cell
//   - Token counts that alternating play can produce (A moves first)
//   - That no four in a row is already on the board
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validatePosition loads and validates a single position JSON file.
func validatePosition(filePath string) ValidationResult {
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

	var position engine.PositionFile
	if err := json.Unmarshal(data, &position); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if position.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing name")
	}

	board, err := engine.ParseBoard(position.Layout)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if err := engine.ValidateBoard(board); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if result.Valid {
		a := engine.CountTokens(board, engine.TokenA)
		b := engine.CountTokens(board, engine.TokenB)
		toMove := engine.TokenA
		if a > b {
			toMove = engine.TokenB
		}
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ %d tokens (A=%d, B=%d), %s to move", a+b, a, b, toMove))
		if full := engine.FullColumns(board); len(full) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Full columns: %v", full))
		}
	}

	return result
}

// main scans the positions directory (or the directory given as the first
// argument) for *.json files and validates each one, printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	positionDir := "positions"
	if len(os.Args) > 1 {
		positionDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(positionDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding position files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No position files found in %s\n", positionDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validatePosition(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All positions are valid!")
	} else {
		fmt.Println("❌ Some positions have errors")
		os.Exit(1)
	}
}
