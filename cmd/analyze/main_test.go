package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
)

func writePosition(t *testing.T, name string, layout []string) string {
	t.Helper()
	data, err := json.Marshal(engine.PositionFile{Name: name, Layout: layout})
	if err != nil {
		t.Fatalf("Failed to marshal position: %v", err)
	}
	path := filepath.Join(t.TempDir(), "position.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write position: %v", err)
	}
	return path
}

func TestAnalyze_DoubleThreat(t *testing.T) {
	path := writePosition(t, "Double threat", []string{
		".......",
		".......",
		".......",
		".......",
		".......",
		"AAA.BBB",
	})

	analysis, err := analyze(path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if analysis.Name != "Double threat" {
		t.Errorf("Expected name 'Double threat', got '%s'", analysis.Name)
	}
	if analysis.CountA != 3 || analysis.CountB != 3 {
		t.Errorf("Expected 3 tokens each, got A=%d B=%d", analysis.CountA, analysis.CountB)
	}
	if analysis.Empty != engine.Cells-6 {
		t.Errorf("Expected %d empty cells, got %d", engine.Cells-6, analysis.Empty)
	}
	if analysis.ToMove != engine.TokenA {
		t.Errorf("Expected A to move, got %s", analysis.ToMove)
	}
	if !reflect.DeepEqual(analysis.WinningColumns, []int{4}) {
		t.Errorf("Expected winning column 4, got %v", analysis.WinningColumns)
	}
	if analysis.Problem != nil {
		t.Errorf("Expected no problem, got %v", analysis.Problem)
	}
}

func TestAnalyze_SecondPlayerToMove(t *testing.T) {
	path := writePosition(t, "Vertical", []string{
		".......",
		".......",
		".......",
		".B.....",
		".B....A",
		".B..AAA",
	})

	analysis, err := analyze(path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if analysis.ToMove != engine.TokenB {
		t.Errorf("Expected B to move, got %s", analysis.ToMove)
	}
	if !reflect.DeepEqual(analysis.WinningColumns, []int{2}) {
		t.Errorf("Expected winning column 2, got %v", analysis.WinningColumns)
	}
}

func TestAnalyze_FullColumns(t *testing.T) {
	path := writePosition(t, "Crowded", []string{
		"A.....B",
		"B.....A",
		"A.....B",
		"B.....A",
		"AB...BA",
		"BA...AB",
	})

	analysis, err := analyze(path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if !reflect.DeepEqual(analysis.FullColumns, []int{1, 7}) {
		t.Errorf("Expected full columns [1 7], got %v", analysis.FullColumns)
	}
	for _, c := range analysis.WinningColumns {
		if c == 1 || c == 7 {
			t.Errorf("Full column %d reported as a win", c)
		}
	}
}

func TestAnalyze_IllegalPosition(t *testing.T) {
	path := writePosition(t, "Floating", []string{
		".......",
		".......",
		".......",
		"...A...",
		".......",
		"...B...",
	})

	analysis, err := analyze(path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if analysis.Problem == nil {
		t.Fatal("Expected a problem for a floating token")
	}
	if analysis.WinningColumns != nil {
		t.Errorf("Expected no winning columns, got %v", analysis.WinningColumns)
	}
}

func TestAnalyze_InvalidFile(t *testing.T) {
	if _, err := analyze("/non/existent/file.json"); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{"name": "test", invalid json}`), 0644)
	if _, err := analyze(path); err == nil {
		t.Error("Expected error for invalid JSON")
	}

	short := writePosition(t, "Short", []string{"......."})
	if _, err := analyze(short); err == nil {
		t.Error("Expected error for a short layout")
	}
}

func TestAnalyzePosition_Output(t *testing.T) {
	path := writePosition(t, "Double threat", []string{
		".......",
		".......",
		".......",
		".......",
		".......",
		"AAA.BBB",
	})

	var buf bytes.Buffer
	analyzePosition(&buf, path)
	out := buf.String()

	expected := []string{
		"Name: Double threat",
		"🔴🔴🔴⚫⚪⚪⚪",
		"Tokens: A=3 B=3, empty cells: 36",
		"To move: A",
		"Full columns: none",
		"A wins by dropping in column 4",
	}
	for _, content := range expected {
		if !strings.Contains(out, content) {
			t.Errorf("Expected '%s' in output, got:\n%s", content, out)
		}
	}
}

func TestAnalyzePosition_Error(t *testing.T) {
	var buf bytes.Buffer
	analyzePosition(&buf, "/non/existent/file.json")

	if !strings.HasPrefix(buf.String(), "Error:") {
		t.Errorf("Expected error output, got: %s", buf.String())
	}
}

func TestFormatColumns(t *testing.T) {
	if got := formatColumns(nil); got != "none" {
		t.Errorf("Expected 'none', got '%s'", got)
	}
	if got := formatColumns([]int{1, 7}); got != "1, 7" {
		t.Errorf("Expected '1, 7', got '%s'", got)
	}
}
