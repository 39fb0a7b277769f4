package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"grid-asset-prioritizer/internal/asset"
	"grid-asset-prioritizer/internal/export"
	"grid-asset-prioritizer/internal/selection"
)

func buildAsset(id string, saidi, saifi, cost float64, health int, op asset.OperationType) asset.Asset {
	return asset.Asset{
		ID:            id,
		SAIDI:         saidi,
		SAIFI:         saifi,
		Cost:          cost,
		Group:         "Trafo",
		HealthUI:      health,
		RiskLabel:     asset.ClassifyRisk(health),
		OperationType: op,
	}
}

func TestSummarizeGroupsSelection(t *testing.T) {
	assets := []asset.Asset{
		buildAsset("1", 10, 5, 20, 80, asset.OperationInvestment),
		buildAsset("2", 8, 9, 10, 20, asset.OperationMaintenance),
		buildAsset("3", 2, 1, 30, 50, asset.OperationMaintenance),
	}
	result := selection.Select(assets, selection.FirstN(assets, 20), selection.DefaultWeights(), 25, 3)

	summary := summarize(assets, result)
	if summary.Candidates != 3 || summary.Selected != 1 {
		t.Fatalf("unexpected counts %+v", summary)
	}
	if summary.BudgetLeft != 15 {
		t.Fatalf("expected 15 budget left, got %.2f", summary.BudgetLeft)
	}
	if summary.ByRisk[asset.RiskHigh].Count != 1 || summary.ByRisk[asset.RiskHigh].Cost != 10 {
		t.Fatalf("unexpected risk breakdown %+v", summary.ByRisk)
	}
	if summary.ByOperation[asset.OperationMaintenance].Count != 1 {
		t.Fatalf("unexpected operation breakdown %+v", summary.ByOperation)
	}
	if summary.Unselected.Count != 2 || summary.Unselected.Cost != 50 {
		t.Fatalf("unexpected unselected totals %+v", summary.Unselected)
	}
	if summary.FeedByRisk[asset.RiskLow] != 1 || summary.FeedByRisk[asset.RiskMedium] != 1 {
		t.Fatalf("unexpected feed risk counts %+v", summary.FeedByRisk)
	}
}

func TestRunWritesReportAndOutputs(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "selection.json")
	exportPath := filepath.Join(dir, "assets.json")

	var out bytes.Buffer
	err := run([]string{
		"-input", filepath.Join("testdata", "assets.csv"),
		"-json", jsonPath,
		"-export",
		"-export-path", exportPath,
	}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Asset Selection Summary") {
		t.Fatalf("expected a summary, got:\n%s", out.String())
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read selection: %v", err)
	}
	var result selection.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("unmarshal selection: %v", err)
	}
	if result.Status != selection.StatusOK || result.Budget != 60 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.SelectedCount > 20 || result.UsedBudget > 60 {
		t.Fatalf("selection broke its limits: %+v", result)
	}
	var cost float64
	for _, item := range result.Selected {
		cost += item.Cost
	}
	if cost != result.UsedBudget {
		t.Fatalf("used budget %.2f does not match selected cost %.2f", result.UsedBudget, cost)
	}

	raw, err = os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var payload export.AssetsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if payload.Count != 25 || payload.Assets[0].ID != "1001" {
		t.Fatalf("unexpected export payload count=%d first=%s", payload.Count, payload.Assets[0].ID)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}
	for _, path := range paths {
		if err := run([]string{"-input", filepath.Join("testdata", "assets.csv"), "-json", path}, &bytes.Buffer{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	first, _ := os.ReadFile(paths[0])
	second, _ := os.ReadFile(paths[1])
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical selections, got\n%s\n%s", first, second)
	}
}

func TestParseArgsFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.hcl")
	src := "budget = 100\nmax_items = 5\nfeed {\n  csv = \"from-file.csv\"\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, _, err := parseArgs([]string{"-config", path, "-budget", "40", "-w-cost", "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Budget != 40 {
		t.Fatalf("expected flag budget 40, got %.1f", cfg.Budget)
	}
	if cfg.MaxItems != 5 || cfg.CSVPath != "from-file.csv" {
		t.Fatalf("expected file settings to survive, got %+v", cfg)
	}
	if cfg.Weights.Cost != 0 || cfg.Weights.HealthRisk != 0.40 {
		t.Fatalf("unexpected weights %+v", cfg.Weights)
	}
}

func TestParseArgsRequiresFeed(t *testing.T) {
	if _, _, err := parseArgs([]string{"-budget", "10"}); err == nil {
		t.Fatalf("expected error without an asset feed")
	}
	if _, _, err := parseArgs([]string{"-input", "x.csv", "-budget", "0"}); err == nil {
		t.Fatalf("expected error for zero budget")
	}
}
