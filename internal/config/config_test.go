package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverlaysDefaults(t *testing.T) {
	src := []byte(`
budget           = 120
candidate_window = 0

weights {
  saidi       = 0.3
  health_risk = 0.35
}

feed {
  csv = "testdata/assets.csv"
}

server {
  listen = ":8080"
}
`)

	cfg, err := Parse(src, "planner.hcl", Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Budget != 120 || cfg.CandidateWindow != 0 {
		t.Fatalf("unexpected budget/window %.1f/%d", cfg.Budget, cfg.CandidateWindow)
	}
	if cfg.MaxItems != DefaultMaxItems {
		t.Fatalf("expected default max items, got %d", cfg.MaxItems)
	}
	if cfg.Weights.SAIDI != 0.3 || cfg.Weights.SAIFI != 0.25 || cfg.Weights.Cost != 0.10 || cfg.Weights.HealthRisk != 0.35 {
		t.Fatalf("unexpected weights %+v", cfg.Weights)
	}
	if cfg.CSVPath != "testdata/assets.csv" || cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected feed/server settings %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestParsePostgresFeed(t *testing.T) {
	src := []byte(`
feed {
  postgres {
    dsn      = "postgres://planner@localhost/grid"
    table    = "grid.assets"
    order_by = "row_no"
    columns = {
      hi   = "health_index"
      yb   = ""
    }
  }
}
`)

	cfg, err := Parse(src, "planner.hcl", Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Postgres.Enabled() || cfg.Postgres.Table != "grid.assets" || cfg.Postgres.OrderBy != "row_no" {
		t.Fatalf("unexpected postgres config %+v", cfg.Postgres)
	}
	if cfg.Postgres.Columns.Health != "health_index" || cfg.Postgres.Columns.Investment != "" || cfg.Postgres.Columns.ID != "id" {
		t.Fatalf("unexpected columns %+v", cfg.Postgres.Columns)
	}
}

func TestParseRejectsUnknownColumn(t *testing.T) {
	src := []byte(`
feed {
  postgres {
    dsn     = "postgres://localhost/grid"
    columns = { voltage = "kv" }
  }
}
`)
	_, err := Parse(src, "planner.hcl", Default())
	if err == nil || !strings.Contains(err.Error(), "voltage") {
		t.Fatalf("expected unknown column error, got %v", err)
	}
}

func TestParseRejectsUnknownAttribute(t *testing.T) {
	if _, err := Parse([]byte(`budjet = 10`), "planner.hcl", Default()); err == nil {
		t.Fatalf("expected decode error for unknown attribute")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.hcl")
	if err := os.WriteFile(path, []byte("max_items = 5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFile(path, Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxItems != 5 {
		t.Fatalf("expected max items 5, got %d", cfg.MaxItems)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.hcl"), Default()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.CSVPath = "assets.csv"

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero budget", func(c *Config) { c.Budget = 0 }, "budget"},
		{"negative weight", func(c *Config) { c.Weights.Cost = -1 }, "weight cost"},
		{"negative max items", func(c *Config) { c.MaxItems = -1 }, "max_items"},
		{"negative window", func(c *Config) { c.CandidateWindow = -2 }, "candidate_window"},
		{"no feed", func(c *Config) { c.CSVPath = "" }, "asset feed is required"},
		{"two feeds", func(c *Config) { c.Postgres.DSN = "postgres://x" }, "either"},
	}
	for _, tc := range cases {
		cfg := valid
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
