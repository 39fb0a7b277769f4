// Package config holds the planning configuration: budget, weights, selection
// limits and where the asset feed comes from. Values start from defaults, are
// overlaid by an optional HCL file, and finally by command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"grid-asset-prioritizer/internal/feed"
	"grid-asset-prioritizer/internal/selection"
)

const (
	DefaultBudget          = 60.0
	DefaultMaxItems        = 20
	DefaultCandidateWindow = 20
	DefaultListenAddr      = ":5000"
	DefaultExportPath      = "assets.json"
)

// Config is the full planning configuration.
type Config struct {
	Budget          float64
	Weights         selection.Weights
	MaxItems        int
	CandidateWindow int

	CSVPath  string
	Postgres PostgresConfig

	ListenAddr string
	ExportPath string
	LogFile    string
}

// PostgresConfig points at a Postgres table used as the asset feed.
type PostgresConfig struct {
	DSN     string
	Table   string
	OrderBy string
	Columns feed.Columns
}

// Enabled reports whether the feed should be read from Postgres.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.DSN) != ""
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Budget:          DefaultBudget,
		Weights:         selection.DefaultWeights(),
		MaxItems:        DefaultMaxItems,
		CandidateWindow: DefaultCandidateWindow,
		ListenAddr:      DefaultListenAddr,
		ExportPath:      DefaultExportPath,
		Postgres: PostgresConfig{
			Table:   "assets",
			Columns: feed.DefaultColumns(),
		},
	}
}

// Validate ensures the configuration can drive a selection run.
func (c Config) Validate() error {
	if c.Budget <= 0 {
		return errors.New("budget must be > 0")
	}
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.MaxItems < 0 {
		return errors.New("max_items must be >= 0")
	}
	if c.CandidateWindow < 0 {
		return errors.New("candidate_window must be >= 0")
	}
	if c.CSVPath == "" && !c.Postgres.Enabled() {
		return errors.New("an asset feed is required: set a CSV input or a postgres dsn")
	}
	if c.CSVPath != "" && c.Postgres.Enabled() {
		return errors.New("choose either a CSV input or a postgres feed, not both")
	}
	if c.Postgres.Enabled() && strings.TrimSpace(c.Postgres.Table) == "" {
		return errors.New("postgres table is required")
	}
	return nil
}

type hclFile struct {
	Budget          *float64    `hcl:"budget,optional"`
	MaxItems        *int        `hcl:"max_items,optional"`
	CandidateWindow *int        `hcl:"candidate_window,optional"`
	Weights         *hclWeights `hcl:"weights,block"`
	Feed            *hclFeed    `hcl:"feed,block"`
	Server          *hclServer  `hcl:"server,block"`
	Export          *hclExport  `hcl:"export,block"`
	Logging         *hclLogging `hcl:"logging,block"`
}

type hclWeights struct {
	SAIDI      *float64 `hcl:"saidi,optional"`
	SAIFI      *float64 `hcl:"saifi,optional"`
	Cost       *float64 `hcl:"cost,optional"`
	HealthRisk *float64 `hcl:"health_risk,optional"`
}

type hclFeed struct {
	CSV      *string      `hcl:"csv,optional"`
	Postgres *hclPostgres `hcl:"postgres,block"`
}

type hclPostgres struct {
	DSN     string            `hcl:"dsn"`
	Table   *string           `hcl:"table,optional"`
	OrderBy *string           `hcl:"order_by,optional"`
	Columns map[string]string `hcl:"columns,optional"`
}

type hclServer struct {
	Listen *string `hcl:"listen,optional"`
}

type hclExport struct {
	Path *string `hcl:"path,optional"`
}

type hclLogging struct {
	File *string `hcl:"file,optional"`
}

// LoadFile overlays the settings of an HCL file onto base.
func LoadFile(path string, base Config) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return base, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	return decode(file.Body, path, base)
}

// Parse overlays the settings of HCL source onto base. filename is used in diagnostics.
func Parse(src []byte, filename string, base Config) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return base, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}
	return decode(file.Body, filename, base)
}

func decode(body hcl.Body, filename string, base Config) (Config, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(body, nil, &parsed); diags.HasErrors() {
		return base, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}

	cfg := base
	setFloat(&cfg.Budget, parsed.Budget)
	setInt(&cfg.MaxItems, parsed.MaxItems)
	setInt(&cfg.CandidateWindow, parsed.CandidateWindow)

	if w := parsed.Weights; w != nil {
		setFloat(&cfg.Weights.SAIDI, w.SAIDI)
		setFloat(&cfg.Weights.SAIFI, w.SAIFI)
		setFloat(&cfg.Weights.Cost, w.Cost)
		setFloat(&cfg.Weights.HealthRisk, w.HealthRisk)
	}
	if f := parsed.Feed; f != nil {
		setString(&cfg.CSVPath, f.CSV)
		if pg := f.Postgres; pg != nil {
			cfg.Postgres.DSN = pg.DSN
			setString(&cfg.Postgres.Table, pg.Table)
			setString(&cfg.Postgres.OrderBy, pg.OrderBy)
			columns, err := applyColumns(cfg.Postgres.Columns, pg.Columns)
			if err != nil {
				return base, fmt.Errorf("config file %s: %w", filename, err)
			}
			cfg.Postgres.Columns = columns
		}
	}
	if s := parsed.Server; s != nil {
		setString(&cfg.ListenAddr, s.Listen)
	}
	if e := parsed.Export; e != nil {
		setString(&cfg.ExportPath, e.Path)
	}
	if l := parsed.Logging; l != nil {
		setString(&cfg.LogFile, l.File)
	}
	return cfg, nil
}

// applyColumns renames feed columns. Keys are canonical field names.
func applyColumns(columns feed.Columns, overrides map[string]string) (feed.Columns, error) {
	for key, name := range overrides {
		switch key {
		case feed.ColumnID:
			columns.ID = name
		case feed.ColumnSAIDI:
			columns.SAIDI = name
		case feed.ColumnSAIFI:
			columns.SAIFI = name
		case feed.ColumnHealth:
			columns.Health = name
		case feed.ColumnCost:
			columns.Cost = name
		case feed.ColumnGroup:
			columns.Group = name
		case feed.ColumnCategory:
			columns.Category = name
		case feed.ColumnInvestment:
			columns.Investment = name
		default:
			return columns, fmt.Errorf("unknown feed column %q", key)
		}
	}
	return columns, nil
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
