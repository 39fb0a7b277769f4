package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grid-asset-prioritizer/internal/api"
	"grid-asset-prioritizer/internal/asset"
	"grid-asset-prioritizer/internal/config"
	"grid-asset-prioritizer/internal/export"
	"grid-asset-prioritizer/internal/feed"
	"grid-asset-prioritizer/internal/logging"
	"grid-asset-prioritizer/internal/metrics"
	"grid-asset-prioritizer/internal/selection"
)

type options struct {
	configPath    string
	jsonPath      string
	export        bool
	serve         bool
	verbose       bool
	topN          int
	showAll       bool
	unselectedTop int
	showAllUnsel  bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		exitWith(err.Error())
	}
}

func exitWith(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	os.Exit(1)
}

func run(args []string, stdout io.Writer) error {
	cfg, opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	lg, err := logging.New(cfg.LogFile, level)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	defer lg.Close()
	log := lg.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, warnings, err := loadFeed(ctx, cfg)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		log.Warn("feed row skipped", "reason", warning)
	}
	log.Debug("feed loaded", "records", len(records), "warnings", len(warnings))

	plan := selection.Plan{
		Budget:          cfg.Budget,
		Weights:         cfg.Weights,
		MaxItems:        cfg.MaxItems,
		CandidateWindow: cfg.CandidateWindow,
	}
	if opts.serve {
		return serve(ctx, cfg, plan, records, log)
	}
	return report(stdout, cfg, opts, plan, records, warnings)
}

// parseArgs layers defaults, the optional HCL file and explicitly set flags.
func parseArgs(args []string) (config.Config, options, error) {
	defaults := config.Default()
	fs := flag.NewFlagSet("grid-asset-prioritizer", flag.ContinueOnError)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Path to an HCL planning config file")
	inputPath := fs.String("input", "", "Path to asset CSV file")
	pgDSN := fs.String("pg-dsn", "", "Postgres connection string for the asset table")
	pgTable := fs.String("pg-table", defaults.Postgres.Table, "Postgres asset table")
	pgOrderBy := fs.String("pg-order-by", "", "Column giving the canonical asset order (defaults to id)")
	budget := fs.Float64("budget", defaults.Budget, "Total budget")
	maxItems := fs.Int("max-items", defaults.MaxItems, "Maximum number of assets to select")
	window := fs.Int("window", defaults.CandidateWindow, "Number of leading assets eligible for selection (0 = all)")
	wSAIDI := fs.Float64("w-saidi", defaults.Weights.SAIDI, "Weight for SAIDI")
	wSAIFI := fs.Float64("w-saifi", defaults.Weights.SAIFI, "Weight for SAIFI")
	wCost := fs.Float64("w-cost", defaults.Weights.Cost, "Weight for cost")
	wHealth := fs.Float64("w-health", defaults.Weights.HealthRisk, "Weight for health risk")
	listen := fs.String("listen", defaults.ListenAddr, "Listen address in serve mode")
	exportPath := fs.String("export-path", defaults.ExportPath, "Path of the asset snapshot")
	logFile := fs.String("log-file", "", "Optional log file in addition to stderr")
	fs.StringVar(&opts.jsonPath, "json", "", "Optional path to write the selection result as JSON")
	fs.BoolVar(&opts.export, "export", false, "Write the asset snapshot to -export-path")
	fs.BoolVar(&opts.serve, "serve", false, "Serve the HTTP API instead of printing a report")
	fs.BoolVar(&opts.verbose, "v", false, "Enable debug logging")
	fs.IntVar(&opts.topN, "top", 10, "Number of selected assets to display")
	fs.BoolVar(&opts.showAll, "all", false, "Show all selected assets")
	fs.IntVar(&opts.unselectedTop, "unselected", 10, "Number of unselected candidates to display")
	fs.BoolVar(&opts.showAllUnsel, "unselected-all", false, "Show all unselected candidates")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, opts, err
	}

	cfg := defaults
	if opts.configPath != "" {
		loaded, err := config.LoadFile(opts.configPath, defaults)
		if err != nil {
			return config.Config{}, opts, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.CSVPath = *inputPath
		case "pg-dsn":
			cfg.Postgres.DSN = *pgDSN
		case "pg-table":
			cfg.Postgres.Table = *pgTable
		case "pg-order-by":
			cfg.Postgres.OrderBy = *pgOrderBy
		case "budget":
			cfg.Budget = *budget
		case "max-items":
			cfg.MaxItems = *maxItems
		case "window":
			cfg.CandidateWindow = *window
		case "w-saidi":
			cfg.Weights.SAIDI = *wSAIDI
		case "w-saifi":
			cfg.Weights.SAIFI = *wSAIFI
		case "w-cost":
			cfg.Weights.Cost = *wCost
		case "w-health":
			cfg.Weights.HealthRisk = *wHealth
		case "listen":
			cfg.ListenAddr = *listen
		case "export-path":
			cfg.ExportPath = *exportPath
		case "log-file":
			cfg.LogFile = *logFile
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, opts, err
	}
	return cfg, opts, nil
}

func loadFeed(ctx context.Context, cfg config.Config) ([]asset.Record, []string, error) {
	if !cfg.Postgres.Enabled() {
		return feed.LoadCSV(cfg.CSVPath)
	}
	pool, err := feed.OpenPostgres(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Close()

	source := feed.PostgresSource{
		DB:      pool,
		Table:   cfg.Postgres.Table,
		OrderBy: cfg.Postgres.OrderBy,
		Columns: cfg.Postgres.Columns,
	}
	return source.Load(ctx)
}

func report(w io.Writer, cfg config.Config, opts options, plan selection.Plan, records []asset.Record, warnings []string) error {
	assets, err := asset.Build(records)
	if err != nil {
		return err
	}
	result := plan.Run(assets)

	if len(warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warning := range warnings {
			fmt.Fprintf(w, "- %s\n", warning)
		}
		fmt.Fprintln(w)
	}

	summary := summarize(assets, result)
	printSummary(w, summary)
	printSelected(w, result, opts.topN, opts.showAll)
	printUnselected(w, result, opts.unselectedTop, opts.showAllUnsel)

	if opts.jsonPath != "" {
		if err := writeJSON(opts.jsonPath, result); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nJSON written to %s\n", opts.jsonPath)
	}
	if opts.export {
		if err := export.WriteFile(cfg.ExportPath, export.NewAssetsPayload(cfg.Budget, assets)); err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s written.\n", cfg.ExportPath)
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config, plan selection.Plan, records []asset.Record, log *slog.Logger) error {
	m := metrics.New()
	m.SetFeedSize(len(records))

	h := &api.Handlers{
		Log:        log,
		Metrics:    m,
		Records:    records,
		Plan:       plan,
		ExportPath: cfg.ExportPath,
	}
	srv := api.NewServer(cfg.ListenAddr, log, h, os.Stdout)
	log.Info("config loaded", "listen", cfg.ListenAddr, "budget", cfg.Budget, "max_items", cfg.MaxItems, "window", cfg.CandidateWindow)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

func writeJSON(path string, result selection.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create JSON output: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("unable to write JSON output: %w", err)
	}
	return nil
}
