package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soltixdb/cyclix/internal/config"
	"github.com/soltixdb/cyclix/internal/loader"
	"github.com/soltixdb/cyclix/internal/logging"
	"github.com/soltixdb/cyclix/internal/pipeline"
	"github.com/soltixdb/cyclix/internal/report"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	gdp := flag.String("gdp", "", "GDP source location, overrides analysis.gdp.location")
	government := flag.String("government", "", "Government spending source location (optional)")
	outDir := flag.String("output", "", "Artifact directory, overrides output.dir")
	save := flag.Bool("save", false, "Write table.csv, volatility.txt, regressions.txt and result.json")
	asJSON := flag.Bool("json", false, "Print the result document as JSON instead of tables")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall run timeout")

	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *gdp != "" {
		cfg.Analysis.GDP.Location = *gdp
	}
	if *government != "" {
		cfg.Analysis.Government.Location = *government
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *save {
		cfg.Output.Save = true
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	if err := run(cfg, logger, *asJSON, *timeout); err != nil {
		logger.Error("Analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger, asJSON bool, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := []loader.Option{loader.WithLogger(logger)}
	cache, err := loader.NewCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
		opts = append(opts, loader.WithCache(cache, cfg.Cache.TTL))
		logger.Info("Payload cache enabled", "type", cfg.Cache.Type)
	}

	ctx = logging.WithLogger(ctx, logger)
	runner := pipeline.NewRunner(cfg.Analysis, loader.New(opts...), nil)
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		if err := report.WriteJSON(os.Stdout, report.NewDocument(res, false)); err != nil {
			return err
		}
	} else if err := report.Print(os.Stdout, res, cfg.Output.Precision); err != nil {
		return err
	}

	if cfg.Output.Save {
		paths, err := report.Save(cfg.Output.Dir, res, cfg.Output.Precision)
		if err != nil {
			return err
		}
		logger.Info("Artifacts written", "dir", cfg.Output.Dir, "files", len(paths))
	}
	return nil
}
