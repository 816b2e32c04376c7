package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/okian/sportlife/internal/batch"
	"github.com/okian/sportlife/internal/config"
	"github.com/okian/sportlife/pkg/logger"
)

// Default configuration constants.
const (
	defaultCareers = 100
	defaultSeasons = 20
	defaultSeed    = 1
)

func main() {
	var (
		careers = flag.Int("careers", defaultCareers, "Number of independent careers")
		seasons = flag.Int("seasons", defaultSeasons, "Seasons per career")
		workers = flag.Int("workers", runtime.NumCPU(), "Careers played at the same time")
		seed    = flag.Int64("seed", defaultSeed, "Seed of the first career")
		output  = flag.String("output", "", "Write the JSON report to this file")
		verbose = flag.Bool("verbose", false, "Log every career as it finishes")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		batch.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	base, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(base.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	cfg := &batch.Config{
		Base:     base,
		Careers:  *careers,
		Seasons:  *seasons,
		Workers:  *workers,
		BaseSeed: *seed,
		Output:   *output,
		Verbose:  *verbose,
	}
	if _, err := batch.Run(ctx, cfg, logger.Named("batch")); err != nil {
		logger.Get().Error(ctx, "batch failed", logger.Error(err))
		os.Exit(1)
	}
}
