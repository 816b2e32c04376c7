package batch

import "os"

// ShowHelp prints usage information for the batch tool.
func ShowHelp() {
	os.Stdout.WriteString(`Sportlife Batch Runner
======================

Plays many independent careers concurrently and reports how championship
titles were distributed. Simulation settings come from the usual layers
(defaults, .env, SPORTLIFE_CONFIG file, SPORTLIFE_ environment variables);
pacing and the keyboard are always off.

Usage:
  go run ./cmd/batch [options]

Options:
  -careers int
        Number of independent careers (default 100)
  -seasons int
        Seasons per career (default 20)
  -workers int
        Careers played at the same time (default CPU cores)
  -seed int
        Seed of the first career; career i uses seed+i (default 1)
  -output string
        Write the JSON report to this file
  -verbose
        Log every career as it finishes
  -help
        Show this help message

Examples:
  # Default batch
  go run ./cmd/batch

  # Bigger pool, longer careers
  SPORTLIFE_POOL_SIZE=256 go run ./cmd/batch -careers 500 -seasons 40 -output report.json
`)
}
