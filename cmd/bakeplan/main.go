package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bakeplan/bakeplan/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing CSV files",
		)
		start          = flag.String("start", "", "Horizon start date YYYY-MM-DD (default: first labor calendar day)")
		end            = flag.String("end", "", "Horizon end date YYYY-MM-DD (default: last forecast date)")
		window         = flag.Int("window", 0, "Rolling window length in days (default: whole horizon)")
		overlap        = flag.Int("overlap", 0, "Overlap between consecutive windows in days")
		allowShortages = flag.Bool("allow-shortages", false, "Penalize unmet demand instead of failing the build")
		aggregate      = flag.Bool("aggregate-timing", false, "Pool products in the morning truck cutoff constraints")
		solverBinary   = flag.String("solver", "", "MIP solver binary (or BAKEPLAN_SOLVER_BINARY)")
		solverFlavor   = flag.String("flavor", "", "Solver flavor: cbc or highs (default cbc)")
		timeLimit      = flag.Duration("time-limit", time.Hour, "Per-window solve time limit")
		gap            = flag.Float64("gap", 0, "Relative MIP gap, e.g. 0.01")
		outputDir      = flag.String("output", "", "Output directory for results (optional)")
		format         = flag.String("format", "text", "Output format: text, json, csv, html")
		archive        = flag.String("archive", "", "Archive the solved plan to a SQLite database at this path")
		metricsListen  = flag.String("metrics", "", "Serve Prometheus solve metrics on this address, e.g. :9090")
		check          = flag.Bool("check", false, "Re-validate the stitched plan against the inputs")
		verbose        = flag.Bool("verbose", false, "Enable verbose output")
		help           = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		ScenarioDir:    *scenarioDir,
		Start:          *start,
		End:            *end,
		WindowDays:     *window,
		OverlapDays:    *overlap,
		AllowShortages: *allowShortages,
		Aggregate:      *aggregate,
		SolverBinary:   *solverBinary,
		SolverFlavor:   *solverFlavor,
		TimeLimit:      *timeLimit,
		MIPGap:         *gap,
		OutputDir:      *outputDir,
		Format:         *format,
		ArchivePath:    *archive,
		MetricsListen:  *metricsListen,
		Check:          *check,
		Verbose:        *verbose,
		Help:           *help,
	}

	// Create and execute command
	cmd := commands.NewPlanCommand(config)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
