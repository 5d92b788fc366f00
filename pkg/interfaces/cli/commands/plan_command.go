package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bakeplan/bakeplan/pkg/application/services/model"
	"github.com/bakeplan/bakeplan/pkg/application/services/rolling"
	"github.com/bakeplan/bakeplan/pkg/application/services/routing"
	"github.com/bakeplan/bakeplan/pkg/application/services/validate"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/infrastructure/events"
	"github.com/bakeplan/bakeplan/pkg/infrastructure/metrics"
	"github.com/bakeplan/bakeplan/pkg/infrastructure/planstore"
	"github.com/bakeplan/bakeplan/pkg/infrastructure/repositories/csv"
	"github.com/bakeplan/bakeplan/pkg/infrastructure/repositories/memory"
	"github.com/bakeplan/bakeplan/pkg/interfaces/cli/output"
	"github.com/bakeplan/bakeplan/pkg/solver"
)

// Config holds configuration for the plan command
type Config struct {
	ScenarioDir string
	Start       string
	End         string

	WindowDays     int
	OverlapDays    int
	AllowShortages bool
	Aggregate      bool

	SolverBinary string
	SolverFlavor string
	TimeLimit    time.Duration
	MIPGap       float64

	OutputDir     string
	Format        string
	ArchivePath   string
	MetricsListen string
	Check         bool
	Verbose       bool
	Help          bool
}

// PlanCommand runs the rolling-horizon planner over a scenario directory
type PlanCommand struct {
	config Config
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(config Config) *PlanCommand {
	return &PlanCommand{config: config}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if c.config.ScenarioDir == "" {
		return fmt.Errorf("validation error: -scenario directory is required")
	}
	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	env, err := loadScenarioEnv(c.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("failed to load scenario parameters: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(files)
	}

	input, err := c.loadInput(files, env)
	if err != nil {
		return err
	}

	mipSolver, err := c.buildSolver(env)
	if err != nil {
		return err
	}

	modelConfig := model.DefaultConfig()
	modelConfig.AllowShortages = c.config.AllowShortages
	if c.config.Aggregate {
		modelConfig.Timing = model.AggregateTiming{}
	}

	windowDays := c.config.WindowDays
	if windowDays <= 0 || windowDays > input.Horizon.Days() {
		windowDays = input.Horizon.Days()
	}

	bus := events.NewBus()
	if c.config.Verbose {
		bus.Subscribe(events.WindowSolvedEvent, func(e events.Event) {
			ws := e.Data.(events.WindowSolved)
			fmt.Printf("🪟 window %d %s: %s objective=%.2f in %.1fs\n",
				ws.Index, ws.Range, ws.Status, ws.Objective, ws.ElapsedSeconds)
		})
		bus.Subscribe(events.ShortageIdentifiedEvent, func(e events.Event) {
			sh := e.Data.(events.ShortageIdentified)
			fmt.Printf("⚠️  shortage: %s %s on %s: %.0f units\n", sh.Destination, sh.Product, sh.Date, sh.Units)
		})
	}

	observer := rolling.Observer(events.NewPublisher(bus))
	if c.config.MetricsListen != "" {
		reg := prometheus.NewRegistry()
		observer = rolling.MultiObserver(observer, metrics.NewRecorder(reg))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(c.config.MetricsListen, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics listener: %v\n", err)
			}
		}()
	}

	orchestrator, err := rolling.NewOrchestrator(rolling.Config{
		WindowDays:  windowDays,
		OverlapDays: c.config.OverlapDays,
		Model:       modelConfig,
		SolveOptions: solver.Options{
			TimeLimit: c.config.TimeLimit,
			MIPGap:    c.config.MIPGap,
		},
	}, mipSolver, observer)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		fmt.Printf("🔄 Planning %s in %d-day windows (%d-day overlap)...\n",
			input.Horizon, windowDays, c.config.OverlapDays)
	}

	started := time.Now()
	plan, windows, err := orchestrator.Plan(ctx, input)
	solveTime := time.Since(started)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}
	bus.Publish(events.PlanStitchedEvent, events.PlanStitched{
		HorizonStart: plan.Horizon.Start.String(),
		HorizonEnd:   plan.Horizon.End.String(),
		Windows:      len(windows),
		TotalCost:    plan.Costs.Total().String(),
	})

	if c.config.Check {
		violations := validate.NewValidator(input, modelConfig.Epsilon).Check(plan)
		if len(violations) > 0 {
			for _, v := range violations {
				fmt.Fprintf(os.Stderr, "violation [%s]: %s\n", v.Code, v.Detail)
			}
			return fmt.Errorf("plan failed validation with %d violations", len(violations))
		}
		if c.config.Verbose {
			fmt.Println("✅ Plan passed independent validation")
		}
	}

	if c.config.ArchivePath != "" {
		store, err := planstore.NewStore(c.config.ArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Save(plan)
		if err != nil {
			return fmt.Errorf("failed to archive plan: %w", err)
		}
		bus.Publish(events.PlanArchivedEvent, events.PlanArchived{RunID: id, Path: c.config.ArchivePath})
		if c.config.Verbose {
			fmt.Printf("💾 Plan archived as run %d in %s\n", id, c.config.ArchivePath)
		}
	}

	return output.Generate(plan, windows, output.Config{
		Format:     c.config.Format,
		OutputDir:  c.config.OutputDir,
		Verbose:    c.config.Verbose,
		SolveTime:  solveTime,
		InputFiles: files,
	})
}

// loadInput reads the scenario CSVs through the repositories and
// assembles the model input.
func (c *PlanCommand) loadInput(files map[string]string, env scenarioEnv) (model.Input, error) {
	loader := csv.NewLoader()
	var input model.Input

	products, err := loader.LoadProducts(files["Products"])
	if err != nil {
		return input, fmt.Errorf("error loading products: %w", err)
	}
	productRepo := memory.NewProductRepository()
	if err := productRepo.LoadProducts(products); err != nil {
		return input, err
	}

	locations, err := loader.LoadLocations(files["Locations"])
	if err != nil {
		return input, fmt.Errorf("error loading locations: %w", err)
	}
	legs, err := loader.LoadLegs(files["Legs"])
	if err != nil {
		return input, fmt.Errorf("error loading legs: %w", err)
	}
	networkRepo := memory.NewNetworkRepository()
	if err := networkRepo.LoadNetwork(locations, legs); err != nil {
		return input, fmt.Errorf("error building network: %w", err)
	}

	forecast, err := loader.LoadForecast(files["Forecast"])
	if err != nil {
		return input, fmt.Errorf("error loading forecast: %w", err)
	}
	forecastRepo := memory.NewForecastRepository()
	if err := forecastRepo.LoadForecast(forecast); err != nil {
		return input, err
	}

	laborDays, err := loader.LoadLabor(files["Labor"])
	if err != nil {
		return input, fmt.Errorf("error loading labor calendar: %w", err)
	}
	laborRepo := memory.NewLaborRepository()
	if err := laborRepo.LoadCalendar(laborDays); err != nil {
		return input, err
	}

	truckRepo := memory.NewTruckRepository()
	if path, ok := files["Trucks"]; ok {
		trucks, err := loader.LoadTrucks(path)
		if err != nil {
			return input, fmt.Errorf("error loading trucks: %w", err)
		}
		if err := truckRepo.LoadTrucks(trucks); err != nil {
			return input, err
		}
	}

	input.Network, err = networkRepo.GetNetwork()
	if err != nil {
		return input, err
	}
	input.Products, err = productRepo.GetProducts()
	if err != nil {
		return input, err
	}
	input.Demand, err = forecastRepo.GetForecast()
	if err != nil {
		return input, fmt.Errorf("error aggregating forecast: %w", err)
	}
	input.Labor, err = laborRepo.GetCalendar()
	if err != nil {
		return input, fmt.Errorf("error building labor calendar: %w", err)
	}
	input.Trucks, err = truckRepo.GetTrucks()
	if err != nil {
		return input, err
	}

	input.Horizon, err = c.resolveHorizon(input.Labor, input.Demand)
	if err != nil {
		return input, err
	}

	inventoryRepo := memory.NewInventoryRepository()
	if path, ok := files["Inventory"]; ok {
		inv, err := loader.LoadInventory(path, input.Horizon.Start)
		if err != nil {
			return input, fmt.Errorf("error loading inventory: %w", err)
		}
		if err := inventoryRepo.LoadInventory(inv); err != nil {
			return input, err
		}
	}
	input.Initial, err = inventoryRepo.GetInventory()
	if err != nil {
		return input, err
	}

	input.Costs = env.costs
	input.ShelfLife = env.shelfLife

	enumerator, err := routing.NewRouteEnumerator(input.Network, input.ShelfLife, routing.DefaultConfig())
	if err != nil {
		return input, err
	}
	input.Routes, err = enumerator.EnumerateAll()
	if err != nil {
		return input, fmt.Errorf("error enumerating routes: %w", err)
	}

	if c.config.Verbose {
		fmt.Printf("✅ Scenario loaded: %d products, %d locations, %d legs, %d demand cells, %d trucks\n\n",
			len(input.Products), len(locations), len(legs), len(input.Demand.Keys()), len(input.Trucks))
	}
	return input, nil
}

// resolveHorizon derives the planning range: explicit flags win, otherwise
// the labor calendar start through the last forecast date.
func (c *PlanCommand) resolveHorizon(labor *entities.LaborCalendar, demand *entities.DemandSet) (entities.DateRange, error) {
	var start, end entities.Date

	if c.config.Start != "" {
		var err error
		if start, err = entities.ParseDate(c.config.Start); err != nil {
			return entities.DateRange{}, err
		}
	} else {
		dates := labor.Dates()
		if len(dates) == 0 {
			return entities.DateRange{}, fmt.Errorf("labor calendar is empty; cannot derive horizon start")
		}
		start = dates[0]
	}

	if c.config.End != "" {
		var err error
		if end, err = entities.ParseDate(c.config.End); err != nil {
			return entities.DateRange{}, err
		}
	} else {
		keys := demand.Keys()
		if len(keys) == 0 {
			return entities.DateRange{}, fmt.Errorf("forecast is empty; cannot derive horizon end")
		}
		end = keys[0].Date
		for _, k := range keys {
			if k.Date > end {
				end = k.Date
			}
		}
	}

	return entities.NewDateRange(start, end)
}

// buildSolver constructs the external MIP solver adapter. Flags win over
// scenario environment defaults.
func (c *PlanCommand) buildSolver(env scenarioEnv) (solver.Solver, error) {
	binary := c.config.SolverBinary
	if binary == "" {
		binary = env.solverBinary
	}
	if binary == "" {
		return nil, fmt.Errorf("no solver configured: pass -solver or set BAKEPLAN_SOLVER_BINARY")
	}

	flavorName := c.config.SolverFlavor
	if flavorName == "" {
		flavorName = env.solverFlavor
	}
	flavor := solver.CBC
	switch flavorName {
	case "", "cbc":
		flavor = solver.CBC
	case "highs":
		flavor = solver.HiGHS
	default:
		return nil, fmt.Errorf("unknown solver flavor %q (expected cbc or highs)", flavorName)
	}

	return solver.NewExecSolver(binary, flavor), nil
}

// resolveInputFiles determines the scenario file paths. Trucks and
// inventory are optional; everything else must exist.
func (c *PlanCommand) resolveInputFiles() (map[string]string, error) {
	dir := c.config.ScenarioDir
	required := map[string]string{
		"Products":  filepath.Join(dir, "products.csv"),
		"Locations": filepath.Join(dir, "locations.csv"),
		"Legs":      filepath.Join(dir, "legs.csv"),
		"Forecast":  filepath.Join(dir, "forecast.csv"),
		"Labor":     filepath.Join(dir, "labor.csv"),
	}
	for name, path := range required {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}
	optional := map[string]string{
		"Trucks":    filepath.Join(dir, "trucks.csv"),
		"Inventory": filepath.Join(dir, "inventory.csv"),
	}
	for name, path := range optional {
		if _, err := os.Stat(path); err == nil {
			required[name] = path
		}
	}
	return required, nil
}

// printHeader prints the command header information
func (c *PlanCommand) printHeader(files map[string]string) {
	fmt.Printf("🍞 Bakeplan CLI\n")
	fmt.Printf("Scenario: %s\n", c.config.ScenarioDir)
	for _, name := range []string{"Products", "Locations", "Legs", "Forecast", "Labor", "Trucks", "Inventory"} {
		if path, ok := files[name]; ok {
			fmt.Printf("  %s: %s\n", name, path)
		}
	}
	fmt.Printf("Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Printf("Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Println()
}

// showHelp displays the help message
func (c *PlanCommand) showHelp() {
	fmt.Printf(`Bakeplan - rolling-horizon production and distribution planner

USAGE:
    bakeplan -scenario <directory> [options]

OPTIONS:
    -scenario <dir>     Path to scenario directory containing CSV files
    -start <date>       Horizon start, YYYY-MM-DD (default: first labor calendar day)
    -end <date>         Horizon end, YYYY-MM-DD (default: last forecast date)
    -window <days>      Rolling window length (default: whole horizon in one window)
    -overlap <days>     Overlap between consecutive windows (default 0)
    -allow-shortages    Penalize unmet demand instead of failing the build
    -aggregate-timing   Pool products in the morning truck cutoff constraints
    -solver <path>      MIP solver binary (or BAKEPLAN_SOLVER_BINARY)
    -flavor <name>      Solver flavor: cbc or highs (default cbc)
    -time-limit <dur>   Per-window solve time limit, e.g. 5m (default 1h)
    -gap <frac>         Relative MIP gap, e.g. 0.01
    -output <dir>       Output directory for results (optional)
    -format <fmt>       Output format: text, json, csv, html (default: text)
    -archive <path>     Archive the solved plan to a SQLite database
    -metrics <addr>     Serve Prometheus solve metrics on this address, e.g. :9090
    -check              Re-validate the stitched plan against the inputs
    -verbose            Enable verbose output
    -help               Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── products.csv    # Product master with case and pallet sizes
    ├── locations.csv   # Network locations with storage capabilities
    ├── legs.csv        # Directed transport legs with states and costs
    ├── forecast.csv    # Demand by destination, product and date
    ├── labor.csv       # Labor calendar with fixed and non-fixed days
    ├── trucks.csv      # Scheduled truck departures (optional)
    ├── inventory.csv   # Opening cohort inventory (optional)
    └── scenario.env    # Cost and shelf-life parameters (optional)

SCENARIO ENVIRONMENT (scenario.env or process env):
    BAKEPLAN_PRODUCTION_COST_PER_UNIT    default 1.0
    BAKEPLAN_STORAGE_FROZEN_PER_DAY      default 0.05
    BAKEPLAN_STORAGE_AMBIENT_PER_DAY     default 0.01
    BAKEPLAN_WASTE_MULTIPLIER            default 1.5
    BAKEPLAN_SHORTAGE_PENALTY_PER_UNIT   default 10.0
    BAKEPLAN_UNITS_PER_HOUR              default 100
    BAKEPLAN_CHANGEOVER_HOURS            default 0.5
    BAKEPLAN_SHELF_AMBIENT_DAYS          default 17
    BAKEPLAN_SHELF_FROZEN_DAYS           default 120
    BAKEPLAN_SHELF_MIN_REMAINING_DAYS    default 7
    BAKEPLAN_SOLVER_BINARY               solver path when -solver is not given
    BAKEPLAN_SOLVER_FLAVOR               cbc or highs

EXAMPLES:
    # Plan a scenario in one monolithic solve
    bakeplan -scenario examples/two_echelon -solver cbc -verbose

    # Rolling horizon: 14-day windows overlapping by 3 days
    bakeplan -scenario examples/two_echelon -window 14 -overlap 3 -solver cbc

    # Archive the plan and write a JSON copy
    bakeplan -scenario examples/two_echelon -solver cbc -archive plans.db -format json -output results/

    # Re-validate the stitched plan independently of the solver
    bakeplan -scenario examples/two_echelon -solver cbc -check
`)
}
