package rolling

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bakeplan/bakeplan/pkg/application/services/extract"
	"github.com/bakeplan/bakeplan/pkg/application/services/model"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/solver"
)

// ErrWindowInfeasible reports a window solve that ended without an
// incumbent. The wrapped message names the window so operators can narrow
// the failure to a date range instead of the whole horizon.
var ErrWindowInfeasible = errors.New("window solve infeasible")

// Config controls the decomposition and the per-window solves
type Config struct {
	// WindowDays is the length of each window's horizon
	WindowDays int
	// OverlapDays is the lookahead tail re-planned by the next window
	OverlapDays int
	// Model configures each window's model build
	Model model.Config
	// SolveOptions is passed through to every window solve
	SolveOptions solver.Options
}

// WindowResult reports one window's solve for inspection and logging
type WindowResult struct {
	Window    Window
	Status    solver.TerminationStatus
	Objective float64
	Elapsed   time.Duration
	Warnings  []string
	// Plan is the window-local extraction over the full window range,
	// including the uncommitted tail
	Plan *entities.Plan
}

// Observer receives per-window solve outcomes. Implementations must be
// cheap; the orchestrator calls them synchronously.
type Observer interface {
	ObserveWindow(result WindowResult)
}

// MultiObserver fans window results out to several observers in order
func MultiObserver(observers ...Observer) Observer {
	var active []Observer
	for _, o := range observers {
		if o != nil {
			active = append(active, o)
		}
	}
	if len(active) == 1 {
		return active[0]
	}
	return multiObserver(active)
}

type multiObserver []Observer

func (m multiObserver) ObserveWindow(result WindowResult) {
	for _, o := range m {
		o.ObserveWindow(result)
	}
}

// Orchestrator decomposes a long horizon into overlapping windows,
// solves them in sequence, and stitches the committed regions into one
// plan. Inventory is handed between windows at cohort granularity, and
// units in transit across a commit boundary carry forward as scheduled
// pipeline arrivals, so age and state survive the decomposition.
type Orchestrator struct {
	config    Config
	solver    solver.Solver
	extractor *extract.Extractor
	observer  Observer
}

// NewOrchestrator creates an orchestrator. The observer may be nil.
func NewOrchestrator(config Config, s solver.Solver, observer Observer) (*Orchestrator, error) {
	if s == nil {
		return nil, fmt.Errorf("solver is required")
	}
	if config.WindowDays < 1 {
		return nil, fmt.Errorf("window length must be at least 1 day, got %d", config.WindowDays)
	}
	if config.OverlapDays < 0 || config.OverlapDays >= config.WindowDays {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", config.WindowDays, config.OverlapDays)
	}
	eps := config.Model.Epsilon
	if eps <= 0 {
		eps = 1e-6
	}
	return &Orchestrator{
		config:    config,
		solver:    s,
		extractor: extract.NewExtractor(eps),
		observer:  observer,
	}, nil
}

// Plan solves the input horizon window by window and returns the
// stitched plan plus per-window results.
func (o *Orchestrator) Plan(ctx context.Context, input model.Input) (*entities.Plan, []WindowResult, error) {
	windows, err := Partition(input.Horizon, o.config.WindowDays, o.config.OverlapDays)
	if err != nil {
		return nil, nil, err
	}

	stitched := &entities.Plan{Horizon: input.Horizon, EndingCohorts: entities.CohortInventory{}}
	opening := input.Initial
	pipeline := input.Pipeline
	var results []WindowResult

	for _, w := range windows {
		wInput := input
		wInput.Horizon = w.Range
		wInput.Demand = input.Demand.Restrict(w.Range)
		wInput.Initial = opening
		wInput.Pipeline = pipeline

		run, err := model.NewRun(wInput, o.config.Model)
		if err != nil {
			return nil, results, fmt.Errorf("%s: %w", w, err)
		}
		if err := run.Build(); err != nil {
			return nil, results, fmt.Errorf("%s: %w", w, err)
		}

		started := time.Now()
		status, err := run.Solve(ctx, o.solver, o.config.SolveOptions)
		elapsed := time.Since(started)
		if err != nil {
			return nil, results, fmt.Errorf("%s: %w", w, err)
		}
		if !status.HasIncumbent() {
			return nil, results, fmt.Errorf("%w: %s ended %s", ErrWindowInfeasible, w, status)
		}

		plan, err := o.extractor.Extract(run)
		if err != nil {
			return nil, results, fmt.Errorf("%s: %w", w, err)
		}

		result := WindowResult{
			Window:    w,
			Status:    status,
			Objective: run.Solution().Objective,
			Elapsed:   elapsed,
			Warnings:  run.Warnings(),
			Plan:      plan,
		}
		results = append(results, result)
		if o.observer != nil {
			o.observer.ObserveWindow(result)
		}

		o.commit(stitched, plan, w)

		last := w.Range.End == input.Horizon.End
		if last {
			stitched.EndingCohorts = plan.EndingCohorts
		} else {
			opening, pipeline = o.handoff(run, plan, pipeline, w)
		}
		run.Release()
	}

	stitched.Costs = computeCosts(stitched, input)
	return stitched, results, nil
}

// commit appends the window's committed-region rows to the stitched plan
func (o *Orchestrator) commit(stitched, plan *entities.Plan, w Window) {
	c := w.CommitThrough
	for _, b := range plan.Batches {
		if b.Date <= c {
			stitched.Batches = append(stitched.Batches, b)
		}
	}
	for _, s := range plan.Shipments {
		if s.DepartDate <= c {
			stitched.Shipments = append(stitched.Shipments, s)
		}
	}
	for _, lvl := range plan.Inventory {
		if lvl.Date <= c {
			stitched.Inventory = append(stitched.Inventory, lvl)
		}
	}
	for _, f := range plan.Fills {
		if f.Date <= c {
			stitched.Fills = append(stitched.Fills, f)
		}
	}
	for _, s := range plan.Shortages {
		if s.Date <= c {
			stitched.Shortages = append(stitched.Shortages, s)
		}
	}
	for _, d := range plan.Disposals {
		if d.Date <= c {
			stitched.Disposals = append(stitched.Disposals, d)
		}
	}
	for _, tl := range plan.TruckLoads {
		if tl.DepartDate <= c {
			stitched.TruckLoads = append(stitched.TruckLoads, tl)
		}
	}
}

// handoff computes the next window's opening state: cohort inventory at
// the commit boundary rekeyed to the next window's first day, plus
// committed shipments still in transit as scheduled pipeline arrivals.
func (o *Orchestrator) handoff(run *model.Run, plan *entities.Plan, prevPipeline entities.CohortInventory, w Window) (entities.CohortInventory, entities.CohortInventory) {
	c := w.CommitThrough
	next := c.Add(1)
	sol := run.Solution()
	eps := run.ModelConfig().Epsilon

	atBoundary := entities.CohortInventory{}
	for _, key := range run.Index().InventoryKeys() {
		if key.CurrentDate != c {
			continue
		}
		units := sol.Value(model.InventoryVar(key))
		if math.Abs(units) < eps {
			continue
		}
		atBoundary.Add(key, units)
	}
	opening := atBoundary.AsOf(next)

	pipeline := entities.CohortInventory{}
	for key, qty := range prevPipeline {
		// Arrivals the committed region has not absorbed yet
		if key.CurrentDate > c {
			pipeline.Add(key, qty)
		}
	}
	for _, s := range plan.Shipments {
		if s.DepartDate <= c && s.DeliverDate > c {
			pipeline.Add(entities.CohortKey{
				Location:    s.To,
				Product:     s.Product,
				ProduceDate: s.ProduceDate,
				CurrentDate: s.DeliverDate,
				State:       s.ArriveState,
			}, s.Units)
		}
	}
	return opening, pipeline
}
