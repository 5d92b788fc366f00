package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/bakeplan/bakeplan/pkg/application/services/cohorts"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/solver"
)

// ErrStructurallyInfeasible reports demand no route can serve when
// shortages are disabled: solving would be pointless.
var ErrStructurallyInfeasible = errors.New("demand unreachable by any feasible route")

// RunState tracks the optimization run lifecycle
type RunState int

const (
	StateCreated RunState = iota
	StateBuilt
	StateSolved
	StateReleased
)

// String method for RunState enum
func (s RunState) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateBuilt:
		return "Built"
	case StateSolved:
		return "Solved"
	case StateReleased:
		return "Released"
	default:
		return "Unknown"
	}
}

// Config holds model-building options
type Config struct {
	// AllowShortages turns unmet demand into penalized slack instead of
	// infeasibility
	AllowShortages bool
	// Timing selects the truck loading/timing constraint strategy.
	// Nil selects PerProductTiming.
	Timing TimingPolicy
	// Epsilon is the numeric tolerance for rounding and feasibility checks
	Epsilon float64
}

// DefaultConfig returns the standard model configuration
func DefaultConfig() Config {
	return Config{AllowShortages: false, Timing: PerProductTiming{}, Epsilon: 1e-6}
}

// Run owns one optimization: the cohort index, the assembled problem and
// the solution, with an explicit build -> solve -> extract -> release
// lifecycle. Nothing about a run leaks into package state.
type Run struct {
	input    Input
	config   Config
	state    RunState
	warnings []string

	index    *cohorts.Index
	problem  *solver.Problem
	solution *solver.Solution
}

// NewRun validates the input and creates a run in the Created state
func NewRun(input Input, config Config) (*Run, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model input: %w", err)
	}
	if config.Timing == nil {
		config.Timing = PerProductTiming{}
	}
	if config.Epsilon <= 0 {
		config.Epsilon = 1e-6
	}
	return &Run{input: input, config: config, state: StateCreated}, nil
}

// Build constructs the cohort index and assembles the full problem:
// labor and production, cohort balances, demand allocation, truck
// loading, packaging, and the cost objective.
func (r *Run) Build() error {
	if r.state != StateCreated {
		return fmt.Errorf("run is %s, expected Created", r.state)
	}

	warnings, err := r.input.Labor.Validate(r.input.Horizon, r.input.CriticalWindow())
	if err != nil {
		return err
	}
	r.warnings = warnings

	index, err := cohorts.NewBuilder(r.input.Network, r.input.ShelfLife).Build(cohorts.BuildInput{
		Horizon:  r.input.Horizon,
		Demand:   r.input.Demand,
		Routes:   r.input.Routes,
		Initial:  r.input.Initial,
		Pipeline: r.input.Pipeline,
	})
	if err != nil {
		return fmt.Errorf("failed to build cohort index: %w", err)
	}
	r.index = index

	if unserved := cohorts.UnservedDemand(index, r.input.Demand); len(unserved) > 0 && !r.config.AllowShortages {
		first := unserved[0]
		return fmt.Errorf("%w: %d demand cells starting with %s/%s on %s",
			ErrStructurallyInfeasible, len(unserved), first.Destination, first.Product, first.Date)
	}

	r.problem = solver.NewProblem(fmt.Sprintf("bakeplan_%s_%s", dateTag(r.input.Horizon.Start), dateTag(r.input.Horizon.End)))

	if err := r.buildLabor(); err != nil {
		return fmt.Errorf("failed to build labor constraints: %w", err)
	}
	if err := r.buildCohorts(); err != nil {
		return fmt.Errorf("failed to build cohort constraints: %w", err)
	}
	if err := r.buildTrucks(); err != nil {
		return fmt.Errorf("failed to build truck constraints: %w", err)
	}

	r.state = StateBuilt
	return nil
}

// Solve submits the built problem to the solver and records the solution
func (r *Run) Solve(ctx context.Context, s solver.Solver, opts solver.Options) (solver.TerminationStatus, error) {
	if r.state != StateBuilt {
		return solver.StatusUnknown, fmt.Errorf("run is %s, expected Built", r.state)
	}
	sol, err := s.Solve(ctx, r.problem, opts)
	if err != nil {
		return solver.StatusUnknown, fmt.Errorf("solve failed: %w", err)
	}
	r.solution = sol
	r.state = StateSolved
	return sol.Status, nil
}

// Release drops the model's large structures once extraction is done
func (r *Run) Release() {
	r.index = nil
	r.problem = nil
	r.solution = nil
	r.state = StateReleased
}

// Input returns the run's input collections
func (r *Run) Input() Input {
	return r.input
}

// ModelConfig returns the run's configuration
func (r *Run) ModelConfig() Config {
	return r.config
}

// Warnings returns non-fatal findings from input validation
func (r *Run) Warnings() []string {
	return r.warnings
}

// Index returns the cohort index (nil before Build or after Release)
func (r *Run) Index() *cohorts.Index {
	return r.index
}

// Problem returns the assembled problem (nil before Build or after Release)
func (r *Run) Problem() *solver.Problem {
	return r.problem
}

// Solution returns the recorded solution (nil before Solve or after Release)
func (r *Run) Solution() *solver.Solution {
	return r.solution
}

// State returns the run lifecycle state
func (r *Run) State() RunState {
	return r.state
}

// productionState is the state newly produced units enter inventory in
func (r *Run) productionState() entities.StorageState {
	if r.input.Network.Plant().Capability.CanHold(entities.Ambient) {
		return entities.Ambient
	}
	return entities.Frozen
}

// orderedProducts returns the product ids the model plans, sorted
func (r *Run) orderedProducts() []entities.ProductID {
	seen := make(map[entities.ProductID]bool)
	var out []entities.ProductID
	for _, p := range r.input.Demand.Products() {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, key := range r.input.Initial.Keys() {
		if !seen[key.Product] {
			seen[key.Product] = true
			out = append(out, key.Product)
		}
	}
	return sortProducts(out)
}

func sortProducts(ids []entities.ProductID) []entities.ProductID {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}
