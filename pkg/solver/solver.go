package solver

import (
	"context"
	"time"
)

// TerminationStatus is the outcome of a solve attempt
type TerminationStatus int

const (
	StatusUnknown TerminationStatus = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusTimeLimit
)

// String method for TerminationStatus enum
func (s TerminationStatus) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusFeasible:
		return "Feasible"
	case StatusInfeasible:
		return "Infeasible"
	case StatusTimeLimit:
		return "TimeLimit"
	default:
		return "Unknown"
	}
}

// HasIncumbent reports whether the status carries a usable solution.
// A time-limit stop still returns the best incumbent found.
func (s TerminationStatus) HasIncumbent() bool {
	return s == StatusOptimal || s == StatusFeasible || s == StatusTimeLimit
}

// Options are the caller-supplied solve controls
type Options struct {
	TimeLimit time.Duration
	MIPGap    float64
	// WarmStart optionally seeds the search with a known assignment.
	// Adapters that cannot pass a start point ignore it.
	WarmStart map[string]float64
}

// Solution holds solved variable values and the termination status
type Solution struct {
	Status    TerminationStatus
	Objective float64
	Values    map[string]float64
}

// Value returns the solved value of a variable (zero if absent, which is
// what LP solution files omit for variables at their lower bound of zero).
func (s *Solution) Value(name string) float64 {
	return s.Values[name]
}

// Solver is the external optimization boundary. Solve blocks until the
// solver terminates or the time limit in opts expires.
type Solver interface {
	Solve(ctx context.Context, p *Problem, opts Options) (*Solution, error)
}
