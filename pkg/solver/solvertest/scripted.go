// Package solvertest provides solver doubles for tests that exercise the
// build-solve-extract pipeline without an external MIP binary.
package solvertest

import (
	"context"
	"fmt"

	"github.com/bakeplan/bakeplan/pkg/solver"
)

// ScriptedSolver satisfies solver.Solver by delegating to a script that
// produces a full assignment for the problem it is handed. The assignment
// is checked for feasibility before being returned, so a buggy script
// fails the test at the solve call instead of corrupting downstream
// assertions.
type ScriptedSolver struct {
	// Script computes the assignment for one problem. Called once per
	// Solve; for multi-window tests it is invoked with each window's
	// problem in turn.
	Script func(p *solver.Problem) (map[string]float64, error)
	// Status is the termination status to report, StatusOptimal if unset
	Status solver.TerminationStatus
	// Tolerance for the feasibility check, 1e-6 if unset
	Tolerance float64

	// Problems records every problem handed to Solve, in order
	Problems []*solver.Problem
}

// Solve runs the script and wraps its assignment as a solution
func (s *ScriptedSolver) Solve(ctx context.Context, p *solver.Problem, opts solver.Options) (*solver.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.Problems = append(s.Problems, p)

	values, err := s.Script(p)
	if err != nil {
		return nil, fmt.Errorf("script failed for %s: %w", p.Name(), err)
	}
	tol := s.Tolerance
	if tol == 0 {
		tol = 1e-6
	}
	if err := p.CheckFeasible(values, tol); err != nil {
		return nil, fmt.Errorf("scripted assignment infeasible for %s: %w", p.Name(), err)
	}
	status := s.Status
	if status == solver.StatusUnknown {
		status = solver.StatusOptimal
	}
	return &solver.Solution{
		Status:    status,
		Objective: p.EvaluateObjective(values),
		Values:    values,
	}, nil
}

// InfeasibleSolver always reports infeasibility, for failure-path tests
type InfeasibleSolver struct{}

// Solve reports an infeasible outcome with no values
func (InfeasibleSolver) Solve(ctx context.Context, p *solver.Problem, opts solver.Options) (*solver.Solution, error) {
	return &solver.Solution{Status: solver.StatusInfeasible}, nil
}
