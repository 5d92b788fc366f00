package solver

import (
	"math"
	"strings"
	"testing"
)

func buildSmallProblem(t *testing.T) *Problem {
	t.Helper()
	p := NewProblem("small")
	if err := p.AddContinuous("x", 0, math.Inf(1)); err != nil {
		t.Fatalf("AddContinuous failed: %v", err)
	}
	if err := p.AddInteger("y", 0, 10); err != nil {
		t.Fatalf("AddInteger failed: %v", err)
	}
	if err := p.AddBinary("z"); err != nil {
		t.Fatalf("AddBinary failed: %v", err)
	}
	if err := p.AddConstraint(Constraint{
		Name:  "cap",
		Terms: []Term{{Var: "x", Coef: 1}, {Var: "y", Coef: 2}},
		Sense: LessEqual,
		RHS:   10,
	}); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}
	if err := p.AddConstraint(Constraint{
		Name:  "link",
		Terms: []Term{{Var: "x", Coef: 1}, {Var: "z", Coef: -10}},
		Sense: LessEqual,
		RHS:   0,
	}); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}
	if err := p.AddObjectiveTerm("x", 1.5); err != nil {
		t.Fatalf("AddObjectiveTerm failed: %v", err)
	}
	if err := p.AddObjectiveTerm("z", 100); err != nil {
		t.Fatalf("AddObjectiveTerm failed: %v", err)
	}
	return p
}

func TestProblem_Build(t *testing.T) {
	p := buildSmallProblem(t)

	if p.NumVariables() != 3 || p.NumConstraints() != 2 {
		t.Fatalf("unexpected problem size: %d vars, %d cons", p.NumVariables(), p.NumConstraints())
	}

	if err := p.AddContinuous("x", 0, 1); err == nil {
		t.Error("expected duplicate variable error")
	}
	if err := p.AddConstraint(Constraint{Name: "bad", Terms: []Term{{Var: "missing", Coef: 1}}, Sense: Equal, RHS: 0}); err == nil {
		t.Error("expected unknown variable error")
	}
	if err := p.AddObjectiveTerm("missing", 1); err == nil {
		t.Error("expected unknown objective variable error")
	}

	// Objective terms accumulate
	if err := p.AddObjectiveTerm("x", 0.5); err != nil {
		t.Fatalf("AddObjectiveTerm failed: %v", err)
	}
	if got := p.ObjectiveCoef("x"); got != 2.0 {
		t.Errorf("expected accumulated coefficient 2.0, got %g", got)
	}
}

func TestProblem_CheckFeasible(t *testing.T) {
	p := buildSmallProblem(t)

	good := map[string]float64{"x": 4, "y": 3, "z": 1}
	if err := p.CheckFeasible(good, 1e-6); err != nil {
		t.Errorf("expected feasible assignment, got %v", err)
	}

	tests := []struct {
		name   string
		values map[string]float64
	}{
		{"constraint_violated", map[string]float64{"x": 8, "y": 3, "z": 1}},
		{"link_violated", map[string]float64{"x": 4, "y": 0, "z": 0}},
		{"bound_violated", map[string]float64{"x": 4, "y": 11, "z": 1}},
		{"non_integral", map[string]float64{"x": 1, "y": 0.5, "z": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.CheckFeasible(tt.values, 1e-6); err == nil {
				t.Error("expected infeasibility to be reported")
			}
		})
	}
}

func TestWriteLP(t *testing.T) {
	p := buildSmallProblem(t)

	var sb strings.Builder
	if err := WriteLP(&sb, p); err != nil {
		t.Fatalf("WriteLP failed: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"Minimize",
		"obj: 1.5 x + 100 z",
		"Subject To",
		"cap: 1 x + 2 y <= 10",
		"link: 1 x - 10 z <= 0",
		"Bounds",
		"0 <= y <= 10",
		"General",
		"Binary",
		"End",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("LP output missing %q\n%s", want, out)
		}
	}
}

func TestEvaluateObjective(t *testing.T) {
	p := buildSmallProblem(t)
	got := p.EvaluateObjective(map[string]float64{"x": 2, "y": 5, "z": 1})
	if got != 103 {
		t.Errorf("expected objective 103, got %g", got)
	}
}
