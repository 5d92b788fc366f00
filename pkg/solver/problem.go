package solver

import (
	"fmt"
	"math"
)

// VarType is the domain of a decision variable
type VarType int

const (
	Continuous VarType = iota
	Integer
	Binary
)

// String method for VarType enum
func (t VarType) String() string {
	switch t {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	case Binary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Sense is the relational sense of a linear constraint
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

// String method for Sense enum
func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "?"
	}
}

// Variable is a named decision variable with bounds
type Variable struct {
	Name  string
	Type  VarType
	Lower float64
	Upper float64
}

// Term is one coefficient*variable term in a linear expression
type Term struct {
	Var  string
	Coef float64
}

// Constraint is a named linear constraint: sum(terms) sense rhs
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Problem is a mixed-integer linear program under construction. Variables
// and constraints keep insertion order, so identical build sequences
// produce identical problems, which keeps solver behavior and tests
// reproducible.
type Problem struct {
	name      string
	vars      []Variable
	varIndex  map[string]int
	cons      []Constraint
	conIndex  map[string]int
	objective map[string]float64
}

// NewProblem creates an empty minimization problem
func NewProblem(name string) *Problem {
	return &Problem{
		name:      name,
		varIndex:  make(map[string]int),
		conIndex:  make(map[string]int),
		objective: make(map[string]float64),
	}
}

// Name returns the problem name
func (p *Problem) Name() string {
	return p.name
}

// AddVariable registers a decision variable
func (p *Problem) AddVariable(v Variable) error {
	if v.Name == "" {
		return fmt.Errorf("variable name cannot be empty")
	}
	if _, exists := p.varIndex[v.Name]; exists {
		return fmt.Errorf("duplicate variable %s", v.Name)
	}
	if v.Upper < v.Lower {
		return fmt.Errorf("variable %s: upper bound %g below lower bound %g", v.Name, v.Upper, v.Lower)
	}
	if v.Type == Binary {
		v.Lower, v.Upper = 0, 1
	}
	p.varIndex[v.Name] = len(p.vars)
	p.vars = append(p.vars, v)
	return nil
}

// AddContinuous registers a continuous variable with the given bounds.
// Pass math.Inf(1) for an unbounded upper limit.
func (p *Problem) AddContinuous(name string, lower, upper float64) error {
	return p.AddVariable(Variable{Name: name, Type: Continuous, Lower: lower, Upper: upper})
}

// AddInteger registers a general integer variable with the given bounds
func (p *Problem) AddInteger(name string, lower, upper float64) error {
	return p.AddVariable(Variable{Name: name, Type: Integer, Lower: lower, Upper: upper})
}

// AddBinary registers a 0/1 variable
func (p *Problem) AddBinary(name string) error {
	return p.AddVariable(Variable{Name: name, Type: Binary})
}

// HasVariable reports whether a variable with the name exists
func (p *Problem) HasVariable(name string) bool {
	_, ok := p.varIndex[name]
	return ok
}

// AddConstraint registers a linear constraint over existing variables
func (p *Problem) AddConstraint(c Constraint) error {
	if c.Name == "" {
		return fmt.Errorf("constraint name cannot be empty")
	}
	if _, exists := p.conIndex[c.Name]; exists {
		return fmt.Errorf("duplicate constraint %s", c.Name)
	}
	if len(c.Terms) == 0 {
		return fmt.Errorf("constraint %s has no terms", c.Name)
	}
	for _, term := range c.Terms {
		if _, ok := p.varIndex[term.Var]; !ok {
			return fmt.Errorf("constraint %s references unknown variable %s", c.Name, term.Var)
		}
	}
	p.conIndex[c.Name] = len(p.cons)
	p.cons = append(p.cons, c)
	return nil
}

// AddObjectiveTerm accumulates a coefficient onto a variable's objective
// entry. Multiple calls for the same variable are additive.
func (p *Problem) AddObjectiveTerm(name string, coef float64) error {
	if _, ok := p.varIndex[name]; !ok {
		return fmt.Errorf("objective references unknown variable %s", name)
	}
	p.objective[name] += coef
	return nil
}

// ObjectiveCoef returns the accumulated objective coefficient of a variable
func (p *Problem) ObjectiveCoef(name string) float64 {
	return p.objective[name]
}

// Variables returns all variables in insertion order
func (p *Problem) Variables() []Variable {
	return p.vars
}

// Variable returns the named variable, if present
func (p *Problem) Variable(name string) (Variable, bool) {
	idx, ok := p.varIndex[name]
	if !ok {
		return Variable{}, false
	}
	return p.vars[idx], true
}

// Constraints returns all constraints in insertion order
func (p *Problem) Constraints() []Constraint {
	return p.cons
}

// Constraint returns the named constraint, if present
func (p *Problem) Constraint(name string) (Constraint, bool) {
	idx, ok := p.conIndex[name]
	if !ok {
		return Constraint{}, false
	}
	return p.cons[idx], true
}

// NumVariables returns the variable count
func (p *Problem) NumVariables() int {
	return len(p.vars)
}

// NumConstraints returns the constraint count
func (p *Problem) NumConstraints() int {
	return len(p.cons)
}

// EvaluateObjective computes the objective value for a full assignment
func (p *Problem) EvaluateObjective(values map[string]float64) float64 {
	total := 0.0
	for _, v := range p.vars {
		if coef, ok := p.objective[v.Name]; ok && coef != 0 {
			total += coef * values[v.Name]
		}
	}
	return total
}

// CheckFeasible verifies an assignment against bounds and constraints
// within the given tolerance. Used by tests and post-solve validation.
func (p *Problem) CheckFeasible(values map[string]float64, tol float64) error {
	for _, v := range p.vars {
		val := values[v.Name]
		if val < v.Lower-tol || val > v.Upper+tol {
			return fmt.Errorf("variable %s value %g outside bounds [%g, %g]", v.Name, val, v.Lower, v.Upper)
		}
		if v.Type != Continuous && math.Abs(val-math.Round(val)) > tol {
			return fmt.Errorf("variable %s value %g is not integral", v.Name, val)
		}
	}
	for _, c := range p.cons {
		lhs := 0.0
		for _, term := range c.Terms {
			lhs += term.Coef * values[term.Var]
		}
		switch c.Sense {
		case LessEqual:
			if lhs > c.RHS+tol {
				return fmt.Errorf("constraint %s violated: %g > %g", c.Name, lhs, c.RHS)
			}
		case GreaterEqual:
			if lhs < c.RHS-tol {
				return fmt.Errorf("constraint %s violated: %g < %g", c.Name, lhs, c.RHS)
			}
		case Equal:
			if math.Abs(lhs-c.RHS) > tol {
				return fmt.Errorf("constraint %s violated: %g != %g", c.Name, lhs, c.RHS)
			}
		}
	}
	return nil
}
