package solver

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// WriteLP serializes the problem in CPLEX LP text format, which every
// candidate solver binary (CBC, HiGHS, Gurobi, CPLEX) accepts. Variable
// and constraint order follows insertion order, so output is
// deterministic for identical build sequences.
func WriteLP(w io.Writer, p *Problem) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ %s\n", p.name)
	fmt.Fprintln(bw, "Minimize")
	fmt.Fprint(bw, " obj:")
	wrote := false
	for _, v := range p.vars {
		coef := p.objective[v.Name]
		if coef == 0 {
			continue
		}
		writeTerm(bw, coef, v.Name, !wrote)
		wrote = true
	}
	if !wrote {
		// LP format requires a non-empty objective
		fmt.Fprintf(bw, " 0 %s", p.vars[0].Name)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for _, c := range p.cons {
		fmt.Fprintf(bw, " %s:", c.Name)
		for i, term := range c.Terms {
			writeTerm(bw, term.Coef, term.Var, i == 0)
		}
		fmt.Fprintf(bw, " %s %s\n", c.Sense, formatNum(c.RHS))
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range p.vars {
		if v.Type == Binary {
			continue
		}
		switch {
		case math.IsInf(v.Upper, 1) && v.Lower == 0:
			// default bound, nothing to declare
		case math.IsInf(v.Upper, 1):
			fmt.Fprintf(bw, " %s >= %s\n", v.Name, formatNum(v.Lower))
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", formatNum(v.Lower), v.Name, formatNum(v.Upper))
		}
	}

	generals := make([]string, 0)
	binaries := make([]string, 0)
	for _, v := range p.vars {
		switch v.Type {
		case Integer:
			generals = append(generals, v.Name)
		case Binary:
			binaries = append(binaries, v.Name)
		}
	}
	if len(generals) > 0 {
		fmt.Fprintln(bw, "General")
		for _, name := range generals {
			fmt.Fprintf(bw, " %s\n", name)
		}
	}
	if len(binaries) > 0 {
		fmt.Fprintln(bw, "Binary")
		for _, name := range binaries {
			fmt.Fprintf(bw, " %s\n", name)
		}
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func writeTerm(w io.Writer, coef float64, name string, first bool) {
	switch {
	case first && coef < 0:
		fmt.Fprintf(w, " -%s %s", formatNum(-coef), name)
	case first:
		fmt.Fprintf(w, " %s %s", formatNum(coef), name)
	case coef < 0:
		fmt.Fprintf(w, " - %s %s", formatNum(-coef), name)
	default:
		fmt.Fprintf(w, " + %s %s", formatNum(coef), name)
	}
}

func formatNum(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
