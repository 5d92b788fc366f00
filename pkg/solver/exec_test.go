package solver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseCBCSolution(t *testing.T) {
	t.Run("optimal", func(t *testing.T) {
		input := "Optimal - objective value 42.50000000\n" +
			"      0 x                    4.5         0\n" +
			"      1 make_day_1           1           0\n"
		sol, err := parseCBCSolution(strings.NewReader(input))
		if err != nil {
			t.Fatalf("parseCBCSolution failed: %v", err)
		}
		if sol.Status != StatusOptimal {
			t.Errorf("expected Optimal, got %s", sol.Status)
		}
		if sol.Value("x") != 4.5 || sol.Value("make_day_1") != 1 {
			t.Errorf("unexpected values: %v", sol.Values)
		}
		// Variables absent from the file sit at zero
		if sol.Value("not_there") != 0 {
			t.Error("absent variables should read as zero")
		}
	})

	t.Run("infeasible", func(t *testing.T) {
		sol, err := parseCBCSolution(strings.NewReader("Infeasible - objective value 0\n"))
		if err != nil {
			t.Fatalf("parseCBCSolution failed: %v", err)
		}
		if sol.Status != StatusInfeasible {
			t.Errorf("expected Infeasible, got %s", sol.Status)
		}
	})

	t.Run("time_limit_with_incumbent", func(t *testing.T) {
		input := "Stopped on time limit - objective value 99.0\n" +
			"      0 x                    1           0\n"
		sol, err := parseCBCSolution(strings.NewReader(input))
		if err != nil {
			t.Fatalf("parseCBCSolution failed: %v", err)
		}
		if sol.Status != StatusTimeLimit {
			t.Errorf("expected TimeLimit, got %s", sol.Status)
		}
		if !sol.Status.HasIncumbent() {
			t.Error("time-limit status must carry the incumbent")
		}
	})
}

func TestParseHiGHSSolution(t *testing.T) {
	input := `Model status
Optimal

# Primal solution values
Feasible
Objective 42.5
# Columns 2
x 4.5
y 3
# Rows 1
cap 10
`
	sol, err := parseHiGHSSolution(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseHiGHSSolution failed: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Errorf("expected Optimal, got %s", sol.Status)
	}
	if sol.Value("x") != 4.5 || sol.Value("y") != 3 {
		t.Errorf("unexpected values: %v", sol.Values)
	}
	// Row section must not leak into values
	if _, ok := sol.Values["cap"]; ok {
		t.Error("row values should not be parsed as columns")
	}
}

func TestExecSolver_CommandArgs(t *testing.T) {
	opts := Options{TimeLimit: 90 * time.Second, MIPGap: 0.01}

	cbc := NewExecSolver("cbc", CBC)
	args := cbc.commandArgs("m.lp", "s.txt", "", opts)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "seconds 90") || !strings.Contains(joined, "ratio 0.01") {
		t.Errorf("unexpected cbc args: %v", args)
	}
	if strings.Contains(joined, "mips") {
		t.Errorf("cbc args carry a mipstart without a start file: %v", args)
	}

	highs := NewExecSolver("highs", HiGHS)
	args = highs.commandArgs("m.lp", "s.txt", "", opts)
	joined = strings.Join(args, " ")
	if !strings.Contains(joined, "--time_limit 90") || !strings.Contains(joined, "--mip_rel_gap 0.01") {
		t.Errorf("unexpected highs args: %v", args)
	}
}

func TestExecSolver_WarmStartArgs(t *testing.T) {
	opts := Options{TimeLimit: time.Minute}

	cbc := NewExecSolver("cbc", CBC)
	joined := strings.Join(cbc.commandArgs("m.lp", "s.txt", "w.mst", opts), " ")
	if !strings.Contains(joined, "mips w.mst") {
		t.Errorf("cbc args missing the mipstart file: %s", joined)
	}
	if !strings.HasPrefix(joined, "m.lp ") {
		t.Errorf("model file must come before the mipstart: %s", joined)
	}

	// HiGHS has no start-point flag; the file must not leak into its args
	highs := NewExecSolver("highs", HiGHS)
	joined = strings.Join(highs.commandArgs("m.lp", "s.txt", "w.mst", opts), " ")
	if strings.Contains(joined, "w.mst") {
		t.Errorf("highs args must not reference the start file: %s", joined)
	}
}

func TestWriteMIPStart(t *testing.T) {
	p := NewProblem("test")
	for _, err := range []error{
		p.AddBinary("make_day_1"),
		p.AddContinuous("x", 0, 10),
		p.AddInteger("pallets", 0, 20),
	} {
		if err != nil {
			t.Fatalf("add variable: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "start.mst")
	start := map[string]float64{"pallets": 3, "make_day_1": 1, "not_there": 9}
	if err := writeMIPStart(path, p, start); err != nil {
		t.Fatalf("writeMIPStart failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read start file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d: %q", len(lines), lines)
	}
	// Rows follow the problem's variable order, not the map's
	if lines[0] != "0 make_day_1 1" || lines[1] != "1 pallets 3" {
		t.Errorf("unexpected rows: %q", lines)
	}
}
