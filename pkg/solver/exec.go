package solver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Flavor selects the command-line convention of the external MIP binary
type Flavor int

const (
	CBC Flavor = iota
	HiGHS
)

// String method for Flavor enum
func (f Flavor) String() string {
	switch f {
	case CBC:
		return "CBC"
	case HiGHS:
		return "HiGHS"
	default:
		return "Unknown"
	}
}

// ExecSolver drives an external MIP solver binary through LP files on
// disk. The solver identity is configuration, not code: any binary that
// reads CPLEX LP input and writes its standard solution file works.
type ExecSolver struct {
	Binary string
	Flavor Flavor
	// KeepFiles leaves the temp model/solution files on disk for debugging
	KeepFiles bool
}

// NewExecSolver creates an adapter for the given binary
func NewExecSolver(binary string, flavor Flavor) *ExecSolver {
	return &ExecSolver{Binary: binary, Flavor: flavor}
}

// Solve writes the problem to an LP file, runs the binary with the time
// limit and gap from opts, and parses the solution file back. A warm
// start is forwarded to CBC as a mipstart file; the HiGHS command line
// has no start-point option, so that flavor ignores it.
func (s *ExecSolver) Solve(ctx context.Context, p *Problem, opts Options) (*Solution, error) {
	dir, err := os.MkdirTemp("", "bakeplan-solve-")
	if err != nil {
		return nil, fmt.Errorf("failed to create solve dir: %w", err)
	}
	if !s.KeepFiles {
		defer os.RemoveAll(dir)
	}

	modelPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "solution.txt")

	f, err := os.Create(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create model file: %w", err)
	}
	if err := WriteLP(f, p); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write LP model: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close model file: %w", err)
	}

	startPath := ""
	if len(opts.WarmStart) > 0 && s.Flavor == CBC {
		startPath = filepath.Join(dir, "start.mst")
		if err := writeMIPStart(startPath, p, opts.WarmStart); err != nil {
			return nil, fmt.Errorf("failed to write MIP start: %w", err)
		}
	}

	args := s.commandArgs(modelPath, solPath, startPath, opts)
	cmd := exec.CommandContext(ctx, s.Binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("solver %s failed: %w\n%s", s.Binary, err, string(out))
	}

	sol, err := s.parseSolutionFile(solPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s solution: %w", s.Flavor, err)
	}
	if sol.Status.HasIncumbent() {
		sol.Objective = p.EvaluateObjective(sol.Values)
	}
	return sol, nil
}

func (s *ExecSolver) commandArgs(modelPath, solPath, startPath string, opts Options) []string {
	seconds := opts.TimeLimit.Seconds()
	if seconds <= 0 {
		seconds = time.Hour.Seconds()
	}
	switch s.Flavor {
	case HiGHS:
		return []string{
			"--time_limit", strconv.FormatFloat(seconds, 'f', 0, 64),
			"--mip_rel_gap", strconv.FormatFloat(opts.MIPGap, 'g', -1, 64),
			"--solution_file", solPath,
			modelPath,
		}
	default:
		args := []string{modelPath}
		if startPath != "" {
			args = append(args, "mips", startPath)
		}
		return append(args,
			"seconds", strconv.FormatFloat(seconds, 'f', 0, 64),
			"ratio", strconv.FormatFloat(opts.MIPGap, 'g', -1, 64),
			"solve",
			"solution", solPath,
		)
	}
}

// writeMIPStart writes a CBC mipstart file: one "index name value" row
// per started variable, in the problem's variable order. Names CBC does
// not recognize are warned about and skipped on its side.
func writeMIPStart(path string, p *Problem, start map[string]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	row := 0
	for _, v := range p.Variables() {
		value, ok := start[v.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%d %s %g\n", row, v.Name, value)
		row++
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *ExecSolver) parseSolutionFile(path string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if s.Flavor == HiGHS {
		return parseHiGHSSolution(f)
	}
	return parseCBCSolution(f)
}

// parseCBCSolution reads CBC's solution file: a status header line
// followed by "index name value reducedCost" rows.
func parseCBCSolution(r io.Reader) (*Solution, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	if !scanner.Scan() {
		return nil, fmt.Errorf("empty solution file")
	}
	header := scanner.Text()
	sol := &Solution{Status: cbcStatus(header), Values: make(map[string]float64)}
	if !sol.Status.HasIncumbent() {
		return sol, nil
	}
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad value in row %q: %w", scanner.Text(), err)
		}
		sol.Values[fields[1]] = value
	}
	return sol, scanner.Err()
}

func cbcStatus(header string) TerminationStatus {
	h := strings.ToLower(header)
	switch {
	case strings.HasPrefix(h, "optimal"):
		return StatusOptimal
	case strings.Contains(h, "infeasible"):
		return StatusInfeasible
	case strings.Contains(h, "time") && strings.Contains(h, "objective"):
		return StatusTimeLimit
	case strings.Contains(h, "objective"):
		return StatusFeasible
	default:
		return StatusUnknown
	}
}

// parseHiGHSSolution reads a HiGHS --solution_file: a "Model status"
// section followed by column name/value pairs under "# Columns".
func parseHiGHSSolution(r io.Reader) (*Solution, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	sol := &Solution{Status: StatusUnknown, Values: make(map[string]float64)}
	inColumns := false
	remaining := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "Model status":
			if scanner.Scan() {
				sol.Status = highsStatus(strings.TrimSpace(scanner.Text()))
			}
		case strings.HasPrefix(line, "# Columns"):
			fields := strings.Fields(line)
			if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
				remaining = n
				inColumns = true
			}
		case inColumns && remaining > 0:
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				value, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return nil, fmt.Errorf("bad value in row %q: %w", line, err)
				}
				sol.Values[fields[0]] = value
			}
			remaining--
			if remaining == 0 {
				inColumns = false
			}
		}
	}
	return sol, scanner.Err()
}

func highsStatus(status string) TerminationStatus {
	switch strings.ToLower(status) {
	case "optimal":
		return StatusOptimal
	case "infeasible":
		return StatusInfeasible
	case "time limit reached":
		return StatusTimeLimit
	case "feasible":
		return StatusFeasible
	default:
		return StatusUnknown
	}
}
