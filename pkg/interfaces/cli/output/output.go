package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bakeplan/bakeplan/pkg/application/dto"
	"github.com/bakeplan/bakeplan/pkg/application/services/rolling"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format     string
	OutputDir  string
	Verbose    bool
	SolveTime  time.Duration
	InputFiles map[string]string
}

// Generate renders the stitched plan in the specified format
func Generate(plan *entities.Plan, windows []rolling.WindowResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(plan, windows, config)
	case "json":
		return generateJSONOutput(plan, windows, config)
	case "csv":
		return generateCSVOutput(plan, config)
	case "html":
		return generateHTMLOutput(plan, windows, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(plan *entities.Plan, windows []rolling.WindowResult, config Config) error {
	fmt.Printf("📊 Production Plan Summary\n")
	fmt.Printf("==========================\n\n")

	fmt.Printf("Horizon: %s (%d days, %d windows)\n", plan.Horizon, plan.Horizon.Days(), len(windows))
	fmt.Printf("Production: %d units in %d batches\n", plan.TotalProduction(), len(plan.Batches))
	fmt.Printf("Shipments: %d\n", len(plan.Shipments))
	fmt.Printf("Demand fills: %d\n", len(plan.Fills))
	if shortage := plan.TotalShortage(); shortage > 0 {
		fmt.Printf("⚠️  Unmet demand: %.0f units\n", shortage)
	}
	fmt.Printf("Solve time: %v\n\n", config.SolveTime)

	fmt.Printf("💰 Costs: %s\n\n", plan.Costs)

	if len(plan.Batches) > 0 {
		fmt.Printf("🏭 Production Batches:\n")
		fmt.Printf("%-12s %-12s %-10s %-8s\n", "Date", "Product", "Units", "Hours")
		fmt.Printf("%-12s %-12s %-10s %-8s\n", "------------", "------------", "----------", "--------")
		for _, b := range plan.Batches {
			fmt.Printf("%-12s %-12s %-10d %-8.1f\n", b.Date, b.Product, b.Units, b.Hours)
		}
		fmt.Println()
	}

	if len(plan.Shipments) > 0 {
		fmt.Printf("🚚 Shipments:\n")
		fmt.Printf("%-12s %-16s %-12s %-12s %-8s %-6s\n",
			"Depart", "Leg", "Product", "Produced", "Units", "Truck")
		fmt.Printf("%-12s %-16s %-12s %-12s %-8s %-6s\n",
			"------------", "----------------", "------------", "------------", "--------", "------")
		for _, s := range plan.Shipments {
			leg := fmt.Sprintf("%s->%s", s.From, s.To)
			fmt.Printf("%-12s %-16s %-12s %-12s %-8.0f %-6s\n",
				s.DepartDate, leg, s.Product, s.ProduceDate, s.Units, s.Truck)
		}
		fmt.Println()
	}

	if len(plan.Shortages) > 0 {
		fmt.Printf("⚠️  Shortages:\n")
		fmt.Printf("%-12s %-12s %-12s %-8s\n", "Date", "Destination", "Product", "Units")
		fmt.Printf("%-12s %-12s %-12s %-8s\n", "------------", "------------", "------------", "--------")
		for _, s := range plan.Shortages {
			fmt.Printf("%-12s %-12s %-12s %-8.0f\n", s.Date, s.Destination, s.Product, s.Units)
		}
		fmt.Println()
	}

	if len(plan.Disposals) > 0 {
		fmt.Printf("🗑  Disposals:\n")
		fmt.Printf("%-12s %-12s %-12s %-12s %-8s\n", "Date", "Location", "Product", "Produced", "Units")
		fmt.Printf("%-12s %-12s %-12s %-12s %-8s\n", "------------", "------------", "------------", "------------", "--------")
		for _, d := range plan.Disposals {
			fmt.Printf("%-12s %-12s %-12s %-12s %-8.0f\n", d.Date, d.Location, d.Product, d.ProduceDate, d.Units)
		}
		fmt.Println()
	}

	if config.Verbose {
		fmt.Print(RenderTimeline(plan))
	}

	return nil
}

// jsonDocument is the JSON output envelope
type jsonDocument struct {
	GeneratedAt string              `json:"generated_at"`
	SolveTimeMS float64             `json:"solve_time_ms"`
	Windows     []jsonWindowSummary `json:"windows"`
	Plan        dto.PlanResult      `json:"plan"`
}

type jsonWindowSummary struct {
	Index          int     `json:"index"`
	Range          string  `json:"range"`
	CommitThrough  string  `json:"commit_through"`
	Status         string  `json:"status"`
	Objective      float64 `json:"objective"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// generateJSONOutput creates machine-readable JSON output
func generateJSONOutput(plan *entities.Plan, windows []rolling.WindowResult, config Config) error {
	doc := jsonDocument{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		SolveTimeMS: float64(config.SolveTime) / float64(time.Millisecond),
		Plan:        dto.FromPlan(plan),
	}
	for _, w := range windows {
		doc.Windows = append(doc.Windows, jsonWindowSummary{
			Index:          w.Window.Index,
			Range:          w.Window.Range.String(),
			CommitThrough:  w.Window.CommitThrough.String(),
			Status:         w.Status.String(),
			Objective:      w.Objective,
			ElapsedSeconds: w.Elapsed.Seconds(),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Println(string(data))
		return nil
	}
	path := filepath.Join(config.OutputDir, "plan.json")
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Plan written to %s\n", path)
	return nil
}

// generateCSVOutput writes one CSV file per plan section into OutputDir
func generateCSVOutput(plan *entities.Plan, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("csv format requires -output directory")
	}
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	result := dto.FromPlan(plan)

	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"batches.csv", []string{"date", "product", "units", "hours"}, batchRows(result.Batches)},
		{"shipments.csv", []string{"depart_date", "from", "to", "product", "produce_date", "deliver_date", "depart_state", "arrive_state", "units", "truck"}, shipmentRows(result.Shipments)},
		{"fills.csv", []string{"date", "destination", "product", "produce_date", "units"}, fillRows(result.Fills)},
		{"shortages.csv", []string{"date", "destination", "product", "units"}, shortageRows(result.Shortages)},
		{"disposals.csv", []string{"date", "location", "product", "produce_date", "state", "units"}, disposalRows(result.Disposals)},
		{"truck_loads.csv", []string{"depart_date", "truck", "product", "units", "pallets"}, truckLoadRows(result.TruckLoads)},
	}

	for _, f := range files {
		if len(f.rows) == 0 {
			continue
		}
		if err := writeCSV(filepath.Join(config.OutputDir, f.name), f.header, f.rows); err != nil {
			return err
		}
	}
	fmt.Printf("Plan CSVs written to %s\n", config.OutputDir)
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

func batchRows(batches []dto.BatchRow) [][]string {
	out := make([][]string, 0, len(batches))
	for _, b := range batches {
		out = append(out, []string{
			b.Date, b.Product,
			strconv.FormatInt(b.Units, 10),
			strconv.FormatFloat(b.Hours, 'f', 2, 64),
		})
	}
	return out
}

func shipmentRows(shipments []dto.ShipmentRow) [][]string {
	out := make([][]string, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, []string{
			s.DepartDate, s.From, s.To, s.Product, s.ProduceDate, s.DeliverDate,
			s.DepartState, s.ArriveState,
			strconv.FormatFloat(s.Units, 'f', 0, 64),
			s.Truck,
		})
	}
	return out
}

func fillRows(fills []dto.FillRow) [][]string {
	out := make([][]string, 0, len(fills))
	for _, f := range fills {
		out = append(out, []string{
			f.Date, f.Destination, f.Product, f.ProduceDate,
			strconv.FormatFloat(f.Units, 'f', 0, 64),
		})
	}
	return out
}

func shortageRows(shortages []dto.ShortageRow) [][]string {
	out := make([][]string, 0, len(shortages))
	for _, s := range shortages {
		out = append(out, []string{
			s.Date, s.Destination, s.Product,
			strconv.FormatFloat(s.Units, 'f', 0, 64),
		})
	}
	return out
}

func disposalRows(disposals []dto.DisposalRow) [][]string {
	out := make([][]string, 0, len(disposals))
	for _, d := range disposals {
		out = append(out, []string{
			d.Date, d.Location, d.Product, d.ProduceDate, d.State,
			strconv.FormatFloat(d.Units, 'f', 0, 64),
		})
	}
	return out
}

func truckLoadRows(loads []dto.TruckLoadRow) [][]string {
	out := make([][]string, 0, len(loads))
	for _, tl := range loads {
		out = append(out, []string{
			tl.DepartDate, tl.Truck, tl.Product,
			strconv.FormatFloat(tl.Units, 'f', 0, 64),
			strconv.FormatInt(tl.Pallets, 10),
		})
	}
	return out
}
