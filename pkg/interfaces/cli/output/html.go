package output

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/bakeplan/bakeplan/pkg/application/dto"
	"github.com/bakeplan/bakeplan/pkg/application/services/rolling"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// generateHTMLOutput writes a standalone HTML plan report to OutputDir
func generateHTMLOutput(plan *entities.Plan, windows []rolling.WindowResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("html format requires -output directory")
	}
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data := htmlReport{
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Horizon:     plan.Horizon.String(),
		Production:  int64(plan.TotalProduction()),
		Shortage:    plan.TotalShortage(),
		Costs:       plan.Costs.String(),
		Result:      dto.FromPlan(plan),
	}
	for _, w := range windows {
		data.Windows = append(data.Windows, htmlWindow{
			Index:     w.Window.Index,
			Range:     w.Window.Range.String(),
			Status:    w.Status.String(),
			Objective: w.Objective,
			Elapsed:   w.Elapsed.Round(time.Millisecond).String(),
		})
	}

	path := filepath.Join(config.OutputDir, "plan.html")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Printf("Plan report written to %s\n", path)
	return nil
}

type htmlReport struct {
	GeneratedAt string
	Horizon     string
	Production  int64
	Shortage    float64
	Costs       string
	Windows     []htmlWindow
	Result      dto.PlanResult
}

type htmlWindow struct {
	Index     int
	Range     string
	Status    string
	Objective float64
	Elapsed   string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Production Plan {{.Horizon}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
h2 { font-size: 1.1em; margin-top: 1.5em; }
table { border-collapse: collapse; margin-top: 0.5em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; font-size: 0.9em; }
th { background: #f0f0f0; }
td.num { text-align: right; }
.warn { color: #a00; }
</style>
</head>
<body>
<h1>Production Plan {{.Horizon}}</h1>
<p>Generated {{.GeneratedAt}} &middot; {{.Production}} units produced{{if gt .Shortage 0.0}} &middot; <span class="warn">{{printf "%.0f" .Shortage}} units short</span>{{end}}</p>
<p><strong>Costs:</strong> {{.Costs}}</p>

<h2>Windows</h2>
<table>
<tr><th>#</th><th>Range</th><th>Status</th><th>Objective</th><th>Elapsed</th></tr>
{{range .Windows}}<tr><td class="num">{{.Index}}</td><td>{{.Range}}</td><td>{{.Status}}</td><td class="num">{{printf "%.2f" .Objective}}</td><td class="num">{{.Elapsed}}</td></tr>
{{end}}</table>

<h2>Production Batches</h2>
<table>
<tr><th>Date</th><th>Product</th><th>Units</th><th>Hours</th></tr>
{{range .Result.Batches}}<tr><td>{{.Date}}</td><td>{{.Product}}</td><td class="num">{{.Units}}</td><td class="num">{{printf "%.1f" .Hours}}</td></tr>
{{end}}</table>

{{if .Result.Shipments}}<h2>Shipments</h2>
<table>
<tr><th>Depart</th><th>From</th><th>To</th><th>Product</th><th>Produced</th><th>Deliver</th><th>Units</th><th>Truck</th></tr>
{{range .Result.Shipments}}<tr><td>{{.DepartDate}}</td><td>{{.From}}</td><td>{{.To}}</td><td>{{.Product}}</td><td>{{.ProduceDate}}</td><td>{{.DeliverDate}}</td><td class="num">{{printf "%.0f" .Units}}</td><td>{{.Truck}}</td></tr>
{{end}}</table>{{end}}

{{if .Result.Shortages}}<h2 class="warn">Shortages</h2>
<table>
<tr><th>Date</th><th>Destination</th><th>Product</th><th>Units</th></tr>
{{range .Result.Shortages}}<tr><td>{{.Date}}</td><td>{{.Destination}}</td><td>{{.Product}}</td><td class="num">{{printf "%.0f" .Units}}</td></tr>
{{end}}</table>{{end}}

{{if .Result.Disposals}}<h2>Disposals</h2>
<table>
<tr><th>Date</th><th>Location</th><th>Product</th><th>Produced</th><th>State</th><th>Units</th></tr>
{{range .Result.Disposals}}<tr><td>{{.Date}}</td><td>{{.Location}}</td><td>{{.Product}}</td><td>{{.ProduceDate}}</td><td>{{.State}}</td><td class="num">{{printf "%.0f" .Units}}</td></tr>
{{end}}</table>{{end}}

{{if .Result.EndingCohorts}}<h2>Ending Inventory</h2>
<table>
<tr><th>Location</th><th>Product</th><th>Produced</th><th>State</th><th>Units</th></tr>
{{range .Result.EndingCohorts}}<tr><td>{{.Location}}</td><td>{{.Product}}</td><td>{{.ProduceDate}}</td><td>{{.State}}</td><td class="num">{{printf "%.0f" .Units}}</td></tr>
{{end}}</table>{{end}}

</body>
</html>
`))
