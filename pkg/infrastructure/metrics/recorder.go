package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bakeplan/bakeplan/pkg/application/services/rolling"
)

// Recorder exports rolling-horizon solve metrics to Prometheus. It plugs
// into the orchestrator as an observer and records one sample per window.
type Recorder struct {
	windows       *prometheus.CounterVec
	solveSeconds  prometheus.Histogram
	objective     prometheus.Gauge
	shortageUnits prometheus.Counter
	warnings      prometheus.Counter
}

// NewRecorder creates a recorder and registers its collectors
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		windows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bakeplan",
			Name:      "windows_total",
			Help:      "Solved rolling-horizon windows by termination status.",
		}, []string{"status"}),
		solveSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bakeplan",
			Name:      "window_solve_seconds",
			Help:      "Wall-clock solve time per window.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		objective: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bakeplan",
			Name:      "window_objective",
			Help:      "Objective value of the most recently solved window.",
		}),
		shortageUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bakeplan",
			Name:      "shortage_units_total",
			Help:      "Unmet demand units across solved windows.",
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bakeplan",
			Name:      "window_warnings_total",
			Help:      "Model build warnings across solved windows.",
		}),
	}
	reg.MustRegister(r.windows, r.solveSeconds, r.objective, r.shortageUnits, r.warnings)
	return r
}

// Verify interface compliance
var _ rolling.Observer = (*Recorder)(nil)

// ObserveWindow records one window's solve outcome
func (r *Recorder) ObserveWindow(result rolling.WindowResult) {
	r.windows.WithLabelValues(result.Status.String()).Inc()
	r.solveSeconds.Observe(result.Elapsed.Seconds())
	r.objective.Set(result.Objective)
	r.warnings.Add(float64(len(result.Warnings)))
	if result.Plan != nil {
		r.shortageUnits.Add(result.Plan.TotalShortage())
	}
}
