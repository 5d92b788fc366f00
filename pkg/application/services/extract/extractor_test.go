package extract

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bakeplan/bakeplan/pkg/application/services/model"
	"github.com/bakeplan/bakeplan/pkg/application/services/routing"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/solver"
	"github.com/bakeplan/bakeplan/pkg/solver/solvertest"
)

const gfWhite = entities.ProductID("GF_WHITE")

func directInput(t *testing.T, demandDays []int, units entities.Quantity) (model.Input, entities.Date) {
	t.Helper()
	start := entities.NewDate(2025, time.June, 2) // Monday

	plant, err := entities.NewLocation("PLANT", "Plant", entities.Manufacturing, entities.AmbientOnly, 0)
	require.NoError(t, err)
	br, err := entities.NewLocation("BR1", "Breadroom 1", entities.Breadroom, entities.AmbientOnly, 0)
	require.NoError(t, err)
	leg, err := entities.NewLeg("PLANT", "BR1", entities.Ambient, entities.Ambient, 1, decimal.NewFromFloat(0.1))
	require.NoError(t, err)
	network, err := entities.NewNetwork([]*entities.Location{plant, br}, []*entities.Leg{leg})
	require.NoError(t, err)

	product, err := entities.NewProduct(gfWhite, "GF White", 10, 5)
	require.NoError(t, err)

	horizon := entities.DateRange{Start: start, End: start.Add(4)}
	var entries []entities.ForecastEntry
	for _, day := range demandDays {
		entries = append(entries, entities.ForecastEntry{Destination: "BR1", Product: gfWhite, Date: start.Add(day), Units: units})
	}
	demand, err := entities.NewDemandSet(entries)
	require.NoError(t, err)

	var laborDays []*entities.LaborDay
	for d := horizon.Start; d <= horizon.End; d++ {
		day, err := entities.NewFixedLaborDay(d, 8, 4, decimal.NewFromInt(25), decimal.NewFromInt(40))
		require.NoError(t, err)
		laborDays = append(laborDays, day)
	}
	labor, err := entities.NewLaborCalendar(laborDays)
	require.NoError(t, err)

	costs, err := entities.NewCostStructure(
		decimal.NewFromInt(1), decimal.NewFromFloat(0.05), decimal.NewFromFloat(0.01),
		decimal.NewFromFloat(1.5), decimal.NewFromInt(10), 100,
	)
	require.NoError(t, err)

	enum, err := routing.NewRouteEnumerator(network, entities.DefaultShelfLife(), routing.DefaultConfig())
	require.NoError(t, err)
	routes, err := enum.EnumerateAll()
	require.NoError(t, err)

	return model.Input{
		Horizon:   horizon,
		Network:   network,
		Products:  map[entities.ProductID]*entities.Product{gfWhite: product},
		Demand:    demand,
		Labor:     labor,
		Routes:    routes,
		Costs:     costs,
		ShelfLife: entities.DefaultShelfLife(),
	}, start
}

// dailyScript produces 500 units on each of days 0..3, ships overnight
// and fills demand on days 1..4, optionally loading truck T1.
func dailyScript(start entities.Date, withTruck bool) func(*solver.Problem) (map[string]float64, error) {
	return func(p *solver.Problem) (map[string]float64, error) {
		v := make(map[string]float64)
		for day := 0; day <= 3; day++ {
			pd := start.Add(day)
			v[model.ProductionVar(gfWhite, pd)] = 500
			v[model.CasesVar(gfWhite, pd)] = 50
			v[model.HoursVar(pd)] = 5
			v[model.ActiveVar(pd)] = 1
			v[model.ProductActiveVar(gfWhite, pd)] = 1
			v[model.ShipmentVar(entities.ShipmentKey{
				Leg: entities.LegKey{From: "PLANT", To: "BR1"}, Product: gfWhite,
				ProduceDate: pd, DeliverDate: pd.Add(1),
			})] = 500
			v[model.AllocationVar(entities.AllocationKey{
				Destination: "BR1", Product: gfWhite, ProduceDate: pd, Date: pd.Add(1),
			})] = 500
			if withTruck {
				v[model.TruckUsedVar("T1", pd)] = 1
				v[model.TruckLoadVar("T1", gfWhite, pd)] = 500
				v[model.TruckPalletsVar("T1", gfWhite, pd)] = 10
			}
		}
		return v, nil
	}
}

func solveAndExtract(t *testing.T, input model.Input, cfg model.Config, s solver.Solver) *entities.Plan {
	t.Helper()
	run, err := model.NewRun(input, cfg)
	require.NoError(t, err)
	require.NoError(t, run.Build())
	status, err := run.Solve(context.Background(), s, solver.Options{})
	require.NoError(t, err)
	require.True(t, status.HasIncumbent())
	plan, err := NewExtractor(1e-6).Extract(run)
	require.NoError(t, err)
	return plan
}

func TestExtractor_DirectNetworkPlan(t *testing.T) {
	input, start := directInput(t, []int{1, 2, 3, 4}, 500)
	scripted := &solvertest.ScriptedSolver{Script: dailyScript(start, false)}
	plan := solveAndExtract(t, input, model.DefaultConfig(), scripted)

	require.Len(t, plan.Batches, 4)
	for i, b := range plan.Batches {
		assert.Equal(t, start.Add(i), b.Date)
		assert.Equal(t, entities.Quantity(500), b.Units)
		assert.InDelta(t, 5.0, b.Hours, 1e-9)
	}
	assert.Equal(t, entities.Quantity(2000), plan.TotalProduction())

	require.Len(t, plan.Shipments, 4)
	for i, s := range plan.Shipments {
		assert.Equal(t, entities.LocationID("PLANT"), s.From)
		assert.Equal(t, entities.LocationID("BR1"), s.To)
		assert.Equal(t, start.Add(i), s.ProduceDate)
		assert.Equal(t, start.Add(i), s.DepartDate)
		assert.Equal(t, start.Add(i+1), s.DeliverDate)
		assert.Empty(t, s.Truck)
	}

	require.Len(t, plan.Fills, 4)
	assert.Empty(t, plan.Shortages)
	assert.Empty(t, plan.Disposals)
	assert.Empty(t, plan.EndingCohorts)

	// Sunk fixed-day labor: 5 days x 8h x 25/h
	assert.Equal(t, "1000", plan.Costs.Labor.String())
	assert.Equal(t, "2000", plan.Costs.Production.String())
	assert.Equal(t, "200", plan.Costs.Transport.String())
	assert.True(t, plan.Costs.Holding.IsZero())
	assert.Equal(t, "3200", plan.Costs.Total().String())
}

func TestExtractor_AttributesTruckLoads(t *testing.T) {
	input, start := directInput(t, []int{1, 2, 3, 4}, 500)
	truck, err := entities.NewTruckSchedule(
		"T1", "BR1", entities.AfternoonDeparture,
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		1000, 20, decimal.NewFromInt(50),
	)
	require.NoError(t, err)
	input.Trucks = []*entities.TruckSchedule{truck}

	scripted := &solvertest.ScriptedSolver{Script: dailyScript(start, true)}
	plan := solveAndExtract(t, input, model.DefaultConfig(), scripted)

	require.Len(t, plan.TruckLoads, 4)
	for _, tl := range plan.TruckLoads {
		assert.Equal(t, entities.TruckID("T1"), tl.Truck)
		assert.InDelta(t, 500.0, tl.Units, 1e-9)
		assert.Equal(t, entities.Quantity(10), tl.Pallets)
	}

	require.Len(t, plan.Shipments, 4)
	for _, s := range plan.Shipments {
		assert.Equal(t, entities.TruckID("T1"), s.Truck)
	}

	// Transport now includes four fixed departures on top of leg cost
	assert.Equal(t, "400", plan.Costs.Transport.String())
}

func TestExtractor_PalletCountMatchesLoadCeiling(t *testing.T) {
	input, start := directInput(t, []int{1, 2, 3, 4}, 500)
	truck, err := entities.NewTruckSchedule(
		"T1", "BR1", entities.AfternoonDeparture,
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		1000, 20, decimal.NewFromInt(50),
	)
	require.NoError(t, err)
	input.Trucks = []*entities.TruckSchedule{truck}

	// Pallet variables only bound capacity, so an incumbent may park them
	// anywhere between the true ceiling and truck capacity at identical
	// cost. 500 units at 50 per pallet is 10 pallets; report that, not
	// whatever the solver left in the variable.
	script := func(p *solver.Problem) (map[string]float64, error) {
		v, err := dailyScript(start, true)(p)
		if err != nil {
			return nil, err
		}
		for day := 0; day <= 3; day++ {
			v[model.TruckPalletsVar("T1", gfWhite, start.Add(day))] = 20
		}
		return v, nil
	}
	plan := solveAndExtract(t, input, model.DefaultConfig(), &solvertest.ScriptedSolver{Script: script})

	require.Len(t, plan.TruckLoads, 4)
	for _, tl := range plan.TruckLoads {
		assert.InDelta(t, 500.0, tl.Units, 1e-9)
		assert.Equal(t, entities.Quantity(10), tl.Pallets)
	}
}

func TestExtractor_ShortagesAndPenalty(t *testing.T) {
	input, start := directInput(t, []int{0, 2}, 500)
	cfg := model.DefaultConfig()
	cfg.AllowShortages = true

	script := func(p *solver.Problem) (map[string]float64, error) {
		v := make(map[string]float64)
		// Day-0 demand is unreachable: all shortage. Day-2 is served.
		v[model.ShortageVar(entities.DemandKey{Destination: "BR1", Product: gfWhite, Date: start})] = 500
		pd := start.Add(1)
		v[model.ProductionVar(gfWhite, pd)] = 500
		v[model.CasesVar(gfWhite, pd)] = 50
		v[model.HoursVar(pd)] = 5
		v[model.ActiveVar(pd)] = 1
		v[model.ProductActiveVar(gfWhite, pd)] = 1
		v[model.ShipmentVar(entities.ShipmentKey{
			Leg: entities.LegKey{From: "PLANT", To: "BR1"}, Product: gfWhite,
			ProduceDate: pd, DeliverDate: pd.Add(1),
		})] = 500
		v[model.AllocationVar(entities.AllocationKey{
			Destination: "BR1", Product: gfWhite, ProduceDate: pd, Date: pd.Add(1),
		})] = 500
		return v, nil
	}
	plan := solveAndExtract(t, input, cfg, &solvertest.ScriptedSolver{Script: script})

	require.Len(t, plan.Shortages, 1)
	assert.Equal(t, start, plan.Shortages[0].Date)
	assert.InDelta(t, 500.0, plan.Shortages[0].Units, 1e-9)
	assert.InDelta(t, 500.0, plan.TotalShortage(), 1e-9)
	assert.Equal(t, "5000", plan.Costs.Shortage.String())
}

func TestExtractor_RequiresSolvedRun(t *testing.T) {
	input, _ := directInput(t, []int{1}, 500)
	run, err := model.NewRun(input, model.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, run.Build())

	_, err = NewExtractor(1e-6).Extract(run)
	assert.Error(t, err)
}

func TestExtractor_RejectsInfeasibleOutcome(t *testing.T) {
	input, _ := directInput(t, []int{1}, 500)
	run, err := model.NewRun(input, model.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, run.Build())
	status, err := run.Solve(context.Background(), solvertest.InfeasibleSolver{}, solver.Options{})
	require.NoError(t, err)
	require.Equal(t, solver.StatusInfeasible, status)

	_, err = NewExtractor(1e-6).Extract(run)
	assert.Error(t, err)
}
