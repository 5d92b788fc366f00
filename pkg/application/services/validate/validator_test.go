package validate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bakeplan/bakeplan/pkg/application/services/model"
	"github.com/bakeplan/bakeplan/pkg/application/services/routing"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

const gfWhite = entities.ProductID("GF_WHITE")

func fixtureInput(t *testing.T) (model.Input, entities.Date) {
	t.Helper()
	start := entities.NewDate(2025, time.June, 2)

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
	demand, err := entities.NewDemandSet([]entities.ForecastEntry{
		{Destination: "BR1", Product: gfWhite, Date: start.Add(1), Units: 500},
		{Destination: "BR1", Product: gfWhite, Date: start.Add(2), Units: 500},
	})
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

func cleanPlan(input model.Input, start entities.Date) *entities.Plan {
	plan := &entities.Plan{Horizon: input.Horizon, EndingCohorts: entities.CohortInventory{}}
	for day := 0; day <= 1; day++ {
		pd := start.Add(day)
		plan.Batches = append(plan.Batches, entities.ProductionBatch{Product: gfWhite, Date: pd, Units: 500, Hours: 5})
		plan.Shipments = append(plan.Shipments, entities.Shipment{
			From: "PLANT", To: "BR1", Product: gfWhite,
			ProduceDate: pd, DepartDate: pd, DeliverDate: pd.Add(1),
			DepartState: entities.Ambient, ArriveState: entities.Ambient, Units: 500,
		})
		plan.Fills = append(plan.Fills, entities.DemandFill{
			Destination: "BR1", Product: gfWhite, Date: pd.Add(1), ProduceDate: pd, Units: 500,
		})
	}
	return plan
}

func TestValidator_CleanPlanPasses(t *testing.T) {
	input, start := fixtureInput(t)
	violations := NewValidator(input, 1e-6).Check(cleanPlan(input, start))
	assert.Empty(t, violations)
}

func TestValidator_FindsViolations(t *testing.T) {
	input, start := fixtureInput(t)

	tests := []struct {
		name     string
		mutate   func(p *entities.Plan)
		wantCode string
	}{
		{
			name: "unit leak breaks conservation",
			mutate: func(p *entities.Plan) {
				p.Fills[0].Units = 400
			},
			wantCode: "conservation",
		},
		{
			name: "under-covered demand cell",
			mutate: func(p *entities.Plan) {
				p.Fills[1].Units = 450
				// keep conservation balanced by parking the rest
				p.EndingCohorts.Add(entities.CohortKey{
					Location: "BR1", Product: gfWhite,
					ProduceDate: start.Add(1), CurrentDate: input.Horizon.End, State: entities.Ambient,
				}, 50)
			},
			wantCode: "demand",
		},
		{
			name: "off-case batch",
			mutate: func(p *entities.Plan) {
				p.Batches[0].Units = 503
				p.Fills[0].Units = 503
			},
			wantCode: "case-alignment",
		},
		{
			name: "inflated pallet count",
			mutate: func(p *entities.Plan) {
				// 500 units at 50 per pallet needs 10; anything else is a
				// misreported load
				p.TruckLoads = append(p.TruckLoads, entities.TruckLoad{
					Truck: "T1", DepartDate: start, Product: gfWhite, Units: 500, Pallets: 20,
				})
			},
			wantCode: "pallet-count",
		},
		{
			name: "stale fill",
			mutate: func(p *entities.Plan) {
				p.Fills[0].ProduceDate = start.Add(-20)
				p.Batches[0].Date = start.Add(-20)
			},
			wantCode: "shelf-life",
		},
		{
			name: "stale breadroom delivery",
			mutate: func(p *entities.Plan) {
				p.Shipments[0].ProduceDate = start.Add(-12)
			},
			wantCode: "freshness",
		},
		{
			name: "overbooked labor day",
			mutate: func(p *entities.Plan) {
				p.Batches[0].Hours = 14
			},
			wantCode: "labor-capacity",
		},
		{
			name: "negative shipment",
			mutate: func(p *entities.Plan) {
				p.Shipments[0].Units = -10
			},
			wantCode: "negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := cleanPlan(input, start)
			tt.mutate(plan)
			violations := NewValidator(input, 1e-6).Check(plan)
			require.NotEmpty(t, violations)
			found := false
			for _, v := range violations {
				if v.Code == tt.wantCode {
					found = true
				}
			}
			assert.True(t, found, "expected a %s violation, got %v", tt.wantCode, violations)
		})
	}
}

func TestValidator_TruckTiming(t *testing.T) {
	input, start := fixtureInput(t)
	truck, err := entities.NewTruckSchedule(
		"T1", "BR1", entities.MorningDeparture,
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		1000, 20, decimal.NewFromInt(50),
	)
	require.NoError(t, err)
	input.Trucks = []*entities.TruckSchedule{truck}

	plan := cleanPlan(input, start)
	for i := range plan.Shipments {
		plan.Shipments[i].Truck = "T1"
	}

	// Same-day production cannot ride a morning departure
	violations := NewValidator(input, 1e-6).Check(plan)
	require.NotEmpty(t, violations)
	for _, v := range violations {
		assert.Equal(t, "truck-timing", v.Code)
	}

	// An afternoon departure may carry same-day production
	truck.Departure = entities.AfternoonDeparture
	assert.Empty(t, NewValidator(input, 1e-6).Check(plan))

	// A shipment on a day the truck does not run is a timing violation
	truck.Weekdays = []time.Weekday{time.Saturday}
	violations = NewValidator(input, 1e-6).Check(plan)
	require.NotEmpty(t, violations)
	assert.Contains(t, violations[0].Detail, "does not run")
}
