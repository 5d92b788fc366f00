package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bakeplan/bakeplan/pkg/application/services/cohorts"
	"github.com/bakeplan/bakeplan/pkg/application/services/routing"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/solver"
)

const gfWhite = entities.ProductID("GF_WHITE")

// directFixture is the smallest end-to-end network: one plant, one
// breadroom, one ambient leg with a one-day transit.
type directFixture struct {
	input Input
	start entities.Date
}

func newDirectFixture(t *testing.T, demandDays []int, units entities.Quantity) directFixture {
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
		entries = append(entries, entities.ForecastEntry{
			Destination: "BR1", Product: gfWhite, Date: start.Add(day), Units: units,
		})
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
		decimal.NewFromInt(1),      // production per unit
		decimal.NewFromFloat(0.05), // frozen storage
		decimal.NewFromFloat(0.01), // ambient storage
		decimal.NewFromFloat(1.5),  // waste multiplier
		decimal.NewFromInt(10),     // shortage penalty
		100,                        // units per hour
	)
	require.NoError(t, err)
	costs.DefaultChangeoverHours = 0.5

	enum, err := routing.NewRouteEnumerator(network, entities.DefaultShelfLife(), routing.DefaultConfig())
	require.NoError(t, err)
	routes, err := enum.EnumerateAll()
	require.NoError(t, err)

	return directFixture{
		start: start,
		input: Input{
			Horizon:   horizon,
			Network:   network,
			Products:  map[entities.ProductID]*entities.Product{gfWhite: product},
			Demand:    demand,
			Labor:     labor,
			Routes:    routes,
			Costs:     costs,
			ShelfLife: entities.DefaultShelfLife(),
		},
	}
}

// handPlan builds the produce-daily, ship-overnight assignment for the
// direct fixture: 500 units made on days 0..3, delivered days 1..4, no
// carried inventory.
func handPlan(fx directFixture) map[string]float64 {
	v := make(map[string]float64)
	for day := 0; day <= 3; day++ {
		pd := fx.start.Add(day)
		v[ProductionVar(gfWhite, pd)] = 500
		v[CasesVar(gfWhite, pd)] = 50
		v[HoursVar(pd)] = 5
		v[ActiveVar(pd)] = 1
		v[ProductActiveVar(gfWhite, pd)] = 1
		v[ShipmentVar(entities.ShipmentKey{
			Leg:         entities.LegKey{From: "PLANT", To: "BR1"},
			Product:     gfWhite,
			ProduceDate: pd,
			DeliverDate: pd.Add(1),
		})] = 500
		v[AllocationVar(entities.AllocationKey{
			Destination: "BR1", Product: gfWhite, ProduceDate: pd, Date: pd.Add(1),
		})] = 500
	}
	return v
}

func TestRun_BuildDirectNetwork(t *testing.T) {
	fx := newDirectFixture(t, []int{1, 2, 3, 4}, 500)

	run, err := NewRun(fx.input, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, StateCreated, run.State())
	require.NoError(t, run.Build())
	require.Equal(t, StateBuilt, run.State())

	p := run.Problem()

	// Production, cases and the case-alignment row exist for every day
	for d := fx.input.Horizon.Start; d <= fx.input.Horizon.End; d++ {
		assert.True(t, p.HasVariable(ProductionVar(gfWhite, d)))
		caseRow, ok := p.Constraint("case_GF_WHITE_" + dateTag(d))
		require.True(t, ok)
		assert.Equal(t, solver.Equal, caseRow.Sense)
	}

	// Cases are integer with the product's units-per-case coefficient
	cv, ok := p.Variable(CasesVar(gfWhite, fx.start))
	require.True(t, ok)
	assert.Equal(t, solver.Integer, cv.Type)

	// Same-day production cohort balance includes the production term
	prodKey := entities.CohortKey{Location: "PLANT", Product: gfWhite, ProduceDate: fx.start, CurrentDate: fx.start, State: entities.Ambient}
	bal, ok := p.Constraint("bal_" + balanceTag(prodKey))
	require.True(t, ok)
	var hasProd bool
	for _, term := range bal.Terms {
		if term.Var == ProductionVar(gfWhite, fx.start) {
			hasProd = true
			assert.Equal(t, -1.0, term.Coef)
		}
	}
	assert.True(t, hasProd, "production cohort balance misses the production inflow")

	// Demand rows are equalities without shortage slack by default
	dem, ok := p.Constraint("dem_BR1_GF_WHITE_" + dateTag(fx.start.Add(1)))
	require.True(t, ok)
	assert.Equal(t, solver.Equal, dem.Sense)
	assert.Equal(t, 500.0, dem.RHS)
	for _, term := range dem.Terms {
		assert.NotContains(t, term.Var, "short_")
	}
}

func TestRun_HandPlanIsFeasible(t *testing.T) {
	fx := newDirectFixture(t, []int{1, 2, 3, 4}, 500)
	run, err := NewRun(fx.input, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, run.Build())

	p := run.Problem()
	values := handPlan(fx)
	require.NoError(t, p.CheckFeasible(values, 1e-6))

	// production 2000, transport 200, no overtime, no holding
	assert.InDelta(t, 2200.0, p.EvaluateObjective(values), 1e-6)
}

func TestRun_UnreachableDemandFailsBuild(t *testing.T) {
	// Day-0 demand cannot be served: one-day transit, no opening stock
	fx := newDirectFixture(t, []int{0, 1}, 500)
	run, err := NewRun(fx.input, DefaultConfig())
	require.NoError(t, err)

	err = run.Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructurallyInfeasible))
}

func TestRun_ShortagesAbsorbUnreachableDemand(t *testing.T) {
	fx := newDirectFixture(t, []int{0, 2}, 500)
	cfg := DefaultConfig()
	cfg.AllowShortages = true

	run, err := NewRun(fx.input, cfg)
	require.NoError(t, err)
	require.NoError(t, run.Build())

	p := run.Problem()
	day0 := entities.DemandKey{Destination: "BR1", Product: gfWhite, Date: fx.start}
	sv, ok := p.Variable(ShortageVar(day0))
	require.True(t, ok)
	assert.Equal(t, 500.0, sv.Upper)
	assert.Equal(t, 10.0, p.ObjectiveCoef(ShortageVar(day0)))

	// The day-0 demand row is satisfiable by shortage alone
	dem, ok := p.Constraint("dem_BR1_GF_WHITE_" + dateTag(fx.start))
	require.True(t, ok)
	values := map[string]float64{ShortageVar(day0): 500}
	lhs := 0.0
	for _, term := range dem.Terms {
		lhs += term.Coef * values[term.Var]
	}
	assert.Equal(t, dem.RHS, lhs)
}

func TestRun_OvertimeKicksInAboveFixedHours(t *testing.T) {
	// 1000 units at 100/hour is 10 hours against 8 fixed: 2 overtime
	fx := newDirectFixture(t, []int{1}, 1000)
	run, err := NewRun(fx.input, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, run.Build())

	p := run.Problem()
	pd := fx.start
	values := map[string]float64{
		ProductionVar(gfWhite, pd):    1000,
		CasesVar(gfWhite, pd):         100,
		HoursVar(pd):                  10,
		OvertimeVar(pd):               2,
		ActiveVar(pd):                 1,
		ProductActiveVar(gfWhite, pd): 1,
		ShipmentVar(entities.ShipmentKey{Leg: entities.LegKey{From: "PLANT", To: "BR1"}, Product: gfWhite, ProduceDate: pd, DeliverDate: pd.Add(1)}): 1000,
		AllocationVar(entities.AllocationKey{Destination: "BR1", Product: gfWhite, ProduceDate: pd, Date: pd.Add(1)}):                                1000,
	}
	require.NoError(t, p.CheckFeasible(values, 1e-6))

	// Underreporting overtime must violate the overtime row
	values[OvertimeVar(pd)] = 0
	assert.Error(t, p.CheckFeasible(values, 1e-6))

	assert.Equal(t, 40.0, p.ObjectiveCoef(OvertimeVar(pd)))
}

func TestRun_LifecycleGuards(t *testing.T) {
	fx := newDirectFixture(t, []int{1}, 500)
	run, err := NewRun(fx.input, DefaultConfig())
	require.NoError(t, err)

	// Solve before Build is rejected
	_, err = run.Solve(context.Background(), nil, solver.Options{})
	assert.Error(t, err)

	require.NoError(t, run.Build())
	assert.Error(t, run.Build(), "second Build must be rejected")

	run.Release()
	assert.Equal(t, StateReleased, run.State())
	assert.Nil(t, run.Problem())
}

func truckFor(t *testing.T, dep entities.DepartureType) *entities.TruckSchedule {
	t.Helper()
	truck, err := entities.NewTruckSchedule(
		"T1", "BR1", dep,
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		1000, 20, decimal.NewFromInt(50),
	)
	require.NoError(t, err)
	return truck
}

func TestRun_AfternoonTrucksCarrySameDayProduction(t *testing.T) {
	fx := newDirectFixture(t, []int{1, 2, 3, 4}, 500)
	fx.input.Trucks = []*entities.TruckSchedule{truckFor(t, entities.AfternoonDeparture)}

	run, err := NewRun(fx.input, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, run.Build())

	p := run.Problem()
	values := handPlan(fx)
	for day := 0; day <= 3; day++ {
		d := fx.start.Add(day)
		values[TruckUsedVar("T1", d)] = 1
		values[TruckLoadVar("T1", gfWhite, d)] = 500
		values[TruckPalletsVar("T1", gfWhite, d)] = 10
	}
	require.NoError(t, p.CheckFeasible(values, 1e-6))

	// 2200 base plus four fixed truck departures at 50
	assert.InDelta(t, 2400.0, p.EvaluateObjective(values), 1e-6)

	// Shipments cannot bypass the truck
	values[TruckLoadVar("T1", gfWhite, fx.start)] = 0
	values[TruckPalletsVar("T1", gfWhite, fx.start)] = 0
	assert.Error(t, p.CheckFeasible(values, 1e-6))
}

func TestRun_LoadsWithoutShipmentsAreForcedToZero(t *testing.T) {
	fx := newDirectFixture(t, []int{1, 2, 3, 4}, 500)
	fx.input.Trucks = []*entities.TruckSchedule{truckFor(t, entities.AfternoonDeparture)}

	run, err := NewRun(fx.input, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, run.Build())

	p := run.Problem()

	// The truck runs on the last day, but a one-day transit means nothing
	// can depart then; the linkage row must still exist and pin the loads.
	last := fx.start.Add(4)
	link, ok := p.Constraint("trucklink_BR1_GF_WHITE_" + dateTag(last))
	require.True(t, ok, "linkage row missing for a run-day without shipments")
	require.Len(t, link.Terms, 1)
	assert.Equal(t, TruckLoadVar("T1", gfWhite, last), link.Terms[0].Var)

	values := handPlan(fx)
	for day := 0; day <= 3; day++ {
		d := fx.start.Add(day)
		values[TruckUsedVar("T1", d)] = 1
		values[TruckLoadVar("T1", gfWhite, d)] = 500
		values[TruckPalletsVar("T1", gfWhite, d)] = 10
	}
	require.NoError(t, p.CheckFeasible(values, 1e-6))

	// A phantom load on the empty day must trip the linkage row
	values[TruckUsedVar("T1", last)] = 1
	values[TruckLoadVar("T1", gfWhite, last)] = 400
	err = p.CheckFeasible(values, 1e-6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trucklink_")
}

func TestRun_MorningTrucksExcludeSameDayProduction(t *testing.T) {
	fx := newDirectFixture(t, []int{2, 3, 4}, 500)
	fx.input.Trucks = []*entities.TruckSchedule{truckFor(t, entities.MorningDeparture)}

	run, err := NewRun(fx.input, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, run.Build())

	p := run.Problem()
	_, ok := p.Constraint("morning_GF_WHITE_" + dateTag(fx.start.Add(1)))
	require.True(t, ok, "per-product morning cutoff row missing")

	// Produce on d, hold overnight, load d+1's morning truck: feasible.
	// Each day's batch departs the next morning and delivers a day later.
	overnight := func() map[string]float64 {
		v := make(map[string]float64)
		for day := 0; day <= 2; day++ {
			pd := fx.start.Add(day)
			v[ProductionVar(gfWhite, pd)] = 500
			v[CasesVar(gfWhite, pd)] = 50
			v[HoursVar(pd)] = 5
			v[ActiveVar(pd)] = 1
			v[ProductActiveVar(gfWhite, pd)] = 1
			v[InventoryVar(entities.CohortKey{Location: "PLANT", Product: gfWhite, ProduceDate: pd, CurrentDate: pd, State: entities.Ambient})] = 500
			v[TruckUsedVar("T1", pd.Add(1))] = 1
			v[TruckLoadVar("T1", gfWhite, pd.Add(1))] = 500
			v[TruckPalletsVar("T1", gfWhite, pd.Add(1))] = 10
			v[ShipmentVar(entities.ShipmentKey{Leg: entities.LegKey{From: "PLANT", To: "BR1"}, Product: gfWhite, ProduceDate: pd, DeliverDate: pd.Add(2)})] = 500
			v[AllocationVar(entities.AllocationKey{Destination: "BR1", Product: gfWhite, ProduceDate: pd, Date: pd.Add(2)})] = 500
		}
		return v
	}
	require.NoError(t, p.CheckFeasible(overnight(), 1e-6))

	// Loading day 0's batch on day 0's own morning truck must trip the
	// cutoff: the batch did not exist when the truck left.
	pd := fx.start
	bad := overnight()
	delete(bad, InventoryVar(entities.CohortKey{Location: "PLANT", Product: gfWhite, ProduceDate: pd, CurrentDate: pd, State: entities.Ambient}))
	delete(bad, TruckUsedVar("T1", pd.Add(1)))
	delete(bad, TruckLoadVar("T1", gfWhite, pd.Add(1)))
	delete(bad, TruckPalletsVar("T1", gfWhite, pd.Add(1)))
	delete(bad, ShipmentVar(entities.ShipmentKey{Leg: entities.LegKey{From: "PLANT", To: "BR1"}, Product: gfWhite, ProduceDate: pd, DeliverDate: pd.Add(2)}))
	delete(bad, AllocationVar(entities.AllocationKey{Destination: "BR1", Product: gfWhite, ProduceDate: pd, Date: pd.Add(2)}))
	bad[TruckUsedVar("T1", pd)] = 1
	bad[TruckLoadVar("T1", gfWhite, pd)] = 500
	bad[TruckPalletsVar("T1", gfWhite, pd)] = 10
	bad[ShipmentVar(entities.ShipmentKey{Leg: entities.LegKey{From: "PLANT", To: "BR1"}, Product: gfWhite, ProduceDate: pd, DeliverDate: pd.Add(1)})] = 500
	bad[InventoryVar(entities.CohortKey{Location: "BR1", Product: gfWhite, ProduceDate: pd, CurrentDate: pd.Add(1), State: entities.Ambient})] = 500
	bad[AllocationVar(entities.AllocationKey{Destination: "BR1", Product: gfWhite, ProduceDate: pd, Date: pd.Add(2)})] = 500
	err = p.CheckFeasible(bad, 1e-6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "morning_")
}

func TestRun_FrozenBufferThawOnArrival(t *testing.T) {
	start := entities.NewDate(2025, time.June, 2)
	mk := func(id entities.LocationID, lt entities.LocationType, cap entities.StorageCapability) *entities.Location {
		loc, err := entities.NewLocation(id, string(id), lt, cap, 0)
		require.NoError(t, err)
		return loc
	}
	mkLeg := func(from, to entities.LocationID, ds, as entities.StorageState) *entities.Leg {
		leg, err := entities.NewLeg(from, to, ds, as, 1, decimal.NewFromFloat(0.1))
		require.NoError(t, err)
		return leg
	}
	network, err := entities.NewNetwork(
		[]*entities.Location{
			mk("PLANT", entities.Manufacturing, entities.AmbientAndFrozen),
			mk("HUB", entities.Storage, entities.FrozenOnly),
			mk("BR1", entities.Breadroom, entities.AmbientOnly),
		},
		[]*entities.Leg{
			mkLeg("PLANT", "HUB", entities.Frozen, entities.Frozen),
			mkLeg("HUB", "BR1", entities.Frozen, entities.Ambient), // thaws in transit
		},
	)
	require.NoError(t, err)

	product, err := entities.NewProduct(gfWhite, "GF White", 10, 5)
	require.NoError(t, err)
	horizon := entities.DateRange{Start: start, End: start.Add(3)}
	demand, err := entities.NewDemandSet([]entities.ForecastEntry{
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

	run, err := NewRun(Input{
		Horizon:   horizon,
		Network:   network,
		Products:  map[entities.ProductID]*entities.Product{gfWhite: product},
		Demand:    demand,
		Labor:     labor,
		Routes:    routes,
		Costs:     costs,
		ShelfLife: entities.DefaultShelfLife(),
	}, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, run.Build())

	p := run.Problem()
	pd := start

	// The thawing leg's departure debits the frozen cohort at the hub
	hubFrozen := entities.CohortKey{Location: "HUB", Product: gfWhite, ProduceDate: pd, CurrentDate: pd.Add(1), State: entities.Frozen}
	bal, ok := p.Constraint("bal_" + balanceTag(hubFrozen))
	require.True(t, ok)
	thawShip := entities.ShipmentKey{Leg: entities.LegKey{From: "HUB", To: "BR1"}, Product: gfWhite, ProduceDate: pd, DeliverDate: pd.Add(2)}
	var departCoef float64
	for _, term := range bal.Terms {
		if term.Var == ShipmentVar(thawShip) {
			departCoef = term.Coef
		}
	}
	assert.Equal(t, 1.0, departCoef, "hub frozen cohort must be debited by the thawing departure")

	// Produce ambient, freeze at the plant, ship frozen, thaw in transit
	values := map[string]float64{
		ProductionVar(gfWhite, pd):    500,
		CasesVar(gfWhite, pd):         50,
		HoursVar(pd):                  5,
		ActiveVar(pd):                 1,
		ProductActiveVar(gfWhite, pd): 1,
		TransferVar(cohorts.TransferKey{Location: "PLANT", Product: gfWhite, ProduceDate: pd, Date: pd, From: entities.Ambient}):                     500,
		ShipmentVar(entities.ShipmentKey{Leg: entities.LegKey{From: "PLANT", To: "HUB"}, Product: gfWhite, ProduceDate: pd, DeliverDate: pd.Add(1)}): 500,
		ShipmentVar(thawShip): 500,
		AllocationVar(entities.AllocationKey{Destination: "BR1", Product: gfWhite, ProduceDate: pd, Date: pd.Add(2)}): 500,
	}
	require.NoError(t, p.CheckFeasible(values, 1e-6))
}

func TestRun_AggregateTimingPoolsProducts(t *testing.T) {
	fx := newDirectFixture(t, []int{2, 3, 4}, 500)
	fx.input.Trucks = []*entities.TruckSchedule{truckFor(t, entities.MorningDeparture)}
	cfg := DefaultConfig()
	cfg.Timing = AggregateTiming{}

	run, err := NewRun(fx.input, cfg)
	require.NoError(t, err)
	require.NoError(t, run.Build())

	p := run.Problem()
	_, perProduct := p.Constraint("morning_GF_WHITE_" + dateTag(fx.start.Add(1)))
	assert.False(t, perProduct)
	_, pooled := p.Constraint("morning_all_" + dateTag(fx.start.Add(1)))
	assert.True(t, pooled)
}
