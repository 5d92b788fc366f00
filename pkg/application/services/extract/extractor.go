package extract

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bakeplan/bakeplan/pkg/application/services/model"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// Extractor reads a solved run's variable values back into a Plan. All
// traversal follows the cohort index's deterministic key order, so the
// same solution always extracts to the same plan, including how plant
// departures are attributed to trucks.
type Extractor struct {
	epsilon float64
}

// NewExtractor creates an extractor with the given rounding tolerance
func NewExtractor(epsilon float64) *Extractor {
	if epsilon <= 0 {
		epsilon = 1e-6
	}
	return &Extractor{epsilon: epsilon}
}

// Extract converts the run's solution into a Plan
func (e *Extractor) Extract(run *model.Run) (*entities.Plan, error) {
	if run.State() != model.StateSolved {
		return nil, fmt.Errorf("run is %s, expected Solved", run.State())
	}
	sol := run.Solution()
	if !sol.Status.HasIncumbent() {
		return nil, fmt.Errorf("no incumbent to extract: solver finished %s", sol.Status)
	}

	in := run.Input()
	ix := run.Index()
	plan := &entities.Plan{Horizon: in.Horizon, EndingCohorts: entities.CohortInventory{}}

	products := planProducts(in)

	overtime := decimal.Zero
	paid := decimal.Zero
	for d := in.Horizon.Start; d <= in.Horizon.End; d++ {
		for _, p := range products {
			units := e.clean(sol.Value(model.ProductionVar(p, d)))
			if units <= 0 {
				continue
			}
			plan.Batches = append(plan.Batches, entities.ProductionBatch{
				Product: p,
				Date:    d,
				Units:   entities.Quantity(math.Round(units)),
				Hours:   units / in.Costs.UnitsPerHour,
			})
		}
		if day, ok := in.Labor.Day(d); ok {
			if day.Fixed {
				ot := e.clean(sol.Value(model.OvertimeVar(d)))
				overtime = overtime.Add(decimal.NewFromFloat(ot).Mul(day.OvertimeRate))
			} else {
				ph := e.clean(sol.Value(model.PaidHoursVar(d)))
				paid = paid.Add(decimal.NewFromFloat(ph).Mul(day.NonFixedRate))
			}
		}
	}

	e.extractShipments(run, plan)

	holding := decimal.Zero
	type invCell struct {
		loc   entities.LocationID
		prod  entities.ProductID
		date  entities.Date
		state entities.StorageState
	}
	levels := make(map[invCell]float64)
	var cellOrder []invCell
	for _, key := range ix.InventoryKeys() {
		units := e.clean(sol.Value(model.InventoryVar(key)))
		if units <= 0 {
			continue
		}
		holding = holding.Add(decimal.NewFromFloat(units).Mul(in.Costs.StorageRate(key.State)))
		c := invCell{loc: key.Location, prod: key.Product, date: key.CurrentDate, state: key.State}
		if _, seen := levels[c]; !seen {
			cellOrder = append(cellOrder, c)
		}
		levels[c] += units
		if key.CurrentDate == in.Horizon.End {
			plan.EndingCohorts.Add(key, units)
		}
	}
	for _, c := range cellOrder {
		plan.Inventory = append(plan.Inventory, entities.InventoryLevel{
			Location: c.loc, Product: c.prod, Date: c.date, State: c.state, Units: levels[c],
		})
	}

	for _, ak := range ix.AllocationKeys() {
		units := e.clean(sol.Value(model.AllocationVar(ak)))
		if units <= 0 {
			continue
		}
		plan.Fills = append(plan.Fills, entities.DemandFill{
			Destination: ak.Destination, Product: ak.Product, Date: ak.Date,
			ProduceDate: ak.ProduceDate, Units: units,
		})
	}

	shortageCost := decimal.Zero
	if run.ModelConfig().AllowShortages {
		for _, dk := range in.Demand.Keys() {
			units := e.clean(sol.Value(model.ShortageVar(dk)))
			if units <= 0 {
				continue
			}
			plan.Shortages = append(plan.Shortages, entities.Shortage{
				Destination: dk.Destination, Product: dk.Product, Date: dk.Date, Units: units,
			})
			shortageCost = shortageCost.Add(decimal.NewFromFloat(units).Mul(in.Costs.ShortagePenaltyPerUnit))
		}
	}

	waste := decimal.Zero
	for _, key := range ix.InventoryKeys() {
		if !ix.DisposalAllowed(key) {
			continue
		}
		units := e.clean(sol.Value(model.DisposalVar(key)))
		if units <= 0 {
			continue
		}
		plan.Disposals = append(plan.Disposals, entities.Disposal{
			Location: key.Location, Product: key.Product, ProduceDate: key.ProduceDate,
			Date: key.CurrentDate, State: key.State, Units: units,
		})
		waste = waste.Add(decimal.NewFromFloat(units).Mul(in.Costs.WastePerUnit()))
	}

	production := decimal.Zero
	for _, b := range plan.Batches {
		production = production.Add(decimal.NewFromInt(int64(b.Units)).Mul(in.Costs.ProductionPerUnit))
	}

	transport := decimal.Zero
	for _, s := range plan.Shipments {
		leg := ix.Leg(entities.LegKey{From: s.From, To: s.To})
		transport = transport.Add(decimal.NewFromFloat(s.Units).Mul(leg.CostPerUnit))
	}
	for _, t := range in.Trucks {
		for d := in.Horizon.Start; d <= in.Horizon.End; d++ {
			if t.RunsOn(d) && sol.Value(model.TruckUsedVar(t.ID, d)) > 0.5 {
				transport = transport.Add(t.FixedCost)
			}
		}
	}

	plan.Costs = entities.CostBreakdown{
		Labor:      e.sunkRegularHours(in).Add(overtime).Add(paid),
		Production: production,
		Transport:  transport,
		Holding:    holding,
		Waste:      waste,
		Shortage:   shortageCost,
	}
	return plan, nil
}

// extractShipments reads shipment flows and attributes plant departures
// to trucks. Within one (destination, product, departure day) cell the
// oldest production date is loaded first; a cohort spanning two trucks is
// split across them.
func (e *Extractor) extractShipments(run *model.Run, plan *entities.Plan) {
	sol := run.Solution()
	in := run.Input()
	ix := run.Index()
	plant := in.Network.Plant().ID

	trucksByDest := make(map[entities.LocationID][]*entities.TruckSchedule)
	trucks := append([]*entities.TruckSchedule(nil), in.Trucks...)
	sort.Slice(trucks, func(i, j int) bool { return trucks[i].ID < trucks[j].ID })
	for _, t := range trucks {
		trucksByDest[t.Destination] = append(trucksByDest[t.Destination], t)
	}

	// Remaining attributable load per truck-product-day, consumed as
	// shipments are walked oldest first.
	type loadCell struct {
		truck entities.TruckID
		prod  entities.ProductID
		date  entities.Date
	}
	remaining := make(map[loadCell]float64)
	for _, t := range trucks {
		for d := in.Horizon.Start; d <= in.Horizon.End; d++ {
			if !t.RunsOn(d) {
				continue
			}
			for _, p := range planProducts(in) {
				units := e.clean(sol.Value(model.TruckLoadVar(t.ID, p, d)))
				if units <= 0 {
					continue
				}
				remaining[loadCell{truck: t.ID, prod: p, date: d}] = units
				// The integer pallet variables only bound capacity, so an
				// incumbent may hold them anywhere above the true ceiling;
				// the reported count is recomputed from the load.
				pallets := entities.Quantity(0)
				if product, ok := in.Products[p]; ok {
					pallets = product.PalletsFor(entities.Quantity(math.Ceil(units)))
				}
				plan.TruckLoads = append(plan.TruckLoads, entities.TruckLoad{
					Truck: t.ID, DepartDate: d, Product: p, Units: units, Pallets: pallets,
				})
			}
		}
	}

	for _, sk := range ix.ShipmentKeys() {
		units := e.clean(sol.Value(model.ShipmentVar(sk)))
		if units <= 0 {
			continue
		}
		leg := ix.Leg(sk.Leg)
		depart := leg.DepartureDate(sk.DeliverDate)
		base := entities.Shipment{
			From: sk.Leg.From, To: sk.Leg.To, Product: sk.Product,
			ProduceDate: sk.ProduceDate, DepartDate: depart, DeliverDate: sk.DeliverDate,
			DepartState: leg.DepartState, ArriveState: leg.ArriveState,
		}

		dests := trucksByDest[sk.Leg.To]
		if sk.Leg.From != plant || len(dests) == 0 {
			base.Units = units
			plan.Shipments = append(plan.Shipments, base)
			continue
		}

		// Shipment keys arrive oldest production date first, so greedy
		// consumption against truck loads in ID order realizes the
		// oldest-first attribution.
		left := units
		for _, t := range dests {
			if left <= e.epsilon {
				break
			}
			cell := loadCell{truck: t.ID, prod: sk.Product, date: depart}
			avail := remaining[cell]
			if avail <= e.epsilon {
				continue
			}
			take := math.Min(left, avail)
			remaining[cell] = avail - take
			s := base
			s.Truck = t.ID
			s.Units = take
			plan.Shipments = append(plan.Shipments, s)
			left -= take
		}
		if left > e.epsilon {
			// Loads and shipments are linked by an equality row; any
			// residue is numeric noise beyond attribution.
			base.Units = left
			plan.Shipments = append(plan.Shipments, base)
		}
	}
}

// sunkRegularHours is the pre-paid fixed-day labor cost. It is constant
// for a given calendar, so the optimizer never sees it, but the plan's
// cost report must.
func (e *Extractor) sunkRegularHours(in model.Input) decimal.Decimal {
	total := decimal.Zero
	for d := in.Horizon.Start; d <= in.Horizon.End; d++ {
		if day, ok := in.Labor.Day(d); ok && day.Fixed {
			total = total.Add(decimal.NewFromFloat(day.FixedHours).Mul(day.RegularRate))
		}
	}
	return total
}

// clean zeroes sub-tolerance values and snaps near-integers
func (e *Extractor) clean(v float64) float64 {
	if math.Abs(v) < e.epsilon {
		return 0
	}
	if r := math.Round(v); math.Abs(v-r) < e.epsilon {
		return r
	}
	return v
}

func planProducts(in model.Input) []entities.ProductID {
	seen := make(map[entities.ProductID]bool)
	var out []entities.ProductID
	for _, p := range in.Demand.Products() {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, key := range in.Initial.Keys() {
		if !seen[key.Product] {
			seen[key.Product] = true
			out = append(out, key.Product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
