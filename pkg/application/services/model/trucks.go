package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/solver"
)

// TimingPolicy is the strategy for the morning-departure timing rule: a
// morning truck may only carry units produced on or before the previous
// day. Implementations live in this package; the set of policies is
// closed.
type TimingPolicy interface {
	Name() string
	apply(r *Run, tt *truckTables) error
}

// PerProductTiming enforces the morning cutoff per product: for each
// product, cumulative truck loads through a morning departure cannot
// exceed opening plant inventory plus production through the prior day.
type PerProductTiming struct{}

// AggregateTiming enforces the morning cutoff on total units across
// products. Cheaper but looser: it permits product mixes the per-product
// rule would reject.
type AggregateTiming struct{}

// truckTables is the shared state the truck constraint builders work
// from: which trucks run on which days, and which load variables exist.
type truckTables struct {
	trucks   []*entities.TruckSchedule
	byDest   map[entities.LocationID][]*entities.TruckSchedule
	runDays  map[entities.TruckID][]entities.Date
	products []entities.ProductID
}

// buildTrucks emits truck departure binaries, per-product loads, integer
// pallet counts and the capacity, linkage and timing constraints. The
// whole section is skipped when no trucks are configured: plant
// departures then ship unconstrained.
func (r *Run) buildTrucks() error {
	if len(r.input.Trucks) == 0 {
		return nil
	}

	tt := &truckTables{
		byDest:   make(map[entities.LocationID][]*entities.TruckSchedule),
		runDays:  make(map[entities.TruckID][]entities.Date),
		products: r.orderedProducts(),
	}
	tt.trucks = append(tt.trucks, r.input.Trucks...)
	sort.Slice(tt.trucks, func(i, j int) bool { return tt.trucks[i].ID < tt.trucks[j].ID })
	for _, t := range tt.trucks {
		tt.byDest[t.Destination] = append(tt.byDest[t.Destination], t)
		for d := r.input.Horizon.Start; d <= r.input.Horizon.End; d++ {
			if t.RunsOn(d) {
				tt.runDays[t.ID] = append(tt.runDays[t.ID], d)
			}
		}
	}

	if err := r.buildTruckVars(tt); err != nil {
		return err
	}
	if err := r.buildTruckLinkage(tt); err != nil {
		return err
	}
	return r.config.Timing.apply(r, tt)
}

func (r *Run) buildTruckVars(tt *truckTables) error {
	for _, t := range tt.trucks {
		for _, d := range tt.runDays[t.ID] {
			if err := r.problem.AddBinary(TruckUsedVar(t.ID, d)); err != nil {
				return err
			}
			if err := r.problem.AddObjectiveTerm(TruckUsedVar(t.ID, d), t.FixedCost.InexactFloat64()); err != nil {
				return err
			}

			capTerms := []solver.Term{}
			palletTerms := []solver.Term{}
			for _, p := range tt.products {
				product := r.input.Products[p]
				loadUpper := math.Inf(1)
				if t.CapacityUnits > 0 {
					loadUpper = float64(t.CapacityUnits)
				}
				if err := r.problem.AddContinuous(TruckLoadVar(t.ID, p, d), 0, loadUpper); err != nil {
					return err
				}
				capTerms = append(capTerms, solver.Term{Var: TruckLoadVar(t.ID, p, d), Coef: 1})

				if t.CapacityPallets > 0 {
					if err := r.problem.AddInteger(TruckPalletsVar(t.ID, p, d), 0, float64(t.CapacityPallets)); err != nil {
						return err
					}
					// load <= units-per-pallet * pallets
					if err := r.problem.AddConstraint(solver.Constraint{
						Name: fmt.Sprintf("palletlink_%s_%s_%s", sanitize(string(t.ID)), sanitize(string(p)), dateTag(d)),
						Terms: []solver.Term{
							{Var: TruckLoadVar(t.ID, p, d), Coef: 1},
							{Var: TruckPalletsVar(t.ID, p, d), Coef: -float64(product.UnitsPerPallet())},
						},
						Sense: solver.LessEqual,
						RHS:   0,
					}); err != nil {
						return err
					}
					palletTerms = append(palletTerms, solver.Term{Var: TruckPalletsVar(t.ID, p, d), Coef: 1})
				}
			}

			if t.CapacityUnits > 0 {
				terms := append(capTerms, solver.Term{Var: TruckUsedVar(t.ID, d), Coef: -float64(t.CapacityUnits)})
				if err := r.problem.AddConstraint(solver.Constraint{
					Name:  fmt.Sprintf("truckcap_%s_%s", sanitize(string(t.ID)), dateTag(d)),
					Terms: terms,
					Sense: solver.LessEqual,
					RHS:   0,
				}); err != nil {
					return err
				}
			}
			if t.CapacityPallets > 0 {
				terms := append(palletTerms, solver.Term{Var: TruckUsedVar(t.ID, d), Coef: -float64(t.CapacityPallets)})
				if err := r.problem.AddConstraint(solver.Constraint{
					Name:  fmt.Sprintf("palletcap_%s_%s", sanitize(string(t.ID)), dateTag(d)),
					Terms: terms,
					Sense: solver.LessEqual,
					RHS:   0,
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// buildTruckLinkage ties plant departures to truck loads: for every
// destination served by at least one truck, units departing the plant on
// a day must ride that day's trucks. The equality is emitted for every
// served (destination, product) cell, so a day with shipments but no
// running truck forces those shipments to zero, and a run-day with no
// shipment cohorts forces its load variables to zero.
func (r *Run) buildTruckLinkage(tt *truckTables) error {
	dests := make([]entities.LocationID, 0, len(tt.byDest))
	for dest := range tt.byDest {
		dests = append(dests, dest)
	}
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })

	for d := r.input.Horizon.Start; d <= r.input.Horizon.End; d++ {
		type cell struct {
			dest entities.LocationID
			prod entities.ProductID
		}
		shipTerms := make(map[cell][]solver.Term)
		for _, sk := range r.index.PlantDepartures(d) {
			if _, served := tt.byDest[sk.Leg.To]; !served {
				continue
			}
			c := cell{dest: sk.Leg.To, prod: sk.Product}
			shipTerms[c] = append(shipTerms[c], solver.Term{Var: ShipmentVar(sk), Coef: 1})
		}

		for _, dest := range dests {
			for _, p := range tt.products {
				terms := shipTerms[cell{dest: dest, prod: p}]
				for _, t := range tt.byDest[dest] {
					if t.RunsOn(d) {
						terms = append(terms, solver.Term{Var: TruckLoadVar(t.ID, p, d), Coef: -1})
					}
				}
				if len(terms) == 0 {
					continue
				}
				if err := r.problem.AddConstraint(solver.Constraint{
					Name:  fmt.Sprintf("trucklink_%s_%s_%s", sanitize(string(dest)), sanitize(string(p)), dateTag(d)),
					Terms: terms,
					Sense: solver.Equal,
					RHS:   0,
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Name of the policy
func (PerProductTiming) Name() string { return "per-product" }

func (PerProductTiming) apply(r *Run, tt *truckTables) error {
	for _, p := range tt.products {
		opening := r.openingPlantUnits(p)
		for d := r.input.Horizon.Start; d <= r.input.Horizon.End; d++ {
			terms := morningCutoffTerms(r, tt, []entities.ProductID{p}, d)
			if terms == nil {
				continue
			}
			if err := r.problem.AddConstraint(solver.Constraint{
				Name:  fmt.Sprintf("morning_%s_%s", sanitize(string(p)), dateTag(d)),
				Terms: terms,
				Sense: solver.LessEqual,
				RHS:   opening,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Name of the policy
func (AggregateTiming) Name() string { return "aggregate" }

func (AggregateTiming) apply(r *Run, tt *truckTables) error {
	opening := 0.0
	for _, p := range tt.products {
		opening += r.openingPlantUnits(p)
	}
	for d := r.input.Horizon.Start; d <= r.input.Horizon.End; d++ {
		terms := morningCutoffTerms(r, tt, tt.products, d)
		if terms == nil {
			continue
		}
		if err := r.problem.AddConstraint(solver.Constraint{
			Name:  fmt.Sprintf("morning_all_%s", dateTag(d)),
			Terms: terms,
			Sense: solver.LessEqual,
			RHS:   opening,
		}); err != nil {
			return err
		}
	}
	return nil
}

// morningCutoffTerms builds the cumulative-load side of the morning
// timing rule for day d over the given products: all loads on earlier
// days, plus day-d loads on morning trucks, minus production through
// d-1. Returns nil when no morning truck departs on d, since afternoon
// loading is already bounded by the plant mass balance.
func morningCutoffTerms(r *Run, tt *truckTables, products []entities.ProductID, d entities.Date) []solver.Term {
	morning := false
	for _, t := range tt.trucks {
		if t.Departure == entities.MorningDeparture && t.RunsOn(d) {
			morning = true
			break
		}
	}
	if !morning {
		return nil
	}

	var terms []solver.Term
	for _, t := range tt.trucks {
		for _, rd := range tt.runDays[t.ID] {
			if rd > d {
				break
			}
			if rd == d && t.Departure != entities.MorningDeparture {
				continue
			}
			for _, p := range products {
				terms = append(terms, solver.Term{Var: TruckLoadVar(t.ID, p, rd), Coef: 1})
			}
		}
	}
	for pd := r.input.Horizon.Start; pd < d; pd++ {
		for _, p := range products {
			terms = append(terms, solver.Term{Var: ProductionVar(p, pd), Coef: -1})
		}
	}
	return terms
}

// openingPlantUnits sums seeded plant inventory of a product across states
func (r *Run) openingPlantUnits(p entities.ProductID) float64 {
	plant := r.input.Network.Plant().ID
	total := 0.0
	for key, qty := range r.input.Initial {
		if key.Location == plant && key.Product == p {
			total += qty
		}
	}
	return total
}
