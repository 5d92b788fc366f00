package model

import (
	"fmt"
	"math"

	"github.com/bakeplan/bakeplan/pkg/application/services/cohorts"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/solver"
)

// buildCohorts emits the cohort flow variables (inventory, shipments,
// state transfers, demand allocations, disposals, shortages) and ties
// them together with one mass-balance row per cohort-day plus one
// fulfillment row per demand cell.
//
// The balance convention: end-of-day inventory equals yesterday's
// inventory plus same-day production and arrivals and conversions in,
// minus departures, conversions out, allocations and disposal. Shipments
// debit the origin in the leg's departure state even when the arrival
// state differs, so custody of in-transit units stays with the departure
// side of the move.
func (r *Run) buildCohorts() error {
	ix := r.index
	costs := r.input.Costs
	plant := r.input.Network.Plant().ID
	prodState := r.productionState()
	wasteCost := costs.WastePerUnit().InexactFloat64()

	for _, key := range ix.InventoryKeys() {
		upper := math.Inf(1)
		if ix.DisposalAllowed(key) {
			// Nothing may be carried past the expiry day
			upper = 0
		}
		if err := r.problem.AddContinuous(InventoryVar(key), 0, upper); err != nil {
			return err
		}
		if err := r.problem.AddObjectiveTerm(InventoryVar(key), costs.StorageRate(key.State).InexactFloat64()); err != nil {
			return err
		}
		if ix.DisposalAllowed(key) {
			if err := r.problem.AddContinuous(DisposalVar(key), 0, math.Inf(1)); err != nil {
				return err
			}
			if err := r.problem.AddObjectiveTerm(DisposalVar(key), wasteCost); err != nil {
				return err
			}
		}
	}

	for _, sk := range ix.ShipmentKeys() {
		if err := r.problem.AddContinuous(ShipmentVar(sk), 0, math.Inf(1)); err != nil {
			return err
		}
		leg := ix.Leg(sk.Leg)
		if err := r.problem.AddObjectiveTerm(ShipmentVar(sk), leg.CostPerUnit.InexactFloat64()); err != nil {
			return err
		}
	}

	for _, tk := range ix.TransferKeys() {
		if err := r.problem.AddContinuous(TransferVar(tk), 0, math.Inf(1)); err != nil {
			return err
		}
	}

	for _, ak := range ix.AllocationKeys() {
		qty := r.input.Demand.Quantity(entities.DemandKey{Destination: ak.Destination, Product: ak.Product, Date: ak.Date})
		if err := r.problem.AddContinuous(AllocationVar(ak), 0, float64(qty)); err != nil {
			return err
		}
	}

	if r.config.AllowShortages {
		penalty := costs.ShortagePenaltyPerUnit.InexactFloat64()
		for _, dk := range r.input.Demand.Keys() {
			if err := r.problem.AddContinuous(ShortageVar(dk), 0, float64(r.input.Demand.Quantity(dk))); err != nil {
				return err
			}
			if err := r.problem.AddObjectiveTerm(ShortageVar(dk), penalty); err != nil {
				return err
			}
		}
	}

	// One mass-balance row per cohort-day
	for _, key := range ix.InventoryKeys() {
		terms := []solver.Term{{Var: InventoryVar(key), Coef: 1}}

		if prev := key.Prev(); ix.HasInventory(prev) {
			terms = append(terms, solver.Term{Var: InventoryVar(prev), Coef: -1})
		}
		if key.Location == plant && key.ProduceDate == key.CurrentDate && key.State == prodState {
			terms = append(terms, solver.Term{Var: ProductionVar(key.Product, key.CurrentDate), Coef: -1})
		}
		for _, sk := range ix.ArrivalsInto(key) {
			terms = append(terms, solver.Term{Var: ShipmentVar(sk), Coef: -1})
		}
		for _, sk := range ix.DeparturesFrom(key) {
			terms = append(terms, solver.Term{Var: ShipmentVar(sk), Coef: 1})
		}
		in := cohorts.TransferKey{Location: key.Location, Product: key.Product, ProduceDate: key.ProduceDate, Date: key.CurrentDate, From: key.State.Other()}
		if ix.HasTransfer(in) {
			terms = append(terms, solver.Term{Var: TransferVar(in), Coef: -1})
		}
		out := in
		out.From = key.State
		if ix.HasTransfer(out) {
			terms = append(terms, solver.Term{Var: TransferVar(out), Coef: 1})
		}
		for _, ak := range ix.AllocationsFrom(key) {
			terms = append(terms, solver.Term{Var: AllocationVar(ak), Coef: 1})
		}
		if ix.DisposalAllowed(key) {
			terms = append(terms, solver.Term{Var: DisposalVar(key), Coef: 1})
		}

		if err := r.problem.AddConstraint(solver.Constraint{
			Name:  fmt.Sprintf("bal_%s", balanceTag(key)),
			Terms: terms,
			Sense: solver.Equal,
			RHS:   r.input.Initial[key] + r.input.Pipeline[key],
		}); err != nil {
			return err
		}
	}

	// Capacitated locations bound total on-hand units per day across
	// products and states.
	type locDay struct {
		loc  entities.LocationID
		date entities.Date
	}
	held := make(map[locDay][]solver.Term)
	for _, key := range ix.InventoryKeys() {
		loc, _ := r.input.Network.Location(key.Location)
		if loc == nil || loc.CapacityUnits <= 0 {
			continue
		}
		ld := locDay{loc: key.Location, date: key.CurrentDate}
		held[ld] = append(held[ld], solver.Term{Var: InventoryVar(key), Coef: 1})
	}
	for _, loc := range r.input.Network.Locations() {
		if loc.CapacityUnits <= 0 {
			continue
		}
		for d := r.input.Horizon.Start; d <= r.input.Horizon.End; d++ {
			terms := held[locDay{loc: loc.ID, date: d}]
			if len(terms) == 0 {
				continue
			}
			if err := r.problem.AddConstraint(solver.Constraint{
				Name:  fmt.Sprintf("storecap_%s_%s", sanitize(string(loc.ID)), dateTag(d)),
				Terms: terms,
				Sense: solver.LessEqual,
				RHS:   float64(loc.CapacityUnits),
			}); err != nil {
				return err
			}
		}
	}

	// One fulfillment row per demand cell
	for _, dk := range r.input.Demand.Keys() {
		allocs := ix.AllocationsForDemand(dk)
		if len(allocs) == 0 && !r.config.AllowShortages {
			// Build already rejected this scenario
			return fmt.Errorf("demand %s/%s on %s has no allocation cohorts", dk.Destination, dk.Product, dk.Date)
		}
		var terms []solver.Term
		for _, ak := range allocs {
			terms = append(terms, solver.Term{Var: AllocationVar(ak), Coef: 1})
		}
		if r.config.AllowShortages {
			terms = append(terms, solver.Term{Var: ShortageVar(dk), Coef: 1})
		}
		if err := r.problem.AddConstraint(solver.Constraint{
			Name:  fmt.Sprintf("dem_%s_%s_%s", sanitize(string(dk.Destination)), sanitize(string(dk.Product)), dateTag(dk.Date)),
			Terms: terms,
			Sense: solver.Equal,
			RHS:   float64(r.input.Demand.Quantity(dk)),
		}); err != nil {
			return err
		}
	}
	return nil
}

func balanceTag(k entities.CohortKey) string {
	return fmt.Sprintf("%s_%s_p%s_c%s_%s",
		sanitize(string(k.Location)), sanitize(string(k.Product)),
		dateTag(k.ProduceDate), dateTag(k.CurrentDate), stateTag(k.State))
}
