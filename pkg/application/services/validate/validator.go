// Package validate checks extracted plans against the physical rules the
// optimizer is supposed to honor. A clean solver run should never produce
// violations; the checks exist to catch model regressions and bad
// hand-offs between rolling windows, not to fix plans.
package validate

import (
	"fmt"
	"math"

	"github.com/bakeplan/bakeplan/pkg/application/services/model"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// Violation is one failed plan check
type Violation struct {
	Code   string
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Detail)
}

// Validator checks plans against one run's input
type Validator struct {
	input   model.Input
	epsilon float64
}

// NewValidator creates a validator with the given numeric tolerance
func NewValidator(input model.Input, epsilon float64) *Validator {
	if epsilon <= 0 {
		epsilon = 1e-6
	}
	return &Validator{input: input, epsilon: epsilon}
}

// Check runs all plan checks and returns the violations found
func (v *Validator) Check(plan *entities.Plan) []Violation {
	var out []Violation
	out = append(out, v.checkConservation(plan)...)
	out = append(out, v.checkDemand(plan)...)
	out = append(out, v.checkCaseAlignment(plan)...)
	out = append(out, v.checkTruckTiming(plan)...)
	out = append(out, v.checkShelfLife(plan)...)
	out = append(out, v.checkLaborCapacity(plan)...)
	out = append(out, v.checkNonNegative(plan)...)
	return out
}

// checkConservation verifies that every unit entering the system leaves
// it accounted for: production plus opening and pipeline inventory must
// equal fills plus disposals plus ending cohorts.
func (v *Validator) checkConservation(plan *entities.Plan) []Violation {
	in := float64(plan.TotalProduction()) + v.input.Initial.Total() + v.input.Pipeline.Total()
	outTotal := plan.EndingCohorts.Total()
	for _, f := range plan.Fills {
		outTotal += f.Units
	}
	for _, d := range plan.Disposals {
		outTotal += d.Units
	}
	tol := v.epsilon * math.Max(1, in)
	if math.Abs(in-outTotal) > tol {
		return []Violation{{
			Code:   "conservation",
			Detail: fmt.Sprintf("units in %.3f != units out %.3f", in, outTotal),
		}}
	}
	return nil
}

// checkDemand verifies each demand cell is exactly covered by fills plus
// recorded shortage.
func (v *Validator) checkDemand(plan *entities.Plan) []Violation {
	covered := make(map[entities.DemandKey]float64)
	for _, f := range plan.Fills {
		covered[entities.DemandKey{Destination: f.Destination, Product: f.Product, Date: f.Date}] += f.Units
	}
	for _, s := range plan.Shortages {
		covered[entities.DemandKey{Destination: s.Destination, Product: s.Product, Date: s.Date}] += s.Units
	}

	var out []Violation
	for _, dk := range v.input.Demand.Keys() {
		want := float64(v.input.Demand.Quantity(dk))
		got := covered[dk]
		if math.Abs(want-got) > v.epsilon*math.Max(1, want) {
			out = append(out, Violation{
				Code:   "demand",
				Detail: fmt.Sprintf("%s/%s on %s: demand %.0f covered %.3f", dk.Destination, dk.Product, dk.Date, want, got),
			})
		}
	}
	return out
}

// checkCaseAlignment verifies batches are exact case multiples and truck
// loads report the exact pallet ceiling of their units.
func (v *Validator) checkCaseAlignment(plan *entities.Plan) []Violation {
	var out []Violation
	for _, b := range plan.Batches {
		product, ok := v.input.Products[b.Product]
		if !ok {
			out = append(out, Violation{Code: "case-alignment", Detail: fmt.Sprintf("batch references unknown product %s", b.Product)})
			continue
		}
		if !product.CaseAligned(b.Units) {
			out = append(out, Violation{
				Code:   "case-alignment",
				Detail: fmt.Sprintf("%s on %s: %d units is not a multiple of case size %d", b.Product, b.Date, b.Units, product.UnitsPerCase),
			})
		}
	}
	for _, tl := range plan.TruckLoads {
		product, ok := v.input.Products[tl.Product]
		if !ok {
			out = append(out, Violation{Code: "pallet-count", Detail: fmt.Sprintf("truck load references unknown product %s", tl.Product)})
			continue
		}
		want := product.PalletsFor(entities.Quantity(math.Ceil(tl.Units - v.epsilon)))
		if tl.Pallets != want {
			out = append(out, Violation{
				Code:   "pallet-count",
				Detail: fmt.Sprintf("truck %s on %s: %d pallets reported for %.0f units of %s, ceiling is %d", tl.Truck, tl.DepartDate, tl.Pallets, tl.Units, tl.Product, want),
			})
		}
	}
	return out
}

// checkTruckTiming verifies truck-attributed shipments respect the
// departure schedule and the loading cutoff: a morning truck cannot carry
// units produced the day it leaves.
func (v *Validator) checkTruckTiming(plan *entities.Plan) []Violation {
	trucks := make(map[entities.TruckID]*entities.TruckSchedule, len(v.input.Trucks))
	for _, t := range v.input.Trucks {
		trucks[t.ID] = t
	}

	var out []Violation
	for _, s := range plan.Shipments {
		if s.Truck == "" {
			continue
		}
		t, ok := trucks[s.Truck]
		if !ok {
			out = append(out, Violation{
				Code:   "truck-timing",
				Detail: fmt.Sprintf("shipment departing %s references unknown truck %s", s.DepartDate, s.Truck),
			})
			continue
		}
		if !t.RunsOn(s.DepartDate) {
			out = append(out, Violation{
				Code:   "truck-timing",
				Detail: fmt.Sprintf("truck %s does not run on %s", s.Truck, s.DepartDate),
			})
			continue
		}
		if latest := t.LatestLoadableProductionDate(s.DepartDate); s.ProduceDate > latest {
			out = append(out, Violation{
				Code:   "truck-timing",
				Detail: fmt.Sprintf("truck %s departing %s carries units produced %s, latest loadable is %s", s.Truck, s.DepartDate, s.ProduceDate, latest),
			})
		}
	}
	return out
}

// checkShelfLife verifies fills, breadroom deliveries and ending cohorts
// respect the age limits and the delivery freshness buffer.
func (v *Validator) checkShelfLife(plan *entities.Plan) []Violation {
	sl := v.input.ShelfLife
	var out []Violation
	for _, f := range plan.Fills {
		age := int(f.Date - f.ProduceDate)
		if age < 0 || age > sl.AmbientDays {
			out = append(out, Violation{
				Code:   "shelf-life",
				Detail: fmt.Sprintf("fill at %s on %s consumes cohort produced %s at age %d beyond ambient limit %d", f.Destination, f.Date, f.ProduceDate, age, sl.AmbientDays),
			})
		}
	}
	for _, s := range plan.Shipments {
		dest, ok := v.input.Network.Location(s.To)
		if !ok || dest.Type != entities.Breadroom {
			continue
		}
		remaining := sl.Limit(s.ArriveState) - int(s.DeliverDate-s.ProduceDate)
		if remaining < sl.MinRemainingDays {
			out = append(out, Violation{
				Code:   "freshness",
				Detail: fmt.Sprintf("delivery to %s on %s retains %d days, minimum is %d", s.To, s.DeliverDate, remaining, sl.MinRemainingDays),
			})
		}
	}
	for key := range plan.EndingCohorts {
		if !sl.WithinLimit(key.State, key.Age()) {
			out = append(out, Violation{
				Code:   "shelf-life",
				Detail: fmt.Sprintf("ending cohort %s is past its %s limit", key, key.State),
			})
		}
	}
	return out
}

// checkLaborCapacity verifies daily production hours, including
// changeovers, fit inside the calendar's available hours.
func (v *Validator) checkLaborCapacity(plan *entities.Plan) []Violation {
	hoursByDay := make(map[entities.Date]float64)
	runsByDay := make(map[entities.Date]int)
	for _, b := range plan.Batches {
		hoursByDay[b.Date] += b.Hours
		runsByDay[b.Date]++
	}

	var out []Violation
	for d, hours := range hoursByDay {
		if n := runsByDay[d]; n > 1 {
			hours += v.input.Costs.DefaultChangeoverHours * float64(n-1)
		}
		day, ok := v.input.Labor.Day(d)
		if !ok {
			out = append(out, Violation{
				Code:   "labor-capacity",
				Detail: fmt.Sprintf("production on %s but the labor calendar has no entry", d),
			})
			continue
		}
		if hours > day.AvailableHours()+v.epsilon {
			out = append(out, Violation{
				Code:   "labor-capacity",
				Detail: fmt.Sprintf("%s: %.2f hours needed, %.2f available", d, hours, day.AvailableHours()),
			})
		}
	}
	return out
}

func (v *Validator) checkNonNegative(plan *entities.Plan) []Violation {
	var out []Violation
	neg := func(kind string, units float64, detail string) {
		if units < -v.epsilon {
			out = append(out, Violation{Code: "negative", Detail: fmt.Sprintf("%s %s: %.3f units", kind, detail, units)})
		}
	}
	for _, s := range plan.Shipments {
		neg("shipment", s.Units, fmt.Sprintf("%s->%s on %s", s.From, s.To, s.DepartDate))
	}
	for _, f := range plan.Fills {
		neg("fill", f.Units, fmt.Sprintf("%s on %s", f.Destination, f.Date))
	}
	for _, lvl := range plan.Inventory {
		neg("inventory", lvl.Units, fmt.Sprintf("%s on %s", lvl.Location, lvl.Date))
	}
	for key, qty := range plan.EndingCohorts {
		neg("ending cohort", qty, key.String())
	}
	return out
}
