package model

import (
	"fmt"
	"math"

	"github.com/bakeplan/bakeplan/pkg/solver"
)

// buildLabor emits the production-side variables and constraints: daily
// production per product, integer case alignment, labor hours linked to
// output through the units-per-hour rate plus changeover time, and the
// day-active binaries that gate minimum-hour floors and changeovers.
//
// Fixed days charge only overtime in the objective; the pre-paid regular
// hours are a sunk cost added back during extraction. Non-fixed days
// charge paid hours, which must cover both actual usage and the minimum
// callout floor once the day is used at all.
func (r *Run) buildLabor() error {
	products := r.orderedProducts()
	costs := r.input.Costs
	prodCost := costs.ProductionPerUnit.InexactFloat64()

	for d := r.input.Horizon.Start; d <= r.input.Horizon.End; d++ {
		day, hasDay := r.input.Labor.Day(d)
		avail := 0.0
		if hasDay {
			avail = day.AvailableHours()
		}
		capacity := avail * costs.UnitsPerHour

		// Production and case variables exist on every day so balance
		// rows stay uniform; a day without labor just has them fixed at 0.
		for _, p := range products {
			product := r.input.Products[p]
			if err := r.problem.AddContinuous(ProductionVar(p, d), 0, capacity); err != nil {
				return err
			}
			maxCases := math.Ceil(capacity / float64(product.UnitsPerCase))
			if err := r.problem.AddInteger(CasesVar(p, d), 0, maxCases); err != nil {
				return err
			}
			if err := r.problem.AddConstraint(solver.Constraint{
				Name: fmt.Sprintf("case_%s_%s", sanitize(string(p)), dateTag(d)),
				Terms: []solver.Term{
					{Var: ProductionVar(p, d), Coef: 1},
					{Var: CasesVar(p, d), Coef: -float64(product.UnitsPerCase)},
				},
				Sense: solver.Equal,
				RHS:   0,
			}); err != nil {
				return err
			}
			if err := r.problem.AddObjectiveTerm(ProductionVar(p, d), prodCost); err != nil {
				return err
			}
		}

		if capacity <= 0 {
			continue
		}

		if err := r.problem.AddContinuous(HoursVar(d), 0, avail); err != nil {
			return err
		}
		if err := r.problem.AddBinary(ActiveVar(d)); err != nil {
			return err
		}

		// hours = sum(prod)/rate + changeover * (product runs - 1 if active)
		hoursLink := solver.Constraint{
			Name:  fmt.Sprintf("hours_link_%s", dateTag(d)),
			Terms: []solver.Term{{Var: HoursVar(d), Coef: 1}},
			Sense: solver.Equal,
			RHS:   0,
		}
		co := costs.DefaultChangeoverHours
		for _, p := range products {
			if err := r.problem.AddBinary(ProductActiveVar(p, d)); err != nil {
				return err
			}
			// prod <= capacity * pactive
			if err := r.problem.AddConstraint(solver.Constraint{
				Name: fmt.Sprintf("run_gate_%s_%s", sanitize(string(p)), dateTag(d)),
				Terms: []solver.Term{
					{Var: ProductionVar(p, d), Coef: 1},
					{Var: ProductActiveVar(p, d), Coef: -capacity},
				},
				Sense: solver.LessEqual,
				RHS:   0,
			}); err != nil {
				return err
			}
			// pactive <= active
			if err := r.problem.AddConstraint(solver.Constraint{
				Name: fmt.Sprintf("run_implies_active_%s_%s", sanitize(string(p)), dateTag(d)),
				Terms: []solver.Term{
					{Var: ProductActiveVar(p, d), Coef: 1},
					{Var: ActiveVar(d), Coef: -1},
				},
				Sense: solver.LessEqual,
				RHS:   0,
			}); err != nil {
				return err
			}
			hoursLink.Terms = append(hoursLink.Terms,
				solver.Term{Var: ProductionVar(p, d), Coef: -1 / costs.UnitsPerHour},
				solver.Term{Var: ProductActiveVar(p, d), Coef: -co},
			)
		}
		hoursLink.Terms = append(hoursLink.Terms, solver.Term{Var: ActiveVar(d), Coef: co})
		if err := r.problem.AddConstraint(hoursLink); err != nil {
			return err
		}

		// hours <= available * active
		if err := r.problem.AddConstraint(solver.Constraint{
			Name: fmt.Sprintf("hours_gate_%s", dateTag(d)),
			Terms: []solver.Term{
				{Var: HoursVar(d), Coef: 1},
				{Var: ActiveVar(d), Coef: -avail},
			},
			Sense: solver.LessEqual,
			RHS:   0,
		}); err != nil {
			return err
		}

		if day.Fixed {
			// Overtime above the fixed allocation is the only labor cost
			// the optimizer sees on a fixed day.
			if err := r.problem.AddContinuous(OvertimeVar(d), 0, day.OvertimeHours); err != nil {
				return err
			}
			if err := r.problem.AddConstraint(solver.Constraint{
				Name: fmt.Sprintf("overtime_%s", dateTag(d)),
				Terms: []solver.Term{
					{Var: HoursVar(d), Coef: 1},
					{Var: OvertimeVar(d), Coef: -1},
				},
				Sense: solver.LessEqual,
				RHS:   day.FixedHours,
			}); err != nil {
				return err
			}
			if err := r.problem.AddObjectiveTerm(OvertimeVar(d), day.OvertimeRate.InexactFloat64()); err != nil {
				return err
			}
		} else {
			// Paid hours cover actual usage and the callout minimum
			if err := r.problem.AddContinuous(PaidHoursVar(d), 0, day.MaxHours); err != nil {
				return err
			}
			if err := r.problem.AddConstraint(solver.Constraint{
				Name: fmt.Sprintf("paid_covers_used_%s", dateTag(d)),
				Terms: []solver.Term{
					{Var: PaidHoursVar(d), Coef: 1},
					{Var: HoursVar(d), Coef: -1},
				},
				Sense: solver.GreaterEqual,
				RHS:   0,
			}); err != nil {
				return err
			}
			if day.MinimumHours > 0 {
				if err := r.problem.AddConstraint(solver.Constraint{
					Name: fmt.Sprintf("paid_floor_%s", dateTag(d)),
					Terms: []solver.Term{
						{Var: PaidHoursVar(d), Coef: 1},
						{Var: ActiveVar(d), Coef: -day.MinimumHours},
					},
					Sense: solver.GreaterEqual,
					RHS:   0,
				}); err != nil {
					return err
				}
			}
			if err := r.problem.AddObjectiveTerm(PaidHoursVar(d), day.NonFixedRate.InexactFloat64()); err != nil {
				return err
			}
		}
	}
	return nil
}
