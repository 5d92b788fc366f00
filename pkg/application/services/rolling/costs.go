package rolling

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/bakeplan/bakeplan/pkg/application/services/model"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// computeCosts prices a stitched plan from its rows. Window-local cost
// breakdowns cannot simply be summed, since each window also priced its
// uncommitted tail; recomputing from the committed rows keeps every cost
// counted exactly once.
func computeCosts(plan *entities.Plan, in model.Input) entities.CostBreakdown {
	costs := in.Costs
	var b entities.CostBreakdown

	batchesByDay := make(map[entities.Date][]entities.ProductionBatch)
	for _, batch := range plan.Batches {
		b.Production = b.Production.Add(decimal.NewFromInt(int64(batch.Units)).Mul(costs.ProductionPerUnit))
		batchesByDay[batch.Date] = append(batchesByDay[batch.Date], batch)
	}

	for d := plan.Horizon.Start; d <= plan.Horizon.End; d++ {
		day, ok := in.Labor.Day(d)
		if !ok {
			continue
		}
		hours := 0.0
		for _, batch := range batchesByDay[d] {
			hours += batch.Hours
		}
		if n := len(batchesByDay[d]); n > 1 {
			hours += costs.DefaultChangeoverHours * float64(n-1)
		}
		if day.Fixed {
			// Regular hours are pre-paid whether or not the day produces
			b.Labor = b.Labor.Add(decimal.NewFromFloat(day.FixedHours).Mul(day.RegularRate))
			if ot := hours - day.FixedHours; ot > 0 {
				b.Labor = b.Labor.Add(decimal.NewFromFloat(ot).Mul(day.OvertimeRate))
			}
		} else if hours > 0 {
			paid := math.Max(hours, day.MinimumHours)
			b.Labor = b.Labor.Add(decimal.NewFromFloat(paid).Mul(day.NonFixedRate))
		}
	}

	for _, s := range plan.Shipments {
		if leg := findLeg(in.Network, s.From, s.To); leg != nil {
			b.Transport = b.Transport.Add(decimal.NewFromFloat(s.Units).Mul(leg.CostPerUnit))
		}
	}
	type departure struct {
		truck entities.TruckID
		date  entities.Date
	}
	used := make(map[departure]bool)
	trucksByID := make(map[entities.TruckID]*entities.TruckSchedule, len(in.Trucks))
	for _, t := range in.Trucks {
		trucksByID[t.ID] = t
	}
	for _, tl := range plan.TruckLoads {
		dep := departure{truck: tl.Truck, date: tl.DepartDate}
		if used[dep] {
			continue
		}
		used[dep] = true
		if t, ok := trucksByID[tl.Truck]; ok {
			b.Transport = b.Transport.Add(t.FixedCost)
		}
	}

	for _, lvl := range plan.Inventory {
		b.Holding = b.Holding.Add(decimal.NewFromFloat(lvl.Units).Mul(costs.StorageRate(lvl.State)))
	}
	for _, d := range plan.Disposals {
		b.Waste = b.Waste.Add(decimal.NewFromFloat(d.Units).Mul(costs.WastePerUnit()))
	}
	for _, s := range plan.Shortages {
		b.Shortage = b.Shortage.Add(decimal.NewFromFloat(s.Units).Mul(costs.ShortagePenaltyPerUnit))
	}
	return b
}

func findLeg(network *entities.Network, from, to entities.LocationID) *entities.Leg {
	for _, leg := range network.LegsFrom(from) {
		if leg.To == to {
			return leg
		}
	}
	return nil
}
