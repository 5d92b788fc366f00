package model

import (
	"fmt"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// Input carries the pre-validated, in-memory collections one solve
// consumes. Everything is read-only from the run's perspective.
type Input struct {
	Horizon   entities.DateRange
	Network   *entities.Network
	Products  map[entities.ProductID]*entities.Product
	Demand    *entities.DemandSet
	Labor     *entities.LaborCalendar
	Trucks    []*entities.TruckSchedule
	Routes    map[entities.LocationID][]*entities.Route
	Initial   entities.CohortInventory
	// Pipeline is inventory already in transit when the horizon opens,
	// keyed at its destination with CurrentDate set to the delivery date.
	Pipeline  entities.CohortInventory
	Costs     *entities.CostStructure
	ShelfLife entities.ShelfLife
}

// Validate checks cross-collection consistency before model building
func (in *Input) Validate() error {
	if in.Network == nil {
		return fmt.Errorf("network is required")
	}
	if in.Demand == nil {
		return fmt.Errorf("demand set is required")
	}
	if in.Labor == nil {
		return fmt.Errorf("labor calendar is required")
	}
	if in.Costs == nil {
		return fmt.Errorf("cost structure is required")
	}
	for _, p := range in.Demand.Products() {
		if _, ok := in.Products[p]; !ok {
			return fmt.Errorf("demand references unknown product %s", p)
		}
	}
	for key := range in.Initial {
		if _, ok := in.Products[key.Product]; !ok {
			return fmt.Errorf("initial inventory references unknown product %s", key.Product)
		}
		if loc, ok := in.Network.Location(key.Location); !ok {
			return fmt.Errorf("initial inventory references unknown location %s", key.Location)
		} else if !loc.Capability.CanHold(key.State) {
			return fmt.Errorf("initial inventory at %s held in %s state the location does not support", key.Location, key.State)
		}
		if key.CurrentDate != in.Horizon.Start {
			return fmt.Errorf("initial inventory cohort %s must be keyed as of the horizon start %s", key, in.Horizon.Start)
		}
	}
	for key := range in.Pipeline {
		if _, ok := in.Products[key.Product]; !ok {
			return fmt.Errorf("pipeline arrival references unknown product %s", key.Product)
		}
		if loc, ok := in.Network.Location(key.Location); !ok {
			return fmt.Errorf("pipeline arrival references unknown location %s", key.Location)
		} else if !loc.Capability.CanHold(key.State) {
			return fmt.Errorf("pipeline arrival at %s held in %s state the location does not support", key.Location, key.State)
		}
		if !in.Horizon.Contains(key.CurrentDate) {
			return fmt.Errorf("pipeline arrival %s delivers outside horizon %s", key, in.Horizon)
		}
	}
	for _, truck := range in.Trucks {
		if _, ok := in.Network.Location(truck.Destination); !ok {
			return fmt.Errorf("truck %s references unknown destination %s", truck.ID, truck.Destination)
		}
	}
	for _, dk := range in.Demand.Keys() {
		if !in.Horizon.Contains(dk.Date) {
			return fmt.Errorf("demand for %s/%s dated %s falls outside horizon %s",
				dk.Destination, dk.Product, dk.Date, in.Horizon)
		}
	}
	return nil
}

// CriticalWindow is the date range where missing weekday labor blocks
// feasibility: from the horizon start through the last demand date.
func (in *Input) CriticalWindow() entities.DateRange {
	last := in.Horizon.Start
	for _, dk := range in.Demand.Keys() {
		if dk.Date > last {
			last = dk.Date
		}
	}
	return entities.DateRange{Start: in.Horizon.Start, End: last}
}
