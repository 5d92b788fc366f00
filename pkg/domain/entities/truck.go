package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DepartureType distinguishes morning from afternoon truck departures.
// The distinction matters for loading: a morning truck can only carry
// product produced on or before the previous day, an afternoon truck can
// also carry same-day production.
type DepartureType int

const (
	MorningDeparture DepartureType = iota
	AfternoonDeparture
)

// String method for DepartureType enum
func (t DepartureType) String() string {
	switch t {
	case MorningDeparture:
		return "Morning"
	case AfternoonDeparture:
		return "Afternoon"
	default:
		return "Unknown"
	}
}

// TruckSchedule is a recurring truck departure slot from the plant toward
// a first-leg destination on particular weekdays.
type TruckSchedule struct {
	ID          TruckID
	Destination LocationID
	Departure   DepartureType
	Weekdays    []time.Weekday
	// CapacityUnits and CapacityPallets cap the load; zero disables the
	// respective bound. At least one must be set.
	CapacityUnits   Quantity
	CapacityPallets Quantity
	FixedCost       decimal.Decimal
}

// NewTruckSchedule creates a validated TruckSchedule
func NewTruckSchedule(id TruckID, destination LocationID, departure DepartureType, weekdays []time.Weekday, capacityUnits, capacityPallets Quantity, fixedCost decimal.Decimal) (*TruckSchedule, error) {
	if id == "" {
		return nil, fmt.Errorf("truck id cannot be empty")
	}
	if destination == "" {
		return nil, fmt.Errorf("truck %s: destination cannot be empty", id)
	}
	if len(weekdays) == 0 {
		return nil, fmt.Errorf("truck %s: at least one weekday required", id)
	}
	if capacityUnits < 0 || capacityPallets < 0 {
		return nil, fmt.Errorf("truck %s: capacity cannot be negative", id)
	}
	if capacityUnits == 0 && capacityPallets == 0 {
		return nil, fmt.Errorf("truck %s: either unit or pallet capacity must be set", id)
	}
	if fixedCost.IsNegative() {
		return nil, fmt.Errorf("truck %s: fixed cost cannot be negative", id)
	}
	return &TruckSchedule{
		ID:              id,
		Destination:     destination,
		Departure:       departure,
		Weekdays:        weekdays,
		CapacityUnits:   capacityUnits,
		CapacityPallets: capacityPallets,
		FixedCost:       fixedCost,
	}, nil
}

// RunsOn reports whether the truck departs on the given date
func (t *TruckSchedule) RunsOn(date Date) bool {
	wd := date.Weekday()
	for _, w := range t.Weekdays {
		if w == wd {
			return true
		}
	}
	return false
}

// LatestLoadableProductionDate is the most recent production date whose
// output the truck may carry when departing on the given day.
func (t *TruckSchedule) LatestLoadableProductionDate(depart Date) Date {
	if t.Departure == MorningDeparture {
		return depart.Add(-1)
	}
	return depart
}
