package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Route is an ordered sequence of legs from the plant to a destination.
// Routes are an enumeration artifact: they bound which (leg, cohort)
// combinations the index builder materializes, while flow itself is
// modeled per leg.
type Route struct {
	Legs []*Leg
}

// Origin returns the route's starting location
func (r *Route) Origin() LocationID {
	return r.Legs[0].From
}

// Destination returns the route's final location
func (r *Route) Destination() LocationID {
	return r.Legs[len(r.Legs)-1].To
}

// TransitClockDays is the total whole-day transit time along the route,
// chaining each leg's ceiling-rounded duration.
func (r *Route) TransitClockDays() int {
	total := 0
	for _, leg := range r.Legs {
		total += leg.TransitClockDays()
	}
	return total
}

// FinalState is the storage state product arrives in at the destination
func (r *Route) FinalState() StorageState {
	return r.Legs[len(r.Legs)-1].ArriveState
}

// CostPerUnit sums per-unit transport cost across the route's legs
func (r *Route) CostPerUnit() decimal.Decimal {
	total := decimal.Zero
	for _, leg := range r.Legs {
		total = total.Add(leg.CostPerUnit)
	}
	return total
}

// Key is the canonical path identity, e.g. "PLANT->HUB->BR1". Used for
// deterministic tie-breaking between equal-cost routes.
func (r *Route) Key() string {
	var sb strings.Builder
	sb.WriteString(string(r.Origin()))
	for _, leg := range r.Legs {
		sb.WriteString("->")
		sb.WriteString(string(leg.To))
	}
	return sb.String()
}
