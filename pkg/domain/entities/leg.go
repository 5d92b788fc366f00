package entities

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// LegKey identifies a directed transport leg by its endpoints
type LegKey struct {
	From LocationID
	To   LocationID
}

func (k LegKey) String() string {
	return fmt.Sprintf("%s->%s", k.From, k.To)
}

// Leg is one directed hop in the transport network. Departure and arrival
// states may differ: product can freeze on arrival at a frozen store, or
// thaw when delivered from a frozen buffer.
type Leg struct {
	From        LocationID
	To          LocationID
	DepartState StorageState
	ArriveState StorageState
	TransitDays float64
	CostPerUnit decimal.Decimal
}

// NewLeg creates a validated Leg
func NewLeg(from, to LocationID, departState, arriveState StorageState, transitDays float64, costPerUnit decimal.Decimal) (*Leg, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("leg endpoints cannot be empty")
	}
	if from == to {
		return nil, fmt.Errorf("leg %s->%s: origin and destination must differ", from, to)
	}
	if transitDays < 0 {
		return nil, fmt.Errorf("leg %s->%s: transit days cannot be negative, got %g", from, to, transitDays)
	}
	if costPerUnit.IsNegative() {
		return nil, fmt.Errorf("leg %s->%s: cost per unit cannot be negative", from, to)
	}
	return &Leg{
		From:        from,
		To:          to,
		DepartState: departState,
		ArriveState: arriveState,
		TransitDays: transitDays,
		CostPerUnit: costPerUnit,
	}, nil
}

// Key returns the leg's endpoint key
func (l *Leg) Key() LegKey {
	return LegKey{From: l.From, To: l.To}
}

// TransitClockDays is the whole-day transit duration used for date
// arithmetic: arrival date = departure date + ceil(transit days).
func (l *Leg) TransitClockDays() int {
	return int(math.Ceil(l.TransitDays))
}

// ArrivalDate computes the arrival date for a departure on the given day
func (l *Leg) ArrivalDate(depart Date) Date {
	return depart.Add(l.TransitClockDays())
}

// DepartureDate computes the departure date that arrives on the given day
func (l *Leg) DepartureDate(arrive Date) Date {
	return arrive.Add(-l.TransitClockDays())
}

// ChangesState reports whether the leg converts between frozen and ambient
func (l *Leg) ChangesState() bool {
	return l.DepartState != l.ArriveState
}
