package entities

import (
	"fmt"
	"sort"
)

// CohortKey identifies an age cohort of inventory: product produced on
// ProduceDate, sitting at Location on CurrentDate in the given state.
type CohortKey struct {
	Location    LocationID
	Product     ProductID
	ProduceDate Date
	CurrentDate Date
	State       StorageState
}

// Age is the cohort's age in days on its current date
func (k CohortKey) Age() int {
	return int(k.CurrentDate - k.ProduceDate)
}

// Prev is the same cohort one day earlier
func (k CohortKey) Prev() CohortKey {
	k.CurrentDate--
	return k
}

func (k CohortKey) String() string {
	return fmt.Sprintf("%s/%s/p%s/c%s/%s", k.Location, k.Product, k.ProduceDate, k.CurrentDate, k.State)
}

// ShipmentKey identifies an in-transit cohort: product produced on
// ProduceDate moving over a leg and delivered on DeliverDate.
type ShipmentKey struct {
	Leg         LegKey
	Product     ProductID
	ProduceDate Date
	DeliverDate Date
}

func (k ShipmentKey) String() string {
	return fmt.Sprintf("%s/%s/p%s/d%s", k.Leg, k.Product, k.ProduceDate, k.DeliverDate)
}

// AllocationKey identifies demand consumption: demand at Destination for
// Product on Date satisfied from the cohort produced on ProduceDate.
type AllocationKey struct {
	Destination LocationID
	Product     ProductID
	ProduceDate Date
	Date        Date
}

func (k AllocationKey) String() string {
	return fmt.Sprintf("%s/%s/p%s/%s", k.Destination, k.Product, k.ProduceDate, k.Date)
}

// ShelfLife holds the shelf-life limits that bound cohort ages.
// MinRemainingDays is the freshness buffer a delivery must still have
// when it reaches a breadroom.
type ShelfLife struct {
	AmbientDays      int
	FrozenDays       int
	MinRemainingDays int
}

// DefaultShelfLife returns the standard shelf-life policy
func DefaultShelfLife() ShelfLife {
	return ShelfLife{AmbientDays: 17, FrozenDays: 120, MinRemainingDays: 7}
}

// Limit returns the maximum permitted cohort age for a storage state
func (s ShelfLife) Limit(state StorageState) int {
	if state == Frozen {
		return s.FrozenDays
	}
	return s.AmbientDays
}

// WithinLimit reports whether a cohort of the given age may still be held
// in the given state.
func (s ShelfLife) WithinLimit(state StorageState, age int) bool {
	return age >= 0 && age <= s.Limit(state)
}

// CohortInventory maps cohorts to on-hand unit quantities. Quantities are
// fractional internally; extraction rounds them against an epsilon.
type CohortInventory map[CohortKey]float64

// Add accumulates quantity into a cohort, dropping zero entries
func (inv CohortInventory) Add(key CohortKey, qty float64) {
	if qty == 0 {
		return
	}
	inv[key] += qty
}

// Total sums units across all cohorts
func (inv CohortInventory) Total() float64 {
	total := 0.0
	for _, q := range inv {
		total += q
	}
	return total
}

// Keys returns cohort keys in deterministic order
func (inv CohortInventory) Keys() []CohortKey {
	keys := make([]CohortKey, 0, len(inv))
	for k := range inv {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return CohortKeyLess(keys[i], keys[j]) })
	return keys
}

// AsOf rekeys every cohort to the given current date, preserving
// production dates. Used when handing window-ending inventory to the next
// window as its opening position.
func (inv CohortInventory) AsOf(date Date) CohortInventory {
	out := make(CohortInventory, len(inv))
	for k, q := range inv {
		k.CurrentDate = date
		out.Add(k, q)
	}
	return out
}

// CohortKeyLess is the canonical ordering for cohort keys
func CohortKeyLess(a, b CohortKey) bool {
	if a.Location != b.Location {
		return a.Location < b.Location
	}
	if a.Product != b.Product {
		return a.Product < b.Product
	}
	if a.ProduceDate != b.ProduceDate {
		return a.ProduceDate < b.ProduceDate
	}
	if a.CurrentDate != b.CurrentDate {
		return a.CurrentDate < b.CurrentDate
	}
	return a.State < b.State
}
