package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CostStructure holds the run-wide cost and rate parameters. Labor rates
// live on the labor calendar; transport per-unit costs live on legs.
type CostStructure struct {
	ProductionPerUnit      decimal.Decimal
	StorageFrozenPerDay    decimal.Decimal
	StorageAmbientPerDay   decimal.Decimal
	WasteMultiplier        decimal.Decimal
	ShortagePenaltyPerUnit decimal.Decimal

	// UnitsPerHour converts production quantity to labor hours
	UnitsPerHour float64
	// DefaultChangeoverHours is charged per additional product run on a day
	DefaultChangeoverHours float64
}

// NewCostStructure creates a validated CostStructure
func NewCostStructure(productionPerUnit, storageFrozenPerDay, storageAmbientPerDay, wasteMultiplier, shortagePenaltyPerUnit decimal.Decimal, unitsPerHour float64) (*CostStructure, error) {
	if unitsPerHour <= 0 {
		return nil, fmt.Errorf("units per hour must be positive, got %g", unitsPerHour)
	}
	for _, v := range []decimal.Decimal{productionPerUnit, storageFrozenPerDay, storageAmbientPerDay, wasteMultiplier, shortagePenaltyPerUnit} {
		if v.IsNegative() {
			return nil, fmt.Errorf("cost parameters cannot be negative")
		}
	}
	if storageFrozenPerDay.LessThan(storageAmbientPerDay) {
		return nil, fmt.Errorf("frozen storage rate must be at least the ambient rate")
	}
	return &CostStructure{
		ProductionPerUnit:      productionPerUnit,
		StorageFrozenPerDay:    storageFrozenPerDay,
		StorageAmbientPerDay:   storageAmbientPerDay,
		WasteMultiplier:        wasteMultiplier,
		ShortagePenaltyPerUnit: shortagePenaltyPerUnit,
		UnitsPerHour:           unitsPerHour,
	}, nil
}

// StorageRate returns the per-unit-per-day holding rate for a state
func (c *CostStructure) StorageRate(state StorageState) decimal.Decimal {
	if state == Frozen {
		return c.StorageFrozenPerDay
	}
	return c.StorageAmbientPerDay
}

// WastePerUnit is the disposal cost of one expired unit
func (c *CostStructure) WastePerUnit() decimal.Decimal {
	return c.ProductionPerUnit.Mul(c.WasteMultiplier)
}

// CostBreakdown accumulates plan cost by category
type CostBreakdown struct {
	Labor      decimal.Decimal
	Production decimal.Decimal
	Transport  decimal.Decimal
	Holding    decimal.Decimal
	Waste      decimal.Decimal
	Shortage   decimal.Decimal
}

// Total sums all cost categories
func (b CostBreakdown) Total() decimal.Decimal {
	return b.Labor.Add(b.Production).Add(b.Transport).Add(b.Holding).Add(b.Waste).Add(b.Shortage)
}

// Plus returns the category-wise sum of two breakdowns
func (b CostBreakdown) Plus(other CostBreakdown) CostBreakdown {
	return CostBreakdown{
		Labor:      b.Labor.Add(other.Labor),
		Production: b.Production.Add(other.Production),
		Transport:  b.Transport.Add(other.Transport),
		Holding:    b.Holding.Add(other.Holding),
		Waste:      b.Waste.Add(other.Waste),
		Shortage:   b.Shortage.Add(other.Shortage),
	}
}

func (b CostBreakdown) String() string {
	return fmt.Sprintf("labor=%s production=%s transport=%s holding=%s waste=%s shortage=%s total=%s",
		b.Labor.StringFixed(2), b.Production.StringFixed(2), b.Transport.StringFixed(2),
		b.Holding.StringFixed(2), b.Waste.StringFixed(2), b.Shortage.StringFixed(2), b.Total().StringFixed(2))
}
