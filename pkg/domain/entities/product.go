package entities

import "fmt"

// Product represents a manufactured product with its packaging constants
type Product struct {
	ID             ProductID
	Name           string
	UnitsPerCase   Quantity
	CasesPerPallet Quantity
}

// NewProduct creates a validated Product
func NewProduct(id ProductID, name string, unitsPerCase, casesPerPallet Quantity) (*Product, error) {
	if id == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if unitsPerCase <= 0 {
		return nil, fmt.Errorf("product %s: units per case must be positive, got %d", id, unitsPerCase)
	}
	if casesPerPallet <= 0 {
		return nil, fmt.Errorf("product %s: cases per pallet must be positive, got %d", id, casesPerPallet)
	}
	return &Product{
		ID:             id,
		Name:           name,
		UnitsPerCase:   unitsPerCase,
		CasesPerPallet: casesPerPallet,
	}, nil
}

// UnitsPerPallet returns the unit count of one full pallet
func (p *Product) UnitsPerPallet() Quantity {
	return p.UnitsPerCase * p.CasesPerPallet
}

// CasesFor returns the number of cases needed to hold the given units,
// rounding any partial case up.
func (p *Product) CasesFor(units Quantity) Quantity {
	return ceilDiv(units, p.UnitsPerCase)
}

// PalletsFor returns the number of pallets needed to hold the given units,
// rounding any partial pallet up.
func (p *Product) PalletsFor(units Quantity) Quantity {
	return ceilDiv(units, p.UnitsPerPallet())
}

// CaseAligned reports whether units is an exact multiple of the case size
func (p *Product) CaseAligned(units Quantity) bool {
	return units%p.UnitsPerCase == 0
}

func ceilDiv(a, b Quantity) Quantity {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
