package entities

import (
	"fmt"
	"sort"
)

// ForecastEntry is one raw forecast row: demand for a product at a
// destination on a date. Multiple rows for the same key are additive.
type ForecastEntry struct {
	Destination LocationID
	Product     ProductID
	Date        Date
	Units       Quantity
}

// DemandKey identifies a single demand cell
type DemandKey struct {
	Destination LocationID
	Product     ProductID
	Date        Date
}

// DemandSet is aggregated, immutable demand for a planning run
type DemandSet struct {
	demand map[DemandKey]Quantity
	keys   []DemandKey
}

// NewDemandSet aggregates forecast entries into an immutable demand set
func NewDemandSet(entries []ForecastEntry) (*DemandSet, error) {
	demand := make(map[DemandKey]Quantity, len(entries))
	for _, e := range entries {
		if e.Units < 0 {
			return nil, fmt.Errorf("forecast for %s/%s on %s: negative quantity %d",
				e.Destination, e.Product, e.Date, e.Units)
		}
		if e.Units == 0 {
			continue
		}
		key := DemandKey{Destination: e.Destination, Product: e.Product, Date: e.Date}
		demand[key] += e.Units
	}
	keys := make([]DemandKey, 0, len(demand))
	for k := range demand {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Destination != b.Destination {
			return a.Destination < b.Destination
		}
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		return a.Date < b.Date
	})
	return &DemandSet{demand: demand, keys: keys}, nil
}

// Quantity returns the demand for a key (zero if absent)
func (s *DemandSet) Quantity(key DemandKey) Quantity {
	return s.demand[key]
}

// Keys returns all non-zero demand keys in deterministic order
func (s *DemandSet) Keys() []DemandKey {
	return s.keys
}

// Total returns the total demanded units across all keys
func (s *DemandSet) Total() Quantity {
	var total Quantity
	for _, q := range s.demand {
		total += q
	}
	return total
}

// Restrict returns a new demand set containing only demand dated within
// the given range. Used by the rolling horizon to scope each window.
func (s *DemandSet) Restrict(r DateRange) *DemandSet {
	entries := make([]ForecastEntry, 0, len(s.keys))
	for _, k := range s.keys {
		if r.Contains(k.Date) {
			entries = append(entries, ForecastEntry{
				Destination: k.Destination,
				Product:     k.Product,
				Date:        k.Date,
				Units:       s.demand[k],
			})
		}
	}
	out, _ := NewDemandSet(entries)
	return out
}

// Destinations returns the distinct destinations with demand, sorted
func (s *DemandSet) Destinations() []LocationID {
	seen := make(map[LocationID]bool)
	var out []LocationID
	for _, k := range s.keys {
		if !seen[k.Destination] {
			seen[k.Destination] = true
			out = append(out, k.Destination)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Products returns the distinct products with demand, sorted
func (s *DemandSet) Products() []ProductID {
	seen := make(map[ProductID]bool)
	var out []ProductID
	for _, k := range s.keys {
		if !seen[k.Product] {
			seen[k.Product] = true
			out = append(out, k.Product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
