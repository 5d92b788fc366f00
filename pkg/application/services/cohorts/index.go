package cohorts

import (
	"fmt"
	"sort"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// TransferKey identifies a same-day, same-location state conversion of a
// cohort: From=Frozen means a thaw, From=Ambient means a freeze. The
// counterpart state is implied (there are only two).
type TransferKey struct {
	Location    entities.LocationID
	Product     entities.ProductID
	ProduceDate entities.Date
	Date        entities.Date
	From        entities.StorageState
}

func (k TransferKey) String() string {
	return fmt.Sprintf("%s/%s/p%s/%s/from-%s", k.Location, k.Product, k.ProduceDate, k.Date, k.From)
}

// To returns the state the transfer converts into
func (k TransferKey) To() entities.StorageState {
	if k.From == entities.Frozen {
		return entities.Ambient
	}
	return entities.Frozen
}

// Index holds the four sparse cohort index sets for one solve, each an
// arena: a deterministic key slice plus a key-to-slot map. Only
// reachability- and shelf-life-valid tuples are materialized; nothing here
// is a dense cross product.
type Index struct {
	Horizon entities.DateRange

	invSlots  map[entities.CohortKey]int
	invKeys   []entities.CohortKey
	shipSlots map[entities.ShipmentKey]int
	shipKeys  []entities.ShipmentKey
	shipLeg   map[entities.LegKey]*entities.Leg
	allocSlot map[entities.AllocationKey]int
	allocKeys []entities.AllocationKey
	xferSlots map[TransferKey]int
	xferKeys  []TransferKey

	// disposal marks cohort-days where a disposal outflow variable exists
	// (the cohort's shelf-life expiry day, when it falls in the horizon)
	disposal map[entities.CohortKey]bool

	arrivals    map[entities.CohortKey][]entities.ShipmentKey
	departures  map[entities.CohortKey][]entities.ShipmentKey
	allocsByCoh map[entities.CohortKey][]entities.AllocationKey
	allocsByDem map[entities.DemandKey][]entities.AllocationKey
	plantDepart map[entities.Date][]entities.ShipmentKey
}

func newIndex(horizon entities.DateRange) *Index {
	return &Index{
		Horizon:     horizon,
		invSlots:    make(map[entities.CohortKey]int),
		shipSlots:   make(map[entities.ShipmentKey]int),
		shipLeg:     make(map[entities.LegKey]*entities.Leg),
		allocSlot:   make(map[entities.AllocationKey]int),
		xferSlots:   make(map[TransferKey]int),
		disposal:    make(map[entities.CohortKey]bool),
		arrivals:    make(map[entities.CohortKey][]entities.ShipmentKey),
		departures:  make(map[entities.CohortKey][]entities.ShipmentKey),
		allocsByCoh: make(map[entities.CohortKey][]entities.AllocationKey),
		allocsByDem: make(map[entities.DemandKey][]entities.AllocationKey),
		plantDepart: make(map[entities.Date][]entities.ShipmentKey),
	}
}

func (ix *Index) addInventory(key entities.CohortKey) {
	if _, exists := ix.invSlots[key]; exists {
		return
	}
	ix.invSlots[key] = len(ix.invKeys)
	ix.invKeys = append(ix.invKeys, key)
}

func (ix *Index) addShipment(key entities.ShipmentKey, leg *entities.Leg) {
	if _, exists := ix.shipSlots[key]; exists {
		return
	}
	ix.shipSlots[key] = len(ix.shipKeys)
	ix.shipKeys = append(ix.shipKeys, key)
	ix.shipLeg[key.Leg] = leg
}

func (ix *Index) addAllocation(key entities.AllocationKey) {
	if _, exists := ix.allocSlot[key]; exists {
		return
	}
	ix.allocSlot[key] = len(ix.allocKeys)
	ix.allocKeys = append(ix.allocKeys, key)
}

func (ix *Index) addTransfer(key TransferKey) {
	if _, exists := ix.xferSlots[key]; exists {
		return
	}
	ix.xferSlots[key] = len(ix.xferKeys)
	ix.xferKeys = append(ix.xferKeys, key)
}

// HasInventory reports whether the cohort-day is materialized
func (ix *Index) HasInventory(key entities.CohortKey) bool {
	_, ok := ix.invSlots[key]
	return ok
}

// InventoryKeys returns all inventory cohort-days in slot order
func (ix *Index) InventoryKeys() []entities.CohortKey {
	return ix.invKeys
}

// ShipmentKeys returns all shipment cohorts in slot order
func (ix *Index) ShipmentKeys() []entities.ShipmentKey {
	return ix.shipKeys
}

// AllocationKeys returns all demand-allocation cohorts in slot order
func (ix *Index) AllocationKeys() []entities.AllocationKey {
	return ix.allocKeys
}

// TransferKeys returns all state-transfer cohort-days in slot order
func (ix *Index) TransferKeys() []TransferKey {
	return ix.xferKeys
}

// HasTransfer reports whether the state-conversion point is materialized
func (ix *Index) HasTransfer(key TransferKey) bool {
	_, ok := ix.xferSlots[key]
	return ok
}

// Leg returns the leg a shipment key moves over
func (ix *Index) Leg(key entities.LegKey) *entities.Leg {
	return ix.shipLeg[key]
}

// DisposalAllowed reports whether the cohort-day carries a disposal
// variable (its shelf-life expiry day inside the horizon).
func (ix *Index) DisposalAllowed(key entities.CohortKey) bool {
	return ix.disposal[key]
}

// ArrivalsInto returns shipments delivering into the cohort-day
func (ix *Index) ArrivalsInto(key entities.CohortKey) []entities.ShipmentKey {
	return ix.arrivals[key]
}

// DeparturesFrom returns shipments departing out of the cohort-day
func (ix *Index) DeparturesFrom(key entities.CohortKey) []entities.ShipmentKey {
	return ix.departures[key]
}

// AllocationsFrom returns demand allocations consuming the cohort-day
func (ix *Index) AllocationsFrom(key entities.CohortKey) []entities.AllocationKey {
	return ix.allocsByCoh[key]
}

// AllocationsForDemand returns the allocation cohorts able to serve a
// demand cell, oldest production date first.
func (ix *Index) AllocationsForDemand(key entities.DemandKey) []entities.AllocationKey {
	return ix.allocsByDem[key]
}

// PlantDepartures returns shipments leaving the plant on the given date,
// in slot order. Truck constraints attach here.
func (ix *Index) PlantDepartures(date entities.Date) []entities.ShipmentKey {
	return ix.plantDepart[date]
}

// Size summarizes index cardinality for logging and metrics
func (ix *Index) Size() (inventory, shipments, allocations, transfers int) {
	return len(ix.invKeys), len(ix.shipKeys), len(ix.allocKeys), len(ix.xferKeys)
}

func (ix *Index) finalize(plant entities.LocationID) {
	sort.Slice(ix.invKeys, func(i, j int) bool { return entities.CohortKeyLess(ix.invKeys[i], ix.invKeys[j]) })
	for i, k := range ix.invKeys {
		ix.invSlots[k] = i
	}
	sort.Slice(ix.shipKeys, func(i, j int) bool { return shipmentKeyLess(ix.shipKeys[i], ix.shipKeys[j]) })
	for i, k := range ix.shipKeys {
		ix.shipSlots[k] = i
	}
	sort.Slice(ix.allocKeys, func(i, j int) bool { return allocationKeyLess(ix.allocKeys[i], ix.allocKeys[j]) })
	for i, k := range ix.allocKeys {
		ix.allocSlot[k] = i
	}
	sort.Slice(ix.xferKeys, func(i, j int) bool { return transferKeyLess(ix.xferKeys[i], ix.xferKeys[j]) })
	for i, k := range ix.xferKeys {
		ix.xferSlots[k] = i
	}

	for _, sk := range ix.shipKeys {
		leg := ix.shipLeg[sk.Leg]
		arriveKey := entities.CohortKey{
			Location:    sk.Leg.To,
			Product:     sk.Product,
			ProduceDate: sk.ProduceDate,
			CurrentDate: sk.DeliverDate,
			State:       leg.ArriveState,
		}
		departKey := entities.CohortKey{
			Location:    sk.Leg.From,
			Product:     sk.Product,
			ProduceDate: sk.ProduceDate,
			CurrentDate: leg.DepartureDate(sk.DeliverDate),
			State:       leg.DepartState,
		}
		ix.arrivals[arriveKey] = append(ix.arrivals[arriveKey], sk)
		ix.departures[departKey] = append(ix.departures[departKey], sk)
		if sk.Leg.From == plant {
			dd := leg.DepartureDate(sk.DeliverDate)
			ix.plantDepart[dd] = append(ix.plantDepart[dd], sk)
		}
	}

	for _, ak := range ix.allocKeys {
		cohKey := entities.CohortKey{
			Location:    ak.Destination,
			Product:     ak.Product,
			ProduceDate: ak.ProduceDate,
			CurrentDate: ak.Date,
			State:       entities.Ambient,
		}
		ix.allocsByCoh[cohKey] = append(ix.allocsByCoh[cohKey], ak)
		demKey := entities.DemandKey{Destination: ak.Destination, Product: ak.Product, Date: ak.Date}
		ix.allocsByDem[demKey] = append(ix.allocsByDem[demKey], ak)
	}
}

func shipmentKeyLess(a, b entities.ShipmentKey) bool {
	if a.Leg.From != b.Leg.From {
		return a.Leg.From < b.Leg.From
	}
	if a.Leg.To != b.Leg.To {
		return a.Leg.To < b.Leg.To
	}
	if a.Product != b.Product {
		return a.Product < b.Product
	}
	if a.ProduceDate != b.ProduceDate {
		return a.ProduceDate < b.ProduceDate
	}
	return a.DeliverDate < b.DeliverDate
}

func allocationKeyLess(a, b entities.AllocationKey) bool {
	if a.Destination != b.Destination {
		return a.Destination < b.Destination
	}
	if a.Product != b.Product {
		return a.Product < b.Product
	}
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.ProduceDate < b.ProduceDate
}

func transferKeyLess(a, b TransferKey) bool {
	if a.Location != b.Location {
		return a.Location < b.Location
	}
	if a.Product != b.Product {
		return a.Product < b.Product
	}
	if a.ProduceDate != b.ProduceDate {
		return a.ProduceDate < b.ProduceDate
	}
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.From < b.From
}
