package cohorts

import (
	"fmt"
	"sort"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

const unreachable = 1 << 20

// Builder materializes the sparse cohort index sets for one solve. The
// naive cross product (location x product x production-date x current-date
// x state) is never formed: tuples exist only if a feasible inbound path
// delivers the cohort by its current date and the state's shelf-life
// limit admits its age.
type Builder struct {
	network   *entities.Network
	shelfLife entities.ShelfLife
}

// NewBuilder creates an index builder for the network
func NewBuilder(network *entities.Network, shelfLife entities.ShelfLife) *Builder {
	return &Builder{network: network, shelfLife: shelfLife}
}

// BuildInput carries the per-solve data the index derives from
type BuildInput struct {
	Horizon entities.DateRange
	Demand  *entities.DemandSet
	// Routes bounds which legs and intermediate locations participate
	Routes map[entities.LocationID][]*entities.Route
	// Initial seeds opening cohort inventory, keyed as of Horizon.Start
	Initial entities.CohortInventory
	// Pipeline seeds in-transit arrivals scheduled before the horizon
	// opened: each key's CurrentDate is the delivery date at its location.
	Pipeline entities.CohortInventory
}

// Build constructs the index
func (b *Builder) Build(in BuildInput) (*Index, error) {
	if in.Demand == nil {
		return nil, fmt.Errorf("demand set is required")
	}
	ix := newIndex(in.Horizon)
	plant := b.network.Plant()

	allowedLegs, allowedLocs := b.collectAllowed(in)

	products := b.collectProducts(in)

	// Plant-produced cohorts: every production date must land in a
	// same-day cohort at the plant (offset zero for the plant's states),
	// then reach downstream locations per the leg offsets.
	plantOffsets := b.offsetsFrom(plant.ID, plant.Capability.States(), allowedLegs, allowedLocs)
	for _, product := range products {
		for pd := in.Horizon.Start; pd <= in.Horizon.End; pd++ {
			b.materializeCohorts(ix, product, pd, pd, plantOffsets)
		}
	}

	// Seeded cohorts: opening inventory exists at its location from the
	// horizon start and flows outward from there.
	for _, seedKey := range in.Initial.Keys() {
		if in.Initial[seedKey] <= 0 {
			continue
		}
		if seedKey.ProduceDate.Add(b.shelfLife.Limit(seedKey.State)) < in.Horizon.Start {
			// already expired before the window opens
			continue
		}
		offsets := b.offsetsFrom(seedKey.Location, []entities.StorageState{seedKey.State}, allowedLegs, allowedLocs)
		b.materializeCohorts(ix, seedKey.Product, seedKey.ProduceDate, in.Horizon.Start, offsets)
	}

	// Pipeline cohorts: units already in transit when the window opened
	// appear at their destination on the scheduled delivery date.
	for _, arrKey := range in.Pipeline.Keys() {
		if in.Pipeline[arrKey] <= 0 {
			continue
		}
		if arrKey.ProduceDate.Add(b.shelfLife.Limit(arrKey.State)) < arrKey.CurrentDate {
			continue
		}
		offsets := b.offsetsFrom(arrKey.Location, []entities.StorageState{arrKey.State}, allowedLegs, allowedLocs)
		b.materializeCohorts(ix, arrKey.Product, arrKey.ProduceDate, arrKey.CurrentDate, offsets)
	}

	b.materializeShipments(ix, allowedLegs)
	b.materializeTransfers(ix)
	b.materializeAllocations(ix, in.Demand)

	ix.finalize(plant.ID)
	return ix, nil
}

// UnservedDemand lists demand cells with no allocation cohort: demand no
// feasible route can reach in time. Callers either reject the scenario or
// cost these as forced shortages.
func UnservedDemand(ix *Index, demand *entities.DemandSet) []entities.DemandKey {
	var out []entities.DemandKey
	for _, key := range demand.Keys() {
		if len(ix.AllocationsForDemand(key)) == 0 {
			out = append(out, key)
		}
	}
	return out
}

func (b *Builder) collectAllowed(in BuildInput) (map[entities.LegKey]*entities.Leg, map[entities.LocationID]bool) {
	legs := make(map[entities.LegKey]*entities.Leg)
	locs := map[entities.LocationID]bool{b.network.Plant().ID: true}
	for _, rs := range in.Routes {
		for _, r := range rs {
			for _, leg := range r.Legs {
				legs[leg.Key()] = leg
				locs[leg.From] = true
				locs[leg.To] = true
			}
		}
	}
	for key := range in.Initial {
		locs[key.Location] = true
	}
	for key := range in.Pipeline {
		locs[key.Location] = true
	}
	return legs, locs
}

func (b *Builder) collectProducts(in BuildInput) []entities.ProductID {
	seen := make(map[entities.ProductID]bool)
	var out []entities.ProductID
	for _, p := range in.Demand.Products() {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for key := range in.Initial {
		if !seen[key.Product] {
			seen[key.Product] = true
			out = append(out, key.Product)
		}
	}
	for key := range in.Pipeline {
		if !seen[key.Product] {
			seen[key.Product] = true
			out = append(out, key.Product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// offsetsFrom computes the minimum whole-day transit from a source
// location (where the cohort is available in srcStates at offset zero) to
// every allowed (location, state), relaxing over allowed legs. Same-day
// state conversion is free at locations that hold both states.
func (b *Builder) offsetsFrom(src entities.LocationID, srcStates []entities.StorageState, allowedLegs map[entities.LegKey]*entities.Leg, allowedLocs map[entities.LocationID]bool) map[entities.LocationID][2]int {
	offsets := make(map[entities.LocationID][2]int, len(allowedLocs))
	for loc := range allowedLocs {
		offsets[loc] = [2]int{unreachable, unreachable}
	}
	start := offsets[src]
	for _, s := range srcStates {
		start[s] = 0
	}
	offsets[src] = start

	relaxConversions := func() bool {
		changed := false
		for loc := range allowedLocs {
			l, ok := b.network.Location(loc)
			if !ok || l.Capability != entities.AmbientAndFrozen {
				continue
			}
			o := offsets[loc]
			if o[entities.Ambient] < o[entities.Frozen] {
				o[entities.Frozen] = o[entities.Ambient]
				changed = true
			} else if o[entities.Frozen] < o[entities.Ambient] {
				o[entities.Ambient] = o[entities.Frozen]
				changed = true
			}
			offsets[loc] = o
		}
		return changed
	}

	for {
		changed := relaxConversions()
		for _, leg := range allowedLegs {
			from := offsets[leg.From]
			if from[leg.DepartState] >= unreachable {
				continue
			}
			cand := from[leg.DepartState] + leg.TransitClockDays()
			to := offsets[leg.To]
			if cand < to[leg.ArriveState] {
				to[leg.ArriveState] = cand
				offsets[leg.To] = to
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return offsets
}

// materializeCohorts adds the cohort-day tuples for one (product,
// production date) across all reachable locations and states. available
// is the first date the cohort exists at the offset origin.
func (b *Builder) materializeCohorts(ix *Index, product entities.ProductID, pd, available entities.Date, offsets map[entities.LocationID][2]int) {
	for loc, byState := range offsets {
		for _, state := range []entities.StorageState{entities.Ambient, entities.Frozen} {
			offset := byState[state]
			if offset >= unreachable {
				continue
			}
			l, ok := b.network.Location(loc)
			if !ok || !l.Capability.CanHold(state) {
				continue
			}
			limit := b.shelfLife.Limit(state)
			expiry := pd.Add(limit)
			first := available.Add(offset)
			if first < ix.Horizon.Start {
				first = ix.Horizon.Start
			}
			last := expiry
			if last > ix.Horizon.End {
				last = ix.Horizon.End
			}
			for cd := first; cd <= last; cd++ {
				key := entities.CohortKey{Location: loc, Product: product, ProduceDate: pd, CurrentDate: cd, State: state}
				ix.addInventory(key)
				if cd == expiry {
					ix.disposal[key] = true
				}
			}
		}
	}
}

// materializeShipments adds a shipment cohort for every (leg, cohort-day)
// pair where both the departing and the arriving cohort-day exist.
// Deliveries into breadrooms must additionally retain the minimum
// remaining shelf life on arrival.
func (b *Builder) materializeShipments(ix *Index, allowedLegs map[entities.LegKey]*entities.Leg) {
	legs := make([]*entities.Leg, 0, len(allowedLegs))
	for _, leg := range allowedLegs {
		legs = append(legs, leg)
	}
	sort.Slice(legs, func(i, j int) bool {
		if legs[i].From != legs[j].From {
			return legs[i].From < legs[j].From
		}
		return legs[i].To < legs[j].To
	})

	for _, key := range ix.invKeys {
		for _, leg := range legs {
			if leg.From != key.Location || leg.DepartState != key.State {
				continue
			}
			deliver := leg.ArrivalDate(key.CurrentDate)
			if deliver > ix.Horizon.End {
				continue
			}
			arriveKey := entities.CohortKey{
				Location:    leg.To,
				Product:     key.Product,
				ProduceDate: key.ProduceDate,
				CurrentDate: deliver,
				State:       leg.ArriveState,
			}
			if !ix.HasInventory(arriveKey) {
				continue
			}
			if dest, ok := b.network.Location(leg.To); ok && dest.Type == entities.Breadroom {
				remaining := b.shelfLife.Limit(leg.ArriveState) - arriveKey.Age()
				if remaining < b.shelfLife.MinRemainingDays {
					continue
				}
			}
			ix.addShipment(entities.ShipmentKey{
				Leg:         leg.Key(),
				Product:     key.Product,
				ProduceDate: key.ProduceDate,
				DeliverDate: deliver,
			}, leg)
		}
	}
}

// materializeTransfers adds freeze/thaw conversion points wherever both
// state cohorts of the same (location, product, production date) exist on
// the same day at a location that holds both states.
func (b *Builder) materializeTransfers(ix *Index) {
	for _, key := range ix.invKeys {
		if key.State != entities.Ambient {
			continue
		}
		loc, ok := b.network.Location(key.Location)
		if !ok || loc.Capability != entities.AmbientAndFrozen {
			continue
		}
		frozenKey := key
		frozenKey.State = entities.Frozen
		if !ix.HasInventory(frozenKey) {
			continue
		}
		ix.addTransfer(TransferKey{Location: key.Location, Product: key.Product, ProduceDate: key.ProduceDate, Date: key.CurrentDate, From: entities.Ambient})
		ix.addTransfer(TransferKey{Location: key.Location, Product: key.Product, ProduceDate: key.ProduceDate, Date: key.CurrentDate, From: entities.Frozen})
	}
}

// materializeAllocations adds a demand-allocation cohort for every
// (demand cell, production date) pair backed by an ambient cohort at the
// destination on the demand date.
func (b *Builder) materializeAllocations(ix *Index, demand *entities.DemandSet) {
	for _, dk := range demand.Keys() {
		// Only production dates within the ambient limit can back an
		// ambient cohort on the demand date; probe just that band.
		earliest := dk.Date.Add(-b.shelfLife.AmbientDays)
		for pd := earliest; pd <= dk.Date; pd++ {
			key := entities.CohortKey{
				Location:    dk.Destination,
				Product:     dk.Product,
				ProduceDate: pd,
				CurrentDate: dk.Date,
				State:       entities.Ambient,
			}
			if !ix.HasInventory(key) {
				continue
			}
			ix.addAllocation(entities.AllocationKey{
				Destination: dk.Destination,
				Product:     dk.Product,
				ProduceDate: pd,
				Date:        dk.Date,
			})
		}
	}
}
