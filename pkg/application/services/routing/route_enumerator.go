package routing

import (
	"fmt"
	"sort"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// Config bounds the route search
type Config struct {
	// MaxLegs caps route length in hops
	MaxLegs int
	// MaxRoutesPerDestination is the per-destination route cap K
	MaxRoutesPerDestination int
}

// DefaultConfig returns the standard enumeration bounds
func DefaultConfig() Config {
	return Config{MaxLegs: 4, MaxRoutesPerDestination: 5}
}

// RouteEnumerator expands the leg graph into bounded-length plant-to-
// destination paths. Enumeration is exhaustive within the leg cap, then
// filtered for shelf-life feasibility and truncated to the K cheapest
// per destination under a deterministic ordering.
type RouteEnumerator struct {
	network   *entities.Network
	shelfLife entities.ShelfLife
	config    Config
}

// NewRouteEnumerator creates a route enumerator over the given network
func NewRouteEnumerator(network *entities.Network, shelfLife entities.ShelfLife, config Config) (*RouteEnumerator, error) {
	if config.MaxLegs <= 0 {
		return nil, fmt.Errorf("max legs must be positive, got %d", config.MaxLegs)
	}
	if config.MaxRoutesPerDestination <= 0 {
		return nil, fmt.Errorf("route cap must be positive, got %d", config.MaxRoutesPerDestination)
	}
	return &RouteEnumerator{network: network, shelfLife: shelfLife, config: config}, nil
}

// Enumerate returns up to K feasible routes from the plant to the given
// destination, ordered by cost, then leg count, then path identity.
func (e *RouteEnumerator) Enumerate(destination entities.LocationID) ([]*entities.Route, error) {
	if _, ok := e.network.Location(destination); !ok {
		return nil, fmt.Errorf("unknown destination %s", destination)
	}

	var found []*entities.Route
	visited := map[entities.LocationID]bool{e.network.Plant().ID: true}
	e.search(e.network.Plant().ID, destination, nil, visited, &found)

	feasible := found[:0]
	for _, r := range found {
		if e.shelfLifeFeasible(r) {
			feasible = append(feasible, r)
		}
	}

	sort.Slice(feasible, func(i, j int) bool {
		a, b := feasible[i], feasible[j]
		costCmp := a.CostPerUnit().Cmp(b.CostPerUnit())
		if costCmp != 0 {
			return costCmp < 0
		}
		if len(a.Legs) != len(b.Legs) {
			return len(a.Legs) < len(b.Legs)
		}
		return a.Key() < b.Key()
	})

	if len(feasible) > e.config.MaxRoutesPerDestination {
		feasible = feasible[:e.config.MaxRoutesPerDestination]
	}
	return feasible, nil
}

// EnumerateAll enumerates routes for every destination with at least one
// feasible route. Destinations with none are reported as an error only by
// the callers that require them (the index builder treats missing routes
// as unsatisfiable demand).
func (e *RouteEnumerator) EnumerateAll() (map[entities.LocationID][]*entities.Route, error) {
	out := make(map[entities.LocationID][]*entities.Route)
	for _, dest := range e.network.Destinations() {
		routes, err := e.Enumerate(dest.ID)
		if err != nil {
			return nil, err
		}
		if len(routes) > 0 {
			out[dest.ID] = routes
		}
	}
	return out, nil
}

func (e *RouteEnumerator) search(current, destination entities.LocationID, path []*entities.Leg, visited map[entities.LocationID]bool, found *[]*entities.Route) {
	if len(path) >= e.config.MaxLegs {
		return
	}
	for _, leg := range e.network.LegsFrom(current) {
		if visited[leg.To] {
			continue
		}
		// States must chain: a leg can only depart in the state the
		// previous leg arrived in, unless the intermediate location can
		// hold both and convert.
		if len(path) > 0 && !e.stateChainValid(path[len(path)-1], leg) {
			continue
		}
		next := append(path, leg)
		if leg.To == destination {
			route := &entities.Route{Legs: append([]*entities.Leg(nil), next...)}
			*found = append(*found, route)
			continue
		}
		visited[leg.To] = true
		e.search(leg.To, destination, next, visited, found)
		visited[leg.To] = false
	}
}

// stateChainValid checks that consecutive legs agree on storage state at
// the shared location, or that the location can hold both states (a
// freeze/thaw conversion happens there through the balance equations).
func (e *RouteEnumerator) stateChainValid(prev, next *entities.Leg) bool {
	if prev.ArriveState == next.DepartState {
		return true
	}
	loc, ok := e.network.Location(next.From)
	if !ok {
		return false
	}
	return loc.Capability == entities.AmbientAndFrozen
}

// shelfLifeFeasible discards routes no production date could survive: the
// most generous shelf life among the states the product moves through
// must cover transit plus the minimum remaining life a delivery needs.
func (e *RouteEnumerator) shelfLifeFeasible(r *entities.Route) bool {
	maxLimit := 0
	for _, leg := range r.Legs {
		for _, state := range []entities.StorageState{leg.DepartState, leg.ArriveState} {
			if limit := e.shelfLife.Limit(state); limit > maxLimit {
				maxLimit = limit
			}
		}
	}
	return maxLimit >= r.TransitClockDays()+e.shelfLife.MinRemainingDays
}
