package entities

import (
	"fmt"
	"sort"
)

// Network is the validated set of locations and directed legs the planner
// operates on. Leg and location ordering is normalized at construction so
// that downstream index and variable generation is deterministic.
type Network struct {
	locations map[LocationID]*Location
	legs      []*Leg
	legsFrom  map[LocationID][]*Leg
	legsTo    map[LocationID][]*Leg
	plant     *Location
}

// NewNetwork creates a validated Network from locations and legs
func NewNetwork(locations []*Location, legs []*Leg) (*Network, error) {
	n := &Network{
		locations: make(map[LocationID]*Location, len(locations)),
		legsFrom:  make(map[LocationID][]*Leg),
		legsTo:    make(map[LocationID][]*Leg),
	}
	for _, loc := range locations {
		if _, exists := n.locations[loc.ID]; exists {
			return nil, fmt.Errorf("duplicate location %s", loc.ID)
		}
		n.locations[loc.ID] = loc
		if loc.Type == Manufacturing {
			if n.plant != nil {
				return nil, fmt.Errorf("multiple manufacturing locations: %s and %s", n.plant.ID, loc.ID)
			}
			n.plant = loc
		}
	}
	if n.plant == nil {
		return nil, fmt.Errorf("network has no manufacturing location")
	}
	for _, leg := range legs {
		from, ok := n.locations[leg.From]
		if !ok {
			return nil, fmt.Errorf("leg %s: unknown origin", leg.Key())
		}
		to, ok := n.locations[leg.To]
		if !ok {
			return nil, fmt.Errorf("leg %s: unknown destination", leg.Key())
		}
		if !from.Capability.CanHold(leg.DepartState) && from.Type != Manufacturing {
			return nil, fmt.Errorf("leg %s departs %s but %s cannot hold %s inventory",
				leg.Key(), leg.DepartState, from.ID, leg.DepartState)
		}
		if !to.Capability.CanHold(leg.ArriveState) {
			return nil, fmt.Errorf("leg %s arrives %s but %s cannot hold %s inventory",
				leg.Key(), leg.ArriveState, to.ID, leg.ArriveState)
		}
		n.legs = append(n.legs, leg)
	}
	sort.Slice(n.legs, func(i, j int) bool {
		a, b := n.legs[i], n.legs[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.DepartState < b.DepartState
	})
	for _, leg := range n.legs {
		n.legsFrom[leg.From] = append(n.legsFrom[leg.From], leg)
		n.legsTo[leg.To] = append(n.legsTo[leg.To], leg)
	}
	return n, nil
}

// Plant returns the single manufacturing location
func (n *Network) Plant() *Location {
	return n.plant
}

// Location returns the location with the given id, if present
func (n *Network) Location(id LocationID) (*Location, bool) {
	loc, ok := n.locations[id]
	return loc, ok
}

// Locations returns all locations sorted by id
func (n *Network) Locations() []*Location {
	out := make([]*Location, 0, len(n.locations))
	for _, loc := range n.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Destinations returns all breadroom locations sorted by id
func (n *Network) Destinations() []*Location {
	var out []*Location
	for _, loc := range n.Locations() {
		if loc.Type == Breadroom {
			out = append(out, loc)
		}
	}
	return out
}

// Legs returns all legs in deterministic order
func (n *Network) Legs() []*Leg {
	return n.legs
}

// LegsFrom returns the legs departing the given location
func (n *Network) LegsFrom(id LocationID) []*Leg {
	return n.legsFrom[id]
}

// LegsTo returns the legs arriving at the given location
func (n *Network) LegsTo(id LocationID) []*Leg {
	return n.legsTo[id]
}
