package entities

import "fmt"

// LocationType classifies a network location by its role
type LocationType int

const (
	Manufacturing LocationType = iota
	Storage
	Breadroom
)

// String method for LocationType enum
func (t LocationType) String() string {
	switch t {
	case Manufacturing:
		return "Manufacturing"
	case Storage:
		return "Storage"
	case Breadroom:
		return "Breadroom"
	default:
		return "Unknown"
	}
}

// StorageState is the physical state inventory is held or transported in
type StorageState int

const (
	Ambient StorageState = iota
	Frozen
)

// String method for StorageState enum
func (s StorageState) String() string {
	switch s {
	case Ambient:
		return "Ambient"
	case Frozen:
		return "Frozen"
	default:
		return "Unknown"
	}
}

// Other returns the opposite storage state
func (s StorageState) Other() StorageState {
	if s == Ambient {
		return Frozen
	}
	return Ambient
}

// StorageCapability declares which states a location can hold inventory in
type StorageCapability int

const (
	AmbientOnly StorageCapability = iota
	FrozenOnly
	AmbientAndFrozen
)

// String method for StorageCapability enum
func (c StorageCapability) String() string {
	switch c {
	case AmbientOnly:
		return "AmbientOnly"
	case FrozenOnly:
		return "FrozenOnly"
	case AmbientAndFrozen:
		return "AmbientAndFrozen"
	default:
		return "Unknown"
	}
}

// CanHold reports whether the capability admits inventory in the given state
func (c StorageCapability) CanHold(s StorageState) bool {
	switch c {
	case AmbientOnly:
		return s == Ambient
	case FrozenOnly:
		return s == Frozen
	case AmbientAndFrozen:
		return true
	default:
		return false
	}
}

// States returns the storage states the capability admits, ambient first
func (c StorageCapability) States() []StorageState {
	switch c {
	case AmbientOnly:
		return []StorageState{Ambient}
	case FrozenOnly:
		return []StorageState{Frozen}
	case AmbientAndFrozen:
		return []StorageState{Ambient, Frozen}
	default:
		return nil
	}
}

// Location represents a node in the distribution network
type Location struct {
	ID         LocationID
	Name       string
	Type       LocationType
	Capability StorageCapability
	// CapacityUnits caps total on-hand inventory across products and states.
	// Zero means uncapacitated.
	CapacityUnits Quantity
}

// NewLocation creates a validated Location
func NewLocation(id LocationID, name string, locType LocationType, capability StorageCapability, capacityUnits Quantity) (*Location, error) {
	if id == "" {
		return nil, fmt.Errorf("location id cannot be empty")
	}
	if capacityUnits < 0 {
		return nil, fmt.Errorf("location %s: capacity cannot be negative, got %d", id, capacityUnits)
	}
	return &Location{
		ID:            id,
		Name:          name,
		Type:          locType,
		Capability:    capability,
		CapacityUnits: capacityUnits,
	}, nil
}
