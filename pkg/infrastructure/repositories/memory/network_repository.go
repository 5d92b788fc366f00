package memory

import (
	"fmt"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/domain/repositories"
)

// NetworkRepository provides in-memory network storage
type NetworkRepository struct {
	network *entities.Network
}

// NewNetworkRepository creates a new in-memory network repository
func NewNetworkRepository() *NetworkRepository {
	return &NetworkRepository{}
}

// Verify interface compliance
var _ repositories.NetworkRepository = (*NetworkRepository)(nil)

// LoadNetwork validates and stores the network
func (r *NetworkRepository) LoadNetwork(locations []*entities.Location, legs []*entities.Leg) error {
	network, err := entities.NewNetwork(locations, legs)
	if err != nil {
		return err
	}
	r.network = network
	return nil
}

// GetNetwork returns the stored network
func (r *NetworkRepository) GetNetwork() (*entities.Network, error) {
	if r.network == nil {
		return nil, fmt.Errorf("no network loaded")
	}
	return r.network, nil
}
