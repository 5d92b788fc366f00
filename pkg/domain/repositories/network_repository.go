package repositories

import "github.com/bakeplan/bakeplan/pkg/domain/entities"

// NetworkRepository provides access to the distribution network
type NetworkRepository interface {
	GetNetwork() (*entities.Network, error)
	LoadNetwork(locations []*entities.Location, legs []*entities.Leg) error
}
